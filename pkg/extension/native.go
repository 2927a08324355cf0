package extension

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"
)

const (
	// NativeLoaderID identifies the built-in definition-file loader. It is
	// the one fixed loader the legacy manifest path always targets.
	NativeLoaderID = "native"

	// ParamType names the extension definition to load.
	ParamType = "type"
	// ParamVersion is the version stamped onto the produced model.
	ParamVersion = "version"
)

// definitionDir is where plugins bundle extension definition files.
const definitionDir = "extensions"

// definition is the on-disk shape of an extension definition file. The model
// version is deliberately absent: it always comes from the load parameters.
type definition struct {
	Name             string           `json:"name"`
	Vendor           string           `json:"vendor,omitempty"`
	Description      string           `json:"description,omitempty"`
	Types            []TypeDecl       `json:"types,omitempty"`
	Operations       []Operation      `json:"operations,omitempty"`
	ConfigProperties []ConfigProperty `json:"configProperties,omitempty"`
	Imports          []string         `json:"imports,omitempty"`
}

// NativeLoader loads extension models from definition files bundled with the
// plugin at extensions/<type>.json.
type NativeLoader struct {
	logger zerolog.Logger
}

// NewNativeLoader creates the built-in definition-file loader.
func NewNativeLoader(logger zerolog.Logger) *NativeLoader {
	return &NativeLoader{
		logger: logger.With().Str("component", "native-loader").Logger(),
	}
}

// ID returns the fixed identifier of the built-in loader.
func (l *NativeLoader) ID() string {
	return NativeLoaderID
}

// Load resolves extensions/<type>.json inside the plugin, parses the
// definition, resolves its imports against rctx and produces the model
// stamped with the version parameter. An import naming a model absent from
// rctx fails the load: within one artifact an importing plugin must be
// declared after the plugins it imports from.
func (l *NativeLoader) Load(ctx context.Context, res Resources, rctx *ResolutionContext, params map[string]any) (*Model, error) {
	typ, err := stringParam(params, ParamType)
	if err != nil {
		return nil, err
	}
	version, err := stringParam(params, ParamVersion)
	if err != nil {
		return nil, err
	}
	if _, err := semver.NewVersion(version); err != nil {
		return nil, fmt.Errorf("invalid extension version %q: %w", version, err)
	}

	rel := path.Join(definitionDir, typ+".json")
	rc, err := res.Open(rel)
	if err != nil {
		return nil, fmt.Errorf("failed to open extension definition %s: %w", rel, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read extension definition %s: %w", rel, err)
	}

	var def definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse extension definition %s: %w", rel, err)
	}
	if def.Name == "" {
		return nil, fmt.Errorf("extension definition %s has no name", rel)
	}

	for _, imp := range def.Imports {
		if _, ok := rctx.Model(imp); !ok {
			return nil, fmt.Errorf("extension %s imports %s which is not resolved yet", def.Name, imp)
		}
	}

	model := &Model{
		Name:             def.Name,
		Version:          version,
		Vendor:           def.Vendor,
		Description:      def.Description,
		Types:            def.Types,
		Operations:       def.Operations,
		ConfigProperties: def.ConfigProperties,
		Imports:          def.Imports,
	}

	l.logger.Debug().
		Str("extension", model.Name).
		Str("version", model.Version).
		Int("operations", len(model.Operations)).
		Msg("Loaded extension definition")

	return model, nil
}
