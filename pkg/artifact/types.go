package artifact

// LoaderDescriptor identifies the extension loader that resolves a plugin's
// extension, together with the parameters handed to it. It is the structured
// discovery mechanism; plugins without one may still carry a legacy manifest.
type LoaderDescriptor struct {
	ID         string         `json:"id"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// ExtensionSection is the optional extension block of a plugin descriptor.
type ExtensionSection struct {
	Loader *LoaderDescriptor `json:"loader,omitempty"`
}

// Descriptor represents the plugin.json file structure
type Descriptor struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description string            `json:"description,omitempty"`
	Vendor      string            `json:"vendor,omitempty"`
	Extension   *ExtensionSection `json:"extension,omitempty"`
}

// Definition represents the artifact.json file structure. The plugins list
// is ordered; its order is the extension resolution order.
type Definition struct {
	Name              string   `json:"name"`
	Version           string   `json:"version"`
	Description       string   `json:"description,omitempty"`
	MinRuntimeVersion string   `json:"minRuntimeVersion,omitempty"`
	Plugins           []string `json:"plugins"`
}

// Plugin is a packaged contribution inside an artifact. It is constructed by
// the artifact loader before discovery begins and is immutable afterwards.
type Plugin struct {
	Name       string
	Descriptor Descriptor
	Resources  *LoadingContext
}

// LoaderDescriptor returns the plugin's structured loader descriptor, or nil
// when the plugin does not carry one.
func (p *Plugin) LoaderDescriptor() *LoaderDescriptor {
	if p.Descriptor.Extension == nil {
		return nil
	}
	return p.Descriptor.Extension.Loader
}

// Artifact is a deployable unit bundling one or more plugins plus runtime
// configuration. Plugins holds the plugins in their declared order.
type Artifact struct {
	Definition Definition
	Root       string
	Plugins    []*Plugin
}

// Name returns the artifact's declared name.
func (a *Artifact) Name() string {
	return a.Definition.Name
}

// Plugin returns the named plugin, or nil if the artifact does not bundle it.
func (a *Artifact) Plugin(name string) *Plugin {
	for _, p := range a.Plugins {
		if p.Name == name {
			return p
		}
	}
	return nil
}
