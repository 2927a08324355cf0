package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/harun/atrium/internal/config"
	"github.com/harun/atrium/pkg/artifact"
	"github.com/harun/atrium/pkg/discovery"
	"github.com/harun/atrium/pkg/extension"
)

var validateCmd = &cobra.Command{
	Use:   "validate <dir>",
	Short: "Validate an artifact without deploying it",
	Long: `Load an artifact directory and resolve its extensions without
registering anything. Discovery warnings and errors are reported the same way
a deployment would report them.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)

	art, err := artifact.NewLoader(logger).Load(args[0])
	if err != nil {
		return fmt.Errorf("artifact validation failed: %w", err)
	}

	directory := extension.NewDirectory()
	directory.MustRegister(extension.NewNativeLoader(logger))
	if cfg.Loaders.RPC {
		directory.MustRegister(extension.NewRPCLoader(logger))
	}

	engine := discovery.NewEngine(logger, directory, extension.NewNativeLoader(logger))
	models, err := engine.DiscoverAll(cmd.Context(), art)
	if err != nil {
		return fmt.Errorf("artifact validation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Artifact %s %s is valid\n", art.Name(), art.Definition.Version)
	fmt.Fprintf(out, "Plugins: %d\n", len(art.Plugins))
	fmt.Fprintf(out, "Extensions: %d\n", len(models))
	for _, model := range models {
		fmt.Fprintf(out, "  %s %s\n", model.Name, model.Version)
	}
	return nil
}
