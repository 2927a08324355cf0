package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/harun/atrium/internal/config"
	"github.com/harun/atrium/pkg/artifact"
)

var deployForce bool

var deployCmd = &cobra.Command{
	Use:   "deploy <dir>",
	Short: "Deploy an artifact directory",
	Long: `Copy an artifact directory into the artifacts directory.
A running daemon picks the artifact up through its watcher; otherwise it is
deployed on the next start. The artifact is validated before copying.`,
	Args: cobra.ExactArgs(1),
	RunE: runDeploy,
}

func init() {
	deployCmd.Flags().BoolVar(&deployForce, "force", false, "replace the artifact if it is already deployed")
	rootCmd.AddCommand(deployCmd)
}

func runDeploy(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	source := args[0]
	quiet := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)

	art, err := artifact.NewLoader(quiet).Load(source)
	if err != nil {
		return fmt.Errorf("artifact validation failed: %w", err)
	}

	target := filepath.Join(cfg.ArtifactsDir, art.Name())
	if _, err := os.Stat(target); err == nil {
		if !deployForce {
			return fmt.Errorf("artifact %s is already deployed (use --force to replace)", art.Name())
		}
		if err := os.RemoveAll(target); err != nil {
			return fmt.Errorf("failed to remove previous deployment: %w", err)
		}
	}

	if err := copyTree(source, target); err != nil {
		return fmt.Errorf("failed to copy artifact: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deployed %s %s to %s\n", art.Name(), art.Definition.Version, target)
	return nil
}

// copyTree copies the directory rooted at src to dst, which must not exist.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}

		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()

		out, err := os.Create(target)
		if err != nil {
			return err
		}

		if _, err := io.Copy(out, in); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	})
}
