package cmd

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/patchwork/pkg/config"
)

func init() {
	RegisterCommand(&Command{
		Name:  "config",
		Short: "Show resolved configuration",
		Long: `Show the session configuration resolved from patchwork.yaml.

The project root is the nearest directory, starting at DIR (default: the
current directory), that holds patchwork.yaml or go.mod. Missing settings
are shown with their defaults.`,
		Usage: "patchwork config [DIR]",
		Run:   runConfig,
	})
}

// resolvedFile mirrors patchwork.yaml with every default filled in.
type resolvedFile struct {
	Name    string               `yaml:"name"`
	Session config.SessionConfig `yaml:"session"`
	Log     config.LogConfig     `yaml:"log"`
}

func runConfig(args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	root, err := config.FindProjectRoot(dir)
	if err != nil {
		return err
	}
	cfg, err := config.Resolve(root)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	out, err := yaml.Marshal(resolvedFile{
		Name: cfg.Name,
		Session: config.SessionConfig{
			Protocol:       cfg.Protocol,
			StrictHooks:    cfg.StrictHooks,
			MaxFlushPasses: cfg.MaxFlushPasses,
		},
		Log: config.LogConfig{Verbose: cfg.Verbose},
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "# %s\n", root)
	_, err = stdout.Write(out)
	return err
}
