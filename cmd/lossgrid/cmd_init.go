package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/spboyer/lossgrid/internal/projectconfig"
)

const initHeader = `# lossgrid project configuration.
# Flags passed to "lossgrid render" override these values.
`

func newInitCommand() *cobra.Command {
	var dataPath string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default .lossgrid.yaml",
		Long: `Write a .lossgrid.yaml holding every setting at its default value.

If no directory is specified, the current directory is used. An existing
.lossgrid.yaml is never overwritten.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return initCommandE(cmd, dir, dataPath)
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "Dataset path to record in the new config")

	return cmd
}

func initCommandE(cmd *cobra.Command, dir, dataPath string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, projectconfig.FileName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists; remove it first to regenerate", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", path, err)
	}

	cfg := projectconfig.New()
	cfg.Dataset.Path = dataPath

	data, err := projectconfig.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := f.WriteString(initHeader); err == nil {
		_, err = f.Write(data)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path) //nolint:errcheck
	return nil
}
