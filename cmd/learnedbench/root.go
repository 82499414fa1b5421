package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hupe1980/learnedbench"
)

type rootFlags struct {
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:           "learnedbench",
		Short:         "benchmark learned multidimensional indexes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	pf.StringVar(&flags.logFormat, "log-format", "text", "log format: text or json")

	cmd.AddCommand(
		newGenCmd(&flags),
		newImportCmd(&flags),
		newRunCmd(&flags),
		newKindsCmd(),
	)
	return cmd
}

// logger builds the logger selected by the persistent flags. Logs go to
// stderr so reports on stdout stay machine readable.
func (f *rootFlags) logger(w io.Writer) (*learnedbench.Logger, error) {
	level, err := learnedbench.ParseLevel(f.logLevel)
	if err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}

	switch f.logFormat {
	case "text":
		return learnedbench.NewTextLogger(w, level), nil
	case "json":
		return learnedbench.NewJSONLogger(w, level), nil
	}
	return nil, fmt.Errorf("--log-format: want text or json, got %q", f.logFormat)
}
