package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// rootFlags holds the flags shared across every subcommand.
type rootFlags struct {
	output    string
	keepFiles bool
	colorMode string
	verbose   bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "ignisc",
		Short:         "Compiler for the Ignis language",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return applyColorMode(flags.colorMode)
		},
	}

	root.PersistentFlags().StringVarP(&flags.output, "output", "o", "", "output file (default: derived from the input name)")
	root.PersistentFlags().BoolVarP(&flags.keepFiles, "keep-files", "k", false, "keep intermediate generated files")
	root.PersistentFlags().StringVar(&flags.colorMode, "color", "auto", "diagnostic color: auto, always, never")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log pipeline stage transitions and internal errors with a stack trace")

	root.AddCommand(
		newBuildCmd(flags),
		newCPPCmd(flags),
		newCheckCmd(flags),
		newASTCmd(flags),
	)
	return root
}

func applyColorMode(mode string) error {
	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	case "auto":
		// color.NoColor already defaults to the isatty-derived value fatih/color computes at init.
	default:
		return fmt.Errorf("invalid --color value %q: want auto, always, or never", mode)
	}
	return nil
}

func newLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetLevel(logrus.ErrorLevel)
	}
	return log
}

func readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// defaultOutput swaps ext onto path's basename, dropping any existing
// extension, for use when -o/--output was not given.
func defaultOutput(path, ext string) string {
	base := path
	for i := len(base) - 1; i >= 0 && base[i] != '/'; i-- {
		if base[i] == '.' {
			base = base[:i]
			break
		}
	}
	return base + ext
}
