package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ignis/internal/driver"
)

func newCheckCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Run the lexer, parser, and checker only and report diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			src, err := readSource(path)
			if err != nil {
				return err
			}

			res, err := driver.Compile(driver.Options{
				Filename: path,
				Source:   src,
				Target:   driver.TargetNone,
				Log:      newLogger(flags.verbose),
			})
			if err != nil {
				return err
			}
			if res.Reporter.HasErrors() {
				os.Exit(1)
			}
			if res.Reporter.HasWarnings() {
				fmt.Fprintln(os.Stdout, "check passed with warnings")
				return nil
			}
			fmt.Fprintln(os.Stdout, "check passed")
			return nil
		},
	}
}
