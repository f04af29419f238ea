package main

import (
	"os"

	"github.com/alecthomas/repr"
	"github.com/spf13/cobra"

	"ignis/internal/driver"
)

func newASTCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ast <file>",
		Short: "Parse a file and dump its syntax tree",
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
			repr.Println(res.Program)
			return nil
		},
	}
}
