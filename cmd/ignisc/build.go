package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"ignis/internal/driver"
	"ignis/report"
)

func newBuildCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "build <file>",
		Short: "Compile to x86-64 NASM assembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCodegen(flags, args[0], driver.TargetNative, ".asm")
		},
	}
}

func newCPPCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "cpp <file>",
		Short: "Compile to portable C++17",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCodegen(flags, args[0], driver.TargetCPP, ".cpp")
		},
	}
}

func runCodegen(flags *rootFlags, path string, target driver.Target, ext string) error {
	src, err := readSource(path)
	if err != nil {
		return err
	}

	log := newLogger(flags.verbose)
	res, err := driver.Compile(driver.Options{
		Filename: path,
		Source:   src,
		Target:   target,
		Log:      log,
	})
	if err != nil {
		if flags.verbose {
			return fmt.Errorf("%+v", err)
		}
		return errors.Cause(err)
	}
	if res.Reporter.HasErrors() {
		return fmt.Errorf("compilation failed with %d error(s)", countErrors(res))
	}

	out := flags.output
	if out == "" {
		out = defaultOutput(path, ext)
	}
	if err := os.WriteFile(out, []byte(res.Output), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Fprintf(os.Stdout, "wrote %s\n", out)
	return nil
}

func countErrors(res *driver.Result) int {
	n := 0
	for _, d := range res.Reporter.Diagnostics() {
		if d.Severity == report.SeverityError {
			n++
		}
	}
	return n
}
