package cmd

import (
	"fmt"

	"github.com/gophertribe/devtool/test"
	"github.com/spf13/cobra"
)

func TestCmd() *cobra.Command {
	return runCmd("test", "Run tests", test.Test)
}

func LintCmd() *cobra.Command {
	return runCmd("lint", "Run linting", test.Lint)
}

func IntegrationTestCmd() *cobra.Command {
	return runCmd("integration-test", "Run integration testing", test.Integ)
}

func runCmd(use, short string, fn func() error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := fn(); err != nil {
				return fmt.Errorf("%s failed: %w", use, err)
			}
			return nil
		},
	}
}
