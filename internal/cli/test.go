package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sigil/internal/harness"
)

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test <scenario.yaml>...",
		Short: "Run codec conformance scenarios",
		Long: `Run YAML conformance scenarios against their schemas. Each case
encodes, decodes or identifies a value and checks the expected bytes,
round-trip value or failure category.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runTest(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	var results []*harness.Result
	failures := 0
	for _, path := range paths {
		scenario, err := harness.LoadScenario(path)
		if err != nil {
			_ = formatter.Error(ErrCodeBadInput, fmt.Sprintf("%s: %v", path, err), nil)
			return NewExitError(ExitCommandError, err.Error())
		}
		formatter.VerboseLog("Running scenario %q (%d cases)", scenario.Name, len(scenario.Cases))

		result, err := harness.Run(scenario)
		if err != nil {
			failures++
			if formatter.Format != "json" {
				fmt.Fprintf(formatter.Writer, "✗ %s: %v\n", scenario.Name, err)
			}
			continue
		}
		results = append(results, result)
		if formatter.Format != "json" {
			fmt.Fprintf(formatter.Writer, "✓ %s (%d cases)\n", scenario.Name, len(result.Cases))
		}
	}

	if formatter.Format == "json" {
		payload := map[string]any{
			"passed":  len(results),
			"failed":  failures,
			"results": results,
		}
		if failures > 0 {
			_ = formatter.Error(ErrCodeGeneric, fmt.Sprintf("%d scenario(s) failed", failures), payload)
			return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", failures))
		}
		return formatter.Success(payload)
	}

	if failures > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", failures))
	}
	return nil
}
