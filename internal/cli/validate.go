package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sigil/internal/compiler"
	"github.com/roach88/sigil/internal/schema"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
	Warnings []compiler.ValidationError `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <schema-path>",
		Short: "Validate a schema without encoding anything",
		Long: `Validate a schema document and report every finding at once.

Checks type resolution, record declarations, discriminators and layout
compilability, and warns about discriminators that shadow each other.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, schemaPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loadResult, loadErr := LoadValue(schemaPath)
	if loadErr != nil {
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		return NewExitError(ExitCommandError, loadErr.Error())
	}

	formatter.VerboseLog("Loaded %d schema file(s) from %s", loadResult.FileCount, schemaPath)

	defs, records, err := compiler.ParseSchema(loadResult.CUEValue)
	if err != nil {
		_ = formatter.Error(ErrCodeCompile, err.Error(), nil)
		return NewExitError(ExitFailure, err.Error())
	}

	findings := compiler.Validate(defs, records)
	if len(findings) > 0 {
		return outputValidationErrors(formatter, findings)
	}

	// Shadow findings are advisory; a schema with them still loads.
	var warnings []compiler.ValidationError
	if s, err := schema.New(defs, records); err == nil {
		warnings = compiler.ShadowWarnings(s)
	}
	return outputValidateSuccess(formatter, warnings)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, warnings []compiler.ValidationError) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Warnings: warnings})
	}

	fmt.Fprintln(formatter.Writer, "✓ Schema valid")
	for _, w := range warnings {
		fmt.Fprintf(formatter.Writer, "  warning %s: %s\n", w.Code, w.Message)
	}
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:  false,
				Errors: errs,
			},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s %s: %s\n", err.Code, err.Field, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
