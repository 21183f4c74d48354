package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sigil/internal/codec"
	"github.com/roach88/sigil/internal/compiler"
)

// RecordInfo summarizes one record for inspect output.
type RecordInfo struct {
	Name          string `json:"name"`
	Discriminator string `json:"discriminator"` // hex
	Fixed         bool   `json:"fixed"`
	Size          int    `json:"size"` // total size when fixed, minimum otherwise
}

// InspectResult is the inspect command payload.
type InspectResult struct {
	Types    int                        `json:"types"`
	Records  []RecordInfo               `json:"records"`
	Warnings []compiler.ValidationError `json:"warnings,omitempty"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <schema-path>",
		Short: "Show compiled record layouts",
		Long: `Compile a schema and report each record's discriminator and wire
size: the exact size for fixed layouts, the minimum size otherwise.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runInspect(opts *RootOptions, schemaPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	s, loadResult, loadErr := LoadSchema(schemaPath)
	if loadErr != nil {
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		return NewExitError(ExitCommandError, loadErr.Error())
	}
	formatter.VerboseLog("Loaded %d schema file(s) from %s", loadResult.FileCount, schemaPath)

	coder, err := codec.NewCoder(s)
	if err != nil {
		return failCodec(formatter, err)
	}

	result := InspectResult{
		Types:    len(s.Defs),
		Warnings: compiler.ShadowWarnings(s),
	}
	for _, entry := range coder.Table().Entries() {
		info := RecordInfo{
			Name:          entry.Name,
			Discriminator: hex.EncodeToString(entry.Discriminator),
		}
		if n, ok := entry.Layout.FixedSize(); ok {
			info.Fixed = true
			info.Size = len(entry.Discriminator) + n
		} else {
			info.Size = len(entry.Discriminator) + entry.Layout.MinSize()
		}
		result.Records = append(result.Records, info)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%d type(s), %d record(s)\n", result.Types, len(result.Records))
	for _, info := range result.Records {
		kind := "min"
		if info.Fixed {
			kind = "fixed"
		}
		fmt.Fprintf(formatter.Writer, "  %-20s disc=%s %s=%d\n", info.Name, info.Discriminator, kind, info.Size)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(formatter.Writer, "  warning %s: %s\n", w.Code, w.Message)
	}
	return nil
}
