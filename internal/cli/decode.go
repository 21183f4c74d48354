package cli

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sigil/internal/schema"
)

// DecodeResult is the decode/identify command payload.
type DecodeResult struct {
	Record string          `json:"record"`
	Value  json.RawMessage `json:"value"` // canonical JSON
}

// NewDecodeCommand creates the decode command.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	var unchecked bool

	cmd := &cobra.Command{
		Use:   "decode <schema-path> <record> <hex>",
		Short: "Decode a binary record as a JSON value",
		Long: `Decode a hex-encoded buffer as the named record and print its value
as canonical JSON. The buffer's discriminator prefix must match the
record unless --unchecked skips the check.`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(rootOpts, args[0], args[1], args[2], unchecked, cmd)
		},
	}

	cmd.Flags().BoolVar(&unchecked, "unchecked", false, "skip the discriminator check")

	return cmd
}

func runDecode(opts *RootOptions, schemaPath, record, hexData string, unchecked bool, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	_, coder, err := LoadCoder(formatter, schemaPath)
	if err != nil {
		return err
	}

	buf, err := hex.DecodeString(hexData)
	if err != nil {
		_ = formatter.Error(ErrCodeBadInput, fmt.Sprintf("invalid hex input: %v", err), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	var v schema.Value
	if unchecked {
		v, err = coder.DecodeUnchecked(record, buf)
	} else {
		v, err = coder.Decode(record, buf)
	}
	if err != nil {
		return failCodec(formatter, err)
	}

	return outputDecoded(formatter, record, v)
}

// outputDecoded renders a decoded value; decode and identify share it.
func outputDecoded(formatter *OutputFormatter, record string, v schema.Value) error {
	canonical, err := schema.MarshalCanonical(v)
	if err != nil {
		return failCodec(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(DecodeResult{
			Record: record,
			Value:  json.RawMessage(canonical),
		})
	}
	fmt.Fprintf(formatter.Writer, "%s %s\n", record, canonical)
	return nil
}
