package cli

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/sigil/internal/schema"
)

// EncodeResult is the encode command payload.
type EncodeResult struct {
	Record string `json:"record"`
	Bytes  string `json:"bytes"` // hex
	Size   int    `json:"size"`
}

// NewEncodeCommand creates the encode command.
func NewEncodeCommand(rootOpts *RootOptions) *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "encode <schema-path> <record>",
		Short: "Encode a JSON value as a binary record",
		Long: `Encode a JSON value as the named record. The value is read from
stdin, or from a file with --input. Bytes fields take hex strings,
128-bit integers take decimal strings, options take null for absence.
The output is the discriminator-prefixed encoding in hex.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(rootOpts, args[0], args[1], inputPath, cmd)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "-", "JSON value file (- for stdin)")

	return cmd
}

func runEncode(opts *RootOptions, schemaPath, record, inputPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	s, coder, err := LoadCoder(formatter, schemaPath)
	if err != nil {
		return err
	}

	raw, err := readJSONValue(inputPath, cmd.InOrStdin())
	if err != nil {
		_ = formatter.Error(ErrCodeBadInput, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	v, err := schema.BindValue(s, schema.DefinedType{Name: record}, raw)
	if err != nil {
		return failCodec(formatter, err)
	}
	encoded, err := coder.Encode(record, v)
	if err != nil {
		return failCodec(formatter, err)
	}

	result := EncodeResult{
		Record: record,
		Bytes:  hex.EncodeToString(encoded),
		Size:   len(encoded),
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintln(formatter.Writer, result.Bytes)
	return nil
}

// readJSONValue parses one JSON value from a file or the given stdin
// reader. Numbers stay as json.Number so 64-bit values survive intact.
func readJSONValue(path string, stdin io.Reader) (any, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse JSON value: %w", err)
	}
	return raw, nil
}
