package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
)

// NewIdentifyCommand creates the identify command.
func NewIdentifyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identify <schema-path> <hex>",
		Short: "Identify and decode a binary record by its prefix",
		Long: `Match a hex-encoded buffer against every record's discriminator, in
declaration order, and decode it as the first record whose
discriminator prefixes the buffer.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIdentify(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runIdentify(opts *RootOptions, schemaPath, hexData string, cmd *cobra.Command) error {
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

	name, v, err := coder.DecodeAny(buf)
	if err != nil {
		return failCodec(formatter, err)
	}
	return outputDecoded(formatter, name, v)
}
