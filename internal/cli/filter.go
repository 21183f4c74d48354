package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
)

// NewFilterCommand creates the filter command.
func NewFilterCommand(rootOpts *RootOptions) *cobra.Command {
	var extraHex string

	cmd := &cobra.Command{
		Use:   "filter <schema-path> <record>",
		Short: "Build a prefix filter for a record",
		Long: `Build a byte-prefix filter selecting every encoding of the named
record: offset 0, pattern = the record's discriminator. With --extra,
the given hex bytes extend the pattern to narrow the match, e.g. to a
fixed leading field value.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(rootOpts, args[0], args[1], extraHex, cmd)
		},
	}

	cmd.Flags().StringVar(&extraHex, "extra", "", "hex bytes appended to the discriminator pattern")

	return cmd
}

func runFilter(opts *RootOptions, schemaPath, record, extraHex string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	_, coder, err := LoadCoder(formatter, schemaPath)
	if err != nil {
		return err
	}

	var extra []byte
	if extraHex != "" {
		extra, err = hex.DecodeString(extraHex)
		if err != nil {
			_ = formatter.Error(ErrCodeBadInput, fmt.Sprintf("invalid --extra hex: %v", err), nil)
			return NewExitError(ExitCommandError, err.Error())
		}
	}

	filter, err := coder.PrefixFilter(record, extra...)
	if err != nil {
		return failCodec(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(filter)
	}
	fmt.Fprintf(formatter.Writer, "offset=%d pattern=%s\n", filter.Offset, hex.EncodeToString(filter.Pattern))
	return nil
}
