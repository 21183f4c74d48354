package cli

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sigil/internal/codec"
	"github.com/roach88/sigil/internal/schema"
	"github.com/roach88/sigil/internal/store"
)

// StoredRecord is one store entry in command output.
type StoredRecord struct {
	Address   string          `json:"address"`
	Record    string          `json:"record"`
	Bytes     string          `json:"bytes,omitempty"` // hex
	Value     json.RawMessage `json:"value,omitempty"` // canonical JSON
	WrittenAt string          `json:"written_at,omitempty"`
}

// NewStoreCommand creates the store command group.
func NewStoreCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Keep encoded records in a SQLite store",
		Long: `Store subcommands persist encoded records in a SQLite database,
addressed by caller-chosen or generated identifiers, and query them by
record name or binary prefix filter.`,
	}

	cmd.PersistentFlags().StringVar(&dbPath, "db", "sigil.db", "SQLite database path")

	cmd.AddCommand(newStorePutCommand(rootOpts, &dbPath))
	cmd.AddCommand(newStoreGetCommand(rootOpts, &dbPath))
	cmd.AddCommand(newStoreListCommand(rootOpts, &dbPath))
	cmd.AddCommand(newStoreScanCommand(rootOpts, &dbPath))
	cmd.AddCommand(newStoreRemoveCommand(rootOpts, &dbPath))

	return cmd
}

func newStorePutCommand(rootOpts *RootOptions, dbPath *string) *cobra.Command {
	var address string
	var inputPath string

	cmd := &cobra.Command{
		Use:   "put <schema-path> <record>",
		Short: "Encode a JSON value and store it",
		Long: `Encode a JSON value as the named record and store the encoding.
Without --address a fresh time-ordered address is generated; with it,
an existing record at that address is replaced.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			s, coder, err := LoadCoder(formatter, args[0])
			if err != nil {
				return err
			}
			record := args[1]

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

			return withStore(formatter, *dbPath, func(ctx context.Context, st *store.Store) error {
				addr, err := st.Put(ctx, address, record, encoded)
				if err != nil {
					return storeFailure(formatter, err)
				}
				if formatter.Format == "json" {
					return formatter.Success(StoredRecord{
						Address: addr,
						Record:  record,
						Bytes:   hex.EncodeToString(encoded),
					})
				}
				fmt.Fprintln(formatter.Writer, addr)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "store address (generated when empty)")
	cmd.Flags().StringVarP(&inputPath, "input", "i", "-", "JSON value file (- for stdin)")

	return cmd
}

func newStoreGetCommand(rootOpts *RootOptions, dbPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "get <schema-path> <address>",
		Short:         "Fetch and decode a stored record",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			_, coder, err := LoadCoder(formatter, args[0])
			if err != nil {
				return err
			}

			return withStore(formatter, *dbPath, func(ctx context.Context, st *store.Store) error {
				rec, err := st.Get(ctx, args[1])
				if err != nil {
					return storeFailure(formatter, err)
				}
				out, err := decodedRecord(coder, rec)
				if err != nil {
					return failCodec(formatter, err)
				}
				if formatter.Format == "json" {
					return formatter.Success(out)
				}
				fmt.Fprintf(formatter.Writer, "%s %s %s\n", out.Address, out.Record, out.Value)
				return nil
			})
		},
	}

	return cmd
}

func newStoreListCommand(rootOpts *RootOptions, dbPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ls <schema-path> <record>",
		Short:         "List stored records by record name",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			_, coder, err := LoadCoder(formatter, args[0])
			if err != nil {
				return err
			}

			return withStore(formatter, *dbPath, func(ctx context.Context, st *store.Store) error {
				recs, err := st.List(ctx, args[1])
				if err != nil {
					return storeFailure(formatter, err)
				}
				return outputStoredRecords(formatter, coder, recs)
			})
		},
	}

	return cmd
}

func newStoreScanCommand(rootOpts *RootOptions, dbPath *string) *cobra.Command {
	var extraHex string

	cmd := &cobra.Command{
		Use:   "scan <schema-path> <record>",
		Short: "Scan stored records by binary prefix filter",
		Long: `Scan the store with the record's prefix filter, matching on raw
encoded bytes rather than the record name column. With --extra, the
pattern extends past the discriminator.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			_, coder, err := LoadCoder(formatter, args[0])
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
			filter, err := coder.PrefixFilter(args[1], extra...)
			if err != nil {
				return failCodec(formatter, err)
			}

			return withStore(formatter, *dbPath, func(ctx context.Context, st *store.Store) error {
				recs, err := st.Scan(ctx, filter)
				if err != nil {
					return storeFailure(formatter, err)
				}
				return outputStoredRecords(formatter, coder, recs)
			})
		},
	}

	cmd.Flags().StringVar(&extraHex, "extra", "", "hex bytes appended to the discriminator pattern")

	return cmd
}

func newStoreRemoveCommand(rootOpts *RootOptions, dbPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "rm <address>",
		Short:         "Delete a stored record",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			return withStore(formatter, *dbPath, func(ctx context.Context, st *store.Store) error {
				if err := st.Delete(ctx, args[0]); err != nil {
					return storeFailure(formatter, err)
				}
				if formatter.Format == "json" {
					return formatter.Success(map[string]string{"address": args[0]})
				}
				fmt.Fprintln(formatter.Writer, args[0])
				return nil
			})
		},
	}

	return cmd
}

// withStore opens the database, runs fn, and closes it.
func withStore(formatter *OutputFormatter, dbPath string, fn func(context.Context, *store.Store) error) error {
	st, err := store.Open(dbPath)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("open store: %v", err), nil)
		return NewExitError(ExitCommandError, err.Error())
	}
	defer st.Close()
	return fn(context.Background(), st)
}

// storeFailure reports a store-level error. Absent addresses are data
// failures; everything else is a command error.
func storeFailure(formatter *OutputFormatter, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		_ = formatter.Error(ErrCodeRecordNotFound, err.Error(), nil)
		return NewExitError(ExitFailure, err.Error())
	}
	_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
	return NewExitError(ExitCommandError, err.Error())
}

func decodedRecord(coder *codec.Coder, rec store.Record) (StoredRecord, error) {
	name, v, err := coder.DecodeAny(rec.Data)
	if err != nil {
		return StoredRecord{}, err
	}
	canonical, err := schema.MarshalCanonical(v)
	if err != nil {
		return StoredRecord{}, err
	}
	return StoredRecord{
		Address:   rec.Address,
		Record:    name,
		Bytes:     hex.EncodeToString(rec.Data),
		Value:     json.RawMessage(canonical),
		WrittenAt: rec.WrittenAt,
	}, nil
}

func outputStoredRecords(formatter *OutputFormatter, coder *codec.Coder, recs []store.Record) error {
	out := make([]StoredRecord, 0, len(recs))
	for _, rec := range recs {
		sr, err := decodedRecord(coder, rec)
		if err != nil {
			return failCodec(formatter, err)
		}
		out = append(out, sr)
	}
	if formatter.Format == "json" {
		return formatter.Success(out)
	}
	for _, sr := range out {
		fmt.Fprintf(formatter.Writer, "%s %s %s\n", sr.Address, sr.Record, sr.Value)
	}
	return nil
}
