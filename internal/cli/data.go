package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/strongbox/internal/dispatch"
)

// DataOptions holds flags for the write-data and read-data commands.
type DataOptions struct {
	*RootOptions
	Key  string
	Data string
	File string
}

// NewWriteDataCommand creates the write-data command.
func NewWriteDataCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DataOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "write-data <handle> <offset>",
		Short: "Write bytes into a vault's payload",
		Long: `Write bytes into a vault's payload at the given offset.

The write must fit inside the capacity fixed at initialization; anything
else is refused with CAPACITY_EXCEEDED before a single byte moves.

Examples:
  strongbox write-data <handle> 0 --data "hello" --key alice.key
  strongbox write-data <handle> 16 --file note.bin --key alice.key`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWriteData(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Key, "key", "", "owner key file (required)")
	_ = cmd.MarkFlagRequired("key")
	cmd.Flags().StringVar(&opts.Data, "data", "", "literal bytes to write")
	cmd.Flags().StringVar(&opts.File, "file", "", "file whose contents to write")
	cmd.MarkFlagsMutuallyExclusive("data", "file")
	cmd.MarkFlagsOneRequired("data", "file")
	return cmd
}

func runWriteData(opts *DataOptions, args []string, cmd *cobra.Command) error {
	handle, err := parseHandle(args[0])
	if err != nil {
		return err
	}
	offset, err := parseUint32(args[1], "offset")
	if err != nil {
		return err
	}

	data := []byte(opts.Data)
	if opts.File != "" {
		if data, err = os.ReadFile(opts.File); err != nil {
			return WrapExitError(ExitCommandError, "read data file", err)
		}
	}

	env, err := newEnv(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	out, err := env.dispatchSigned(opts.Key, dispatch.OpWriteData,
		dispatch.EncodeWritePayload(handle, offset, data))
	if err != nil {
		return err
	}
	return env.printOutcome(out)
}

// NewReadDataCommand creates the read-data command.
func NewReadDataCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DataOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "read-data <handle> <offset> <count>",
		Short: "Read bytes from a vault's payload",
		Long: `Read bytes from a vault's payload.

Reads are bounded by the written length, not the capacity: bytes that
were never written cannot be read back, even as zeroes. Payload contents
are owner-gated, so the signing key must own the vault.

Example:
  strongbox read-data <handle> 0 16 --key alice.key`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReadData(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Key, "key", "", "owner key file (required)")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func runReadData(opts *DataOptions, args []string, cmd *cobra.Command) error {
	handle, err := parseHandle(args[0])
	if err != nil {
		return err
	}
	offset, err := parseUint32(args[1], "offset")
	if err != nil {
		return err
	}
	count, err := parseUint32(args[2], "count")
	if err != nil {
		return err
	}

	env, err := newEnv(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	out, err := env.dispatchSigned(opts.Key, dispatch.OpReadData,
		dispatch.EncodeReadPayload(handle, offset, count))
	if err != nil {
		return err
	}
	return env.printOutcome(out)
}

func parseUint32(arg, name string) (uint32, error) {
	v, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid %s %q", name, arg))
	}
	return uint32(v), nil
}
