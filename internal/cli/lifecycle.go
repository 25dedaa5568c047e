package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/strongbox/internal/dispatch"
)

// LifecycleOptions holds flags for the close and recover commands.
type LifecycleOptions struct {
	*RootOptions
	Key string
}

// NewCloseCommand creates the close command.
func NewCloseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LifecycleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "close <handle>",
		Short: "Close an emptied vault",
		Long: `Close a vault. The balance must be zero; closing with funds inside is
refused with NON_ZERO_BALANCE. A closed vault rejects every operation
until the recovery authority reopens it.

Example:
  strongbox close 7f3c2c4e-64f0-7cca-8001-0242ac120002 --key alice.key`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHandleOp(opts, dispatch.OpCloseVault, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Key, "key", "", "owner key file (required)")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

// NewRecoverCommand creates the recover command.
func NewRecoverCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LifecycleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "recover <handle>",
		Short: "Reopen a closed vault",
		Long: `Reopen a closed vault. Only the configured recovery authority may do
this; the owner cannot self-recover. The recovery is logged and audited
like every other operation.

Example:
  strongbox recover 7f3c2c4e-64f0-7cca-8001-0242ac120002 --key warden.key`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHandleOp(opts, dispatch.OpRecoverVault, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Key, "key", "", "recovery authority key file (required)")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func runHandleOp(opts *LifecycleOptions, op dispatch.OpCode, handleArg string, cmd *cobra.Command) error {
	handle, err := parseHandle(handleArg)
	if err != nil {
		return err
	}

	env, err := newEnv(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	out, err := env.dispatchSigned(opts.Key, op, dispatch.EncodeHandlePayload(handle))
	if err != nil {
		return err
	}
	return env.printOutcome(out)
}
