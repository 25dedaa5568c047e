package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/strongbox/internal/dispatch"
)

// FundsOptions holds flags shared by the deposit and withdraw commands.
type FundsOptions struct {
	*RootOptions
	Key string
}

// NewDepositCommand creates the deposit command.
func NewDepositCommand(rootOpts *RootOptions) *cobra.Command {
	return newAmountCommand(rootOpts, dispatch.OpDeposit,
		"deposit <handle> <amount>",
		"Deposit funds into a vault",
		"strongbox deposit 7f3c2c4e-64f0-7cca-8001-0242ac120002 100 --key alice.key")
}

// NewWithdrawCommand creates the withdraw command.
func NewWithdrawCommand(rootOpts *RootOptions) *cobra.Command {
	return newAmountCommand(rootOpts, dispatch.OpWithdraw,
		"withdraw <handle> <amount>",
		"Withdraw funds from a vault",
		"strongbox withdraw 7f3c2c4e-64f0-7cca-8001-0242ac120002 30 --key alice.key")
}

func newAmountCommand(rootOpts *RootOptions, op dispatch.OpCode, use, short, example string) *cobra.Command {
	opts := &FundsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		Long:          short + ". Only the vault owner's key authorizes the move.\n\nExample:\n  " + example,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAmountOp(opts, op, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Key, "key", "", "owner key file (required)")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func runAmountOp(opts *FundsOptions, op dispatch.OpCode, args []string, cmd *cobra.Command) error {
	handle, err := parseHandle(args[0])
	if err != nil {
		return err
	}
	amount, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid amount %q", args[1]))
	}

	env, err := newEnv(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	out, err := env.dispatchSigned(opts.Key, op, dispatch.EncodeAmountPayload(handle, amount))
	if err != nil {
		return err
	}
	return env.printOutcome(out)
}

// NewBalanceCommand creates the balance command.
func NewBalanceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FundsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "balance <handle>",
		Short: "Read a vault's balance",
		Long: `Read a vault's balance.

The balance is lifecycle-gated but not owner-gated: any key can query it,
and the query is still recorded in the audit trail under the caller's
identity.

Example:
  strongbox balance 7f3c2c4e-64f0-7cca-8001-0242ac120002 --key alice.key`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBalance(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Key, "key", "", "caller key file (required)")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func runBalance(opts *FundsOptions, handleArg string, cmd *cobra.Command) error {
	handle, err := parseHandle(handleArg)
	if err != nil {
		return err
	}

	env, err := newEnv(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	out, err := env.dispatchSigned(opts.Key, dispatch.OpBalance, dispatch.EncodeHandlePayload(handle))
	if err != nil {
		return err
	}
	return env.printOutcome(out)
}
