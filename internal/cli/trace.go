package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Handle string
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the audit trail",
		Long: `Show the audit trail, in sequence order.

Every dispatched operation appears exactly once, successful or not, with
its specific fault code. Amounts, offsets and byte counts are recorded;
payload contents never are.

Examples:
  strongbox trace
  strongbox trace --handle 7f3c2c4e-64f0-7cca-8001-0242ac120002
  strongbox trace --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTraceCmd(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Handle, "handle", "", "filter to one vault")
	return cmd
}

func runTraceCmd(opts *TraceOptions, cmd *cobra.Command) error {
	if opts.Handle != "" {
		if _, err := parseHandle(opts.Handle); err != nil {
			return err
		}
	}

	env, err := newEnv(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	events, err := env.store.ReadAudit(context.Background(), opts.Handle)
	if err != nil {
		return WrapExitError(ExitCommandError, "read audit trail", err)
	}

	if opts.Format == "json" {
		return env.out.Success(events)
	}

	if len(events) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "audit trail is empty")
		return nil
	}
	for _, e := range events {
		fmt.Fprintf(cmd.OutOrStdout(), "%6d  %-16s  %-21s  %s", e.Seq, e.Op, e.Outcome, e.Handle)
		if len(e.Detail) > 0 {
			detail, err := e.MarshalDetail()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s", detail)
		}
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return nil
}
