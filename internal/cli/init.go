package cli

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/strongbox/internal/dispatch"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	Key      string
	Capacity uint32
	Handle   string
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new vault",
		Long: `Initialize a new vault owned by the signing key.

The payload capacity is fixed at creation and can never change. With no
--capacity the configured default applies; with no --handle the host
assigns one.

Examples:
  strongbox init --key alice.key
  strongbox init --key alice.key --capacity 256
  strongbox init --key alice.key --handle 7f3c2c4e-64f0-7cca-8001-0242ac120002`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Key, "key", "", "owner key file (required)")
	_ = cmd.MarkFlagRequired("key")
	cmd.Flags().Uint32Var(&opts.Capacity, "capacity", 0, "payload capacity in bytes (0 = configured default)")
	cmd.Flags().StringVar(&opts.Handle, "handle", "", "explicit handle (default: host-assigned)")
	return cmd
}

func runInit(opts *InitOptions, cmd *cobra.Command) error {
	env, err := newEnv(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	handle := uuid.Nil
	if opts.Handle != "" {
		if handle, err = parseHandle(opts.Handle); err != nil {
			return err
		}
	}

	out, err := env.dispatchSigned(opts.Key, dispatch.OpInitializeVault,
		dispatch.EncodeInitPayload(handle, opts.Capacity))
	if err != nil {
		return err
	}
	return env.printOutcome(out)
}
