package cli

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/strongbox/internal/identity"
)

// KeygenOptions holds flags for the keygen command.
type KeygenOptions struct {
	*RootOptions
	Out string
}

// NewKeygenCommand creates the keygen command.
func NewKeygenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &KeygenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an Ed25519 key pair",
		Long: `Generate an Ed25519 key pair for signing vault operations.

The seed is written hex-encoded to the key file; the public identity is
printed. The identity is what vault records store as owner and what the
configuration names as recovery authority.

Examples:
  strongbox keygen --out alice.key
  strongbox keygen --out warden.key --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeygen(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Out, "out", "", "path for the private key file (required)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runKeygen(opts *KeygenOptions, cmd *cobra.Command) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	if _, err := os.Stat(opts.Out); err == nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("refusing to overwrite existing key file %s", opts.Out))
	}

	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return WrapExitError(ExitCommandError, "generate key", err)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	id, err := identity.FromBytes(priv.Public().(ed25519.PublicKey))
	if err != nil {
		return WrapExitError(ExitCommandError, "derive identity", err)
	}

	if err := os.WriteFile(opts.Out, []byte(hex.EncodeToString(seed)+"\n"), 0o600); err != nil {
		return WrapExitError(ExitCommandError, "write key file", err)
	}

	if opts.Format == "json" {
		return out.Success(map[string]string{"identity": id.String(), "key_file": opts.Out})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "identity: %s\nkey file: %s\n", id, opts.Out)
	return nil
}
