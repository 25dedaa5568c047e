package cli

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/strongbox/internal/auth"
	"github.com/roach88/strongbox/internal/config"
	"github.com/roach88/strongbox/internal/dispatch"
	"github.com/roach88/strongbox/internal/identity"
	"github.com/roach88/strongbox/internal/store"
	"github.com/roach88/strongbox/internal/vault"
)

// env bundles the live pieces a vault command needs: configuration, the
// store, and a dispatcher whose clock resumes from the stored trail.
type env struct {
	cfg        *config.Config
	store      *store.Store
	dispatcher *dispatch.Dispatcher
	out        *OutputFormatter
}

func newEnv(opts *RootOptions, cmd *cobra.Command) (*env, error) {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load configuration", err)
	}

	authority, err := cfg.RecoveryAuthority()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load configuration", err)
	}

	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	st, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open store", err)
	}

	ledger, err := vault.NewLedger(auth.NewGate(auth.Ed25519Verifier{}), authority,
		vault.WithLogger(log))
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "build ledger", err)
	}

	last, err := st.LastSeq(context.Background())
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "resume clock", err)
	}

	d, err := dispatch.New(st, ledger,
		dispatch.WithClock(dispatch.NewClockAt(last)),
		dispatch.WithDefaultCapacity(cfg.Vault.DefaultCapacity),
		dispatch.WithLogger(log))
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "build dispatcher", err)
	}

	out.VerboseLog("store %s, resuming at seq %d", cfg.Storage.Path, last)
	return &env{cfg: cfg, store: st, dispatcher: d, out: out}, nil
}

func (e *env) Close() error {
	return e.store.Close()
}

// dispatchSigned signs the request with the given key file and dispatches
// it. Operation faults are rendered and converted to ExitFailure.
func (e *env) dispatchSigned(keyPath string, op dispatch.OpCode, payload []byte) (*dispatch.Outcome, error) {
	priv, id, err := loadKey(keyPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load key", err)
	}

	message := dispatch.SigningMessage(op, payload)
	req := dispatch.Request{
		Op:      op,
		Payload: payload,
		Caller:  id,
		Proof:   ed25519.Sign(priv, message),
	}
	out, err := e.dispatcher.Dispatch(context.Background(), req)
	if err != nil {
		return nil, e.out.Fault(err)
	}
	return out, nil
}

// loadKey reads a hex-encoded Ed25519 seed and derives the key pair.
func loadKey(path string) (ed25519.PrivateKey, identity.Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, identity.Zero, err
	}
	seed, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, identity.Zero, fmt.Errorf("key file %s is not hex: %w", path, err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, identity.Zero, fmt.Errorf("key file %s holds %d bytes, want %d", path, len(seed), ed25519.SeedSize)
	}

	priv := ed25519.NewKeyFromSeed(seed)
	id, err := identity.FromBytes(priv.Public().(ed25519.PublicKey))
	if err != nil {
		return nil, identity.Zero, err
	}
	return priv, id, nil
}

func parseHandle(arg string) (uuid.UUID, error) {
	handle, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid handle %q", arg))
	}
	return handle, nil
}
