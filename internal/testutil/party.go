// Package testutil provides deterministic fixtures for kernel tests:
// named key pairs and credential signing helpers.
//
// Determinism matters here for the same reason it does in the audit trail:
// the same scenario must produce byte-identical traces so golden files can
// compare them exactly.
package testutil

import (
	"crypto/ed25519"
	"crypto/sha256"

	"github.com/roach88/strongbox/internal/auth"
	"github.com/roach88/strongbox/internal/identity"
)

// Party is a named test identity with its signing key.
//
// The key pair is derived from the name, so "alice" is the same identity
// in every test run and every scenario file.
type Party struct {
	Name string
	ID   identity.Identity
	priv ed25519.PrivateKey
}

// NewParty derives a deterministic Ed25519 key pair from a name.
func NewParty(name string) Party {
	seed := sha256.Sum256([]byte("strongbox-test-party:" + name))
	priv := ed25519.NewKeyFromSeed(seed[:])
	id, err := identity.FromBytes(priv.Public().(ed25519.PublicKey))
	if err != nil {
		// Size mismatch is impossible for a well-formed Ed25519 key.
		panic(err)
	}
	return Party{Name: name, ID: id, priv: priv}
}

// Credential returns a fully proven credential over the given message.
func (p Party) Credential(message []byte) auth.Credential {
	return auth.Credential{
		ID:      p.ID,
		Message: message,
		Proof:   ed25519.Sign(p.priv, message),
	}
}

// BareCredential returns a credential that claims the identity without any
// proof of control. Used to exercise the missing-signer-check class.
func (p Party) BareCredential(message []byte) auth.Credential {
	return auth.Credential{ID: p.ID, Message: message}
}

// ForgedCredential returns a credential claiming this party's identity but
// proven with another party's key.
func (p Party) ForgedCredential(message []byte, signer Party) auth.Credential {
	return auth.Credential{
		ID:      p.ID,
		Message: message,
		Proof:   ed25519.Sign(signer.priv, message),
	}
}
