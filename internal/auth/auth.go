// Package auth implements the authorization gate that every mutating
// kernel operation passes through.
//
// The bug class this closes: comparing a caller-supplied identity against a
// stored owner field and trusting the match. Presence of an identity value
// is insufficient - the caller must also prove control of it, and the proof
// is checked by the boundary verifier, never assumed.
//
// The gate enforces this by construction: record mutations require a Grant,
// and a Grant is constructible only inside this package, only after both
// the proof-of-control check and the identity-equality check succeed.
package auth

import (
	"crypto/ed25519"

	"github.com/roach88/strongbox/internal/fault"
	"github.com/roach88/strongbox/internal/identity"
)

// Credential is what a caller presents at the operation boundary:
// a claimed identity, the message its proof covers, and the proof itself.
type Credential struct {
	// ID is the claimed caller identity.
	ID identity.Identity

	// Message is the byte string the proof must cover. The dispatcher
	// derives it from the request so a proof cannot be replayed against
	// a different operation.
	Message []byte

	// Proof is the evidence of control, typically a signature over
	// Message by the key behind ID.
	Proof identity.Proof
}

// Verifier confirms cryptographic proof of control for a claimed identity.
//
// This is an external collaborator: the kernel trusts only its boolean
// result and never inspects proof bytes itself.
type Verifier interface {
	Verify(id identity.Identity, message []byte, proof identity.Proof) bool
}

// Ed25519Verifier treats identities as Ed25519 public keys and proofs as
// signatures over the credential message.
type Ed25519Verifier struct{}

// Verify reports whether proof is a valid Ed25519 signature of message by
// the key id.
func (Ed25519Verifier) Verify(id identity.Identity, message []byte, proof identity.Proof) bool {
	if len(proof) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(id[:]), message, proof)
}

// StaticVerifier attests a fixed set of identities regardless of proof.
// Test use only.
type StaticVerifier map[identity.Identity]bool

// Verify reports whether the identity is in the attested set.
func (v StaticVerifier) Verify(id identity.Identity, _ []byte, _ identity.Proof) bool {
	return v[id]
}

// Grant is evidence that RequireSigner succeeded for a specific identity.
// Only this package constructs Grants; holding one is the only way to
// reach a record mutation.
type Grant struct {
	signer identity.Identity
}

// Signer returns the identity the grant was issued for.
func (g Grant) Signer() identity.Identity { return g.signer }

// Covers reports whether the grant was issued for the given authority.
func (g Grant) Covers(required identity.Identity) bool {
	return !g.signer.IsZero() && g.signer.Equal(required)
}

// Gate verifies caller credentials against required authorities.
type Gate struct {
	verifier Verifier
}

// NewGate creates a gate backed by the given verifier.
func NewGate(v Verifier) *Gate {
	return &Gate{verifier: v}
}

// Attest checks only proof of control: the credential's proof must cover
// its message under the claimed identity. Callers that need an identity
// match as well should use RequireSigner.
func (g *Gate) Attest(cred Credential) (Grant, error) {
	if cred.ID.IsZero() {
		return Grant{}, fault.New(fault.CodeMissingAuthorization, "caller identity is zero")
	}
	if !g.verifier.Verify(cred.ID, cred.Message, cred.Proof) {
		return Grant{}, fault.New(fault.CodeMissingAuthorization, "caller identity is not attested")
	}
	return Grant{signer: cred.ID}, nil
}

// RequireSigner checks that the credential proves control of its identity
// and that the identity matches the required authority.
//
// Both failure modes are MISSING_AUTHORIZATION: an attacker probing the
// gate cannot distinguish "wrong key" from "right key, no proof". The
// checks run proof-first so an unproven identity is rejected even when it
// matches.
func (g *Gate) RequireSigner(cred Credential, required identity.Identity) (Grant, error) {
	if required.IsZero() {
		return Grant{}, fault.New(fault.CodeMissingAuthorization, "no required authority configured")
	}
	grant, err := g.Attest(cred)
	if err != nil {
		return Grant{}, err
	}
	if !grant.Covers(required) {
		return Grant{}, fault.New(fault.CodeMissingAuthorization, "caller is not the required authority")
	}
	return grant, nil
}
