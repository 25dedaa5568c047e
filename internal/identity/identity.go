// Package identity defines the caller credential types shared across the
// kernel.
//
// An Identity is an opaque 32-byte public key. It is equality-comparable
// and carries no proof of control by itself: possession of an identity
// value means nothing until the authorization gate has verified an
// accompanying proof.
package identity

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// Size is the fixed identity width in bytes (an Ed25519 public key).
const Size = 32

// Identity is an opaque caller credential.
// The zero value is reserved and never a valid authority.
type Identity [Size]byte

// Zero is the reserved all-zero identity.
var Zero Identity

// Parse decodes a 64-character hex string into an Identity.
func Parse(s string) (Identity, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Zero, fmt.Errorf("parse identity: %w", err)
	}
	return FromBytes(raw)
}

// FromBytes copies exactly Size bytes into an Identity.
func FromBytes(raw []byte) (Identity, error) {
	if len(raw) != Size {
		return Zero, fmt.Errorf("parse identity: want %d bytes, got %d", Size, len(raw))
	}
	var id Identity
	copy(id[:], raw)
	return id, nil
}

// String returns the lowercase hex encoding.
func (id Identity) String() string {
	return hex.EncodeToString(id[:])
}

// Equal reports whether two identities are the same key.
func (id Identity) Equal(other Identity) bool {
	return bytes.Equal(id[:], other[:])
}

// IsZero reports whether the identity is the reserved zero value.
func (id Identity) IsZero() bool {
	return id == Zero
}

// Proof is caller-supplied evidence of control over an identity,
// typically a signature over the request's signing message. The kernel
// never interprets proof bytes itself; only a Verifier does.
type Proof []byte
