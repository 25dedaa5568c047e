package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/strongbox/internal/auth"
)

func TestNewParty_Deterministic(t *testing.T) {
	a1 := NewParty("alice")
	a2 := NewParty("alice")
	b := NewParty("bob")

	assert.True(t, a1.ID.Equal(a2.ID), "same name, same identity")
	assert.False(t, a1.ID.Equal(b.ID), "different names, different identities")
}

func TestCredentials(t *testing.T) {
	alice := NewParty("alice")
	bob := NewParty("bob")
	msg := []byte("op")

	v := auth.Ed25519Verifier{}

	cred := alice.Credential(msg)
	assert.True(t, v.Verify(cred.ID, cred.Message, cred.Proof))

	bare := alice.BareCredential(msg)
	assert.False(t, v.Verify(bare.ID, bare.Message, bare.Proof))

	forged := alice.ForgedCredential(msg, bob)
	assert.Equal(t, alice.ID, forged.ID)
	assert.False(t, v.Verify(forged.ID, forged.Message, forged.Proof))
}
