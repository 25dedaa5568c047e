package fault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFault_Error_Formats(t *testing.T) {
	f := New(CodeInsufficientFunds, "amount exceeds balance")
	assert.Equal(t, "INSUFFICIENT_FUNDS: amount exceeds balance", f.Error())

	withOp := f.WithOp("withdraw")
	assert.Equal(t, "INSUFFICIENT_FUNDS: amount exceeds balance (op=withdraw)", withOp.Error())

	withBoth := withOp.WithHandle("vault-1")
	assert.Equal(t,
		"INSUFFICIENT_FUNDS: amount exceeds balance (op=withdraw, handle=vault-1)",
		withBoth.Error())
}

func TestFault_WithOp_DoesNotMutateOriginal(t *testing.T) {
	f := New(CodeNotActive, "record is closed")
	_ = f.WithOp("deposit").WithHandle("h")

	assert.Empty(t, f.Op)
	assert.Empty(t, f.Handle)
}

func TestFault_WithDetails(t *testing.T) {
	f := New(CodeInsufficientFunds, "amount exceeds balance")
	annotated := f.WithDetails(map[string]string{"amount": "150"})

	assert.Equal(t, "150", annotated.Details["amount"])
	assert.Nil(t, f.Details)

	// A nil map is a no-op rather than a fresh copy.
	assert.Same(t, f, f.WithDetails(nil))
}

func TestCodeOf_Wrapped(t *testing.T) {
	inner := New(CodeCapacityExceeded, "write past capacity")
	wrapped := fmt.Errorf("apply payload: %w", inner)

	code, ok := CodeOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, CodeCapacityExceeded, code)
}

func TestCodeOf_NonFault(t *testing.T) {
	_, ok := CodeOf(errors.New("disk on fire"))
	assert.False(t, ok)
}

func TestIs(t *testing.T) {
	err := Newf(CodeOutOfRange, "read [%d, %d) past length %d", 10, 20, 5)

	assert.True(t, Is(err, CodeOutOfRange))
	assert.False(t, Is(err, CodeCapacityExceeded))
	assert.False(t, Is(errors.New("plain"), CodeOutOfRange))
	assert.False(t, Is(nil, CodeOutOfRange))
}
