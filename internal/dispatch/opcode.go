package dispatch

import (
	"fmt"

	"github.com/roach88/strongbox/internal/fault"
)

// OpCode selects the operation a request performs. The numeric values are
// part of the wire contract with hosts and never reassigned.
type OpCode uint8

const (
	// OpInitializeVault creates a new vault record owned by the caller.
	OpInitializeVault OpCode = 1

	// OpDeposit credits the vault balance.
	OpDeposit OpCode = 2

	// OpWithdraw debits the vault balance.
	OpWithdraw OpCode = 3

	// OpCloseVault closes a zero-balance vault.
	OpCloseVault OpCode = 4

	// OpRecoverVault reactivates a closed vault (recovery authority only).
	OpRecoverVault OpCode = 5

	// OpWriteData writes bytes into the vault payload.
	OpWriteData OpCode = 6

	// OpReadData reads bytes from the vault payload (owner only).
	OpReadData OpCode = 7

	// OpBalance reads the vault balance. Read-only and unauthenticated;
	// still gated by lifecycle state.
	OpBalance OpCode = 8
)

var opNames = map[OpCode]string{
	OpInitializeVault: "initialize_vault",
	OpDeposit:         "deposit",
	OpWithdraw:        "withdraw",
	OpCloseVault:      "close_vault",
	OpRecoverVault:    "recover_vault",
	OpWriteData:       "write_data",
	OpReadData:        "read_data",
	OpBalance:         "balance",
}

// String returns the stable operation name used in audit entries and
// scenario files.
func (c OpCode) String() string {
	if name, ok := opNames[c]; ok {
		return name
	}
	return fmt.Sprintf("op(%d)", uint8(c))
}

// ParseOpCode resolves an operation name back to its code.
func ParseOpCode(name string) (OpCode, error) {
	for code, n := range opNames {
		if n == name {
			return code, nil
		}
	}
	return 0, fault.Newf(fault.CodeInvalidOperation, "unknown operation %q", name)
}

// mutating reports whether the operation writes record state back to
// storage on success.
func (c OpCode) mutating() bool {
	switch c {
	case OpInitializeVault, OpDeposit, OpWithdraw, OpCloseVault, OpRecoverVault, OpWriteData:
		return true
	default:
		return false
	}
}
