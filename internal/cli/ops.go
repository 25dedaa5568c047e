package cli

import (
	"fmt"

	"github.com/roach88/strongbox/internal/dispatch"
)

// printOutcome renders a successful operation result.
func (e *env) printOutcome(out *dispatch.Outcome) error {
	if e.out.Format == "json" {
		return e.out.Success(out)
	}

	fmt.Fprintf(e.out.Writer, "op:      %s\n", out.Op)
	fmt.Fprintf(e.out.Writer, "handle:  %s\n", out.Handle)
	if out.State != "" {
		fmt.Fprintf(e.out.Writer, "state:   %s\n", out.State)
	}
	if out.Capacity > 0 {
		fmt.Fprintf(e.out.Writer, "capacity: %d\n", out.Capacity)
	}
	switch out.Op {
	case dispatch.OpDeposit.String(), dispatch.OpWithdraw.String(),
		dispatch.OpRecoverVault.String(), dispatch.OpBalance.String():
		fmt.Fprintf(e.out.Writer, "balance: %d\n", out.Balance)
	}
	if out.Op == dispatch.OpWriteData.String() || out.Op == dispatch.OpReadData.String() {
		fmt.Fprintf(e.out.Writer, "length:  %d\n", out.Length)
	}
	if out.Data != "" {
		fmt.Fprintf(e.out.Writer, "data:    %s\n", out.Data)
	}
	return nil
}
