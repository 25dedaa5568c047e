package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/strongbox/internal/dispatch"
	"github.com/roach88/strongbox/internal/lifecycle"
)

// Scenario is one conformance test case: a sequence of operations with
// their expected outcomes, plus assertions over the final state and trace.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario demonstrates.
	Description string `yaml:"description"`

	// RecoveryAuthority is the party name configured as recovery
	// authority. Defaults to "warden".
	RecoveryAuthority string `yaml:"recovery_authority,omitempty"`

	// Steps are executed in order; each produces one audit entry.
	Steps []Step `yaml:"steps"`

	// Assertions validate final record state and the audit trail.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one operation request.
type Step struct {
	// Op is the operation name, e.g. "deposit".
	Op string `yaml:"op"`

	// Caller is the party issuing the request.
	Caller string `yaml:"caller"`

	// Vault is the label of the target vault. Labels map to fixed handles
	// in order of first use.
	Vault string `yaml:"vault,omitempty"`

	// Unsigned sends the caller's identity without any proof.
	Unsigned bool `yaml:"unsigned,omitempty"`

	// SignedBy proves the request with this party's key instead of the
	// caller's own.
	SignedBy string `yaml:"signed_by,omitempty"`

	Capacity uint32 `yaml:"capacity,omitempty"`
	Amount   uint64 `yaml:"amount,omitempty"`
	Offset   uint32 `yaml:"offset,omitempty"`
	Count    uint32 `yaml:"count,omitempty"`
	Data     string `yaml:"data,omitempty"`

	// Expect is the required outcome: empty or "OK" for success, a fault
	// code otherwise.
	Expect string `yaml:"expect,omitempty"`
}

// Assertion validates state after all steps ran.
type Assertion struct {
	// Type is "balance", "state", or "audit_count".
	Type string `yaml:"type"`

	// Vault names the target record (balance, state).
	Vault string `yaml:"vault,omitempty"`

	Balance uint64 `yaml:"balance,omitempty"`
	State   string `yaml:"state,omitempty"`

	// Outcome filters audit entries (audit_count); empty counts all.
	Outcome string `yaml:"outcome,omitempty"`
	Count   int    `yaml:"count"`
}

// Assertion type names.
const (
	AssertBalance    = "balance"
	AssertState      = "state"
	AssertAuditCount = "audit_count"
)

// LoadScenario reads and validates a scenario YAML file. Unknown fields
// are rejected so typos fail loudly instead of silently skipping checks.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Op == "" {
			return fmt.Errorf("steps[%d]: op is required", i)
		}
		if _, err := dispatch.ParseOpCode(step.Op); err != nil {
			return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
		}
		if step.Caller == "" {
			return fmt.Errorf("steps[%d]: caller is required", i)
		}
		if step.Vault == "" {
			return fmt.Errorf("steps[%d]: vault is required", i)
		}
		if step.Unsigned && step.SignedBy != "" {
			return fmt.Errorf("steps[%d]: unsigned and signed_by are mutually exclusive", i)
		}
	}

	for i, a := range s.Assertions {
		switch a.Type {
		case AssertBalance, AssertState:
			if a.Vault == "" {
				return fmt.Errorf("assertions[%d]: vault is required for %s", i, a.Type)
			}
			if a.Type == AssertState {
				if _, err := lifecycle.ParseState(a.State); err != nil {
					return fmt.Errorf("assertions[%d]: %w", i, err)
				}
			}
		case AssertAuditCount:
			if a.Count < 0 {
				return fmt.Errorf("assertions[%d]: count must be non-negative", i)
			}
		default:
			return fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
		}
	}
	return nil
}
