// Package harness executes YAML conformance scenarios against a real
// dispatcher over an in-memory store.
//
// # Scenario Format
//
//	name: close_and_recover
//	description: "Closed vaults stay closed until the recovery authority acts"
//	recovery_authority: warden
//	steps:
//	  - op: initialize_vault
//	    caller: alice
//	    vault: main
//	    capacity: 64
//	  - op: withdraw
//	    caller: mallory
//	    vault: main
//	    amount: 10
//	    expect: MISSING_AUTHORIZATION
//	assertions:
//	  - type: balance
//	    vault: main
//	    balance: 0
//	  - type: state
//	    vault: main
//	    state: ACTIVE
//	  - type: audit_count
//	    outcome: MISSING_AUTHORIZATION
//	    count: 1
//
// Callers are named parties whose keys derive deterministically from the
// name, and vault labels map to fixed handles in order of first use, so a
// scenario produces a byte-identical audit trace on every run. Golden
// files compare that trace in canonical JSON form, with callers rendered
// as party names.
//
// Steps sign their requests with the caller's key. `unsigned: true` sends
// a bare identity claim; `signed_by` proves the request with a different
// party's key. Both exercise the signer-check rejection paths.
//
// An `expect` of OK (the default) means the step must succeed; any other
// value is the fault code the step must produce.
package harness
