// Package scripthost names the scripting-host binding spec.md §1 treats
// as an external collaborator: the mechanism by which user-authored test
// scenarios drive the workload (picking which actions run, in what
// order, against which tables). No implementation is specified; the
// interface is the contract actual bindings (Lua, a DSL, an embedded
// interpreter) must satisfy.
package scripthost

import "context"

// ScriptHost loads and runs a user scenario against an already-
// constructed workload. Load and Main are separate because a typical
// embedding parses/compiles the script once (surfacing syntax errors
// early) and may run Main multiple times, or not at all if only a
// dry-run validation was requested.
type ScriptHost interface {
	// Load parses and prepares the script at path, without running it.
	Load(path string) error
	// Main runs the loaded script's entry point to completion or ctx
	// cancellation.
	Main(ctx context.Context) error
}
