// Package harness runs name-capture scenarios without a real host.
//
// A scenario names a profile, optionally seeds the catalog, and then drives a
// sequence of host calls: bootstrap calls on the profile's bootstrap target
// and name-resolution calls on one of its capture targets. Calls can be
// issued from several goroutines at once to exercise the one-shot bootstrap
// and the catalog's single-writer guarantees.
//
// The harness builds a fake host out of hook.FuncTable (the patcher and
// dispatch table), hook.StringTable (host memory) and resolve.Static (module
// and export addresses), then attaches a real lifecycle.Controller to it.
// Every call is checked for transparency: the caller must get back exactly
// what the original function returned, and the original must have run.
//
// Each step appends one TraceEvent. Traces are deterministic for a given
// scenario and are compared against golden files with RunWithGolden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
package harness
