// Package hook implements the interception side of the name dumper.
//
// Two detours are installed on host functions through a Patcher:
//
//   - Bootstrap sits on an early, content-irrelevant host function. Its first
//     invocation detaches it, runs a one-time initializer (which installs the
//     capture detours) and forwards the call. A compare-and-swap latch makes
//     the transition happen exactly once even if several host threads hit the
//     target at the same time; latecomers simply forward.
//
//   - Capture sits on the host's name-resolution function(s). It reads the
//     name and qualifier out of the call frame, hands the canonical name to a
//     Recorder, and always calls the original with the untouched frame.
//
// The native calling convention is confined to Convention and Layout: they
// say which argument slot holds which string, and Memory reads the strings.
// Everything else sees a plain (name, qualifier) callback.
//
// Patcher abstracts the function-patching primitive. Attach and Detach are
// staged in a transaction and take effect together at Commit. FuncTable is an
// in-process implementation that dispatches calls through registered Go
// functions; the scenario harness and the tests drive the hooks with it.
//
// Hooks run on host threads, so nothing in this package may panic across the
// hook boundary: capture failures are recovered and counted.
package hook
