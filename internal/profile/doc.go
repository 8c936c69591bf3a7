// Package profile describes a host variant: which hash the catalog uses,
// where the bootstrap and capture hooks go, and how each capture target
// passes its strings.
//
// Profiles are YAML. A file is checked against the embedded CUE schema
// (profile.cue) before it is decoded, so typos and out-of-range values are
// reported with the offending path. Two profiles are built in; see Builtin.
package profile
