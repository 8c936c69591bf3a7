// Package lifecycle installs the name capture into a host process in two
// phases.
//
// Attach runs while the host's loader lock may be held, so it only resolves
// targets and arms the bootstrap detour. The real work (loading the catalog,
// opening its append handle and attaching every capture detour in one
// transaction) happens on the first call to the bootstrap target, from an
// ordinary host thread:
//
//	Unattached --Attach--> BootstrapArmed --first bootstrap call--> Initialized
//
// Any resolution failure is a compatibility error: the host build does not
// match the profile. It is returned as a *CompatError, logged at error level,
// and leaves the controller in Failed. The host keeps running unmodified.
package lifecycle
