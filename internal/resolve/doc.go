// Package resolve turns symbolic host targets into absolute addresses.
//
// A Target names a function either by module-relative offset
// ("game.exe+0x16F3DF0", or "+0x16F3DF0" for the main executable) or by
// export ("KERNEL32!CreateMutexA"). A Resolver looks the module up and
// returns the address the patcher should attach to.
//
// Process resolves against the current process and is only available on
// Windows. Static is a fixed table used by the simulator and the tests.
package resolve
