// Package namehash implements the name-hashing algorithms used by the host
// engines to key their asset tables.
//
// Two families are supported and both must match the host bit-for-bit:
//
// Rolling (32-bit):
//
//	hash = hash ^ (b + (hash << 6) + (hash >> 2) - 0x61C88647)
//
// The accumulator starts at zero and every input byte is folded to ASCII
// upper case first unless folding is disabled. Some archive headers skip the
// outer XOR; NoXor reproduces that variant.
//
// LFSR (64-bit):
//
// Two 32-bit shift registers ("lower" and "upper") start at all ones. Each
// input byte is XORed into both registers, followed by eight single-bit steps
// with taps 0x56811021 (lower) and 0x10215681 (upper). The result is the
// complement of (upper << 32 | lower).
//
// Hashes are used purely as deduplication keys. Distinct names that collide
// are indistinguishable here; callers decide whether to detect that.
package namehash
