package namehash

// rollingConstant is 2^32 / phi, subtracted on every step.
const rollingConstant uint32 = 0x61C88647

// RollingOptions configures the 32-bit rolling hash.
type RollingOptions struct {
	// FoldUpper maps ASCII a-z to A-Z before each step. All capture
	// variants enable it, which makes names case-insensitive.
	FoldUpper bool

	// NoXor drops the outer XOR with the previous accumulator.
	NoXor bool
}

// Rolling is the 32-bit rolling multiplicative hash (Family A).
type Rolling struct {
	opts RollingOptions
}

// NewRolling returns a Rolling hash with the given options.
func NewRolling(opts RollingOptions) *Rolling {
	return &Rolling{opts: opts}
}

// Name implements Algorithm.
func (r *Rolling) Name() string {
	switch {
	case r.opts.NoXor:
		return PresetRollingNoXor
	case !r.opts.FoldUpper:
		return PresetRollingCS
	default:
		return PresetRolling
	}
}

// Width implements Algorithm.
func (r *Rolling) Width() int { return 32 }

// Sum implements Algorithm.
func (r *Rolling) Sum(b []byte) Hash {
	return Hash(r.Append(0, b))
}

// Append continues a hash over b. Hashing "a" then "b" equals hashing "ab".
func (r *Rolling) Append(hash uint32, b []byte) uint32 {
	for _, c := range b {
		if r.opts.FoldUpper {
			c = CaseUpper.fold(c)
		}
		next := uint32(c) + (hash << 6) + (hash >> 2) - rollingConstant
		if r.opts.NoXor {
			hash = next
		} else {
			hash ^= next
		}
	}
	return hash
}
