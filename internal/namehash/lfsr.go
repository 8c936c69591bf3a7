package namehash

const (
	lfsrInitial   uint32 = 0xFFFFFFFF
	lfsrUpperTaps uint32 = 0x10215681
	// The lower taps are the upper taps rotated by 16 bits.
	lfsrLowerTaps uint32 = 0x56811021
)

// LFSR is the 64-bit dual shift-register hash (Family B).
type LFSR struct {
	mode CaseMode
}

// NewLFSR returns an LFSR hash that folds input bytes with mode.
func NewLFSR(mode CaseMode) *LFSR {
	return &LFSR{mode: mode}
}

// Name implements Algorithm.
func (l *LFSR) Name() string {
	switch l.mode {
	case CaseLower:
		return PresetLFSRLower
	case CaseUpper:
		return PresetLFSRUpper
	default:
		return PresetLFSR
	}
}

// Width implements Algorithm.
func (l *LFSR) Width() int { return 64 }

// Mode returns the configured case folding.
func (l *LFSR) Mode() CaseMode { return l.mode }

// Sum implements Algorithm.
func (l *LFSR) Sum(b []byte) Hash {
	lower, upper := lfsrInitial, lfsrInitial
	for _, c := range b {
		c = l.mode.fold(c)
		lower ^= uint32(c)
		upper ^= uint32(c)
		for i := 0; i < 8; i++ {
			lower = lfsrStep(lower, lfsrLowerTaps)
			upper = lfsrStep(upper, lfsrUpperTaps)
		}
	}
	return Hash(^(uint64(upper)<<32 | uint64(lower)))
}

func lfsrStep(x, taps uint32) uint32 {
	if x&1 != 0 {
		return (x >> 1) ^ taps
	}
	return x >> 1
}
