package namehash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollingKnownVectors(t *testing.T) {
	alg := NewRolling(RollingOptions{FoldUpper: true})

	tests := []struct {
		in   string
		want Hash
	}{
		{"", 0x00000000},
		{"a", 0x9E3779FA},
		{"A", 0x9E3779FA},
		{"abc.txt", 0x602E3A05},
		{"tex/a.dds", 0x3DD3626C},
		{"foo.bar", 0xC842CB7E},
		{"chara/alisha.TOMDLB_D", 0x579FB526},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SumString(alg, tt.in))
		})
	}
}

func TestRollingEmptyIsZeroState(t *testing.T) {
	for _, opts := range []RollingOptions{{}, {FoldUpper: true}, {NoXor: true}} {
		assert.Equal(t, Hash(0), NewRolling(opts).Sum(nil))
	}
}

func TestRollingCaseInsensitive(t *testing.T) {
	alg := NewRolling(RollingOptions{FoldUpper: true})
	assert.Equal(t, SumString(alg, "ABC.TXT"), SumString(alg, "abc.txt"))
}

func TestRollingCaseSensitiveWithoutFold(t *testing.T) {
	alg := NewRolling(RollingOptions{})
	assert.Equal(t, Hash(0x288978F2), SumString(alg, "abc.txt"))
	assert.NotEqual(t, SumString(alg, "ABC.TXT"), SumString(alg, "abc.txt"))
}

func TestRollingNoXor(t *testing.T) {
	alg := NewRolling(RollingOptions{FoldUpper: true, NoXor: true})
	assert.Equal(t, Hash(0x266B6EB5), SumString(alg, "abc.txt"))
	assert.Equal(t, Hash(0x880BBB9F), SumString(alg, "tex/a.dds"))
}

func TestRollingAppendIsIncremental(t *testing.T) {
	alg := NewRolling(RollingOptions{FoldUpper: true})
	h := alg.Append(0, []byte("tex/"))
	h = alg.Append(h, []byte("a.dds"))
	assert.Equal(t, SumString(alg, "tex/a.dds"), Hash(h))
}

func TestRollingNonASCIIUnchanged(t *testing.T) {
	alg := NewRolling(RollingOptions{FoldUpper: true})
	// 0xE9 is not an ASCII letter and must not be folded.
	assert.Equal(t, Hash(0xCD937B80), alg.Sum([]byte{0xE9, 'a'}))
	assert.Equal(t, alg.Sum([]byte{0xE9, 'A'}), alg.Sum([]byte{0xE9, 'a'}))
	assert.NotEqual(t, alg.Sum([]byte{0xC9}), alg.Sum([]byte{0xE9}))
}

func TestLFSRKnownVectors(t *testing.T) {
	tests := []struct {
		in    string
		none  Hash
		upper Hash
		lower Hash
	}{
		{"a", 0xEE63C6B3FB321542, 0xF25A6ED29353C97B, 0xEE63C6B3FB321542},
		{"Abc", 0xE31F4560D034F661, 0xE4ECDB939AEEEF71, 0xF2E643519074176C},
		{"tex/a.dds", 0xFF06270EE554E57B, 0xE10D155C83122A87, 0xFF06270EE554E57B},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.none, SumString(NewLFSR(CaseNone), tt.in))
			assert.Equal(t, tt.upper, SumString(NewLFSR(CaseUpper), tt.in))
			assert.Equal(t, tt.lower, SumString(NewLFSR(CaseLower), tt.in))
		})
	}
}

func TestLFSREmptyIsComplementOfInitialState(t *testing.T) {
	for _, mode := range []CaseMode{CaseNone, CaseLower, CaseUpper} {
		assert.Equal(t, Hash(0), NewLFSR(mode).Sum(nil), "mode %s", mode)
	}
}

func TestLFSRCaseModes(t *testing.T) {
	none := NewLFSR(CaseNone)
	assert.NotEqual(t, SumString(none, "Abc"), SumString(none, "abc"),
		"case-sensitive when folding is disabled")

	upper := NewLFSR(CaseUpper)
	assert.Equal(t, SumString(upper, "ABC"), SumString(upper, "Abc"))
	assert.Equal(t, SumString(upper, "ABC"), SumString(upper, "abc"))
	assert.Equal(t, SumString(none, "ABC"), SumString(upper, "abc"))
}

func TestDeterministicAcrossInstances(t *testing.T) {
	names := []string{"", "x", "scene/map01.TOSCNB", "\xff\x00\x7f"}
	for _, preset := range Presets {
		a, err := ByName(preset)
		require.NoError(t, err)
		b, err := ByName(preset)
		require.NoError(t, err)
		for _, n := range names {
			assert.Equal(t, a.Sum([]byte(n)), b.Sum([]byte(n)), "%s(%q)", preset, n)
		}
	}
}

func TestByName(t *testing.T) {
	tests := []struct {
		name  string
		want  string
		width int
	}{
		{"rolling", PresetRolling, 32},
		{"tlhash", PresetRolling, 32},
		{"rolling-cs", PresetRollingCS, 32},
		{"tlhash-noxor", PresetRollingNoXor, 32},
		{"zarc", PresetLFSR, 64},
		{"ZARC-Lower", PresetLFSRLower, 64},
		{"lfsr-upper", PresetLFSRUpper, 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alg, err := ByName(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, alg.Name())
			assert.Equal(t, tt.width, alg.Width())
		})
	}

	_, err := ByName("crc32")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown hash algorithm")
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, "tex/a.dds", Canonical("tex/a", "dds"))
	assert.Equal(t, "tex/a.dds", Canonical("tex/a.dds", ""))
}

func TestFormatParse(t *testing.T) {
	assert.Equal(t, "$602E3A05", Format(0x602E3A05, 32))
	assert.Equal(t, "$FF06270EE554E57B", Format(0xFF06270EE554E57B, 64))

	h, err := Parse("$602e3a05")
	require.NoError(t, err)
	assert.Equal(t, Hash(0x602E3A05), h)

	h, err = Parse("FF06270EE554E57B")
	require.NoError(t, err)
	assert.Equal(t, Hash(0xFF06270EE554E57B), h)

	_, err = Parse("$")
	assert.Error(t, err)
	_, err = Parse("$xyz")
	assert.Error(t, err)
}

func TestParseCaseMode(t *testing.T) {
	for in, want := range map[string]CaseMode{"": CaseNone, "none": CaseNone, "Lower": CaseLower, "upper": CaseUpper} {
		got, err := ParseCaseMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseCaseMode("title")
	assert.Error(t, err)
}
