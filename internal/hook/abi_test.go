package hook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameArg(t *testing.T) {
	f := &Frame{Args: []uintptr{0x10, 0x20}}

	v, err := f.Arg(1)
	require.NoError(t, err)
	assert.Equal(t, uintptr(0x20), v)

	_, err = f.Arg(2)
	assert.ErrorIs(t, err, ErrArgOutOfRange)
	_, err = f.Arg(-1)
	assert.ErrorIs(t, err, ErrArgOutOfRange)

	var nilFrame *Frame
	_, err = nilFrame.Arg(0)
	assert.ErrorIs(t, err, ErrArgOutOfRange, "nil frame must not panic")
}

func TestConventionSlot(t *testing.T) {
	assert.Equal(t, "ecx", X86Fastcall.Slot(0))
	assert.Equal(t, "edx", X86Fastcall.Slot(1))
	assert.Equal(t, "stack[0]", X86Fastcall.Slot(2))
	assert.Equal(t, "r8", X64MS.Slot(2))
	assert.Equal(t, "stack[1]", X86Stdcall.Slot(1))
}

func TestConventionByName(t *testing.T) {
	c, err := ConventionByName("x64-ms")
	require.NoError(t, err)
	assert.Equal(t, X64MS, c)

	_, err = ConventionByName("pascal")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown calling convention")
	assert.Contains(t, err.Error(), "x86-fastcall", "error should list known conventions")
}

func TestConventionNamesSorted(t *testing.T) {
	names := ConventionNames()
	assert.IsNonDecreasing(t, names)
	assert.Len(t, names, 6)
}

func TestLayout(t *testing.T) {
	assert.Equal(t, Layout{NameArg: 1, QualifierArg: 2}, Split(1, 2))
	assert.Equal(t, Layout{NameArg: 0, QualifierArg: -1}, Qualified(0))
}

func TestStringTable(t *testing.T) {
	st := NewStringTable()
	a := st.Put("chara/alisha")
	b := st.Put("TOMDLB_D")
	empty := st.Put("")

	assert.NotZero(t, a)
	assert.NotEqual(t, a, b, "addresses are never reused")
	assert.NotEqual(t, b, empty)

	s, err := st.CString(a)
	require.NoError(t, err)
	assert.Equal(t, "chara/alisha", s)

	s, err = st.CString(empty)
	require.NoError(t, err)
	assert.Equal(t, "", s)

	_, err = st.CString(0)
	assert.ErrorIs(t, err, ErrNullPointer)

	_, err = st.CString(a + 1)
	assert.ErrorIs(t, err, ErrBadAddress)
}
