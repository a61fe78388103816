package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	flowerrors "github.com/codenodeio/flow/pkg/errors"
)

func TestNewPredicate(t *testing.T) {
	pred, err := NewPredicate[int](`function isEven(v) { return v % 2 === 0; }`, "isEven")
	require.NoError(t, err)

	assert.True(t, pred(4))
	assert.False(t, pred(3))
}

func TestNewPredicateCoercesTruthiness(t *testing.T) {
	pred, err := NewPredicate[string](`function nonEmpty(s) { return s; }`, "nonEmpty")
	require.NoError(t, err)

	assert.True(t, pred("hello"))
	assert.False(t, pred(""))
}

func TestNewMapper(t *testing.T) {
	double, err := NewMapper[int, int64](`function double(v) { return v * 2; }`, "double")
	require.NoError(t, err)

	assert.Equal(t, int64(6), double(3))
}

func TestNewMapperStringTransform(t *testing.T) {
	shout, err := NewMapper[string, string](`function shout(s) { return s + "!"; }`, "shout")
	require.NoError(t, err)

	assert.Equal(t, "hey!", shout("hey"))
}

func TestCompileRejectsEmptySource(t *testing.T) {
	_, err := NewPredicate[int]("", "f")
	require.Error(t, err)
	assert.ErrorIs(t, err, flowerrors.ErrInvalidScript)
}

func TestCompileRejectsEmptyEntry(t *testing.T) {
	_, err := NewPredicate[int](`function f(v) { return true; }`, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, flowerrors.ErrInvalidScript)
}

func TestCompileRejectsMissingEntryFunction(t *testing.T) {
	_, err := NewPredicate[int](`var x = 1;`, "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, flowerrors.ErrInvalidScript)
}

func TestCompileRejectsSyntaxError(t *testing.T) {
	_, err := NewMapper[int, int](`function broken( {`, "broken")
	require.Error(t, err)
}

func TestCallTimeErrorPanics(t *testing.T) {
	pred, err := NewPredicate[int](`function boom(v) { throw new Error("bad input"); }`, "boom")
	require.NoError(t, err)

	assert.Panics(t, func() { pred(1) })
}

func TestSandboxRemovesHostGlobals(t *testing.T) {
	pred, err := NewPredicate[int](`function hasRequire(v) { return typeof require !== "undefined"; }`, "hasRequire")
	require.NoError(t, err)

	assert.False(t, pred(0), "require must not be visible to scripts")

	pred, err = NewPredicate[int](`function hasProcess(v) { return typeof process !== "undefined"; }`, "hasProcess")
	require.NoError(t, err)
	assert.False(t, pred(0), "process must not be visible to scripts")
}

func TestStringHelpers(t *testing.T) {
	m, err := NewMapper[string, string](`function clean(s) { return upperCase(trimSpace(s)); }`, "clean")
	require.NoError(t, err)
	assert.Equal(t, "HELLO", m("  hello  "))

	title, err := NewMapper[string, string](`function t(s) { return titleCase(s); }`, "t")
	require.NoError(t, err)
	assert.Equal(t, "Hello World", title("hello world"))

	lower, err := NewMapper[string, string](`function l(s) { return lowerCase(s); }`, "l")
	require.NoError(t, err)
	assert.Equal(t, "hello", lower("HELLO"))
}
