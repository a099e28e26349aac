package genart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilePreamble_RegistersExpectedGlobals(t *testing.T) {
	_, slots, order, err := CompilePreamble()
	require.NoError(t, err)
	for _, name := range []string{
		"col/white", "col/black", "col/red", "col/green", "col/blue",
		"brush/flat", "brush/round", "brush/textured",
		"ease/linear", "ease/in", "ease/out", "ease/in-out",
	} {
		_, ok := slots[name]
		assert.True(t, ok, "missing global %q", name)
	}
	assert.Len(t, order, len(slots))
}

func TestCompilePreamble_ColourGlobalsAreUsableByMainProgram(t *testing.T) {
	preProg, slots, order, err := CompilePreamble()
	require.NoError(t, err)

	mainTop, mainWt := parseTop(t, "col/red")
	mainProg, err := Compile(mainTop, mainWt, CompileOptions{
		SeedGlobals:     slots,
		SeedGlobalOrder: order,
	})
	require.NoError(t, err)

	prng := NewPRNG(1)
	vm := NewVM(mainProg, len(mainProg.GlobalNames), &prng)
	_, err = vm.RunProgram(preProg)
	require.NoError(t, err)
	result, err := vm.RunProgram(mainProg)
	require.NoError(t, err)

	require.Equal(t, VarColour, result.Kind)
	assert.Equal(t, float32(1), result.E0)
	assert.Equal(t, float32(0), result.E1)
	assert.Equal(t, float32(0), result.E2)
}
