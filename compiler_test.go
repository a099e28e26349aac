package genart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileSrc(t *testing.T, src string) (*Program, *WordTable) {
	t.Helper()
	top, wt := parseTop(t, src)
	prog, err := Compile(top, wt, CompileOptions{})
	require.NoError(t, err)
	return prog, wt
}

func TestCompile_DefineRegistersGlobal(t *testing.T) {
	prog, _ := compileSrc(t, "(define x 10.0) x")
	require.Len(t, prog.GlobalNames, 1)
	assert.Equal(t, "x", prog.GlobalNames[0])
}

func TestCompile_FunctionDefinitionAndCall(t *testing.T) {
	prog, _ := compileSrc(t, "(fn (square n: 0.0) (* n n)) (square n: 4.0)")
	prng := NewPRNG(1)
	vm := NewVM(prog, len(prog.GlobalNames), &prng)
	result, err := vm.Run()
	require.NoError(t, err)
	assert.Equal(t, NewFloat(16), result)
}

func TestCompile_SeededGlobalsShareSlots(t *testing.T) {
	preTop, preWt := parseTop(t, "(define pi 3.0)")
	preProg, err := Compile(preTop, preWt, CompileOptions{})
	require.NoError(t, err)

	mainTop, mainWt := parseTop(t, "pi")
	seedSlots := map[string]int32{}
	for i, name := range preProg.GlobalNames {
		seedSlots[name] = int32(i)
	}
	mainProg, err := Compile(mainTop, mainWt, CompileOptions{
		SeedGlobals:     seedSlots,
		SeedGlobalOrder: preProg.GlobalNames,
	})
	require.NoError(t, err)

	prng := NewPRNG(1)
	vm := NewVM(mainProg, len(mainProg.GlobalNames), &prng)
	_, err = vm.RunProgram(preProg)
	require.NoError(t, err)
	result, err := vm.RunProgram(mainProg)
	require.NoError(t, err)
	assert.Equal(t, NewFloat(3), result)
}
