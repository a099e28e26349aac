package genart

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSrc(t *testing.T, src string, seed uint32) (Var, *VM) {
	t.Helper()
	prog, _ := compileSrc(t, src)
	prng := NewPRNG(seed)
	vm := NewVM(prog, len(prog.GlobalNames), &prng)
	result, err := vm.Run()
	require.NoError(t, err)
	return result, vm
}

func TestVM_ArithmeticExpression(t *testing.T) {
	result, vm := runSrc(t, "(+ 1 2)", 1)
	assert.Equal(t, NewFloat(3), result)
	assert.Empty(t, vm.renderList.Packets)
}

func TestVM_RectEmitsOneGeometryPacket(t *testing.T) {
	result, vm := runSrc(t, "(rect)", 1)
	assert.Equal(t, NewBool(true), result)
	require.Len(t, vm.renderList.Packets, 1)
	assert.Equal(t, PacketGeometry, vm.renderList.Packets[0].Kind)
	assert.Len(t, vm.renderList.Packets[0].Vertices, 4)
}

func TestVM_DefineAndNth(t *testing.T) {
	result, _ := runSrc(t, "(define v [10.0 20.0 30.0]) (nth from: v)", 1)
	assert.Equal(t, NewFloat(10), result)
}

func TestVM_InterpCosMatchesUnscaledCosine(t *testing.T) {
	for _, x := range []float32{0, 0.2, 0.5, 1.0} {
		src := "(interp/cos t: " + formatFloat(x) + ")"
		result, _ := runSrc(t, src, 1)
		want := float32(math.Cos(float64(x)))
		assert.InDelta(t, want, result.F, 1e-5)
	}
}

func TestVM_LoopRunsOncePerElementAndEmitsGeometry(t *testing.T) {
	result, vm := runSrc(t, "(loop (i upto: 3.0) (rect))", 1)
	assert.Equal(t, NewInt(1), result)
	require.Len(t, vm.renderList.Packets, 1)
	// 4 iterations: first strip is 4 verts, each later one bridges in
	// with 2 degenerate verts plus its own 4.
	assert.Len(t, vm.renderList.Packets[0].Vertices, 4+3*(2+4))
}

func TestVM_GeneSamplingIsDeterministicForSeed(t *testing.T) {
	top, wt := parseTop(t, "{0.0 (gen/scalar)}")
	tl, err := ExtractTraits(top, wt)
	require.NoError(t, err)

	g1, err := BuildFromSeed(tl, 432)
	require.NoError(t, err)
	g2, err := BuildFromSeed(tl, 432)
	require.NoError(t, err)
	assert.Equal(t, g1.Genes, g2.Genes)

	g3, err := BuildFromSeed(tl, 922)
	require.NoError(t, err)
	assert.NotEqual(t, g1.Genes, g3.Genes)
}

func TestVM_MatrixPopWithoutPushErrors(t *testing.T) {
	_, err := runSrcErr(t, "(matrix/pop)", 1)
	assert.Error(t, err)
}

func runSrcErr(t *testing.T, src string, seed uint32) (Var, error) {
	t.Helper()
	prog, _ := compileSrc(t, src)
	prng := NewPRNG(seed)
	vm := NewVM(prog, len(prog.GlobalNames), &prng)
	return vm.Run()
}
