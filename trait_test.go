package genart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseTop(t *testing.T, src string) ([]*Node, *WordTable) {
	t.Helper()
	p, err := NewParser([]byte(src))
	require.NoError(t, err)
	top, err := p.ParseProgram()
	require.NoError(t, err)
	return top, p.WordTable()
}

func TestExtractTraits_ScalarSite(t *testing.T) {
	top, wt := parseTop(t, "{1.5 (gen/scalar)}")
	tl, err := ExtractTraits(top, wt)
	require.NoError(t, err)
	require.Len(t, tl.Traits, 1)
	assert.Equal(t, NewFloat(1.5), tl.Traits[0].Default)
	assert.False(t, tl.Traits[0].WithinVector)
}

func TestExtractTraits_VectorSiteOnePerChild(t *testing.T) {
	top, wt := parseTop(t, "{[1.0 2.0 3.0] (gen/scalar)}")
	tl, err := ExtractTraits(top, wt)
	require.NoError(t, err)
	require.Len(t, tl.Traits, 3)
	assert.True(t, tl.Traits[0].WithinVector)
	assert.Equal(t, 0, tl.Traits[0].Index)
	assert.Equal(t, 1, tl.Traits[1].Index)
	assert.Equal(t, 2, tl.Traits[2].Index)
}

func TestExtractTraits_ConsecutiveScalarSitesAreNotWithinVector(t *testing.T) {
	top, wt := parseTop(t, "[{1.0 (gen/scalar)} {2.0 (gen/scalar)}]")
	tl, err := ExtractTraits(top, wt)
	require.NoError(t, err)
	require.Len(t, tl.Traits, 2)
	assert.False(t, tl.Traits[0].WithinVector)
	assert.False(t, tl.Traits[1].WithinVector)
}

func TestExtractTraits_NoSitesIsEmpty(t *testing.T) {
	top, wt := parseTop(t, "(+ 1 2)")
	tl, err := ExtractTraits(top, wt)
	require.NoError(t, err)
	assert.Empty(t, tl.Traits)
}

func TestExtractTraits_ColourDefaultIsCompiledAndRun(t *testing.T) {
	top, wt := parseTop(t, "{(col/rgb r: 1.0 g: 0.0 b: 0.0 alpha: 1.0) (gen/scalar)}")
	tl, err := ExtractTraits(top, wt)
	require.NoError(t, err)
	require.Len(t, tl.Traits, 1)
	assert.Equal(t, NewColour(ColourRGB, 1, 0, 0, 1), tl.Traits[0].Default)
}

func TestExtractTraits_NameDefaultStaysUnresolved(t *testing.T) {
	top, wt := parseTop(t, "{col/red (gen/scalar)}")
	tl, err := ExtractTraits(top, wt)
	require.NoError(t, err)
	require.Len(t, tl.Traits, 1)
	iname, ok := wt.Resolve("col/red")
	require.True(t, ok)
	assert.Equal(t, NewName(iname), tl.Traits[0].Default)
}

func TestExtractTraits_AlteratorCompilesToRunnableProgram(t *testing.T) {
	top, wt := parseTop(t, "{1.0 (gen/stray from: 0.0 by: 0.0)}")
	tl, err := ExtractTraits(top, wt)
	require.NoError(t, err)
	require.Len(t, tl.Traits, 1)

	prng := NewPRNG(1)
	vm := NewVM(tl.Traits[0].Alterator, 0, &prng)
	result, err := vm.Run()
	require.NoError(t, err)
	assert.Equal(t, NewFloat(0), result)
}
