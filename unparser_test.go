package genart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnparse_ScalarSiteSubstitutesGene(t *testing.T) {
	top, wt := parseTop(t, "(rect width: {1.0 (gen/scalar)})")
	g := &Genotype{Genes: []Gene{NewFloat(9.5)}}
	out, err := Unparse(top, wt, g)
	require.NoError(t, err)
	assert.Equal(t, "(rect width: {9.5 (gen/scalar)})", out)
}

func TestUnparse_PreservesNonAlterableTextVerbatim(t *testing.T) {
	src := "(define  x   10.0) ; a comment\n"
	top, wt := parseTop(t, src)
	g := &Genotype{}
	out, err := Unparse(top, wt, g)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestUnparse_ConsecutiveScalarSitesInsideVector(t *testing.T) {
	top, wt := parseTop(t, "[{1.0 (gen/scalar)} {2.0 (gen/scalar)}]")
	g := &Genotype{Genes: []Gene{NewFloat(5), NewFloat(6)}}
	out, err := Unparse(top, wt, g)
	require.NoError(t, err)
	assert.Equal(t, "[{5 (gen/scalar)} {6 (gen/scalar)}]", out)
}

func TestSimplify_DropsBracesKeepsDefault(t *testing.T) {
	top, _ := parseTop(t, "(rect width: {1.0 (gen/scalar)})")
	out, err := Simplify(top)
	require.NoError(t, err)
	assert.Equal(t, "(rect width: 1.0)", out)
}

func TestSimplify_NestedAlterableInDefault(t *testing.T) {
	top, _ := parseTop(t, "{[{1.0 (gen/scalar)}] (gen/scalar)}")
	out, err := Simplify(top)
	require.NoError(t, err)
	assert.Equal(t, "[1.0]", out)
}

func TestUnparse_RoundTripsThroughReparse(t *testing.T) {
	top, wt := parseTop(t, "{1.0 (gen/scalar)} {2.0 (gen/scalar)} {3.0 (gen/scalar)}")
	tl, err := ExtractTraits(top, wt)
	require.NoError(t, err)
	g, err := BuildFromSeed(tl, 922)
	require.NoError(t, err)

	out, err := Unparse(top, wt, g)
	require.NoError(t, err)

	reparsed, rewt := parseTop(t, out)
	rtl, err := ExtractTraits(reparsed, rewt)
	require.NoError(t, err)
	require.Len(t, rtl.Traits, 3)
	for i, tr := range rtl.Traits {
		assert.Equal(t, g.Genes[i], tr.Default)
	}
}
