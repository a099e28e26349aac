package genart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantAlterator(v Var) *Program {
	return &Program{Code: []Bytecode{{Op: OpLoad, A: varToBArg(v)}, {Op: OpStop}}}
}

func varToBArg(v Var) BArg {
	switch v.Kind {
	case VarFloat:
		return argFloat(v.F)
	case VarInt:
		return argInt(v.I)
	default:
		return argNone()
	}
}

func TestBuildFromInitialValues_CopiesDefaults(t *testing.T) {
	tl := &TraitList{Traits: []Trait{
		{Default: NewFloat(1), Alterator: constantAlterator(NewFloat(99))},
		{Default: NewFloat(2), Alterator: constantAlterator(NewFloat(98))},
	}}
	g := BuildFromInitialValues(tl)
	require.Len(t, g.Genes, 2)
	assert.Equal(t, NewFloat(1), g.Genes[0])
	assert.Equal(t, NewFloat(2), g.Genes[1])
}

func TestBuildFromSeed_SamplesEachTrait(t *testing.T) {
	tl := &TraitList{Traits: []Trait{
		{Default: NewFloat(0), Alterator: constantAlterator(NewFloat(11))},
		{Default: NewFloat(0), Alterator: constantAlterator(NewFloat(22))},
	}}
	g, err := BuildFromSeed(tl, 432)
	require.NoError(t, err)
	assert.Equal(t, NewFloat(11), g.Genes[0])
	assert.Equal(t, NewFloat(22), g.Genes[1])
}

func TestBuildFromSeed_IsPureFunction(t *testing.T) {
	tl := &TraitList{Traits: []Trait{
		{Default: NewFloat(0), Alterator: constantAlterator(NewFloat(3))},
	}}
	a, err := BuildFromSeed(tl, 7)
	require.NoError(t, err)
	b, err := BuildFromSeed(tl, 7)
	require.NoError(t, err)
	assert.Equal(t, a.Genes, b.Genes)
}

func TestBuildFromSeed_FallsBackOnShapeMismatch(t *testing.T) {
	tl := &TraitList{Traits: []Trait{
		{Default: NewFloat(5), Alterator: constantAlterator(NewBool(true))},
	}}
	g, err := BuildFromSeed(tl, 1)
	require.NoError(t, err)
	assert.Equal(t, NewFloat(5), g.Genes[0])
}

func TestCloneNextGene_AdvancesCursor(t *testing.T) {
	g := &Genotype{Genes: []Gene{NewFloat(1), NewFloat(2)}}
	assert.Equal(t, NewFloat(1), g.CloneNextGene())
	assert.Equal(t, NewFloat(2), g.CloneNextGene())
	g.ResetCursor()
	assert.Equal(t, NewFloat(1), g.CloneNextGene())
}

func TestCrossover_SplitsAtAPoint(t *testing.T) {
	a := &Genotype{Genes: []Gene{NewFloat(1), NewFloat(1), NewFloat(1)}}
	b := &Genotype{Genes: []Gene{NewFloat(2), NewFloat(2), NewFloat(2)}}
	prng := NewPRNG(1)
	child := Crossover(a, b, &prng)
	require.Len(t, child.Genes, 3)
	seenA, seenB := false, false
	for _, g := range child.Genes {
		if g.F == 1 {
			seenA = true
		}
		if g.F == 2 {
			seenB = true
		}
	}
	assert.True(t, seenA || seenB)
}

func TestNextGeneration_PreservesRequestedSize(t *testing.T) {
	tl := &TraitList{Traits: []Trait{
		{Default: NewFloat(0), Alterator: constantAlterator(NewFloat(1))},
	}}
	pop := []*Genotype{
		{Genes: []Gene{NewFloat(1)}},
		{Genes: []Gene{NewFloat(2)}},
		{Genes: []Gene{NewFloat(3)}},
	}
	prng := NewPRNG(5)
	next, err := NextGeneration(pop, 6, tl, 0.1, 10, &prng)
	require.NoError(t, err)
	assert.Len(t, next, 6)
}

func TestNextGeneration_CopiesParentsVerbatim(t *testing.T) {
	tl := &TraitList{Traits: []Trait{
		{Default: NewFloat(0), Alterator: constantAlterator(NewFloat(1))},
	}}
	pop := []*Genotype{
		{Genes: []Gene{NewFloat(1)}},
		{Genes: []Gene{NewFloat(2)}},
		{Genes: []Gene{NewFloat(3)}},
	}
	prng := NewPRNG(5)
	next, err := NextGeneration(pop, 5, tl, 0.1, 10, &prng)
	require.NoError(t, err)
	require.Len(t, next, 5)
	for i, parent := range pop {
		assert.Equal(t, parent.Genes, next[i].Genes)
	}
}

func TestNextGeneration_ReadsRatesFromConfig(t *testing.T) {
	tl := &TraitList{Traits: []Trait{
		{Default: NewFloat(0), Alterator: constantAlterator(NewFloat(1))},
	}}
	pop := []*Genotype{
		{Genes: []Gene{NewFloat(1)}},
		{Genes: []Gene{NewFloat(2)}},
		{Genes: []Gene{NewFloat(3)}},
	}
	cfg := NewConfig()
	prng := NewPRNG(5)
	next, err := NextGeneration(pop, 5, tl, float32(cfg.GetFloat("gene.mutation_rate")), cfg.GetInt("gene.max_distinct_retries"), &prng)
	require.NoError(t, err)
	assert.Len(t, next, 5)
}

func TestNextGeneration_EmptyPopulationErrors(t *testing.T) {
	prng := NewPRNG(1)
	_, err := NextGeneration(nil, 3, &TraitList{}, 0.1, 10, &prng)
	assert.Error(t, err)
}

func TestNextGeneration_SizeSmallerThanParentsErrors(t *testing.T) {
	prng := NewPRNG(1)
	pop := []*Genotype{{Genes: []Gene{NewFloat(1)}}, {Genes: []Gene{NewFloat(2)}}}
	_, err := NextGeneration(pop, 1, &TraitList{}, 0.1, 10, &prng)
	assert.Error(t, err)
}

func TestBuildPopulation_FirstIndividualIsInitialValues(t *testing.T) {
	tl := &TraitList{Traits: []Trait{
		{Default: NewFloat(7), Alterator: constantAlterator(NewFloat(99))},
	}}
	cfg := NewConfig()
	prng := NewPRNG(1)
	pop, err := BuildPopulation(tl, cfg, &prng)
	require.NoError(t, err)
	assert.Len(t, pop, cfg.GetInt("gene.population_size"))
	assert.Equal(t, NewFloat(7), pop[0].Genes[0])
}

func TestBuildPopulation_RemainingIndividualsAreSampled(t *testing.T) {
	tl := &TraitList{Traits: []Trait{
		{Default: NewFloat(0), Alterator: constantAlterator(NewFloat(42))},
	}}
	cfg := NewConfig()
	prng := NewPRNG(1)
	pop, err := BuildPopulation(tl, cfg, &prng)
	require.NoError(t, err)
	for _, g := range pop[1:] {
		assert.Equal(t, NewFloat(42), g.Genes[0])
	}
}
