package genart

// Genotype is an ordered sequence of genes, one per Trait in a
// program's TraitList, plus a read cursor the compiler advances as it
// walks the same tree in the same order (spec §3 "Genotype", §4.4).
type Genotype struct {
	Genes  []Gene
	cursor int
}

// CloneNextGene returns the next gene in sequence and advances the
// cursor. The compiler calls this once per alterable site visited, in
// tree order, so cursor position and TraitList position always agree.
func (g *Genotype) CloneNextGene() Gene {
	v := g.Genes[g.cursor].Clone()
	g.cursor++
	return v
}

// ResetCursor rewinds the gene cursor, so the same Genotype can
// compile more than one program (e.g. the alterator program during
// extraction, then the main program during rendering).
func (g *Genotype) ResetCursor() { g.cursor = 0 }

// BuildFromInitialValues builds a Genotype directly from a TraitList's
// default values, with no sampling — this is the "no genotype"
// rendering path expressed as an explicit Genotype so callers don't
// need a separate code path for "run with defaults".
func BuildFromInitialValues(tl *TraitList) *Genotype {
	genes := make([]Gene, len(tl.Traits))
	for i, t := range tl.Traits {
		genes[i] = t.Default
	}
	return &Genotype{Genes: genes}
}

// BuildFromSeed samples one gene per trait by running that trait's
// compiled alterator program against a PRNG seeded from seed (mixed
// with the trait's index, so every site draws from an independent
// stream). A sampled value that doesn't match its default's shape is
// rejected and the default is used instead (spec §4.4's shape
// invariant: "a gene substituted for a literal must keep that
// literal's Var kind").
func BuildFromSeed(tl *TraitList, seed uint32) (*Genotype, error) {
	genes := make([]Gene, len(tl.Traits))
	for i, t := range tl.Traits {
		prng := NewPRNG(seed ^ uint32(i)*0x1000193)
		vm := NewVM(t.Alterator, 0, &prng)
		result, err := vm.Run()
		if err != nil {
			return nil, err
		}
		if !result.SameShape(t.Default) {
			result = t.Default
		}
		genes[i] = result
	}
	return &Genotype{Genes: genes}, nil
}

// Crossover produces a child genotype by single-point recombination of
// two parents of identical length (same TraitList), splitting at a
// point drawn from prng.
func Crossover(a, b *Genotype, prng *PRNG) *Genotype {
	n := len(a.Genes)
	if n == 0 {
		return &Genotype{}
	}
	split := prng.NextIntn(n)
	genes := make([]Gene, n)
	for i := 0; i < n; i++ {
		if i < split {
			genes[i] = a.Genes[i].Clone()
		} else {
			genes[i] = b.Genes[i].Clone()
		}
	}
	return &Genotype{Genes: genes}
}

// Mutate returns a copy of g where each gene is independently
// resampled from its trait's alterator with probability rate.
func Mutate(g *Genotype, tl *TraitList, rate float32, prng *PRNG) (*Genotype, error) {
	genes := make([]Gene, len(g.Genes))
	copy(genes, g.Genes)
	for i, t := range tl.Traits {
		if prng.NextFloat32() >= rate {
			continue
		}
		sampleSeed := prng.NextUint64()
		sub := NewPRNG(uint32(sampleSeed))
		vm := NewVM(t.Alterator, 0, &sub)
		result, err := vm.Run()
		if err != nil {
			return nil, err
		}
		if result.SameShape(t.Default) {
			genes[i] = result
		}
	}
	return &Genotype{Genes: genes}, nil
}

// BuildPopulation builds the first generation for tl: index 0 is the
// initial-values individual (spec's "no genotype" rendering, exact
// literal defaults), and each remaining slot is sampled from its own
// seed drawn from seedPRNG, sized by cfg's gene.population_size (spec
// §4.4 "Population generation").
func BuildPopulation(tl *TraitList, cfg *Config, seedPRNG *PRNG) ([]*Genotype, error) {
	size := cfg.GetInt("gene.population_size")
	if size < 1 {
		return nil, newErr(ErrGene, "gene.population_size must be at least 1, got %d", size)
	}
	pop := make([]*Genotype, size)
	pop[0] = BuildFromInitialValues(tl)
	for i := 1; i < size; i++ {
		g, err := BuildFromSeed(tl, uint32(seedPRNG.NextUint64()))
		if err != nil {
			return nil, err
		}
		pop[i] = g
	}
	return pop, nil
}

// NextGeneration produces a population of size `size` from parents:
// parents are copied verbatim into indices [0, len(parents)) of the
// result, then every remaining slot is filled by crossing over and
// mutating two distinct parents chosen uniformly at random (spec §4.4
// "next_generation", §8 "children [0..|parents|) equal the parents").
// A second parent is resampled up to maxDistinctRetries times if it
// collides with the first; once retries are exhausted the second
// parent falls back to (a+1) mod len(parents), so the call always
// terminates. NextGeneration is a pure function of its arguments.
func NextGeneration(parents []*Genotype, size int, tl *TraitList, mutationRate float32, maxDistinctRetries int, prng *PRNG) ([]*Genotype, error) {
	if len(parents) == 0 {
		return nil, newErr(ErrGene, "cannot advance an empty population")
	}
	if size < len(parents) {
		return nil, newErr(ErrGene, "next generation size %d is smaller than parent count %d", size, len(parents))
	}

	next := make([]*Genotype, len(parents), size)
	copy(next, parents)

	for len(next) < size {
		a := prng.NextIntn(len(parents))
		b := prng.NextIntn(len(parents))
		for attempt := 0; attempt < maxDistinctRetries && b == a; attempt++ {
			b = prng.NextIntn(len(parents))
		}
		if b == a {
			b = (a + 1) % len(parents)
		}

		child := Crossover(parents[a], parents[b], prng)
		mutated, err := Mutate(child, tl, mutationRate, prng)
		if err != nil {
			return nil, err
		}
		next = append(next, mutated)
	}
	return next, nil
}
