package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	genart "github.com/clarete/genart/go"
)

type args struct {
	seed            *uint
	debug           *bool
	profiling       *bool
	packedTraitList *bool
}

func readArgs() *args {
	a := &args{
		seed:            flag.Uint("seed", 0, "Seed for genotype sampling"),
		debug:           flag.Bool("debug", false, "Print the source and disassembled bytecode, skip execution"),
		profiling:       flag.Bool("profiling", false, "Enable per-opcode counters and print a report after the run"),
		packedTraitList: flag.Bool("packed_trait_list", false, "Only compute the trait list, emit its packed textual representation"),
	}
	flag.UintVar(a.seed, "s", 0, "Shorthand for --seed")
	flag.BoolVar(a.debug, "d", false, "Shorthand for --debug")
	flag.BoolVar(a.profiling, "p", false, "Shorthand for --profiling")
	flag.BoolVar(a.packedTraitList, "t", false, "Shorthand for --packed_trait_list")
	flag.Parse()
	return a
}

func main() {
	a := readArgs()

	if flag.NArg() < 1 {
		log.Fatal("path to script not informed")
	}
	scriptPath := flag.Arg(0)

	src, err := os.ReadFile(scriptPath)
	if err != nil {
		log.Fatalf("can't open script: %s", err)
	}

	cfg := genart.NewConfig()
	genart.ApplyConfig(cfg)

	parser, err := genart.NewParser(src)
	if err != nil {
		log.Fatal(err)
	}
	top, err := parser.ParseProgram()
	if err != nil {
		log.Fatal(err)
	}
	wt := parser.WordTable()

	if *a.packedTraitList {
		traits, err := genart.ExtractTraits(top, wt)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(genart.PackTraitList(traits))
		return
	}

	preamble, seedGlobals, seedOrder, err := genart.CompilePreamble()
	if err != nil {
		log.Fatal(err)
	}

	traits, err := genart.ExtractTraits(top, wt)
	if err != nil {
		log.Fatal(err)
	}
	genotype, err := genart.BuildFromSeed(traits, uint32(*a.seed))
	if err != nil {
		log.Fatal(err)
	}

	prog, err := genart.Compile(top, wt, genart.CompileOptions{
		SeedGlobals:     seedGlobals,
		SeedGlobalOrder: seedOrder,
		Genotype:        genotype,
	})
	if err != nil {
		log.Fatal(err)
	}

	if *a.debug {
		fmt.Fprintln(os.Stderr, "-- source --")
		fmt.Fprintln(os.Stderr, string(src))
		fmt.Fprintln(os.Stderr, "-- preamble bytecode --")
		fmt.Print(preamble.PrettyStringColored())
		fmt.Fprintln(os.Stderr, "-- program bytecode --")
		fmt.Print(prog.PrettyStringColored())
		return
	}

	prng := genart.NewPRNG(uint32(*a.seed))
	vm := genart.NewVM(prog, len(prog.GlobalNames), &prng)
	vm.SetConfig(cfg)
	vm.Debug = *a.profiling

	if _, err := vm.RunProgram(preamble); err != nil {
		log.Fatal(err)
	}
	result, err := vm.RunProgram(prog)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(result.String())

	rl := vm.RenderList()
	fmt.Printf("render packets: %d\n", len(rl.Packets))
	for i, p := range rl.Packets {
		fmt.Printf("  [%d] %s vertices=%d bitmap=%q\n", i, p.Kind, len(p.Vertices), p.Bitmap)
	}

	if len(vm.Probes) > 0 {
		fmt.Printf("probes: %d\n", len(vm.Probes))
		for i, p := range vm.Probes {
			fmt.Printf("  [%d] %s\n", i, p.String())
		}
	}

	if *a.profiling {
		fmt.Println("opcode counts:")
		for i, count := range vm.OpCounts {
			if count == 0 {
				continue
			}
			fmt.Printf("  %-14s %d\n", genart.Opcode(i), count)
		}
	}
}
