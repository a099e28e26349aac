package genart

// preambleSource is compiled once and run before every main program
// (spec §4.5 "Preamble"). It only declares globals — colour presets
// and the brush/easing enumerations a main program's `define`s refer
// to by name — so it never needs to be anything but a flat sequence
// of top-level `define`s.
const preambleSource = `
(define col/white (col/rgb r: 1 g: 1 b: 1 alpha: 1))
(define col/black (col/rgb r: 0 g: 0 b: 0 alpha: 1))
(define col/red (col/rgb r: 1 g: 0 b: 0 alpha: 1))
(define col/green (col/rgb r: 0 g: 1 b: 0 alpha: 1))
(define col/blue (col/rgb r: 0 g: 0 b: 1 alpha: 1))

(define brush/flat 0)
(define brush/round 1)
(define brush/textured 2)

(define ease/linear 0)
(define ease/in 1)
(define ease/out 2)
(define ease/in-out 3)
`

// CompilePreamble parses and compiles preambleSource, returning the
// compiled Program alongside its global table so a caller can feed
// them to Compile via CompileOptions.SeedGlobals/SeedGlobalOrder when
// compiling a main program, keeping both programs' Global memory
// segment slot numbers in agreement.
func CompilePreamble() (*Program, map[string]int32, []string, error) {
	p, err := NewParser([]byte(preambleSource))
	if err != nil {
		return nil, nil, nil, err
	}
	top, err := p.ParseProgram()
	if err != nil {
		return nil, nil, nil, err
	}
	prog, err := Compile(top, p.WordTable(), CompileOptions{})
	if err != nil {
		return nil, nil, nil, err
	}
	globals := make(map[string]int32, len(prog.GlobalNames))
	for i, name := range prog.GlobalNames {
		globals[name] = int32(i)
	}
	return prog, globals, prog.GlobalNames, nil
}
