package genart

import "math"

// NativeParam is one entry of a builtin's ordered parameter schema:
// a label name and the default Var used when a caller doesn't
// provide that label (spec §4.7).
type NativeParam struct {
	Name    string
	Default Var
}

// NativeDef pairs a builtin's parameter schema with its handler.
type NativeDef struct {
	Params  []NativeParam
	Handler func(vm *VM, args []Var) (Var, error)
}

var nativeTable [int(NativeMatrixPop) + 1]NativeDef

func init() {
	white := NewColour(ColourRGB, 1, 1, 1, 1)

	nativeTable[NativeLine] = NativeDef{
		Params: []NativeParam{
			{"width", NewFloat(1)},
			{"from", NewV2D(0, 0)},
			{"to", NewV2D(0, 0)},
			{"colour", white},
		},
		Handler: func(vm *VM, a []Var) (Var, error) {
			from, to, width, colour := a[1], a[2], a[0], a[3]
			verts := lineVertices(from.F, from.F2, to.F, to.F2, width.F, colour)
			vm.renderList.AddTriangleStrip(PacketGeometry, "", verts)
			return NewBool(true), nil
		},
	}

	nativeTable[NativeCircle] = NativeDef{
		Params: []NativeParam{
			{"radius", NewFloat(1)},
			{"position", NewV2D(0, 0)},
			{"tessellation", NewFloat(10)},
			{"colour", white},
		},
		Handler: func(vm *VM, a []Var) (Var, error) {
			radius, pos, tess, colour := a[0], a[1], a[2], a[3]
			verts := circleVertices(pos.F, pos.F2, radius.F, int(tess.F), colour)
			vm.renderList.AddTriangleStrip(PacketGeometry, "", verts)
			return NewBool(true), nil
		},
	}

	nativeTable[NativeRect] = NativeDef{
		Params: []NativeParam{
			{"width", NewFloat(1)},
			{"height", NewFloat(1)},
			{"position", NewV2D(0, 0)},
			{"colour", white},
		},
		Handler: func(vm *VM, a []Var) (Var, error) {
			w, h, pos, colour := a[0], a[1], a[2], a[3]
			verts := quadVertices(pos.F, pos.F2, w.F, h.F, colour)
			vm.renderList.AddTriangleStrip(PacketGeometry, "", verts)
			return NewBool(true), nil
		},
	}

	nativeTable[NativeColRGB] = NativeDef{
		Params: []NativeParam{
			{"r", NewFloat(0)},
			{"g", NewFloat(0)},
			{"b", NewFloat(0)},
			{"alpha", NewFloat(1)},
		},
		Handler: func(vm *VM, a []Var) (Var, error) {
			return NewColour(ColourRGB, a[0].F, a[1].F, a[2].F, a[3].F), nil
		},
	}

	nativeTable[NativeColHSL] = NativeDef{
		Params: []NativeParam{
			{"h", NewFloat(0)},
			{"s", NewFloat(0)},
			{"l", NewFloat(0)},
			{"alpha", NewFloat(1)},
		},
		Handler: func(vm *VM, a []Var) (Var, error) {
			return NewColour(ColourHSL, a[0].F, a[1].F, a[2].F, a[3].F), nil
		},
	}

	nativeTable[NativeMathClamp] = NativeDef{
		Params: []NativeParam{
			{"value", NewFloat(0)},
			{"min", NewFloat(0)},
			{"max", NewFloat(1)},
		},
		Handler: func(vm *VM, a []Var) (Var, error) {
			v, lo, hi := a[0].F, a[1].F, a[2].F
			if v < lo {
				v = lo
			}
			if v > hi {
				v = hi
			}
			return NewFloat(v), nil
		},
	}

	nativeTable[NativePathLinear] = NativeDef{
		Params: []NativeParam{
			{"from", NewV2D(0, 0)},
			{"to", NewV2D(0, 0)},
			{"steps", NewFloat(10)},
		},
		Handler: func(vm *VM, a []Var) (Var, error) {
			from, to, steps := a[0], a[1], int(a[2].F)
			if steps < 1 {
				steps = 1
			}
			pts := make([]Var, 0, steps+1)
			for i := 0; i <= steps; i++ {
				t := float32(i) / float32(steps)
				x := from.F + (to.F-from.F)*t
				y := from.F2 + (to.F2-from.F2)*t
				pts = append(pts, NewV2D(x, y))
			}
			return NewVector(pts), nil
		},
	}

	nativeTable[NativeGenStray] = NativeDef{
		Params: []NativeParam{
			{"from", NewFloat(0)},
			{"by", NewFloat(0)},
		},
		Handler: func(vm *VM, a []Var) (Var, error) {
			from, by := a[0].F, a[1].F
			return NewFloat(from + vm.prng.NextFloat32Range(-by, by)), nil
		},
	}

	nativeTable[NativeGenScalar] = NativeDef{
		Params: nil,
		Handler: func(vm *VM, a []Var) (Var, error) {
			return NewFloat(vm.prng.NextFloat32()), nil
		},
	}

	nativeTable[NativeInterpCos] = NativeDef{
		Params: []NativeParam{
			{"t", NewFloat(0)},
		},
		Handler: func(vm *VM, a []Var) (Var, error) {
			return NewFloat(float32(math.Cos(float64(a[0].F)))), nil
		},
	}

	nativeTable[NativeProbe] = NativeDef{
		Params: []NativeParam{
			{"scalar", NewFloat(0)},
			{"scalar_v2", NewV2D(0, 0)},
		},
		Handler: func(vm *VM, a []Var) (Var, error) {
			vm.Probes = append(vm.Probes, a[0])
			return NewBool(true), nil
		},
	}

	nativeTable[NativeNth] = NativeDef{
		Params: []NativeParam{
			{"from", NewVector(nil)},
			{"n", NewInt(0)},
		},
		Handler: func(vm *VM, a []Var) (Var, error) {
			vec, n := a[0], int(a[1].I)
			if vec.Kind != VarVector || n < 0 || n >= len(vec.Vec) {
				return Var{}, newErr(ErrNative, "nth: index %d out of range (len %d)", n, len(vec.Vec))
			}
			return vec.Vec[n], nil
		},
	}

	nativeTable[NativeMatrixPush] = NativeDef{
		Params: []NativeParam{
			{"transform", NewV2D(0, 0)},
		},
		Handler: func(vm *VM, a []Var) (Var, error) {
			vm.matrixStack.Push(Translate(a[0].F, a[0].F2))
			return NewBool(true), nil
		},
	}

	nativeTable[NativeMatrixPop] = NativeDef{
		Params: nil,
		Handler: func(vm *VM, a []Var) (Var, error) {
			if err := vm.matrixStack.Pop(); err != nil {
				return Var{}, err
			}
			return NewBool(true), nil
		},
	}
}

// ApplyConfig updates the NATIVE parameter defaults that are
// configurable rather than fixed by the language (spec §4.7's
// render.tessellation_default), so a caller's Config takes effect for
// every VM built afterwards.
func ApplyConfig(cfg *Config) {
	nativeTable[NativeCircle].Params[2].Default = NewFloat(float32(cfg.GetInt("render.tessellation_default")))
}
