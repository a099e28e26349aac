package genart

import "fmt"

// Config is a flat, path-keyed settings map, grounded on the teacher's
// own Config type: each entry remembers its declared type and panics
// on a type-mismatched Get/Set, catching a wrong setting name or a
// wrong accessor at the call site instead of silently coercing.
type Config map[string]*cfgVal

// NewConfig returns a Config primed with every default this module's
// compiler, VM and genetic layer consult.
func NewConfig() *Config {
	m := make(Config)
	m.SetInt("vm.max_stack_depth", maxStackDepth)
	m.SetInt("render.tessellation_default", 10)
	m.SetFloat("gene.mutation_rate", 0.08)
	m.SetInt("gene.population_size", 12)
	m.SetInt("gene.max_distinct_retries", 10)
	m.SetBool("debug.disassemble", false)
	return &m
}

type cfgValType int

const (
	cfgValTypeUndefined cfgValType = iota
	cfgValTypeBool
	cfgValTypeInt
	cfgValTypeFloat
	cfgValTypeString
)

func (vt cfgValType) String() string {
	return map[cfgValType]string{
		cfgValTypeUndefined: "undefined",
		cfgValTypeBool:      "bool",
		cfgValTypeInt:       "int",
		cfgValTypeFloat:     "float",
		cfgValTypeString:    "string",
	}[vt]
}

type cfgVal struct {
	typ      cfgValType
	asBool   bool
	asInt    int
	asFloat  float64
	asString string
}

func (v *cfgVal) assignType(vt cfgValType) {
	if v.typ != vt && v.typ != cfgValTypeUndefined {
		panic(fmt.Sprintf("can't assign %q to a %q setting", vt, v.typ))
	}
	v.typ = vt
}

func (v *cfgVal) checkType(vt cfgValType) {
	if v.typ != vt {
		panic(fmt.Sprintf("can't retrieve %q from a %q setting", vt, v.typ))
	}
}

func (c *Config) SetBool(path string, v bool) {
	if _, ok := (*c)[path]; !ok {
		(*c)[path] = &cfgVal{}
	}
	(*c)[path].assignType(cfgValTypeBool)
	(*c)[path].asBool = v
}

func (c *Config) SetInt(path string, v int) {
	if _, ok := (*c)[path]; !ok {
		(*c)[path] = &cfgVal{}
	}
	(*c)[path].assignType(cfgValTypeInt)
	(*c)[path].asInt = v
}

func (c *Config) SetFloat(path string, v float64) {
	if _, ok := (*c)[path]; !ok {
		(*c)[path] = &cfgVal{}
	}
	(*c)[path].assignType(cfgValTypeFloat)
	(*c)[path].asFloat = v
}

func (c *Config) SetString(path string, v string) {
	if _, ok := (*c)[path]; !ok {
		(*c)[path] = &cfgVal{}
	}
	(*c)[path].assignType(cfgValTypeString)
	(*c)[path].asString = v
}

func (c *Config) GetBool(path string) bool {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValTypeBool)
		return val.asBool
	}
	panic(fmt.Sprintf("bool setting %q does not exist", path))
}

func (c *Config) GetInt(path string) int {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValTypeInt)
		return val.asInt
	}
	panic(fmt.Sprintf("int setting %q does not exist", path))
}

func (c *Config) GetFloat(path string) float64 {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValTypeFloat)
		return val.asFloat
	}
	panic(fmt.Sprintf("float setting %q does not exist", path))
}

func (c *Config) GetString(path string) string {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValTypeString)
		return val.asString
	}
	panic(fmt.Sprintf("string setting %q does not exist", path))
}
