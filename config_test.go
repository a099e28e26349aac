package genart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_SeedsDefaults(t *testing.T) {
	c := NewConfig()
	assert.Equal(t, maxStackDepth, c.GetInt("vm.max_stack_depth"))
	assert.Equal(t, 10, c.GetInt("render.tessellation_default"))
	assert.InDelta(t, 0.08, c.GetFloat("gene.mutation_rate"), 1e-9)
	assert.Equal(t, 12, c.GetInt("gene.population_size"))
	assert.Equal(t, 10, c.GetInt("gene.max_distinct_retries"))
	assert.False(t, c.GetBool("debug.disassemble"))
}

func TestConfig_SetAndGetRoundTrips(t *testing.T) {
	c := NewConfig()
	c.SetString("render.output_path", "/tmp/out.png")
	assert.Equal(t, "/tmp/out.png", c.GetString("render.output_path"))
}

func TestConfig_GetWrongTypePanics(t *testing.T) {
	c := NewConfig()
	assert.Panics(t, func() { c.GetString("vm.max_stack_depth") })
}

func TestConfig_SetWrongTypePanics(t *testing.T) {
	c := NewConfig()
	assert.Panics(t, func() { c.SetString("vm.max_stack_depth", "oops") })
}

func TestConfig_GetMissingPanics(t *testing.T) {
	c := NewConfig()
	assert.Panics(t, func() { c.GetInt("does.not.exist") })
}
