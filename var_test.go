package genart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVar_SameShape(t *testing.T) {
	assert.True(t, NewFloat(1).SameShape(NewFloat(2)))
	assert.False(t, NewFloat(1).SameShape(NewInt(1)))
	assert.True(t, NewColour(ColourRGB, 0, 0, 0, 1).SameShape(NewColour(ColourRGB, 1, 1, 1, 1)))
	assert.False(t, NewColour(ColourRGB, 0, 0, 0, 1).SameShape(NewColour(ColourHSL, 0, 0, 0, 1)))
}

func TestVar_Truthy(t *testing.T) {
	assert.True(t, NewBool(true).Truthy())
	assert.False(t, NewBool(false).Truthy())
	assert.False(t, NewInt(0).Truthy())
	assert.True(t, NewInt(1).Truthy())
	assert.False(t, NewVector(nil).Truthy())
	assert.True(t, NewVector([]Var{NewInt(1)}).Truthy())
	assert.True(t, NewV2D(0, 0).Truthy())
}

func TestVar_CloneDoesNotAliasVector(t *testing.T) {
	v := NewVector([]Var{NewInt(1), NewInt(2)})
	cp := v.Clone()
	cp.Vec[0] = NewInt(99)
	assert.Equal(t, int32(1), v.Vec[0].I)
	assert.Equal(t, int32(99), cp.Vec[0].I)
}

func TestVar_IsGeneShape(t *testing.T) {
	assert.True(t, NewFloat(1).IsGeneShape())
	assert.True(t, NewV2D(1, 2).IsGeneShape())
	assert.False(t, NewVector(nil).IsGeneShape())
	assert.False(t, Var{Kind: VarDebug}.IsGeneShape())
}
