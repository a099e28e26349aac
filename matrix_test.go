package genart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatrix_IdentityApply(t *testing.T) {
	x, y := Identity().Apply(3, 4)
	assert.Equal(t, float32(3), x)
	assert.Equal(t, float32(4), y)
}

func TestMatrix_Translate(t *testing.T) {
	m := Translate(10, -5)
	x, y := m.Apply(1, 1)
	assert.InDelta(t, 11, x, 1e-5)
	assert.InDelta(t, -4, y, 1e-5)
}

func TestMatrix_Scale(t *testing.T) {
	m := Scale(2, 3)
	x, y := m.Apply(1, 1)
	assert.InDelta(t, 2, x, 1e-5)
	assert.InDelta(t, 3, y, 1e-5)
}

func TestMatrixStack_PushComposesAndPop(t *testing.T) {
	s := NewMatrixStack()
	assert.Equal(t, 1, s.Depth())

	s.Push(Translate(1, 0))
	s.Push(Translate(0, 1))
	assert.Equal(t, 3, s.Depth())

	x, y := s.Current().Apply(0, 0)
	assert.InDelta(t, 1, x, 1e-5)
	assert.InDelta(t, 1, y, 1e-5)

	s.Pop()
	assert.Equal(t, 2, s.Depth())
	x, y = s.Current().Apply(0, 0)
	assert.InDelta(t, 1, x, 1e-5)
	assert.InDelta(t, 0, y, 1e-5)
}

func TestMatrixStack_PopOnBaseIsError(t *testing.T) {
	s := NewMatrixStack()
	err := s.Pop()
	assert.Error(t, err)
	assert.Equal(t, 1, s.Depth())
}
