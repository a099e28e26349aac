package genart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderList_QuadVertices(t *testing.T) {
	white := NewColour(ColourRGB, 1, 1, 1, 1)
	verts := quadVertices(0, 0, 2, 2, white)
	assert.Len(t, verts, 4)
	for _, v := range verts {
		assert.Equal(t, float32(1), v.A)
	}
}

func TestRenderList_AddTriangleStripOpensNewPacket(t *testing.T) {
	rl := NewRenderList()
	white := NewColour(ColourRGB, 1, 1, 1, 1)
	rl.AddTriangleStrip(PacketGeometry, "", quadVertices(0, 0, 1, 1, white))
	assert.Len(t, rl.Packets, 1)
	assert.Len(t, rl.Packets[0].Vertices, 4)
}

func TestRenderList_AddTriangleStripBridgesWithinSamePacket(t *testing.T) {
	rl := NewRenderList()
	white := NewColour(ColourRGB, 1, 1, 1, 1)
	rl.AddTriangleStrip(PacketGeometry, "", quadVertices(0, 0, 1, 1, white))
	rl.AddTriangleStrip(PacketGeometry, "", quadVertices(5, 5, 1, 1, white))
	assert.Len(t, rl.Packets, 1)
	// 4 + 2 degenerate bridge vertices + 4 = 10
	assert.Len(t, rl.Packets[0].Vertices, 10)
}

func TestRenderList_DifferentKindOpensNewPacket(t *testing.T) {
	rl := NewRenderList()
	white := NewColour(ColourRGB, 1, 1, 1, 1)
	rl.AddTriangleStrip(PacketGeometry, "", quadVertices(0, 0, 1, 1, white))
	rl.AddTriangleStrip(PacketImage, "bmp", quadVertices(0, 0, 1, 1, white))
	assert.Len(t, rl.Packets, 2)
}

func TestRenderList_CircleVerticesMinimumTessellation(t *testing.T) {
	white := NewColour(ColourRGB, 1, 1, 1, 1)
	verts := circleVertices(0, 0, 1, 1, white)
	assert.Len(t, verts, 9) // clamped to 3 segments, 3 verts each
}
