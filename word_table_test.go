package genart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildWordTable_SortsAndDedupes(t *testing.T) {
	toks, err := NewLexer([]byte("(define zebra 1) (define apple 2) (define zebra 3)")).Tokenize()
	assert.NoError(t, err)

	wt := BuildWordTable(toks)
	assert.Equal(t, 2, wt.Len())

	appleIname, ok := wt.Resolve("apple")
	assert.True(t, ok)
	zebraIname, ok := wt.Resolve("zebra")
	assert.True(t, ok)
	assert.Less(t, appleIname, zebraIname)
	assert.True(t, IsUser(appleIname))
	assert.True(t, IsUser(zebraIname))
}

func TestWordTable_KeywordsAndNativesAreReserved(t *testing.T) {
	toks, err := NewLexer([]byte("(define x (rect))")).Tokenize()
	assert.NoError(t, err)
	wt := BuildWordTable(toks)

	defineIname, ok := wt.Resolve("define")
	assert.True(t, ok)
	assert.True(t, IsKeyword(defineIname))
	assert.Equal(t, "define", wt.Name(defineIname))

	rectIname, ok := wt.Resolve("rect")
	assert.True(t, ok)
	assert.True(t, IsNative(rectIname))
	assert.Equal(t, "rect", wt.Name(rectIname))

	// "x" is the only user identifier left once keywords/natives are excluded.
	assert.Equal(t, 1, wt.Len())
}

func TestIname_PartitionsDontOverlap(t *testing.T) {
	assert.True(t, IsUser(0))
	assert.False(t, IsUser(KeywordStart))
	assert.True(t, IsKeyword(KeywordStart))
	assert.False(t, IsKeyword(KeywordEnd))
	assert.True(t, IsNative(KeywordEnd))
	assert.False(t, IsNative(BuiltinEnd))
}
