package genart

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgram_PrettyStringOneLinePerInstruction(t *testing.T) {
	p := NewProgram()
	p.Code = []Bytecode{
		{Op: OpLoad, A: argFloat(1)},
		{Op: OpLoad, A: argFloat(2)},
		{Op: OpAdd},
		{Op: OpStop},
	}
	s := p.PrettyString()
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[2], "ADD")
}

func TestProgram_PrettyStringColoredContainsSameMnemonics(t *testing.T) {
	p := NewProgram()
	p.Code = []Bytecode{
		{Op: OpLoad, A: argFloat(1)},
		{Op: OpStop},
	}
	s := p.PrettyStringColored()
	assert.Contains(t, s, "LOAD")
	assert.Contains(t, s, "STOP")
}
