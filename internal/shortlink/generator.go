package shortlink

import (
	"github.com/jaevor/go-nanoid"
)

// Alphabet is the character set for generated codes: digits plus mixed-case
// letters. Caller-supplied codes are not restricted to it.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// DefaultCodeLength is the length of generated codes when none is configured.
const DefaultCodeLength = 7

// Generator produces random short codes. It makes no uniqueness guarantee;
// uniqueness is enforced by the store on insert.
type Generator struct {
	newCode func() string
	length  int
}

// NewGenerator creates a code generator for the given length. A non-positive
// length falls back to DefaultCodeLength.
func NewGenerator(length int) (*Generator, error) {
	if length <= 0 {
		length = DefaultCodeLength
	}

	gen, err := nanoid.CustomASCII(Alphabet, length)
	if err != nil {
		return nil, err
	}

	return &Generator{newCode: gen, length: length}, nil
}

// NewCode returns a fresh random code.
func (g *Generator) NewCode() Code {
	return Code(g.newCode())
}

// Length returns the length of generated codes.
func (g *Generator) Length() int {
	return g.length
}
