// Package grammar implements the L-system growth grammar: string rewriting
// followed by turtle interpretation into skeleton segments.
package grammar

import (
	"errors"
	"fmt"
	gomath "math"
	"strings"

	"github.com/Faultbox/arbor/pkg/math"
)

// MaxIterations bounds the rewrite rounds. Doubling grammars grow the
// string exponentially, so callers must stay within [0, MaxIterations].
const MaxIterations = 8

// DefaultRule is the classic bushy-tree production for F.
const DefaultRule = "FF+[+F-F-F]-[-F+F+F]"

// Grammar configuration errors.
var (
	ErrIterationsOutOfRange = errors.New("grammar iterations out of range")
	ErrEmptyAxiom           = errors.New("grammar axiom is empty")
	ErrInvalidLength        = errors.New("grammar length must be positive and finite")
	ErrInvalidRuleKey       = errors.New("grammar rule key must be a single symbol")
	ErrInvalidTropism       = errors.New("grammar tropism must be finite")
)

// Config describes one grammar run.
type Config struct {
	Axiom      string
	Rules      map[byte]string
	Iterations int

	Angle        float32 // turn angle in radians
	LocalYaw     bool    // + and - turn around the turtle's up axis instead of world up
	Length       float32 // length of the first F
	LengthFactor float32 // multiplier applied to the length after each F

	Tropism         math.Vec3 // unit bias direction
	TropismStrength float32
	Randomness      float32 // per-axis jitter as a fraction of the current length

	Origin     math.Vec3
	BaseRadius float32 // radius annotation for the first segment
	// RadiusFactor scales the radius per bracket depth.
	RadiusFactor float32
}

// DefaultConfig returns the bushy default grammar.
func DefaultConfig() Config {
	return Config{
		Axiom:           "F",
		Rules:           map[byte]string{'F': DefaultRule},
		Iterations:      3,
		Angle:           float32(25 * gomath.Pi / 180),
		Length:          1,
		LengthFactor:    0.96,
		Tropism:         math.Up,
		TropismStrength: 0.15,
		Randomness:      0.1,
		BaseRadius:      0.3,
		RadiusFactor:    0.6,
	}
}

// Validate checks the preconditions of Generate.
func (c Config) Validate() error {
	if c.Iterations < 0 || c.Iterations > MaxIterations {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrIterationsOutOfRange, c.Iterations, MaxIterations)
	}
	if c.Axiom == "" {
		return ErrEmptyAxiom
	}
	if !(c.Length > 0) || !math.IsFinite(c.Length) {
		return fmt.Errorf("%w: length %v", ErrInvalidLength, c.Length)
	}
	if !(c.LengthFactor > 0) || !math.IsFinite(c.LengthFactor) {
		return fmt.Errorf("%w: length factor %v", ErrInvalidLength, c.LengthFactor)
	}
	if !c.Tropism.IsFinite() || !math.IsFinite(c.TropismStrength) || !math.IsFinite(c.Randomness) {
		return ErrInvalidTropism
	}
	return nil
}

// RulesFromStrings converts string-keyed rules (as stored in YAML) into
// symbol-keyed rules.
func RulesFromStrings(in map[string]string) (map[byte]string, error) {
	out := make(map[byte]string, len(in))
	for k, v := range in {
		if len(k) != 1 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRuleKey, k)
		}
		out[k[0]] = v
	}
	return out, nil
}

// Rewrite applies rules to the whole string for the given number of rounds.
// Symbols without a rule are copied unchanged.
func Rewrite(axiom string, rules map[byte]string, iterations int) string {
	current := axiom
	for range iterations {
		var b strings.Builder
		b.Grow(len(current) * 4)
		for i := 0; i < len(current); i++ {
			c := current[i]
			if r, ok := rules[c]; ok {
				b.WriteString(r)
			} else {
				b.WriteByte(c)
			}
		}
		current = b.String()
	}
	return current
}

// CountSymbol returns how many times sym occurs in s.
func CountSymbol(s string, sym byte) int {
	return strings.Count(s, string(sym))
}

// Stats summarizes a rewritten string before interpretation.
type Stats struct {
	Symbols int // total length
	Draws   int // F symbols
	Moves   int // f symbols
	Depth   int // deepest bracket nesting
}

// Measure counts the drawing symbols and bracket depth of s.
func Measure(s string) Stats {
	st := Stats{
		Symbols: len(s),
		Draws:   CountSymbol(s, 'F'),
		Moves:   CountSymbol(s, 'f'),
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
			st.Depth = max(st.Depth, depth)
		case ']':
			depth = max(depth-1, 0)
		}
	}
	return st
}
