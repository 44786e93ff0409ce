// Package symbolmap assigns each distinct line a synthetic single-rune code so that
// a sequence of lines can be diffed as a string.
package symbolmap

import (
	"errors"
	"fmt"
	"strings"
)

// Code point bounds for symbol allocation.
const (
	// FirstSymbol is the first code point handed out (skips control chars and space).
	FirstSymbol rune = 33
	// MaxSymbol is the last code point handed out.
	MaxSymbol rune = 0xFFFF

	surrogateMin rune = 0xD800
	surrogateMax rune = 0xDFFF
)

// Capacity is the number of distinct lines a single Map can hold.
const Capacity = int(MaxSymbol-FirstSymbol+1) - int(surrogateMax-surrogateMin+1)

var (
	// ErrCapacityExceeded indicates the map ran out of code points.
	ErrCapacityExceeded = errors.New("symbol capacity exceeded")

	// ErrUnknownSymbol indicates a rune that was never assigned by this map.
	ErrUnknownSymbol = errors.New("unknown symbol")
)

// Map is a bijection between line strings and runes.
// A Map belongs to one diff request and is not safe for concurrent use.
type Map struct {
	toChar   map[string]rune
	fromChar map[rune]string
	next     rune
}

// New creates an empty Map.
func New() *Map {
	return &Map{
		toChar:   make(map[string]rune),
		fromChar: make(map[rune]string),
		next:     FirstSymbol,
	}
}

// ToChar returns the symbol for line, allocating one on first sight.
func (m *Map) ToChar(line string) (rune, error) {
	if r, ok := m.toChar[line]; ok {
		return r, nil
	}

	// Surrogates cannot be stored in a Go string.
	if m.next >= surrogateMin && m.next <= surrogateMax {
		m.next = surrogateMax + 1
	}
	if m.next > MaxSymbol {
		return 0, fmt.Errorf("%w: %d distinct lines, limit %d", ErrCapacityExceeded, len(m.toChar)+1, Capacity)
	}

	r := m.next
	m.next++
	m.toChar[line] = r
	m.fromChar[r] = line
	return r, nil
}

// FromChar returns the line for symbol r. ok is false if r was never assigned.
func (m *Map) FromChar(r rune) (line string, ok bool) {
	line, ok = m.fromChar[r]
	return line, ok
}

// Len returns the number of assigned symbols.
func (m *Map) Len() int {
	return len(m.toChar)
}

// Encode returns the concatenated symbols for lines.
func (m *Map) Encode(lines []string) (string, error) {
	var sb strings.Builder
	sb.Grow(len(lines) * 2)
	for _, line := range lines {
		r, err := m.ToChar(line)
		if err != nil {
			return "", err
		}
		sb.WriteRune(r)
	}
	return sb.String(), nil
}

// Decode maps every rune of s back to its line.
func (m *Map) Decode(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	lines := make([]string, 0, len(s))
	for _, r := range s {
		line, ok := m.FromChar(r)
		if !ok {
			return nil, fmt.Errorf("%w: %U", ErrUnknownSymbol, r)
		}
		lines = append(lines, line)
	}
	return lines, nil
}
