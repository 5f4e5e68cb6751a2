// Package colors resolves colour names, hex strings and numeric triples into
// domain.Color values.
//
// Resolution never fails for unknown names or out-of-range triples: those
// degrade to domain.CurrentColor. Only a malformed hex string is an error.
package colors

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/aretw0/tortuga/pkg/domain"
	"gopkg.in/yaml.v3"
)

// ErrMalformedHex is returned when a string starting with '#' is not #rrggbb.
var ErrMalformedHex = errors.New("malformed hex colour")

//go:embed table.yaml
var tableYAML []byte

type tableFile struct {
	Colors map[string][3]uint8 `yaml:"colors"`
}

type table struct {
	exact  map[string]domain.Color
	folded map[string]domain.Color
	names  []string
}

// lookupTable is decoded once and never mutated afterwards.
var lookupTable = sync.OnceValue(func() *table {
	var f tableFile
	if err := yaml.Unmarshal(tableYAML, &f); err != nil {
		panic(fmt.Sprintf("colors: embedded table is invalid: %v", err))
	}
	t := &table{
		exact:  make(map[string]domain.Color, len(f.Colors)),
		folded: make(map[string]domain.Color, len(f.Colors)),
		names:  make([]string, 0, len(f.Colors)),
	}
	for name, rgb := range f.Colors {
		c := FromBytes(rgb[0], rgb[1], rgb[2])
		t.exact[name] = c
		t.folded[fold(name)] = c
		t.names = append(t.names, name)
	}
	sort.Strings(t.names)
	return t
})

func fold(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", ""))
}

// Lookup finds a colour by name. Exact matches win; otherwise the name is
// compared ignoring case and spaces, so "Alice Blue" finds "alice blue".
func Lookup(name string) (domain.Color, bool) {
	t := lookupTable()
	if c, ok := t.exact[name]; ok {
		return c, true
	}
	c, ok := t.folded[fold(name)]
	return c, ok
}

// Names returns every known colour name, sorted.
func Names() []string {
	names := lookupTable().names
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Parse resolves a colour name or a #rrggbb hex string. A trailing alpha pair
// (#rrggbbaa) is accepted and ignored. Unknown names resolve to CurrentColor.
func Parse(s string) (domain.Color, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		return parseHex(s)
	}
	if c, ok := Lookup(s); ok {
		return c, nil
	}
	return domain.CurrentColor, nil
}

func parseHex(s string) (domain.Color, error) {
	digits := s[1:]
	if len(digits) != 6 && len(digits) != 8 {
		return domain.Color{}, fmt.Errorf("%w: %q", ErrMalformedHex, s)
	}
	value, err := strconv.ParseUint(digits[:6], 16, 32)
	if err != nil {
		return domain.Color{}, fmt.Errorf("%w: %q", ErrMalformedHex, s)
	}
	return FromBytes(uint8(value>>16), uint8(value>>8), uint8(value)), nil
}

// FromBytes converts 0-255 channels.
func FromBytes(r, g, b uint8) domain.Color {
	return domain.RGB(float32(r)/255, float32(g)/255, float32(b)/255)
}

// FromFloats converts 0-1 channels. Any channel outside [0,1] (or NaN)
// yields CurrentColor.
func FromFloats(r, g, b float64) domain.Color {
	if !unit(r) || !unit(g) || !unit(b) {
		return domain.CurrentColor
	}
	return domain.RGB(float32(r), float32(g), float32(b))
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}

// FromAny resolves loosely typed input, as decoded from YAML or JSON:
// a string (name or hex), or a three-element list of numbers.
//
// A list reads the same whatever the number types, since YAML decodes 1 as an
// int and JSON as a float64: when every channel is within [0,1] the list is
// 0-1 floats, otherwise whole numbers up to 255 are 0-255 channels. Anything
// else yields CurrentColor.
func FromAny(v any) (domain.Color, error) {
	switch val := v.(type) {
	case nil:
		return domain.CurrentColor, nil
	case string:
		return Parse(val)
	case domain.Color:
		return val, nil
	case []any:
		return fromList(val), nil
	case []float64:
		if len(val) != 3 {
			return domain.CurrentColor, nil
		}
		return fromTriple([3]float64{val[0], val[1], val[2]}), nil
	case []int:
		if len(val) != 3 {
			return domain.CurrentColor, nil
		}
		return fromTriple([3]float64{float64(val[0]), float64(val[1]), float64(val[2])}), nil
	}
	return domain.CurrentColor, nil
}

func fromList(list []any) domain.Color {
	if len(list) != 3 {
		return domain.CurrentColor
	}
	var nums [3]float64
	for i, item := range list {
		switch n := item.(type) {
		case int:
			nums[i] = float64(n)
		case int64:
			nums[i] = float64(n)
		case uint64:
			nums[i] = float64(n)
		case float64:
			nums[i] = n
		case float32:
			nums[i] = float64(n)
		default:
			return domain.CurrentColor
		}
	}
	return fromTriple(nums)
}

func fromTriple(nums [3]float64) domain.Color {
	if unit(nums[0]) && unit(nums[1]) && unit(nums[2]) {
		return FromFloats(nums[0], nums[1], nums[2])
	}
	if allWhole(nums) {
		return fromInts(int(nums[0]), int(nums[1]), int(nums[2]))
	}
	return domain.CurrentColor
}

func allWhole(nums [3]float64) bool {
	for _, n := range nums {
		if n != math.Trunc(n) {
			return false
		}
	}
	return true
}

func fromInts(r, g, b int) domain.Color {
	if !byteRange(r) || !byteRange(g) || !byteRange(b) {
		return domain.CurrentColor
	}
	return FromBytes(uint8(r), uint8(g), uint8(b))
}

func byteRange(v int) bool {
	return v >= 0 && v <= 255
}
