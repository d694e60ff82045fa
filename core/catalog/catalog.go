// Package catalog validates request fields against the set of layout
// configurations the service knows about and the allowed priority range.
package catalog

import (
	"fmt"
	"sort"
	"strconv"
)

const (
	// MinPriority is the lowest accepted priority.
	MinPriority = 1
	// MaxPriority is the highest accepted priority.
	MaxPriority = 7
)

// Built-in vocabulary names usable from configuration.
const (
	SetDefault  = "default"
	SetCyrillic = "cyrillic"
)

var defaultEntries = []string{
	"one row", "two rows", "three rows", "four rows",
	"one column", "two columns", "three columns", "four columns",
	"1x1", "1x2", "1x3",
	"2x3", "2x2", "3x3",
	"4x4", "8x8",
}

// The first revision of the service used Russian labels and mixed the
// Cyrillic "х" into some grid names; those strings are kept byte for byte.
var cyrillicEntries = []string{
	"одна строка", "две строки", "три строки", "четыре строки",
	"один столбец", "два столбца", "три столбца", "четыре столбца",
	"1х1", "1x2", "1x3",
	"2x3", "2x2", "3x3",
	"4х4", "8х8",
}

var builtins = map[string][]string{
	SetDefault:  defaultEntries,
	SetCyrillic: cyrillicEntries,
}

// Catalog is an immutable set of valid configuration strings.
type Catalog struct {
	entries map[string]struct{}
}

// New returns a catalog holding exactly the given entries.
func New(entries ...string) *Catalog {
	c := &Catalog{entries: make(map[string]struct{}, len(entries))}
	for _, e := range entries {
		c.entries[e] = struct{}{}
	}
	return c
}

// Default returns the sixteen entry catalog.
func Default() *Catalog { return New(defaultEntries...) }

// Builtin returns the entries of a named vocabulary.
func Builtin(name string) ([]string, error) {
	e, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown catalog set %q", name)
	}
	return append([]string(nil), e...), nil
}

// Merge returns a catalog containing the union of the given catalogs.
func Merge(cs ...*Catalog) *Catalog {
	out := New()
	for _, c := range cs {
		if c == nil {
			continue
		}
		for e := range c.entries {
			out.entries[e] = struct{}{}
		}
	}
	return out
}

// ValidateConfiguration reports whether s is exactly one of the entries.
// Matching is case-sensitive and nothing is trimmed.
func (c *Catalog) ValidateConfiguration(s string) bool {
	_, ok := c.entries[s]
	return ok
}

// Validate reports whether both the configuration and the priority text are
// acceptable.
func (c *Catalog) Validate(configuration, priority string) bool {
	return c.ValidateConfiguration(configuration) && ValidatePriority(priority)
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Entries returns the entries in lexical order.
func (c *Catalog) Entries() []string {
	out := make([]string, 0, len(c.entries))
	for e := range c.entries {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// ValidatePriority reports whether p parses as a base-10 integer inside
// [MinPriority, MaxPriority]. Non-numeric text is invalid, never an error.
func ValidatePriority(p string) bool {
	n, err := strconv.Atoi(p)
	return err == nil && PriorityInRange(n)
}

// PriorityInRange reports whether n is an accepted priority.
func PriorityInRange(n int) bool {
	return n >= MinPriority && n <= MaxPriority
}
