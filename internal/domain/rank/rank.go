// Package rank holds the catalog of taxonomic ranks a player can guess at.
package rank

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRank is returned when a key is not in the catalog.
var ErrUnknownRank = errors.New("unknown rank")

// Rank keys, broadest first.
const (
	Kingdom = "kingdom"
	Phylum  = "phylum"
	Class   = "class"
	Order   = "order"
	Family  = "family"
	Genus   = "genus"
	Species = "species"
)

// Level is one guessable rank and what a correct guess at it is worth.
type Level struct {
	Name   string `json:"name"`
	Key    string `json:"key"`
	Points int    `json:"points"`
}

var levels = [...]Level{
	{Name: "Kingdom", Key: Kingdom, Points: 100},
	{Name: "Phylum", Key: Phylum, Points: 200},
	{Name: "Class", Key: Class, Points: 300},
	{Name: "Order", Key: Order, Points: 400},
	{Name: "Family", Key: Family, Points: 600},
	{Name: "Genus", Key: Genus, Points: 800},
	{Name: "Species", Key: Species, Points: 1000},
}

// Levels returns the catalog ordered from kingdom to species.
// The slice is a copy.
func Levels() []Level {
	out := make([]Level, len(levels))
	copy(out, levels[:])
	return out
}

// Keys returns the rank keys in catalog order.
func Keys() []string {
	out := make([]string, len(levels))
	for i, l := range levels {
		out[i] = l.Key
	}
	return out
}

// Lookup finds a level by key. Keys are matched case-insensitively.
func Lookup(key string) (Level, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	for _, l := range levels {
		if l.Key == k {
			return l, nil
		}
	}
	return Level{}, fmt.Errorf("%w: %q", ErrUnknownRank, key)
}

// Valid reports whether key names a catalog rank.
func Valid(key string) bool {
	_, err := Lookup(key)
	return err == nil
}

// Default is the rank a new round starts on.
func Default() Level {
	return levels[len(levels)-1]
}
