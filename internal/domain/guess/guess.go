// Package guess compares a player's free-text guess with a resolved name.
package guess

import "strings"

// Verdict is the result of evaluating one guess.
type Verdict struct {
	Matched         bool
	NormalizedGuess string
}

// Normalize trims surrounding whitespace and lowercases s.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsBlank reports whether s has no content after trimming.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Evaluate compares guess against resolved using exact equality after
// normalization. When ok is false there is no correct name and the guess
// never matches. Blank guesses must be rejected before calling Evaluate.
func Evaluate(guess, resolved string, ok bool) Verdict {
	g := Normalize(guess)
	if !ok {
		return Verdict{NormalizedGuess: g}
	}
	return Verdict{
		Matched:         g == Normalize(resolved),
		NormalizedGuess: g,
	}
}
