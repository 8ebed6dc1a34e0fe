// Package taxon resolves the name a classification carries at a given rank.
package taxon

import (
	"strings"

	"github.com/okian/specious/internal/domain/model"
)

// Resolve returns the lowercased, trimmed name of record at targetRank.
//
// The subject's own rank wins; otherwise the first ancestor in root-to-leaf
// order with a matching rank is used. ok is false when the lineage has no
// entry at targetRank, which is a normal outcome (e.g. an omitted clade).
func Resolve(record *model.Classification, targetRank string) (name string, ok bool) {
	if record == nil {
		return "", false
	}
	if record.Rank == targetRank {
		return normalize(record.Name), true
	}
	for _, a := range record.Ancestors {
		if a.Rank == targetRank {
			return normalize(a.Name), true
		}
	}
	return "", false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
