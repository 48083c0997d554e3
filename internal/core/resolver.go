package core

import (
	"fmt"

	"github.com/DonovanMods/fomod/internal/domain"
)

// ResolveConditional returns the files of every pattern whose dependencies hold.
// Patterns are independent; any number of them may contribute.
func ResolveConditional(patterns []domain.Pattern, facts FactProvider) ([]domain.FileEntry, error) {
	var files []domain.FileEntry
	for i := range patterns {
		ok, err := Evaluate(&patterns[i].Dependencies, facts)
		if err != nil {
			return nil, fmt.Errorf("conditional pattern %d: %w", i, err)
		}
		if ok {
			files = append(files, patterns[i].Files...)
		}
	}
	return files, nil
}
