package core

import (
	"cmp"
	"slices"

	"github.com/DonovanMods/fomod/internal/domain"

	"golang.org/x/text/cases"
)

// CompileFiles merges required, step and conditional files into the install plan.
// Entries are ordered by priority, then by case-folded source path; the sort is
// stable so equal entries keep their contribution order. Duplicates are kept:
// overwrite policy belongs to the copy stage.
func CompileFiles(required, stepFiles, conditional []domain.FileEntry) []domain.FileEntry {
	plan := make([]domain.FileEntry, 0, len(required)+len(stepFiles)+len(conditional))
	plan = append(plan, required...)
	plan = append(plan, stepFiles...)
	plan = append(plan, conditional...)

	fold := cases.Fold()
	keys := make(map[string]string, len(plan))
	key := func(s string) string {
		k, ok := keys[s]
		if !ok {
			k = fold.String(s)
			keys[s] = k
		}
		return k
	}

	slices.SortStableFunc(plan, func(a, b domain.FileEntry) int {
		if c := cmp.Compare(a.Priority, b.Priority); c != 0 {
			return c
		}
		return cmp.Compare(key(a.Source), key(b.Source))
	})

	return plan
}
