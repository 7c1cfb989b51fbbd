package cli

import (
	"strings"

	"famjam-cli/internal/dispatch"
	"famjam-cli/internal/projection"
)

// parseFilterFlag is stricter than projection.ParseFilter: a typo is an error, not "all".
func parseFilterFlag(s string) (projection.Filter, error) {
	s = strings.TrimSpace(s)
	f := projection.ParseFilter(s)
	if s != "" && !strings.EqualFold(string(f), s) {
		return "", dispatch.InvalidInputError{Field: "filter", Value: s}
	}
	return f, nil
}

func parseSortFlag(s string) (projection.Sort, error) {
	s = strings.TrimSpace(s)
	v := projection.ParseSort(s)
	if s != "" && v == projection.SortCreated && !strings.EqualFold(s, string(projection.SortCreated)) {
		return "", dispatch.InvalidInputError{Field: "sort", Value: s}
	}
	return v, nil
}
