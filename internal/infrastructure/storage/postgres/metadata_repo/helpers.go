package metadata_repo

import (
	"sort"
	"strings"
)

func sortedColumns(data map[string]any) []string {
	cols := make([]string, 0, len(data))
	for col := range data {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

func joinComma(parts []string) string {
	return strings.Join(parts, ", ")
}
