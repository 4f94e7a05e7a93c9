package validation

import (
	"fmt"
	"strings"
)

// Issue is one content problem found while pre-checking an uploaded
// file, reported with 1-based line and column positions.
type Issue struct {
	Number  int    `json:"issue_number"`
	Line    int    `json:"line_number"`
	Column  int    `json:"column"`
	Message string `json:"issue"`
}

// CheckNonASCII scans decoded file content for characters outside the
// ASCII range. The genotyping pipeline chokes on smart quotes and
// other Word artifacts in sample names, so these are surfaced to the
// user before parsing rather than discovered downstream.
func CheckNonASCII(content string) []Issue {
	var issues []Issue
	for lineIdx, line := range strings.Split(content, "\n") {
		col := 0
		for _, ch := range line {
			col++
			if ch > 127 {
				issues = append(issues, Issue{
					Number:  len(issues) + 1,
					Line:    lineIdx + 1,
					Column:  col,
					Message: fmt.Sprintf("invalid character %q at position %d", ch, col),
				})
			}
		}
	}
	return issues
}
