// Package export serializes record collections to downloadable CSV text.
package export

import (
	"strings"

	"speech-practice-service/internal/models"
)

// WordColumns is the header for word bank exports.
var WordColumns = []string{"Word", "Translation", "Explanation"}

// ToCSV renders a header row followed by one comma-joined row per record.
//
// Known limitation: fields are written as-is, with no quoting or escaping
// of embedded commas or quotes. Callers must not place delimiters in
// field values.
func ToCSV(columns []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString(strings.Join(columns, ","))
	b.WriteByte('\n')
	for _, row := range rows {
		b.WriteString(strings.Join(row, ","))
		b.WriteByte('\n')
	}
	return b.String()
}

// WordRows maps words onto WordColumns rows. The source slice is never
// mutated.
func WordRows(words []models.Word) [][]string {
	rows := make([][]string, 0, len(words))
	for _, w := range words {
		rows = append(rows, []string{w.Word, w.Translation, w.Explanation})
	}
	return rows
}
