// Package report renders the end-of-run summary for the console.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"empfmt/internal/batch"
)

const rule = "============================================================"

// WriteSummary prints the processing summary banner followed by a per-file
// table when at least one file was seen.
func WriteSummary(w io.Writer, sum *batch.Summary) error {
	var sb strings.Builder

	sb.WriteString(rule + "\n")
	sb.WriteString(center("Processing Summary", len(rule), '-') + "\n")
	sb.WriteString(rule + "\n")
	fmt.Fprintf(&sb, "Number of files processed:   %d\n", sum.FilesProcessed)
	sb.WriteString("Number of employee entries\n")
	fmt.Fprintf(&sb, " formatted and calculated:   %d\n", sum.EmployeesFormatted)

	if len(sum.Files) > 0 {
		sb.WriteString("\n")

		for _, line := range FileTable(sum) {
			sb.WriteString(line + "\n")
		}
	}

	_, err := io.WriteString(w, sb.String())

	return err
}

// FileTable renders one row per input file, relative to the run root.
func FileTable(sum *batch.Summary) []string {
	rows := [][]string{{"File", "Status", "Accepted", "Rejected"}}

	for _, f := range sum.Files {
		name := f.Path
		if rel, err := filepath.Rel(sum.Root, f.Path); err == nil && rel != "." {
			name = rel
		}

		rows = append(rows, []string{
			name,
			string(f.Status),
			strconv.Itoa(f.Accepted),
			strconv.Itoa(f.RejectedTotal()),
		})
	}

	return renderTable(rows)
}

// renderTable lays rows out as a markdown table padded to display width, so
// wide characters in file names keep the columns aligned. rows[0] is the header.
func renderTable(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}

	colCount := 0
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	colWidths := make([]int, colCount)

	for _, row := range rows {
		for i, cell := range row {
			if width := runewidth.StringWidth(cell); width > colWidths[i] {
				colWidths[i] = width
			}
		}
	}

	for i := range colWidths {
		if colWidths[i] < 3 {
			colWidths[i] = 3
		}
	}

	line := func(cells []string, sep bool) string {
		var sb strings.Builder

		sb.WriteString("|")

		for j := 0; j < colCount; j++ {
			sb.WriteString(" ")

			if sep {
				sb.WriteString(strings.Repeat("-", colWidths[j]))
			} else {
				content := ""
				if j < len(cells) {
					content = cells[j]
				}

				sb.WriteString(runewidth.FillRight(content, colWidths[j]))
			}

			sb.WriteString(" |")
		}

		return sb.String()
	}

	result := make([]string, 0, len(rows)+1)
	result = append(result, line(rows[0], false), line(nil, true))

	for _, row := range rows[1:] {
		result = append(result, line(row, false))
	}

	return result
}

func center(title string, width int, fill rune) string {
	pad := width - runewidth.StringWidth(title)
	if pad <= 0 {
		return title
	}

	left := pad / 2

	return strings.Repeat(string(fill), left) + title + strings.Repeat(string(fill), pad-left)
}
