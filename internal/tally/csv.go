package tally

import (
	"strconv"
	"strings"
)

// Column indexes of the tally export.
const (
	colContestID   = 1
	colSelectionID = 3
	colTotalVotes  = 4
	exportColumns  = 5

	// Rows before this index are the title and the header.
	firstDataRow = 2
)

// Selection ids that account for ballots rather than options.
var accountingSelections = map[string]bool{
	"overvotes":  true,
	"undervotes": true,
}

// ParseCSVLine splits one CSV record. Quoted fields keep embedded commas and
// unescape doubled quotes, and are returned untrimmed. Unquoted fields are
// trimmed.
func ParseCSVLine(line string) []string {
	var fields []string
	i := 0
	for {
		start := i
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		if i < len(line) && line[i] == '"' {
			var b strings.Builder
			i++
			for i < len(line) {
				if line[i] == '"' {
					if i+1 < len(line) && line[i+1] == '"' {
						b.WriteByte('"')
						i += 2
						continue
					}
					i++
					break
				}
				b.WriteByte(line[i])
				i++
			}
			// Anything between the closing quote and the comma is kept.
			for i < len(line) && line[i] != ',' {
				if line[i] != ' ' && line[i] != '\t' {
					b.WriteByte(line[i])
				}
				i++
			}
			fields = append(fields, b.String())
		} else {
			i = start
			end := strings.IndexByte(line[i:], ',')
			if end < 0 {
				end = len(line) - i
			}
			fields = append(fields, strings.TrimSpace(line[i:i+end]))
			i += end
		}
		if i >= len(line) {
			return fields
		}
		i++ // comma
	}
}

// ParseTallyCSV reads a tally export into actual counts. Rows that are too
// short, carry a non-numeric total, or account for over/undervotes are
// skipped. Repeated rows are summed.
func ParseTallyCSV(text string) ActualVotes {
	actual := Counts{}
	for i, line := range strings.Split(text, "\n") {
		if i < firstDataRow {
			continue
		}
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := ParseCSVLine(line)
		if len(fields) < exportColumns {
			continue
		}
		selectionID := fields[colSelectionID]
		if accountingSelections[selectionID] {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(fields[colTotalVotes]))
		if err != nil {
			continue
		}
		actual.Add(fields[colContestID], selectionID, n)
	}
	return actual
}
