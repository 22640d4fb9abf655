package fixtures

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ballotqa/internal/votes"
)

// Manifest describes a written fixture; it is saved next to the PDFs.
type Manifest struct {
	ID            string        `json:"id"`
	BallotStyleID string        `json:"ballotStyleId"`
	Pattern       votes.Pattern `json:"pattern"`
	Votes         votes.Dict    `json:"votes"`
	PDF           string        `json:"pdf"`
	Sheets        []SheetFile   `json:"sheets"`
}

// SheetFile names one sheet PDF and the votes printed on it.
type SheetFile struct {
	Number int        `json:"number"`
	PDF    string     `json:"pdf"`
	Votes  votes.Dict `json:"votes"`
}

// WriteFiles writes each fixture's PDF, sheet PDFs and manifest under dir and
// returns the manifest paths.
func WriteFiles(dir string, fixtures []Fixture) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	var manifests []string
	for _, fx := range fixtures {
		stem := fmt.Sprintf("%s-%s", fx.BallotStyleID, fx.Pattern)
		m := Manifest{
			ID:            fx.ID,
			BallotStyleID: fx.BallotStyleID,
			Pattern:       fx.Pattern,
			Votes:         fx.Votes,
			PDF:           stem + ".pdf",
		}
		if err := os.WriteFile(filepath.Join(dir, m.PDF), fx.PDF, 0644); err != nil {
			return nil, err
		}
		for _, s := range fx.Sheets {
			name := fmt.Sprintf("%s-sheet-%d.pdf", stem, s.Number)
			if err := os.WriteFile(filepath.Join(dir, name), s.PDF, 0644); err != nil {
				return nil, err
			}
			m.Sheets = append(m.Sheets, SheetFile{Number: s.Number, PDF: name, Votes: s.Votes})
		}

		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, stem+".json")
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, err
		}
		manifests = append(manifests, path)
	}
	return manifests, nil
}
