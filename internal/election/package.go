package election

import (
	"archive/zip"
	"bufio"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"ballotqa/internal/logging"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Entry names inside an election package ZIP.
const (
	ElectionFileName       = "election.json"
	SystemSettingsFileName = "systemSettings.json"
	BallotsFileName        = "ballots.jsonl"
)

// Ballot types and modes accepted in ballots.jsonl.
const (
	BallotTypePrecinct = "precinct"
	BallotTypeAbsentee = "absentee"
	BallotModeOfficial = "official"
	BallotModeTest     = "test"
)

// ErrBallotNotFound is returned when the package has no base ballot for a request.
var ErrBallotNotFound = errors.New("ballot not found in election package")

// BallotEntry is one line of ballots.jsonl.
type BallotEntry struct {
	BallotStyleID string `json:"ballotStyleId"`
	PrecinctID    string `json:"precinctId"`
	BallotType    string `json:"ballotType"`
	BallotMode    string `json:"ballotMode"`
	Compact       *bool  `json:"compact"`
	EncodedBallot string `json:"encodedBallot"`
}

// Validate checks the entry against the ballots.jsonl schema.
func (b BallotEntry) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.BallotStyleID, validation.Required),
		validation.Field(&b.PrecinctID, validation.Required),
		validation.Field(&b.BallotType, validation.Required, validation.In(BallotTypePrecinct, BallotTypeAbsentee)),
		validation.Field(&b.BallotMode, validation.Required, validation.In(BallotModeOfficial, BallotModeTest)),
		validation.Field(&b.Compact, validation.NotNil),
		validation.Field(&b.EncodedBallot, validation.Required, is.Base64),
	)
}

// Package is a loaded election package.
type Package struct {
	Election       *Election
	SystemSettings json.RawMessage
	Ballots        []BallotEntry
	// Skipped counts ballots.jsonl lines rejected by schema validation.
	Skipped int
}

// LoadPackage opens an election package ZIP from disk.
func LoadPackage(path string) (*Package, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open election package: %w", err)
	}
	defer zr.Close()
	return readPackage(&zr.Reader)
}

// ReadPackage reads an election package ZIP from r.
func ReadPackage(r io.ReaderAt, size int64) (*Package, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read election package: %w", err)
	}
	return readPackage(zr)
}

func readPackage(zr *zip.Reader) (*Package, error) {
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	electionData, err := readZipEntry(files, ElectionFileName)
	if err != nil {
		return nil, err
	}
	e, err := Parse(electionData)
	if err != nil {
		return nil, err
	}

	pkg := &Package{Election: e}

	if settings, err := readZipEntry(files, SystemSettingsFileName); err == nil {
		pkg.SystemSettings = json.RawMessage(settings)
	} else {
		logging.ElectionWarn("election package has no %s: %v", SystemSettingsFileName, err)
	}

	ballots, err := readZipEntry(files, BallotsFileName)
	if err != nil {
		logging.ElectionWarn("election package has no %s: %v", BallotsFileName, err)
		return pkg, nil
	}
	pkg.Ballots, pkg.Skipped = parseBallots(ballots)

	logging.Election("loaded election package %q: %d contests, %d ballot styles, %d ballots (%d skipped)",
		e.Title, len(e.Contests), len(e.BallotStyles), len(pkg.Ballots), pkg.Skipped)
	return pkg, nil
}

func readZipEntry(files map[string]*zip.File, name string) ([]byte, error) {
	f, ok := files[name]
	if !ok {
		return nil, fmt.Errorf("missing %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// parseBallots decodes ballots.jsonl. Lines that fail decoding or schema
// validation are skipped with a warning.
func parseBallots(data []byte) ([]BallotEntry, int) {
	var (
		entries []BallotEntry
		skipped int
	)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(line))
		dec.DisallowUnknownFields()
		var entry BallotEntry
		if err := dec.Decode(&entry); err != nil {
			logging.ElectionWarn("%s line %d: invalid JSON, skipping: %v", BallotsFileName, lineNo, err)
			skipped++
			continue
		}
		if err := entry.Validate(); err != nil {
			logging.ElectionWarn("%s line %d: schema validation failed, skipping: %v", BallotsFileName, lineNo, err)
			skipped++
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		logging.ElectionWarn("%s: stopped reading at line %d: %v", BallotsFileName, lineNo, err)
	}
	return entries, skipped
}

// Ballot returns the decoded base PDF for the requested ballot.
func (p *Package) Ballot(ballotStyleID, precinctID, ballotType, ballotMode string) ([]byte, error) {
	for _, b := range p.Ballots {
		if b.BallotStyleID == ballotStyleID && b.PrecinctID == precinctID &&
			b.BallotType == ballotType && b.BallotMode == ballotMode {
			pdf, err := base64.StdEncoding.DecodeString(b.EncodedBallot)
			if err != nil {
				return nil, fmt.Errorf("failed to decode ballot %s/%s: %w", ballotStyleID, precinctID, err)
			}
			return pdf, nil
		}
	}
	return nil, fmt.Errorf("%w: style=%s precinct=%s type=%s mode=%s",
		ErrBallotNotFound, ballotStyleID, precinctID, ballotType, ballotMode)
}

// BallotForStyle returns the base PDF for the first precinct that uses the style.
func (p *Package) BallotForStyle(ballotStyleID, ballotType, ballotMode string) ([]byte, error) {
	bs, err := p.Election.BallotStyle(ballotStyleID)
	if err != nil {
		return nil, err
	}
	for _, precinctID := range bs.Precincts {
		pdf, err := p.Ballot(ballotStyleID, precinctID, ballotType, ballotMode)
		if err == nil {
			return pdf, nil
		}
		if !errors.Is(err, ErrBallotNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: style=%s type=%s mode=%s", ErrBallotNotFound, ballotStyleID, ballotType, ballotMode)
}
