// Package election exposes the structural truth of an election definition:
// contests, ballot styles, precincts and the printed grid layouts that say
// where every bubble and write-in area sits on a ballot.
//
// An Election is immutable once loaded. Every function in this package is a
// pure lookup over the loaded value and is safe for concurrent use.
package election

import (
	"encoding/json"
	"fmt"
)

// =============================================================================
// ELECTION
// =============================================================================

// Election is the parsed form of election.json.
type Election struct {
	ID           string        `json:"id,omitempty"`
	Title        string        `json:"title"`
	Type         string        `json:"type,omitempty"`
	Date         string        `json:"date,omitempty"`
	State        string        `json:"state,omitempty"`
	County       County        `json:"county"`
	Seal         string        `json:"seal,omitempty"`
	Parties      []Party       `json:"parties,omitempty"`
	Districts    []District    `json:"districts,omitempty"`
	Precincts    []Precinct    `json:"precincts"`
	BallotStyles []BallotStyle `json:"ballotStyles"`
	Contests     []Contest     `json:"-"`
	BallotLayout BallotLayout  `json:"ballotLayout"`
	GridLayouts  []GridLayout  `json:"gridLayouts,omitempty"`
}

// County carries jurisdiction metadata.
type County struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Party is a political party referenced by candidates and ballot styles.
type Party struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	FullName     string `json:"fullName,omitempty"`
	Abbreviation string `json:"abbrev,omitempty"`
}

// District groups contests; ballot styles list the districts they cover.
type District struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Precinct is a voting precinct.
type Precinct struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BallotStyle is the combination of contests a voter in a precinct sees.
type BallotStyle struct {
	ID        string   `json:"id"`
	GroupID   string   `json:"groupId,omitempty"`
	Precincts []string `json:"precincts"`
	Districts []string `json:"districts"`
	PartyID   string   `json:"partyId,omitempty"`
}

// BallotLayout describes the printed ballot format.
type BallotLayout struct {
	PaperSize        PaperSize `json:"paperSize"`
	MetadataEncoding string    `json:"metadataEncoding,omitempty"`
}

// PaperSize names a supported ballot paper size.
type PaperSize string

const (
	PaperLetter   PaperSize = "letter"
	PaperLegal    PaperSize = "legal"
	PaperCustom17 PaperSize = "custom-8.5x17"
	PaperCustom19 PaperSize = "custom-8.5x19"
	PaperCustom22 PaperSize = "custom-8.5x22"
)

// =============================================================================
// CONTESTS
// =============================================================================

// ContestType is the discriminator of the Contest variant.
type ContestType string

const (
	ContestTypeCandidate ContestType = "candidate"
	ContestTypeYesNo     ContestType = "yesno"
)

// Contest is a closed variant: *CandidateContest or *YesNoContest.
// Consumers switch over the concrete types and treat anything else as a
// programming error.
type Contest interface {
	ContestID() string
	ContestDistrictID() string
	ContestTitle() string
	Type() ContestType
	isContest()
}

// Candidate is a person (or a synthetic write-in) that can receive votes.
type Candidate struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	PartyIDs     []string `json:"partyIds,omitempty"`
	IsWriteIn    bool     `json:"isWriteIn,omitempty"`
	WriteInIndex *int     `json:"writeInIndex,omitempty"`
}

// CandidateContest elects Seats candidates.
type CandidateContest struct {
	ID            string      `json:"id"`
	DistrictID    string      `json:"districtId"`
	Title         string      `json:"title"`
	Seats         int         `json:"seats"`
	Candidates    []Candidate `json:"candidates"`
	AllowWriteIns bool        `json:"allowWriteIns"`
	PartyID       string      `json:"partyId,omitempty"`
}

func (c *CandidateContest) ContestID() string         { return c.ID }
func (c *CandidateContest) ContestDistrictID() string { return c.DistrictID }
func (c *CandidateContest) ContestTitle() string      { return c.Title }
func (c *CandidateContest) Type() ContestType         { return ContestTypeCandidate }
func (c *CandidateContest) isContest()                {}

// Candidate returns the declared candidate with the given id.
func (c *CandidateContest) Candidate(id string) (Candidate, bool) {
	for _, cand := range c.Candidates {
		if cand.ID == id {
			return cand, true
		}
	}
	return Candidate{}, false
}

// YesNoOption is one side of a ballot measure.
type YesNoOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// YesNoContest is a ballot measure with exactly two options.
type YesNoContest struct {
	ID          string      `json:"id"`
	DistrictID  string      `json:"districtId"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	YesOption   YesNoOption `json:"yesOption"`
	NoOption    YesNoOption `json:"noOption"`
}

func (c *YesNoContest) ContestID() string         { return c.ID }
func (c *YesNoContest) ContestDistrictID() string { return c.DistrictID }
func (c *YesNoContest) ContestTitle() string      { return c.Title }
func (c *YesNoContest) Type() ContestType         { return ContestTypeYesNo }
func (c *YesNoContest) isContest()                {}

// Option returns the yes or no option with the given id.
func (c *YesNoContest) Option(id string) (YesNoOption, bool) {
	switch id {
	case c.YesOption.ID:
		return c.YesOption, true
	case c.NoOption.ID:
		return c.NoOption, true
	}
	return YesNoOption{}, false
}

// =============================================================================
// GRID LAYOUTS
// =============================================================================

// Side of a sheet.
type Side string

const (
	SideFront Side = "front"
	SideBack  Side = "back"
)

// Outset is measured from a target mark, in grid units.
type Outset struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Rect is an axis-aligned rectangle in grid units, origin top-left.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// GridLayout lists the printed positions for one ballot style.
type GridLayout struct {
	BallotStyleID              string         `json:"ballotStyleId"`
	OptionBoundsFromTargetMark Outset         `json:"optionBoundsFromTargetMark"`
	GridPositions              []GridPosition `json:"-"`
}

// GridPositionType is the discriminator of the GridPosition variant.
type GridPositionType string

const (
	GridPositionTypeOption  GridPositionType = "option"
	GridPositionTypeWriteIn GridPositionType = "write-in"
)

// GridPosition is a closed variant: OptionPosition or WriteInPosition.
type GridPosition interface {
	Base() PositionBase
	Type() GridPositionType
	isGridPosition()
}

// PositionBase holds the fields every grid position shares.
type PositionBase struct {
	SheetNumber int     `json:"sheetNumber"`
	Side        Side    `json:"side"`
	Column      float64 `json:"column"`
	Row         float64 `json:"row"`
	ContestID   string  `json:"contestId"`
}

// OptionPosition is the bubble for a printed candidate or yes/no option.
type OptionPosition struct {
	PositionBase
	OptionID string `json:"optionId"`
}

func (p OptionPosition) Base() PositionBase     { return p.PositionBase }
func (p OptionPosition) Type() GridPositionType { return GridPositionTypeOption }
func (p OptionPosition) isGridPosition()        {}

// WriteInPosition is the bubble plus handwriting area for a write-in line.
type WriteInPosition struct {
	PositionBase
	WriteInIndex int  `json:"writeInIndex"`
	WriteInArea  Rect `json:"writeInArea"`
}

func (p WriteInPosition) Base() PositionBase     { return p.PositionBase }
func (p WriteInPosition) Type() GridPositionType { return GridPositionTypeWriteIn }
func (p WriteInPosition) isGridPosition()        {}

// =============================================================================
// JSON DECODING
// =============================================================================

type typeTag struct {
	Type string `json:"type"`
}

func decodeContest(raw json.RawMessage) (Contest, error) {
	var tag typeTag
	if err := json.Unmarshal(raw, &tag); err != nil {
		return nil, err
	}
	switch ContestType(tag.Type) {
	case ContestTypeCandidate:
		var c CandidateContest
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		if c.Seats < 0 {
			return nil, fmt.Errorf("contest %s: seats must be >= 0, got %d", c.ID, c.Seats)
		}
		return &c, nil
	case ContestTypeYesNo:
		var c YesNoContest
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return &c, nil
	default:
		return nil, fmt.Errorf("unknown contest type %q", tag.Type)
	}
}

func encodeContest(c Contest) (json.RawMessage, error) {
	switch c := c.(type) {
	case *CandidateContest:
		return json.Marshal(struct {
			Type ContestType `json:"type"`
			*CandidateContest
		}{ContestTypeCandidate, c})
	case *YesNoContest:
		return json.Marshal(struct {
			Type ContestType `json:"type"`
			*YesNoContest
		}{ContestTypeYesNo, c})
	default:
		panic(fmt.Sprintf("election: unhandled contest variant %T", c))
	}
}

func decodeGridPosition(raw json.RawMessage) (GridPosition, error) {
	var tag typeTag
	if err := json.Unmarshal(raw, &tag); err != nil {
		return nil, err
	}
	var (
		pos  GridPosition
		base PositionBase
	)
	switch GridPositionType(tag.Type) {
	case GridPositionTypeOption:
		var p OptionPosition
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		pos, base = p, p.PositionBase
	case GridPositionTypeWriteIn:
		var p WriteInPosition
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		pos, base = p, p.PositionBase
	default:
		return nil, fmt.Errorf("unknown grid position type %q", tag.Type)
	}
	if base.Side != SideFront && base.Side != SideBack {
		return nil, fmt.Errorf("grid position for contest %s: invalid side %q", base.ContestID, base.Side)
	}
	if base.SheetNumber < 1 {
		return nil, fmt.Errorf("grid position for contest %s: sheet number must be >= 1", base.ContestID)
	}
	return pos, nil
}

func encodeGridPosition(p GridPosition) (json.RawMessage, error) {
	switch p := p.(type) {
	case OptionPosition:
		return json.Marshal(struct {
			Type GridPositionType `json:"type"`
			OptionPosition
		}{GridPositionTypeOption, p})
	case WriteInPosition:
		return json.Marshal(struct {
			Type GridPositionType `json:"type"`
			WriteInPosition
		}{GridPositionTypeWriteIn, p})
	default:
		panic(fmt.Sprintf("election: unhandled grid position variant %T", p))
	}
}

// UnmarshalJSON decodes the grid positions variant list.
func (g *GridLayout) UnmarshalJSON(data []byte) error {
	type plain GridLayout
	var aux struct {
		plain
		GridPositions []json.RawMessage `json:"gridPositions"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*g = GridLayout(aux.plain)
	g.GridPositions = make([]GridPosition, 0, len(aux.GridPositions))
	for i, raw := range aux.GridPositions {
		pos, err := decodeGridPosition(raw)
		if err != nil {
			return fmt.Errorf("grid layout %s position %d: %w", g.BallotStyleID, i, err)
		}
		g.GridPositions = append(g.GridPositions, pos)
	}
	return nil
}

// MarshalJSON encodes grid positions with their type tags.
func (g GridLayout) MarshalJSON() ([]byte, error) {
	type plain GridLayout
	positions := make([]json.RawMessage, 0, len(g.GridPositions))
	for _, p := range g.GridPositions {
		raw, err := encodeGridPosition(p)
		if err != nil {
			return nil, err
		}
		positions = append(positions, raw)
	}
	return json.Marshal(struct {
		plain
		GridPositions []json.RawMessage `json:"gridPositions"`
	}{plain(g), positions})
}

// UnmarshalJSON decodes the contests variant list.
func (e *Election) UnmarshalJSON(data []byte) error {
	type plain Election
	var aux struct {
		plain
		Contests []json.RawMessage `json:"contests"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*e = Election(aux.plain)
	e.Contests = make([]Contest, 0, len(aux.Contests))
	for i, raw := range aux.Contests {
		c, err := decodeContest(raw)
		if err != nil {
			return fmt.Errorf("contest %d: %w", i, err)
		}
		e.Contests = append(e.Contests, c)
	}
	return nil
}

// MarshalJSON encodes contests with their type tags.
func (e Election) MarshalJSON() ([]byte, error) {
	type plain Election
	contests := make([]json.RawMessage, 0, len(e.Contests))
	for _, c := range e.Contests {
		raw, err := encodeContest(c)
		if err != nil {
			return nil, err
		}
		contests = append(contests, raw)
	}
	return json.Marshal(struct {
		plain
		Contests []json.RawMessage `json:"contests"`
	}{plain(e), contests})
}

// Parse decodes election.json.
func Parse(data []byte) (*Election, error) {
	var e Election
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to parse election: %w", err)
	}
	return &e, nil
}
