// Package electiontest provides a small but complete election definition for
// tests in other packages.
//
// The sample has two ballot styles. bs-1 is a single sheet (mayor on the
// front, council on the back). bs-2 is two sheets: mayor and council on sheet
// 1, the proposition and the board contest on sheet 2.
package electiontest

import (
	"ballotqa/internal/election"
)

// SampleJSON is election.json for the sample election.
const SampleJSON = `{
  "id": "sample-election",
  "title": "Sample General Election",
  "type": "general",
  "date": "2026-11-03",
  "state": "Demo State",
  "county": {"id": "county-1", "name": "Demo County"},
  "parties": [
    {"id": "party-a", "name": "Alpha", "fullName": "Alpha Party", "abbrev": "A"},
    {"id": "party-b", "name": "Beta", "fullName": "Beta Party", "abbrev": "B"}
  ],
  "districts": [
    {"id": "d1", "name": "City"},
    {"id": "d2", "name": "County"}
  ],
  "precincts": [
    {"id": "p1", "name": "North"},
    {"id": "p2", "name": "South"}
  ],
  "ballotStyles": [
    {"id": "bs-1", "precincts": ["p1"], "districts": ["d1"]},
    {"id": "bs-2", "precincts": ["p1", "p2"], "districts": ["d1", "d2"]}
  ],
  "contests": [
    {
      "type": "candidate", "id": "mayor", "districtId": "d1", "title": "Mayor",
      "seats": 1, "allowWriteIns": true,
      "candidates": [
        {"id": "alice", "name": "Alice Adams", "partyIds": ["party-a"]},
        {"id": "bob", "name": "Bob Brown", "partyIds": ["party-b"]}
      ]
    },
    {
      "type": "candidate", "id": "council", "districtId": "d1", "title": "City Council",
      "seats": 2, "allowWriteIns": false,
      "candidates": [
        {"id": "carol", "name": "Carol Chen"},
        {"id": "dave", "name": "Dave Diaz"},
        {"id": "erin", "name": "Erin Evans"}
      ]
    },
    {
      "type": "yesno", "id": "prop-1", "districtId": "d2", "title": "Proposition 1",
      "description": "Shall the county build a library?",
      "yesOption": {"id": "prop-1-yes", "label": "Yes"},
      "noOption": {"id": "prop-1-no", "label": "No"}
    },
    {
      "type": "candidate", "id": "board", "districtId": "d2", "title": "School Board",
      "seats": 3, "allowWriteIns": true,
      "candidates": [
        {"id": "frank", "name": "Frank Foster"}
      ]
    }
  ],
  "ballotLayout": {"paperSize": "letter", "metadataEncoding": "qr-code"},
  "gridLayouts": [
    {
      "ballotStyleId": "bs-1",
      "optionBoundsFromTargetMark": {"top": 1, "left": 1, "right": 9, "bottom": 1},
      "gridPositions": [
        {"type": "option", "sheetNumber": 1, "side": "front", "column": 2, "row": 10, "contestId": "mayor", "optionId": "alice"},
        {"type": "option", "sheetNumber": 1, "side": "front", "column": 2, "row": 12, "contestId": "mayor", "optionId": "bob"},
        {"type": "write-in", "sheetNumber": 1, "side": "front", "column": 2, "row": 14, "contestId": "mayor", "writeInIndex": 0,
         "writeInArea": {"x": 2.5, "y": 13.5, "width": 8, "height": 1}},
        {"type": "option", "sheetNumber": 1, "side": "back", "column": 2, "row": 10, "contestId": "council", "optionId": "carol"},
        {"type": "option", "sheetNumber": 1, "side": "back", "column": 2, "row": 12, "contestId": "council", "optionId": "dave"},
        {"type": "option", "sheetNumber": 1, "side": "back", "column": 2, "row": 14, "contestId": "council", "optionId": "erin"}
      ]
    },
    {
      "ballotStyleId": "bs-2",
      "optionBoundsFromTargetMark": {"top": 1, "left": 1, "right": 9, "bottom": 1},
      "gridPositions": [
        {"type": "option", "sheetNumber": 1, "side": "front", "column": 2, "row": 10, "contestId": "mayor", "optionId": "alice"},
        {"type": "option", "sheetNumber": 1, "side": "front", "column": 2, "row": 12, "contestId": "mayor", "optionId": "bob"},
        {"type": "write-in", "sheetNumber": 1, "side": "front", "column": 2, "row": 14, "contestId": "mayor", "writeInIndex": 0,
         "writeInArea": {"x": 2.5, "y": 13.5, "width": 8, "height": 1}},
        {"type": "option", "sheetNumber": 1, "side": "back", "column": 2, "row": 10, "contestId": "council", "optionId": "carol"},
        {"type": "option", "sheetNumber": 1, "side": "back", "column": 2, "row": 12, "contestId": "council", "optionId": "dave"},
        {"type": "option", "sheetNumber": 1, "side": "back", "column": 2, "row": 14, "contestId": "council", "optionId": "erin"},
        {"type": "option", "sheetNumber": 2, "side": "front", "column": 12, "row": 10, "contestId": "prop-1", "optionId": "prop-1-yes"},
        {"type": "option", "sheetNumber": 2, "side": "front", "column": 12, "row": 12, "contestId": "prop-1", "optionId": "prop-1-no"},
        {"type": "option", "sheetNumber": 2, "side": "back", "column": 2, "row": 10, "contestId": "board", "optionId": "frank"},
        {"type": "write-in", "sheetNumber": 2, "side": "back", "column": 2, "row": 12, "contestId": "board", "writeInIndex": 0,
         "writeInArea": {"x": 2.5, "y": 11.5, "width": 8, "height": 1}},
        {"type": "write-in", "sheetNumber": 2, "side": "back", "column": 2, "row": 14, "contestId": "board", "writeInIndex": 1,
         "writeInArea": {"x": 2.5, "y": 13.5, "width": 8, "height": 1}},
        {"type": "write-in", "sheetNumber": 2, "side": "back", "column": 2, "row": 16, "contestId": "board", "writeInIndex": 2,
         "writeInArea": {"x": 2.5, "y": 15.5, "width": 8, "height": 1}}
      ]
    }
  ]
}`

// Sample returns a freshly parsed copy of the sample election.
func Sample() *election.Election {
	e, err := election.Parse([]byte(SampleJSON))
	if err != nil {
		panic("electiontest: sample election does not parse: " + err.Error())
	}
	return e
}
