package electiontest

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/json"

	"ballotqa/internal/election"
)

// PackageZip builds an election package around the sample election with one
// precinct/test ballot per ballot style and precinct. pdfFor supplies the
// blank ballot for each style.
func PackageZip(pdfFor func(ballotStyleID string) []byte) []byte {
	e := Sample()

	compact := false
	var lines bytes.Buffer
	for _, bs := range e.BallotStyles {
		for _, precinctID := range bs.Precincts {
			line, err := json.Marshal(election.BallotEntry{
				BallotStyleID: bs.ID,
				PrecinctID:    precinctID,
				BallotType:    election.BallotTypePrecinct,
				BallotMode:    election.BallotModeTest,
				Compact:       &compact,
				EncodedBallot: base64.StdEncoding.EncodeToString(pdfFor(bs.ID)),
			})
			if err != nil {
				panic(err)
			}
			lines.Write(line)
			lines.WriteByte('\n')
		}
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range map[string][]byte{
		election.ElectionFileName:       []byte(SampleJSON),
		election.SystemSettingsFileName: []byte(`{}`),
		election.BallotsFileName:        lines.Bytes(),
	} {
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write(data); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
