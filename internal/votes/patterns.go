package votes

import (
	"fmt"

	"ballotqa/internal/election"
	"ballotqa/internal/logging"
)

// Pattern names a known test pattern.
type Pattern string

const (
	PatternValid           Pattern = "valid"
	PatternOvervote        Pattern = "overvote"
	PatternMarkedWriteIn   Pattern = "marked-write-in"
	PatternUnmarkedWriteIn Pattern = "unmarked-write-in"
	PatternBlank           Pattern = "blank"
)

// AllPatterns lists every pattern in generation order.
var AllPatterns = []Pattern{
	PatternValid,
	PatternOvervote,
	PatternMarkedWriteIn,
	PatternUnmarkedWriteIn,
	PatternBlank,
}

// ParsePattern validates a pattern name.
func ParsePattern(s string) (Pattern, error) {
	for _, p := range AllPatterns {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown vote pattern %q (valid: %v)", s, AllPatterns)
}

// Result is the outcome of generating one pattern. A pattern that cannot be
// realized for a ballot style is not applicable: it carries no votes and the
// caller must skip it.
type Result struct {
	pattern    Pattern
	votes      Dict
	applicable bool
}

// Applicable wraps the votes produced for a pattern.
func Applicable(p Pattern, d Dict) Result {
	return Result{pattern: p, votes: d.Clone(), applicable: true}
}

// NotApplicable is the result for a pattern that cannot be realized.
func NotApplicable(p Pattern) Result {
	return Result{pattern: p}
}

// Pattern returns the pattern that produced the result.
func (r Result) Pattern() Pattern { return r.pattern }

// IsApplicable reports whether the pattern produced votes.
func (r Result) IsApplicable() bool { return r.applicable }

// Votes returns a copy of the votes and whether the pattern was applicable.
func (r Result) Votes() (Dict, bool) {
	if !r.applicable {
		return nil, false
	}
	return r.votes.Clone(), true
}

// Generate runs the generator for p over the contests of one ballot style.
func Generate(p Pattern, contests []election.Contest) Result {
	switch p {
	case PatternValid:
		return Applicable(p, GenerateValidVotes(contests))
	case PatternOvervote:
		return GenerateOvervoteVotes(contests)
	case PatternMarkedWriteIn, PatternUnmarkedWriteIn:
		r := GenerateWriteInVotes(contests)
		if d, ok := r.Votes(); ok {
			return Applicable(p, d)
		}
		return NotApplicable(p)
	case PatternBlank:
		return Applicable(p, GenerateBlankVotes())
	default:
		panic(fmt.Sprintf("votes: unhandled pattern %q", p))
	}
}

// =============================================================================
// GENERATORS
// =============================================================================

func realCandidates(c *election.CandidateContest) []election.Candidate {
	out := make([]election.Candidate, 0, len(c.Candidates))
	for _, cand := range c.Candidates {
		if !cand.IsWriteIn {
			out = append(out, cand)
		}
	}
	return out
}

func candidateVotes(cands []election.Candidate) []Vote {
	out := make([]Vote, 0, len(cands))
	for _, c := range cands {
		out = append(out, CandidateVote{Candidate: c})
	}
	return out
}

// validSelection fills up to Seats with real candidates in declaration order,
// then with synthetic write-ins when the contest allows them.
func validSelection(c *election.CandidateContest) []Vote {
	cands := realCandidates(c)
	n := min(c.Seats, len(cands))
	selected := candidateVotes(cands[:n])
	if c.AllowWriteIns {
		for i := 0; len(selected) < c.Seats; i++ {
			selected = append(selected, CandidateVote{Candidate: WriteInCandidate(i, TestWriteInName)})
		}
	}
	return selected
}

// GenerateValidVotes selects a full, valid ballot: the first Seats candidates
// of every candidate contest (padded with write-ins when allowed) and "yes" on
// every yes/no contest.
func GenerateValidVotes(contests []election.Contest) Dict {
	d := make(Dict, len(contests))
	for _, contest := range contests {
		switch c := contest.(type) {
		case *election.CandidateContest:
			d[c.ID] = validSelection(c)
		case *election.YesNoContest:
			d[c.ID] = []Vote{OptionVote(c.YesOption.ID)}
		default:
			panic(fmt.Sprintf("votes: unhandled contest variant %T", contest))
		}
	}
	return d
}

// OvervoteSelection returns a minimal overvote for one contest. The boolean is
// false when the contest cannot be overvoted; the selection is then a normal
// Seats-sized one.
func OvervoteSelection(contest election.Contest) ([]Vote, bool) {
	switch c := contest.(type) {
	case *election.CandidateContest:
		pool := candidateVotes(realCandidates(c))
		if c.AllowWriteIns {
			for i := 0; i < c.Seats; i++ {
				pool = append(pool, CandidateVote{Candidate: WriteInCandidate(i, TestWriteInName)})
			}
		}
		if len(pool) > c.Seats {
			return pool[:c.Seats+1], true
		}
		return pool[:min(c.Seats, len(pool))], false
	case *election.YesNoContest:
		return []Vote{OptionVote(c.YesOption.ID), OptionVote(c.NoOption.ID)}, true
	default:
		panic(fmt.Sprintf("votes: unhandled contest variant %T", contest))
	}
}

// GenerateOvervoteVotes overvotes every contest that can be overvoted and
// votes normally elsewhere. If no contest could be overvoted the pattern is
// not applicable.
func GenerateOvervoteVotes(contests []election.Contest) Result {
	d := make(Dict, len(contests))
	overvoted := 0
	for _, contest := range contests {
		selection, ok := OvervoteSelection(contest)
		if ok {
			overvoted++
		} else {
			logging.VotesDebug("contest %s cannot be overvoted, voting normally", contest.ContestID())
		}
		d[contest.ContestID()] = selection
	}
	if overvoted == 0 {
		return NotApplicable(PatternOvervote)
	}
	return Applicable(PatternOvervote, d)
}

// GenerateWriteInVotes casts one write-in in every candidate contest that
// allows write-ins and has at least one seat. Nothing else is voted. If no
// contest is eligible the pattern is not applicable.
func GenerateWriteInVotes(contests []election.Contest) Result {
	d := make(Dict)
	for _, contest := range contests {
		switch c := contest.(type) {
		case *election.CandidateContest:
			if c.AllowWriteIns && c.Seats > 0 {
				d[c.ID] = []Vote{CandidateVote{Candidate: WriteInCandidate(0, TestWriteInName)}}
			}
		case *election.YesNoContest:
		default:
			panic(fmt.Sprintf("votes: unhandled contest variant %T", contest))
		}
	}
	if len(d) == 0 {
		return NotApplicable(PatternMarkedWriteIn)
	}
	return Applicable(PatternMarkedWriteIn, d)
}

// GenerateBlankVotes returns an empty ballot.
func GenerateBlankVotes() Dict {
	return Dict{}
}
