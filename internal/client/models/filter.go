package models

import "strings"

// SearchFilter narrows the candidate directory. Zero values match
// everything; the age bounds are inclusive.
type SearchFilter struct {
	Gender       string
	AgeFrom      int
	AgeTo        int
	MotherTongue string
}

func (f SearchFilter) Match(c MatchCandidate) bool {
	if f.Gender != "" && !strings.EqualFold(c.Gender, f.Gender) {
		return false
	}
	if f.AgeFrom > 0 && c.Age < f.AgeFrom {
		return false
	}
	if f.AgeTo > 0 && c.Age > f.AgeTo {
		return false
	}
	if f.MotherTongue != "" && !strings.EqualFold(c.MotherTongue, f.MotherTongue) {
		return false
	}
	return true
}

// FilterCandidates returns the candidates matching f, in input order.
// The result is never nil.
func FilterCandidates(all []MatchCandidate, f SearchFilter) []MatchCandidate {
	out := make([]MatchCandidate, 0, len(all))
	for _, c := range all {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	return out
}
