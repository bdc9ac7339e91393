// Package collab defines the external collaborator contracts spec.md §6
// leaves outside the streaming core: a silence gate, a pitch estimator,
// and the candidate list an external Viterbi selector scores. Nothing in
// internal/detfunc or internal/transient calls into this package; it
// exists so a future caller has typed contracts instead of a comment.
package collab

import "github.com/onsetgo/correntropy/internal/errors"

// Candidate is one pitch hypothesis at a detection-function frame: a
// frequency with a confidence weight, plus the cost and backlink an
// external Viterbi pass fills in once it scores the path leading to it.
// Ported from original_source/candidates.h's struct candidate, renaming
// indexLowestCost to BacklinkIndex (that's what it actually holds: the
// index, in the previous frame's CandidateList, of the cheapest
// predecessor on the best path so far).
type Candidate struct {
	Frequency     float64
	Confidence    int
	Cost          float64
	BacklinkIndex int
}

// CandidateList is an append-only, pre-sized list of Candidate, mirroring
// original_source/candidates.c's candidateListCreate/Add/Resize family.
// detfunc never constructs one of these; it exists so an external
// Viterbi selector has a typed home for per-frame pitch hypotheses.
type CandidateList struct {
	items []Candidate
}

// NewCandidateList preallocates capacity for maxLength candidates,
// mirroring candidateListCreate.
func NewCandidateList(maxLength int) *CandidateList {
	return &CandidateList{items: make([]Candidate, 0, maxLength)}
}

// Len reports how many candidates have been added so far.
func (l *CandidateList) Len() int { return len(l.items) }

// Get returns the candidate at index, mirroring candidateListGet.
func (l *CandidateList) Get(index int) (Candidate, error) {
	if index < 0 || index >= len(l.items) {
		return Candidate{}, invariantErr("candidate index out of range")
	}
	return l.items[index], nil
}

// Add appends a new candidate with the given frequency and confidence,
// cost 0 and no backlink yet, mirroring candidateListAdd.
func (l *CandidateList) Add(frequency float64, confidence int) {
	l.items = append(l.items, Candidate{
		Frequency:     frequency,
		Confidence:    confidence,
		BacklinkIndex: -1,
	})
}

// ResizeDown trims the list's backing capacity down to its current
// length, mirroring candidateListResize (a realloc down to list->length
// in the source; Go's slices don't need the failure-path the source
// left as a TODO, since append never shrinks capacity on its own).
func (l *CandidateList) ResizeDown() {
	trimmed := make([]Candidate, len(l.items))
	copy(trimmed, l.items)
	l.items = trimmed
}

// AdjustCost sets the running cost and backlink for the candidate at
// index, mirroring candidateListAdjustCost.
func (l *CandidateList) AdjustCost(index int, cost float64, backlinkIndex int) error {
	if index < 0 || index >= len(l.items) {
		return invariantErr("candidate index out of range")
	}
	l.items[index].Cost = cost
	l.items[index].BacklinkIndex = backlinkIndex
	return nil
}

func invariantErr(msg string) error {
	return errors.New(errors.NewStd(msg)).
		Component("collab").
		Category(errors.CategoryCollab).
		Build()
}
