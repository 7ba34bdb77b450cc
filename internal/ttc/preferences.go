// Package ttc implements Gale's top-trading-cycles algorithm over strict
// preferences. It is a pure function of its input: no I/O, no logging, no
// randomness. This is the only part of the system that also runs inside
// the zero-knowledge guest (see internal/guest).
package ttc

import (
	"fmt"

	"github.com/l-adic/ttc-monitor/internal/ttcerr"
)

// Entry is one participant's strict preference list, highest-preference
// first. A participant's own value may appear anywhere in Prefs by
// convention; anything at or after that position is ignored, since it is
// equivalent to absence (spec: preferences are strict, and self acts as a
// terminator for the ranked list).
type Entry[V comparable] struct {
	Participant V
	Prefs       []V
}

// Preferences is the validated, order-preserving input to Solve. Go maps
// do not have a stable iteration order, so Preferences keeps the caller's
// insertion order explicitly: the solver's tie-breaking (which surviving
// vertex starts each cycle search) is defined over that order, making
// Solve deterministic for a fixed input ordering.
type Preferences[V comparable] struct {
	order []V
	prefs map[V][]V
}

// NewPreferences validates entries and builds a Preferences value.
//
// Fails with ttcerr.ErrEmptyInput if entries is empty, and with
// ttcerr.ErrInvalidReference if any preference names a value that is not
// itself a participant in entries.
func NewPreferences[V comparable](entries []Entry[V]) (*Preferences[V], error) {
	if len(entries) == 0 {
		return nil, ttcerr.ErrEmptyInput
	}

	participants := make(map[V]struct{}, len(entries))
	order := make([]V, 0, len(entries))
	for _, e := range entries {
		if _, dup := participants[e.Participant]; !dup {
			order = append(order, e.Participant)
		}
		participants[e.Participant] = struct{}{}
	}

	prefs := make(map[V][]V, len(entries))
	for _, e := range entries {
		trimmed := make([]V, 0, len(e.Prefs))
		for _, p := range e.Prefs {
			if p == e.Participant {
				// Convention: self terminates the ranked list; anything
				// at or after this position never influences top choice.
				break
			}
			if _, ok := participants[p]; !ok {
				return nil, fmt.Errorf("%w: %v lists %v", ttcerr.ErrInvalidReference, e.Participant, p)
			}
			trimmed = append(trimmed, p)
		}
		prefs[e.Participant] = trimmed
	}

	return &Preferences[V]{order: order, prefs: prefs}, nil
}

// Participants returns the participants in insertion order.
func (p *Preferences[V]) Participants() []V {
	out := make([]V, len(p.order))
	copy(out, p.order)
	return out
}

// Rank reports the zero-based position of value in participant's
// preference list, or ok=false if value does not appear there (including
// when value is the participant itself, or appears only after it).
func (p *Preferences[V]) Rank(participant, value V) (rank int, ok bool) {
	list, exists := p.prefs[participant]
	if !exists {
		return 0, false
	}
	for i, v := range list {
		if v == value {
			return i, true
		}
	}
	return 0, false
}

// List returns the (already self-truncated) preference list for a
// participant.
func (p *Preferences[V]) List(participant V) []V {
	list := p.prefs[participant]
	out := make([]V, len(list))
	copy(out, list)
	return out
}
