// Package gather assembles scanner events that fall within one
// user-declared record scope into a typed record, without requiring the
// whole record to be buffered up front: only the bytes between a
// record's opening and its close need stay retained.
package gather

import "github.com/koivunej/minipb/scanner"

// Gatherer assembles one record from the events the scanner surfaced
// inside that record's scope, together with the record's own borrowed
// byte span. It is called once, when the EndOfScope event matching the
// record's opening scope fires.
//
// slice is buf[record_start_offset:current_offset), still anchored to
// whatever buffer the caller passed to the Next call that closed the
// record; it borrows those bytes and is only valid until the caller
// discards them. events lists every event observed at or below the
// record's own depth, in order, including its own ScopeOpened and
// EndOfScope events. Gatherer may fail, e.g. if the accumulated events
// don't describe a well-formed record.
type Gatherer[T any, R any] func(slice []byte, events []scanner.Step[T]) (R, error)

// StatusKind identifies what a Next call reports.
type StatusKind uint8

const (
	// StatusRecord reports that a record finished assembling.
	StatusRecord StatusKind = iota
	// StatusNeedMoreBytes mirrors the underlying scanner's suspension.
	StatusNeedMoreBytes
	// StatusDone reports that the document scope closed. A record whose
	// scope closed without an EndOfScope event at its own depth is never
	// handed to gather; StatusDone is reported regardless.
	StatusDone
	// StatusError reports a terminal scanner error.
	StatusError
)

// Status is the non-record-bearing half of a Next result.
type Status struct {
	Kind          StatusKind
	MinAdditional int
	Err           error
}

// GatheredFields drives a scanner.Fields, accumulates the events that
// fall within an accepted record's scope, and calls gather to assemble
// the finished record once that scope closes.
type GatheredFields[S any, T any, R any] struct {
	fields *scanner.Fields[S, T]
	begin  func(tag T) bool
	gather Gatherer[T, R]

	active      bool
	events      []scanner.Step[T]
	recordDepth int
	recordStart int64
}

// NewGatheredFields constructs a GatheredFields driving fields. Whenever
// the scanner opens a scope while no record is in progress, begin is
// consulted with that scope's tag; if it returns true, the scanner's
// events from that scope onward are accumulated and handed to gather
// once the scope closes.
func NewGatheredFields[S any, T any, R any](fields *scanner.Fields[S, T], begin func(tag T) bool, gatherer Gatherer[T, R]) *GatheredFields[S, T, R] {
	return &GatheredFields[S, T, R]{fields: fields, begin: begin, gather: gatherer}
}

// RetentionFloor is the absolute offset before which the caller's buffer
// may safely discard bytes: while a record is in progress this pins the
// floor to that record's opening offset, even though the scanner's own
// cursor has moved past it.
func (g *GatheredFields[S, T, R]) RetentionFloor() int64 {
	if g.active {
		return g.recordStart
	}
	return g.fields.Offset()
}

// Next drives the scanner until a record finishes assembling, the
// scanner suspends on NeedMoreBytes, the document scope closes, or a
// terminal error occurs. buf must still hold every byte from
// RetentionFloor() onward; Next uses buf and base to borrow a closing
// record's byte span when it hands the record to gather.
func (g *GatheredFields[S, T, R]) Next(buf []byte, base int64) (R, Status) {
	var zero R
	for {
		step := g.fields.Advance(buf, base)

		switch step.Kind {
		case scanner.NeedMoreBytes:
			return zero, Status{Kind: StatusNeedMoreBytes, MinAdditional: step.MinAdditional}

		case scanner.Error:
			return zero, Status{Kind: StatusError, Err: step.Err}

		case scanner.Done:
			return zero, Status{Kind: StatusDone}

		case scanner.ScopeOpened:
			if !g.active && g.begin(step.Tag) {
				g.active = true
				g.recordDepth = step.PathDepth
				g.recordStart = step.AbsOffset
				g.events = g.events[:0]
			}
			if g.active {
				g.events = append(g.events, step)
			}

		case scanner.EndOfScope:
			if g.active {
				g.events = append(g.events, step)
				if step.PathDepth == g.recordDepth {
					start := g.recordStart - base
					end := g.fields.Offset() - base
					slice := buf[start:end]
					record, err := g.gather(slice, g.events)
					g.active = false
					g.events = nil
					if err != nil {
						return zero, Status{Kind: StatusError, Err: err}
					}
					return record, Status{Kind: StatusRecord}
				}
			}

		default: // Matched, Skipped
			if g.active {
				g.events = append(g.events, step)
			}
		}
	}
}
