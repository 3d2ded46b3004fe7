// Package streamreader pumps bytes from a blocking byte source into a
// growable buffer and drives a scanner.Fields (or a gather.GatheredFields
// built on one) over it, refilling on NeedMoreBytes and compacting bytes
// nothing downstream will ever revisit.
package streamreader

import (
	"errors"

	"github.com/koivunej/minipb/minipbcfg"
	"github.com/koivunej/minipb/minipbmetrics"
	"github.com/koivunej/minipb/scanner"
)

// Reader pumps a ByteSource into a growable buffer and drives a
// scanner.Fields over it. limits.MaxNestingDepth bounds the Fields it
// constructs; limits.InitialBufferSize and limits.MaxRecordSize bound
// its buffer.
type Reader[S any, T any] struct {
	p      *pump
	fields *scanner.Fields[S, T]
}

// New constructs a Reader pumping source into a Fields built from
// matcher, state, startOffset and outerLimit, with limits governing both
// the Fields' nesting depth and the Reader's buffer.
func New[S any, T any](source ByteSource, matcher scanner.Matcher[S, T], state S, startOffset, outerLimit int64, limits minipbcfg.Limits, opts ...Option) *Reader[S, T] {
	fields := scanner.NewFields[S, T](matcher, state, startOffset, outerLimit, limits.MaxNestingDepth)
	return &Reader[S, T]{p: newPump(source, limits, opts...), fields: fields}
}

// Next pumps the source until the scanner produces a Step other than
// NeedMoreBytes.
func (r *Reader[S, T]) Next() scanner.Step[T] {
	for {
		step := r.fields.Advance(r.p.window(), r.p.baseOff)
		if step.Kind != scanner.NeedMoreBytes {
			recordMetrics(step)
			return step
		}

		r.p.log.Debug().
			Int64("offset", r.fields.Offset()).
			Int("min_additional", step.MinAdditional).
			Msg("need more bytes")

		if err := r.p.fill(step.MinAdditional, r.fields.Offset()); err != nil {
			r.p.log.Warn().Err(err).Msg("byte source exhausted before satisfying request")
			return scanner.Step[T]{Kind: scanner.Error, Err: err}
		}
	}
}

func recordMetrics[T any](step scanner.Step[T]) {
	switch step.Kind {
	case scanner.Matched:
		minipbmetrics.FieldsEmitted.Inc()
	case scanner.ScopeOpened:
		minipbmetrics.FramesEntered.Inc()
	case scanner.EndOfScope:
		minipbmetrics.FramesClosed.Inc()
	case scanner.Error:
		minipbmetrics.DecodeErrors.WithLabelValues(errorKind(step.Err)).Inc()
	}
}

func errorKind(err error) string {
	switch err.(type) {
	case *scanner.FramingError:
		return "framing"
	default:
		if errors.Is(err, scanner.ErrNestingTooDeep) {
			return "nesting"
		}
		if errors.Is(err, ErrRecordTooLarge) {
			return "record_too_large"
		}
		return "wire"
	}
}
