package streamreader

import (
	"github.com/koivunej/minipb/gather"
	"github.com/koivunej/minipb/minipbcfg"
	"github.com/koivunej/minipb/minipbmetrics"
	"github.com/koivunej/minipb/scanner"
)

// GatheredReader pumps a ByteSource into a growable buffer and drives a
// gather.GatheredFields over it, clamping how much of the buffer it may
// compact away to the GatheredFields' own RetentionFloor rather than the
// underlying scanner's cursor, so an in-progress record's opening bytes
// survive even after the scanner has read past them.
type GatheredReader[S any, T any, R any] struct {
	p  *pump
	gf *gather.GatheredFields[S, T, R]
}

// NewGathered constructs a GatheredReader pumping source into a
// gather.GatheredFields built from matcher, state, startOffset,
// outerLimit, begin and gatherer, with limits governing both the
// underlying Fields' nesting depth and the Reader's buffer.
func NewGathered[S any, T any, R any](
	source ByteSource,
	matcher scanner.Matcher[S, T],
	state S,
	startOffset, outerLimit int64,
	limits minipbcfg.Limits,
	begin func(tag T) bool,
	gatherer gather.Gatherer[T, R],
	opts ...Option,
) *GatheredReader[S, T, R] {
	fields := scanner.NewFields[S, T](matcher, state, startOffset, outerLimit, limits.MaxNestingDepth)
	gf := gather.NewGatheredFields[S, T, R](fields, begin, gatherer)
	return &GatheredReader[S, T, R]{p: newPump(source, limits, opts...), gf: gf}
}

// Next pumps the source until a record finishes assembling, the document
// scope closes, or a terminal error occurs.
func (r *GatheredReader[S, T, R]) Next() (R, gather.Status) {
	for {
		rec, status := r.gf.Next(r.p.window(), r.p.baseOff)
		if status.Kind != gather.StatusNeedMoreBytes {
			recordGatherMetrics(status)
			return rec, status
		}

		r.p.log.Debug().
			Int64("retention_floor", r.gf.RetentionFloor()).
			Int("min_additional", status.MinAdditional).
			Msg("need more bytes")

		if err := r.p.fill(status.MinAdditional, r.gf.RetentionFloor()); err != nil {
			r.p.log.Warn().Err(err).Msg("byte source exhausted before satisfying request")
			var zero R
			return zero, gather.Status{Kind: gather.StatusError, Err: err}
		}
	}
}

func recordGatherMetrics(status gather.Status) {
	switch status.Kind {
	case gather.StatusRecord:
		minipbmetrics.FramesClosed.Inc()
	case gather.StatusError:
		minipbmetrics.DecodeErrors.WithLabelValues(errorKind(status.Err)).Inc()
	}
}
