package streamreader

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/koivunej/minipb/minipbcfg"
	"github.com/koivunej/minipb/minipbmetrics"
)

// ByteSource is a blocking source of input bytes: Read behaves like
// io.Reader, blocking until at least one byte is available, returning
// io.EOF once the source is exhausted. The scanner places no further
// requirement on it, so any io.Reader already satisfies it.
type ByteSource interface {
	Read(p []byte) (n int, err error)
}

// FromIOReader adapts an io.Reader into a ByteSource. It is the only
// concrete ByteSource this package provides; a non-blocking, multiplexed,
// or otherwise specialized source is the caller's to implement.
func FromIOReader(r io.Reader) ByteSource {
	return r
}

// ErrRecordTooLarge is returned when satisfying a NeedMoreBytes
// suspension would grow the buffer past limits.MaxRecordSize.
var ErrRecordTooLarge = errors.New("streamreader: record exceeds configured size limit")

// pump owns the growable buffer a Reader or GatheredReader refills from
// a ByteSource. Unlike Reader itself, it carries no scanner-level
// generics: it only knows how to compact bytes up to a caller-supplied
// retention floor and grow to satisfy a minimum additional byte count,
// so both Reader (floor = the scanner's own cursor) and GatheredReader
// (floor = a gatherer's RetentionFloor) can share it.
type pump struct {
	source ByteSource

	buf     []byte
	baseOff int64
	filled  int

	maxRecordSize int64
	log           zerolog.Logger
}

// Option configures a Reader or GatheredReader's underlying pump.
type Option func(*pump)

// WithLogger overrides the zerolog.Logger used for debug/warn output.
func WithLogger(l zerolog.Logger) Option {
	return func(p *pump) { p.log = l }
}

func newPump(source ByteSource, limits minipbcfg.Limits, opts ...Option) *pump {
	initial := limits.InitialBufferSize
	if initial <= 0 {
		initial = 4096
	}
	p := &pump{
		source:        source,
		buf:           make([]byte, initial),
		maxRecordSize: limits.MaxRecordSize,
		log:           log.With().Str("component", "streamreader").Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// window is the buffered span the pump currently holds, anchored at
// absolute offset baseOff.
func (p *pump) window() []byte { return p.buf[:p.filled] }

// fill compacts bytes before floor out of the buffer, grows the buffer
// if necessary, and reads from the source until at least minAdditional
// more bytes beyond those already buffered are held (or the source is
// exhausted). No read fills the buffer past maxRecordSize bytes. floor is the absolute offset before which bytes may safely
// be discarded; callers that must keep an in-progress record's opening
// bytes around pass that record's start instead of the scanner's own
// cursor.
func (p *pump) fill(minAdditional int, floor int64) error {
	consumedLocal := int(floor - p.baseOff)
	if consumedLocal > 0 {
		copy(p.buf, p.buf[consumedLocal:p.filled])
		p.filled -= consumedLocal
		p.baseOff += int64(consumedLocal)
	}

	needed := p.filled + minAdditional
	if p.maxRecordSize > 0 && int64(needed) > p.maxRecordSize {
		return ErrRecordTooLarge
	}
	if needed > len(p.buf) {
		grown := make([]byte, needed*2)
		copy(grown, p.buf[:p.filled])
		p.buf = grown
	}

	readEnd := len(p.buf)
	if p.maxRecordSize > 0 && int64(readEnd) > p.maxRecordSize {
		readEnd = int(p.maxRecordSize)
	}
	for p.filled < needed {
		n, err := p.source.Read(p.buf[p.filled:readEnd])
		if n > 0 {
			p.filled += n
			minipbmetrics.BytesConsumed.Add(float64(n))
		}
		if err != nil {
			if errors.Is(err, io.EOF) && p.filled >= needed {
				return nil
			}
			if errors.Is(err, io.EOF) {
				return io.ErrUnexpectedEOF
			}
			return fmt.Errorf("minipb: reading source: %w", err)
		}
	}
	return nil
}
