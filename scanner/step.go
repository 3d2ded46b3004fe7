package scanner

import "github.com/koivunej/minipb/wire"

// Kind identifies what a Step reports.
type Kind uint8

const (
	// Matched reports a field an Emit (or Enter on a non length-delimited
	// field) decision surfaced.
	Matched Kind = iota
	// Skipped reports that a field was consumed without being surfaced.
	Skipped
	// ScopeOpened reports that the scanner descended into a nested
	// length-delimited scope, per an Enter decision that carried a tag.
	ScopeOpened
	// EndOfScope reports that a scope was popped and its Matcher.Closed
	// call returned a tag.
	EndOfScope
	// NeedMoreBytes reports that buf did not contain enough bytes to make
	// progress. The cursor did not advance (a pending length-delimited
	// Skip or Emit is remembered); retry with at least MinAdditional more
	// bytes appended to the same logical stream.
	NeedMoreBytes
	// Done reports that the outermost scope has closed; scanning is
	// finished and no further Advance calls will make progress.
	Done
	// Error reports a terminal decode or framing failure. Every
	// subsequent Advance call returns the same error.
	Error
)

// Slice identifies a span of the input stream in absolute coordinates.
// It borrows from the caller's buffer: it is only valid until bytes
// before its end are discarded from that buffer.
type Slice struct {
	Offset int64
	Len    int64
}

// Value is the decoded payload of a Matched or ScopeOpened event. Number
// holds the raw bit pattern for Varint/Fixed32/Fixed64 fields; Slice
// identifies the payload span for LengthDelimited fields.
type Value struct {
	Type   wire.Type
	Number uint64
	Slice  Slice
}

// Step is the single result of one Fields.Advance call.
type Step[T any] struct {
	Kind Kind

	// AbsOffset is the field's header offset for Varint/Fixed32/Fixed64
	// fields, and the payload's start offset for LengthDelimited fields.
	// Valid for Matched and ScopeOpened.
	AbsOffset int64

	// PathDepth is the scope depth the field or closed scope was found
	// at; the outermost document scope is depth 0. For ScopeOpened it is
	// the depth of the newly opened scope, one deeper than the field that
	// opened it, so it equals the PathDepth of that scope's EndOfScope.
	PathDepth int

	// Tag is the opaque value the Matcher attached to this event. Valid
	// for Matched, ScopeOpened, and EndOfScope.
	Tag T

	// Value is the decoded field value. Valid for Matched and
	// ScopeOpened.
	Value Value

	// NewCursor is the absolute offset the cursor advanced to. Valid for
	// Skipped.
	NewCursor int64

	// MinAdditional is how many more bytes, at minimum, must be appended
	// before retrying. Valid for NeedMoreBytes.
	MinAdditional int

	// Err is the terminal failure. Valid for Error.
	Err error
}

// CopyPayload copies a LengthDelimited Value's payload out of buf, a
// view whose buf[0] is absolute offset base. It is a convenience
// fallback for callers that want an owned []byte instead of tracking the
// borrowed Slice themselves; the zero-copy Slice remains the primary way
// to access a payload.
func (v Value) CopyPayload(buf []byte, base int64) []byte {
	start := v.Slice.Offset - base
	end := start + v.Slice.Len
	out := make([]byte, v.Slice.Len)
	copy(out, buf[start:end])
	return out
}
