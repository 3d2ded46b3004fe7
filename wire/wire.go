// Package wire decodes individual protobuf wire-format field headers: the
// tag/wire-type varint and, for non length-delimited fields, the
// immediate value. It knows nothing about message schemas or nesting —
// that is scanner's job.
package wire

import "fmt"

// Type is one of the four wire types this decoder understands. Group
// wire types (3, 4) are parsed far enough to be rejected with
// UnsupportedWireTypeError; they are never represented here.
type Type uint8

const (
	// Varint is an arbitrary-precision base-128 integer.
	Varint Type = 0
	// Fixed64 is 8 raw little-endian bytes.
	Fixed64 Type = 1
	// LengthDelimited is a varint length prefix followed by that many
	// raw bytes.
	LengthDelimited Type = 2
	// Fixed32 is 4 raw little-endian bytes.
	Fixed32 Type = 5
)

func (t Type) String() string {
	switch t {
	case Varint:
		return "varint"
	case Fixed64:
		return "fixed64"
	case LengthDelimited:
		return "length-delimited"
	case Fixed32:
		return "fixed32"
	default:
		return fmt.Sprintf("wire-type(%d)", uint8(t))
	}
}

// MaxTag is the largest field tag this decoder accepts: 2^29 - 1, the
// largest tag that, shifted left by the 3 wire-type bits, still fits in
// 32 unsigned bits.
const MaxTag = 1<<29 - 1

// FieldID identifies a field within the message scope it was read from:
// its tag number and the wire type it was encoded with.
type FieldID struct {
	Tag  uint32
	Type Type
}

// Descriptor describes one decoded field header. For Varint, Fixed32, and
// Fixed64 fields, Value holds the decoded immediate value. For
// LengthDelimited fields, PayloadOffset and PayloadLen identify the
// payload in absolute input coordinates; the payload bytes themselves are
// not consumed by ReadField.
type Descriptor struct {
	ID FieldID

	// Value holds the decoded integer for Varint, Fixed32, and Fixed64
	// fields. It is the raw bit pattern: callers that need a signed or
	// floating point interpretation convert it themselves (see the
	// varint package for zig-zag decoding).
	Value uint64

	// PayloadOffset and PayloadLen are valid only when ID.Type is
	// LengthDelimited, and are absolute offsets into the input stream.
	PayloadOffset int64
	PayloadLen    int64
}

// PayloadFootprint returns the number of trailing bytes not already
// counted in ReadField's consumed-byte return: PayloadLen for
// LengthDelimited fields, zero otherwise (Varint/Fixed32/Fixed64 values
// are folded into the header's consumed count).
func (d Descriptor) PayloadFootprint() int64 {
	if d.ID.Type == LengthDelimited {
		return d.PayloadLen
	}
	return 0
}
