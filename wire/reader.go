package wire

import "github.com/koivunej/minipb/varint"

// fixed32Len and fixed64Len are the raw byte widths of the Fixed32 and
// Fixed64 wire types.
const (
	fixed32Len = 4
	fixed64Len = 8
)

// ReadField decodes one field header (and, for Varint/Fixed32/Fixed64
// fields, its immediate value) from the front of buf. absOffset is the
// absolute stream offset of buf[0], used only to compute the absolute
// PayloadOffset of a LengthDelimited field's payload.
//
// On success it returns the decoded Descriptor and the number of bytes
// of buf consumed by the header (header+value for Varint/Fixed32/Fixed64;
// header only, i.e. tag plus length prefix, for LengthDelimited — the
// payload bytes are left for the caller to handle).
//
// If buf does not yet hold a complete header (or value), it returns
// *NeedMoreBytes; no part of buf is considered consumed. MinAdditional is
// a lower bound: a retry with that many more bytes may report
// NeedMoreBytes again, e.g. while a multi-byte varint is still
// incomplete.
//
// Malformed input returns ErrZeroTag, ErrInvalidVarint, or
// *UnsupportedWireTypeError.
func ReadField(buf []byte, absOffset int64) (Descriptor, int, error) {
	tagAndType, tagLen, err := varint.Decode(buf)
	if err == varint.ErrNeedMore {
		return Descriptor{}, 0, &NeedMoreBytes{MinAdditional: 1}
	}
	if err != nil {
		return Descriptor{}, 0, ErrInvalidVarint
	}

	tag := tagAndType >> 3
	wt := Type(tagAndType & 0x7)
	if tag == 0 {
		return Descriptor{}, 0, ErrZeroTag
	}
	if tag > MaxTag {
		return Descriptor{}, 0, ErrInvalidVarint
	}
	switch wt {
	case 3, 4, 6, 7:
		return Descriptor{}, 0, &UnsupportedWireTypeError{WireType: uint8(wt)}
	}

	id := FieldID{Tag: uint32(tag), Type: wt}
	rest := buf[tagLen:]

	switch wt {
	case Varint:
		v, n, err := varint.Decode(rest)
		if err == varint.ErrNeedMore {
			return Descriptor{}, 0, &NeedMoreBytes{MinAdditional: 1}
		}
		if err != nil {
			return Descriptor{}, 0, ErrInvalidVarint
		}
		return Descriptor{ID: id, Value: v}, tagLen + n, nil

	case Fixed32:
		if len(rest) < fixed32Len {
			return Descriptor{}, 0, &NeedMoreBytes{MinAdditional: fixed32Len - len(rest)}
		}
		v := uint64(rest[0]) | uint64(rest[1])<<8 | uint64(rest[2])<<16 | uint64(rest[3])<<24
		return Descriptor{ID: id, Value: v}, tagLen + fixed32Len, nil

	case Fixed64:
		if len(rest) < fixed64Len {
			return Descriptor{}, 0, &NeedMoreBytes{MinAdditional: fixed64Len - len(rest)}
		}
		var v uint64
		for i := 0; i < fixed64Len; i++ {
			v |= uint64(rest[i]) << (8 * uint(i))
		}
		return Descriptor{ID: id, Value: v}, tagLen + fixed64Len, nil

	case LengthDelimited:
		length, n, err := varint.Decode(rest)
		if err == varint.ErrNeedMore {
			return Descriptor{}, 0, &NeedMoreBytes{MinAdditional: 1}
		}
		if err != nil {
			return Descriptor{}, 0, ErrInvalidVarint
		}
		headerLen := tagLen + n
		return Descriptor{
			ID:            id,
			PayloadOffset: absOffset + int64(headerLen),
			PayloadLen:    int64(length),
		}, headerLen, nil

	default:
		// Unreachable: every Type value is handled or rejected above.
		return Descriptor{}, 0, &UnsupportedWireTypeError{WireType: uint8(wt)}
	}
}
