// Package wiretest builds raw protobuf wire-format byte sequences for
// tests, so test cases can express "field 1, varint 150" instead of a
// hand-computed hex literal.
package wiretest

import "github.com/koivunej/minipb/wire"

// AppendVarint appends v to buf as a base-128 varint.
func AppendVarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

// AppendTag appends the tag/wire-type header byte(s) for tag and wt.
func AppendTag(buf []byte, tag uint32, wt wire.Type) []byte {
	return AppendVarint(buf, uint64(tag)<<3|uint64(wt))
}

// AppendVarintField appends a complete Varint-typed field: header then
// value.
func AppendVarintField(buf []byte, tag uint32, v uint64) []byte {
	buf = AppendTag(buf, tag, wire.Varint)
	return AppendVarint(buf, v)
}

// AppendBytesField appends a complete LengthDelimited-typed field:
// header, length prefix, then payload.
func AppendBytesField(buf []byte, tag uint32, payload []byte) []byte {
	buf = AppendTag(buf, tag, wire.LengthDelimited)
	buf = AppendVarint(buf, uint64(len(payload)))
	return append(buf, payload...)
}

// AppendFixed32Field appends a complete Fixed32-typed field.
func AppendFixed32Field(buf []byte, tag uint32, v uint32) []byte {
	buf = AppendTag(buf, tag, wire.Fixed32)
	return append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// AppendFixed64Field appends a complete Fixed64-typed field.
func AppendFixed64Field(buf []byte, tag uint32, v uint64) []byte {
	buf = AppendTag(buf, tag, wire.Fixed64)
	for i := 0; i < 8; i++ {
		buf = append(buf, byte(v>>(8*uint(i))))
	}
	return buf
}
