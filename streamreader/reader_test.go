package streamreader_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/koivunej/minipb/minipbcfg"
	"github.com/koivunej/minipb/scanner"
	"github.com/koivunej/minipb/streamreader"
	"github.com/koivunej/minipb/wire"
)

// chunkedReader hands back at most chunkSize bytes per Read call, to
// exercise streamreader's refill loop across many short reads.
type chunkedReader struct {
	data      []byte
	pos       int
	chunkSize int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := r.chunkSize
	if n > len(p) {
		n = len(p)
	}
	if r.pos+n > len(r.data) {
		n = len(r.data) - r.pos
	}
	copy(p, r.data[r.pos:r.pos+n])
	r.pos += n
	return n, nil
}

type constMatcher struct{}

func (constMatcher) Match(_ struct{}, _ int, id wire.FieldID) scanner.Decision[string] {
	return scanner.EmitField[string]("A")
}

func (constMatcher) Closed(_ struct{}, _ int) (string, bool) {
	return "", false
}

func TestReader_PumpsAcrossShortReads(t *testing.T) {
	input := []byte{0x08, 0x96, 0x01} // scenario 1: varint field, value 150
	src := &chunkedReader{data: input, chunkSize: 1}

	limits := minipbcfg.Default()
	limits.InitialBufferSize = 1 // force growth
	r := streamreader.New[struct{}, string](streamreader.FromIOReader(src), constMatcher{}, struct{}{}, 0, int64(len(input)), limits)

	step := r.Next()
	require.Equal(t, scanner.Matched, step.Kind)
	require.Equal(t, uint64(150), step.Value.Number)

	step = r.Next()
	require.Equal(t, scanner.Done, step.Kind)
}

func TestReader_UnexpectedEOFSurfacesAsError(t *testing.T) {
	// a varint field header whose value is truncated mid-stream.
	input := []byte{0x08, 0x96}
	src := bytes.NewReader(input)

	r := streamreader.New[struct{}, string](streamreader.FromIOReader(src), constMatcher{}, struct{}{}, 0, int64(len(input)), minipbcfg.Default())

	step := r.Next()
	require.Equal(t, scanner.Error, step.Kind)
	require.ErrorIs(t, step.Err, io.ErrUnexpectedEOF)
}

func TestReader_RecordTooLarge(t *testing.T) {
	input := []byte{0x08, 0x96, 0x01}
	src := bytes.NewReader(input)

	limits := minipbcfg.Default()
	limits.MaxRecordSize = 1
	r := streamreader.New[struct{}, string](streamreader.FromIOReader(src), constMatcher{}, struct{}{}, 0, int64(len(input)), limits)

	step := r.Next()
	require.Equal(t, scanner.Error, step.Kind)
	require.ErrorIs(t, step.Err, streamreader.ErrRecordTooLarge)
}

// alwaysEnterMatcher quietly enters every length-delimited field it
// sees, so a chain of nested fields can be used to probe the scanner's
// depth limit.
type alwaysEnterMatcher struct{}

func (alwaysEnterMatcher) Match(_ struct{}, _ int, id wire.FieldID) scanner.Decision[string] {
	return scanner.EnterScopeQuiet[string]()
}

func (alwaysEnterMatcher) Closed(_ struct{}, _ int) (string, bool) {
	return "", false
}

// Proves limits.MaxNestingDepth actually reaches the Fields New
// constructs: with the default depth this input would decode cleanly,
// but a Limits.MaxNestingDepth of 2 must surface ErrNestingTooDeep on
// its second nested field.
func TestReader_ConfiguredNestingDepthIsEnforced(t *testing.T) {
	// three nested length-delimited fields, all tag 1.
	input := []byte{0x0a, 0x04, 0x0a, 0x02, 0x0a, 0x00}
	src := bytes.NewReader(input)

	limits := minipbcfg.Default()
	limits.MaxNestingDepth = 2
	r := streamreader.New[struct{}, string](streamreader.FromIOReader(src), alwaysEnterMatcher{}, struct{}{}, 0, int64(len(input)), limits)

	step := r.Next()
	require.Equal(t, scanner.Error, step.Kind)
	require.ErrorIs(t, step.Err, scanner.ErrNestingTooDeep)
}
