package wiretest_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/koivunej/minipb/internal/wiretest"
	"github.com/koivunej/minipb/varint"
	"github.com/koivunej/minipb/wire"
)

func TestAppendVarint_RoundTrips(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, 150, 1 << 34, ^uint64(0)} {
		buf := wiretest.AppendVarint(nil, v)
		got, n, err := varint.Decode(buf)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)
		require.Equal(t, v, got)
	}
}

func TestAppendVarintField_DecodesViaReadField(t *testing.T) {
	buf := wiretest.AppendVarintField(nil, 7, 150)
	d, n, err := wire.ReadField(buf, 0)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	require.Equal(t, wire.FieldID{Tag: 7, Type: wire.Varint}, d.ID)
	require.Equal(t, uint64(150), d.Value)
}

func TestAppendBytesField_DecodesViaReadField(t *testing.T) {
	buf := wiretest.AppendBytesField(nil, 2, []byte("hello"))
	d, n, err := wire.ReadField(buf, 100)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, int64(102), d.PayloadOffset)
	require.Equal(t, int64(5), d.PayloadLen)
}
