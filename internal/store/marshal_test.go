package store

import (
	"math"
	"testing"

	"github.com/golang/snappy"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/causalcore/internal/ir"
	"github.com/roach88/causalcore/internal/testutil"
)

func TestIntBlob_RoundTrip(t *testing.T) {
	values := []int{0, 1, -1, 7, math.MaxInt32, math.MinInt64, math.MaxInt64, 0, 0, 0}
	got, err := decodeInts(encodeInts(values), len(values))
	require.NoError(t, err)
	if diff := cmp.Diff(values, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestIntBlob_Empty(t *testing.T) {
	got, err := decodeInts(encodeInts(nil), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIntBlob_Errors(t *testing.T) {
	_, err := decodeInts(encodeInts([]int{1, 2, 3}), 4)
	assert.ErrorContains(t, err, "holds 3 values")

	_, err = decodeInts([]byte("not snappy"), 1)
	assert.ErrorContains(t, err, "decompress")

	// A lone continuation byte is a truncated varint.
	_, err = decodeInts(snappy.Encode(nil, []byte{0x80}), 1)
	assert.ErrorContains(t, err, "corrupt varint")
}

func TestFloatBlob_RoundTrip(t *testing.T) {
	values := []float64{0, 0.3, 1, -2.5, math.Inf(1), math.SmallestNonzeroFloat64}
	got, err := decodeFloats(encodeFloats(values), len(values))
	require.NoError(t, err)
	assert.Equal(t, values, got)

	_, err = decodeFloats(encodeFloats(values), 5)
	assert.ErrorContains(t, err, "want 40")
}

func TestModelDocument_RoundTripKeepsHash(t *testing.T) {
	for _, m := range []*ir.Model{testutil.XYModel(), testutil.AndOrModel(), testutil.ChainModel()} {
		t.Run(m.Name, func(t *testing.T) {
			doc, err := marshalModel(m)
			require.NoError(t, err)
			back, err := unmarshalModel(doc)
			require.NoError(t, err)

			assert.Equal(t, ir.MustModelHash(m), ir.MustModelHash(back))
			assert.Equal(t, m.NodeNames(), back.NodeNames())
			assert.Equal(t, m.Labels(), back.Labels())
		})
	}
}
