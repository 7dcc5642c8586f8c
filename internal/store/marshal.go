package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/golang/snappy"

	"github.com/roach88/causalcore/internal/ir"
)

// encodeInts stores values as zig-zag varints, snappy-compressed.
// Realized outcomes are small integers with long runs, so both steps pay off.
func encodeInts(values []int) []byte {
	buf := make([]byte, 0, len(values))
	for _, v := range values {
		buf = binary.AppendVarint(buf, int64(v))
	}
	return snappy.Encode(nil, buf)
}

// decodeInts is the inverse of encodeInts. It fails unless exactly n values
// are present.
func decodeInts(blob []byte, n int) ([]int, error) {
	raw, err := snappy.Decode(nil, blob)
	if err != nil {
		return nil, fmt.Errorf("decompress blob: %w", err)
	}
	out := make([]int, 0, n)
	for len(raw) > 0 {
		v, k := binary.Varint(raw)
		if k <= 0 {
			return nil, fmt.Errorf("corrupt varint at value %d", len(out))
		}
		out = append(out, int(v))
		raw = raw[k:]
	}
	if len(out) != n {
		return nil, fmt.Errorf("blob holds %d values, want %d", len(out), n)
	}
	return out, nil
}

// encodeFloats stores IEEE-754 bits little-endian, snappy-compressed.
func encodeFloats(values []float64) []byte {
	buf := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	return snappy.Encode(nil, buf)
}

// decodeFloats is the inverse of encodeFloats.
func decodeFloats(blob []byte, n int) ([]float64, error) {
	raw, err := snappy.Decode(nil, blob)
	if err != nil {
		return nil, fmt.Errorf("decompress blob: %w", err)
	}
	if len(raw) != 8*n {
		return nil, fmt.Errorf("blob holds %d bytes, want %d", len(raw), 8*n)
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[8*i:]))
	}
	return out, nil
}

// marshalModel converts a model to canonical JSON TEXT for storage.
func marshalModel(m *ir.Model) (string, error) {
	data, err := ir.MarshalCanonical(ir.ModelDocument(m))
	if err != nil {
		return "", fmt.Errorf("marshal model: %w", err)
	}
	return string(data), nil
}

// unmarshalModel parses a stored model document. The document's field names
// match ir.Model's JSON tags; ir_version is ignored.
func unmarshalModel(doc string) (*ir.Model, error) {
	var m ir.Model
	if err := json.Unmarshal([]byte(doc), &m); err != nil {
		return nil, fmt.Errorf("unmarshal model: %w", err)
	}
	return &m, nil
}
