package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainModel = "causalcore/model/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ModelHash computes the content-addressed identity of a model.
// Two models with the same name, node order, labels and tables share a hash;
// compiled plans and stored runs are keyed by it.
//
// Names and labels must already be in NFC (see CheckNormalized).
func ModelHash(m *Model) (string, error) {
	if err := CheckNormalized(m); err != nil {
		return "", fmt.Errorf("ModelHash: %w", err)
	}
	canonical, err := MarshalCanonical(ModelDocument(m))
	if err != nil {
		return "", fmt.Errorf("ModelHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainModel, canonical), nil
}

// MustModelHash is like ModelHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustModelHash(m *Model) string {
	h, err := ModelHash(m)
	if err != nil {
		panic(err)
	}
	return h
}

// ModelDocument converts a model to its canonical IR document.
// Node order and table row order are preserved as arrays.
func ModelDocument(m *Model) IRObject {
	nodes := make(IRArray, len(m.Nodes))
	for i, n := range m.Nodes {
		node := IRObject{
			"name":        IRString(n.Name),
			"parents":     StringArray(n.Parents),
			"nodal_types": StringArray(n.NodalTypes),
		}
		if n.Table != nil {
			cols := make(IRArray, len(n.Table.Columns))
			for j, c := range n.Table.Columns {
				cols[j] = IntArray(c)
			}
			rows := make(IRArray, len(n.Table.Rows))
			for j, r := range n.Table.Rows {
				rows[j] = IRObject{
					"label":  IRString(r.Label),
					"values": IntArray(r.Values),
				}
			}
			node["table"] = IRObject{"columns": cols, "rows": rows}
		}
		nodes[i] = node
	}
	return IRObject{
		"ir_version": IRString(IRVersion),
		"name":       IRString(m.Name),
		"nodes":      nodes,
	}
}
