package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelHashDeterminism(t *testing.T) {
	h1, err := ModelHash(xyModel())
	require.NoError(t, err)
	h2, err := ModelHash(xyModel())
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "ModelHash must be deterministic")
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestModelHashChangesWithContent(t *testing.T) {
	base := MustModelHash(xyModel())

	relabeled := xyModel()
	relabeled.Nodes[0].NodalTypes = []string{"1", "0"}

	edited := xyModel()
	edited.Nodes[1].Table.Rows[0].Values = []int{1, 0}

	reordered := xyModel()
	reordered.Nodes[0], reordered.Nodes[1] = reordered.Nodes[1], reordered.Nodes[0]

	assert.NotEqual(t, base, MustModelHash(relabeled), "label order is significant")
	assert.NotEqual(t, base, MustModelHash(edited), "table content is significant")
	assert.NotEqual(t, base, MustModelHash(reordered), "node order is significant")
}

func TestModelDocumentShape(t *testing.T) {
	doc, err := MarshalCanonical(ModelDocument(&Model{
		Name:  "m",
		Nodes: []Node{{Name: "X", NodalTypes: []string{"0"}}},
	}))
	require.NoError(t, err)
	assert.Equal(t, `{"ir_version":"1","name":"m","nodes":[{"name":"X","nodal_types":["0"],"parents":[]}]}`, string(doc))
}

func TestHashWithDomainSeparation(t *testing.T) {
	data := []byte(`{"a":1}`)
	assert.NotEqual(t, hashWithDomain("causalcore/model/v1", data), hashWithDomain("causalcore/model/v2", data))
}

func TestModelHashRejectsUnnormalizedNames(t *testing.T) {
	m := xyModel()
	m.Nodes[0].Name = "\u00c5" // composed Å
	_, err := ModelHash(m)
	require.NoError(t, err)

	m.Nodes[0].Name = "A\u030a" // A + combining ring
	_, err = ModelHash(m)
	require.Error(t, err)
	var ne *NormalizationError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "nodes[0].name", ne.Field)

	errs := NormalizationErrors(&Model{
		Name: "e\u0301",
		Nodes: []Node{{
			Name:       "Y",
			Parents:    []string{"e\u0301"},
			NodalTypes: []string{"ok", "o\u0308"},
		}},
	})
	fields := make([]string, len(errs))
	for i, e := range errs {
		fields[i] = e.Field
	}
	assert.Equal(t, []string{"name", "nodes[0].parents[0]", "nodes[0].nodal_types[1]"}, fields)
}
