package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/causalcore/internal/ir"
)

func TestParseClause(t *testing.T) {
	tests := []struct {
		in   string
		want Clause
	}{
		{"Y == 1", Clause{"Y", OpEQ, "1"}},
		{"  A>=B ", Clause{"A", OpGE, "B"}},
		{"Y - -1", Clause{"Y", OpSub, "-1"}},
		{"-1 < Y", Clause{"-1", OpLT, "Y"}},
		{"X && Y", Clause{"X", OpAnd, "Y"}},
		{"X & Y", Clause{"X", OpBitAnd, "Y"}},
		{"X || Y", Clause{"X", OpOr, "Y"}},
		{"X|Y", Clause{"X", OpBitOr, "Y"}},
		{"X != Y", Clause{"X", OpNE, "Y"}},
		{"Y[X=1] > Y[X=0]", Clause{"Y[X=1]", OpGT, "Y[X=0]"}},
		{"Y[X=-1, Z=0] <= 1", Clause{"Y[X=-1, Z=0]", OpLE, "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClause(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseClauseErrors(t *testing.T) {
	for _, in := range []string{"", "Y", "Y = 1", "Y ==", "== 1", "Y[X=1 == 1", "Y[] == 1", "Y[X] == 1"} {
		_, err := ParseClause(in)
		var pe *ParseError
		assert.ErrorAs(t, err, &pe, in)
	}
}

func TestParseQuery(t *testing.T) {
	q, err := ParseQuery("Y == 1; X == 0\nM > 0;")
	require.NoError(t, err)
	require.Len(t, q.Clauses, 3)
	assert.Equal(t, Clause{"M", OpGT, "0"}, q.Clauses[2])
	assert.Equal(t, "Y == 1; X == 0; M > 0", q.String())

	_, err = ParseQuery(" ; ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty query")
}

func TestParseTerm(t *testing.T) {
	term, err := ParseTerm("Y")
	require.NoError(t, err)
	assert.False(t, term.Bracketed())
	assert.Equal(t, "Y", term.Key())

	term, err = ParseTerm("Y[ Z=0 , X=1 ]")
	require.NoError(t, err)
	assert.True(t, term.Bracketed())
	assert.Equal(t, "Y", term.Name)
	assert.Equal(t, ir.Intervention{"X": 1, "Z": 0}, term.Do)
	assert.Equal(t, "Y[X=1,Z=0]", term.Key())

	for _, bad := range []string{"", "[X=1]", "Y]", "Y[X=1]]", "Y[X=a]"} {
		_, err := ParseTerm(bad)
		assert.Error(t, err, bad)
	}
}

func TestQueryTermsDistinct(t *testing.T) {
	q := NewQuery(
		Clause{"Y[X=1]", OpGT, "Y[X=0]"},
		Clause{"Y[ X=1 ]", OpEQ, "1"},
		Clause{"Y", OpEQ, "1"},
	)

	terms, err := q.Terms()
	require.NoError(t, err)

	keys := make([]string, len(terms))
	for i, tm := range terms {
		keys[i] = tm.Key()
	}
	assert.Equal(t, []string{"Y[X=1]", "Y[X=0]", "1", "Y"}, keys)
}

func TestOperatorPredicates(t *testing.T) {
	for _, op := range Operators {
		assert.True(t, op.Valid(), op)
	}
	assert.False(t, Operator("=").Valid())
	assert.True(t, OpNE.Comparison())
	assert.False(t, OpBitAnd.Comparison())
	assert.False(t, OpAdd.Comparison())
}

func TestValidate_PortableQuery(t *testing.T) {
	result := Validate(NewQuery(Clause{"Y", OpEQ, "1"}, Clause{"X", OpAnd, "Y"}))

	assert.True(t, result.IsPortable)
	assert.True(t, result.Valid())
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidate_InterventionNotPortable(t *testing.T) {
	result := Validate(NewQuery(Clause{"Y[X=1]", OpGT, "Y[X=0]"}))

	assert.True(t, result.Valid())
	assert.False(t, result.IsPortable)
	require.Len(t, result.Warnings, 2)
	assert.Contains(t, result.Warnings[0], "Y[X=1]")
}

func TestValidate_Errors(t *testing.T) {
	result := Validate(Query{})
	assert.False(t, result.Valid())
	assert.Contains(t, result.Errors[0], "empty query")

	result = Validate(NewQuery(Clause{"Y", Operator("**"), ""}))
	assert.False(t, result.Valid())
	assert.Len(t, result.Errors, 2)
}
