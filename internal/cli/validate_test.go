package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/causalcore/internal/compiler"
)

func TestValidate_Valid(t *testing.T) {
	path := writeModel(t, xyModelCUE)

	out, _, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Model valid")
}

func TestValidate_ValidJSON(t *testing.T) {
	path := writeModel(t, xyModelCUE)

	out, _, err := execute(t, "--format", "json", "validate", path)
	require.NoError(t, err)

	var result ValidationResult
	decodeResponse(t, out, &result)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidate_CollectsErrors(t *testing.T) {
	path := writeModel(t, `
model: {
	name: "broken"
	nodes: {
		X: {nodal_types: ["a", "a"]}
		Y: {parents: ["W", "Y"]}
	}
}
`)

	out, _, err := execute(t, "--format", "json", "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result ValidationResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	assert.False(t, result.Valid)

	codes := make(map[string]bool)
	for _, e := range result.Errors {
		codes[e.Code] = true
	}
	assert.True(t, codes[compiler.ErrDuplicateLabel], "duplicate label: %v", result.Errors)
	assert.True(t, codes[compiler.ErrExogenousLabel], "exogenous label: %v", result.Errors)
	assert.True(t, codes[compiler.ErrUnknownParent], "unknown parent: %v", result.Errors)
	assert.True(t, codes[compiler.ErrSelfParent], "self parent: %v", result.Errors)
}

func TestValidate_TextListsCodes(t *testing.T) {
	path := writeModel(t, unknownParentCUE)

	out, _, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, compiler.ErrUnknownParent)
	assert.Contains(t, out, `unknown parent "W"`)
}

func TestValidate_LoadErrorIsReported(t *testing.T) {
	path := writeModel(t, "model: {\n\tname: 1 & 2\n}\n")

	errs, err := ValidateModelPath(path)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "load", errs[0].Field)
}

func TestValidate_MissingPath(t *testing.T) {
	_, err := ValidateModelPath(filepath.Join(t.TempDir(), "none.cue"))
	require.Error(t, err)

	out, _, err := execute(t, "validate", filepath.Join(t.TempDir(), "none.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E005")
}
