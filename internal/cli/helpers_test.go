package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const xyModelCUE = `
model: {
	name: "xy"
	nodes: {
		X: {nodal_types: ["0", "1"]}
		Y: {
			parents: ["X"]
			nodal_types: ["Y00", "Y01", "Y10", "Y11"]
			table: {
				columns: [[0], [1]]
				rows: {Y00: [0, 0], Y01: [0, 1], Y10: [1, 0], Y11: [1, 1]}
			}
		}
	}
}
`

// ternaryModelCUE has an X value (2) that Y's table does not cover.
const ternaryModelCUE = `
model: {
	name: "ternary"
	nodes: {
		X: {nodal_types: ["0", "1", "2"]}
		Y: {
			parents: ["X"]
			nodal_types: ["low", "high"]
			table: {
				columns: [[0], [1]]
				rows: {low: [0, 0], high: [1, 1]}
			}
		}
	}
}
`

const unknownParentCUE = `
model: {
	name: "broken"
	nodes: {
		X: {}
		Y: {parents: ["W"]}
	}
}
`

// writeFile writes content to name inside a fresh temp dir.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeModel(t *testing.T, src string) string {
	t.Helper()
	return writeFile(t, "model.cue", src)
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// jsonResponse is CLIResponse with the payload left undecoded.
type jsonResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *CLIError       `json:"error"`
}

// decodeResponse decodes a JSON envelope and, if data is non-nil, its payload.
func decodeResponse(t *testing.T, out string, data any) jsonResponse {
	t.Helper()
	var resp jsonResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	if data != nil {
		require.NoError(t, json.Unmarshal(resp.Data, data))
	}
	return resp
}
