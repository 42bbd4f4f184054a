package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/dasha/internal/ir"
	"github.com/roach88/dasha/internal/testutil"
)

const (
	birthEpoch = "1990-03-14T06:30:00Z"
	rohini     = "45:20"
)

// execute runs the root command with args, isolated from any real
// .dasha.yaml in the home directory.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := newRootCommand(&RootOptions{IDs: testutil.NewSequenceGenerator()})
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

type response[T any] struct {
	Status string    `json:"status"`
	Data   T         `json:"data"`
	Error  *CLIError `json:"error"`
}

func decode[T any](t *testing.T, out string) response[T] {
	t.Helper()
	var resp response[T]
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

func rulers(ps []ir.Period) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Ruler
	}
	return out
}
