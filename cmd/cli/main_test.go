package main

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bayesplay/adapters/excel"
	"bayesplay/internal/errors"
	"bayesplay/internal/modelfile"
)

const binomialModel = `
likelihood:
  family: binomial
  params:
    - {name: successes, value: 3}
    - {name: trials, value: 10}
prior:
  family: beta
  params:
    - {name: alpha, value: 1}
    - {name: beta, value: 1}
null_prior:
  family: point
  params:
    - {name: point, value: 0.3}
`

func writeModel(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m), s)
	return m
}

func TestEvidence(t *testing.T) {
	path := writeModel(t, binomialModel)
	out, err := run(t, "evidence", "-m", path)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/11.0, decode(t, out)["evidence"], 1e-9)
}

func TestBayesFactor(t *testing.T) {
	path := writeModel(t, binomialModel)
	out, err := run(t, "bayes-factor", "--model", path)
	require.NoError(t, err)

	h0 := 120 * math.Pow(0.3, 3) * math.Pow(0.7, 7)
	got := decode(t, out)
	assert.InDelta(t, h0, got["h0"], 1e-12)
	assert.InDelta(t, (1.0/11.0)/h0, got["bf10"], 1e-6)
	assert.InDelta(t, h0*11, got["bf01"], 1e-6)
}

func TestBayesFactor_ZeroAlternativeEvidence(t *testing.T) {
	// three successes in ten trials have probability zero at theta = 1
	body := strings.Replace(binomialModel, `prior:
  family: beta
  params:
    - {name: alpha, value: 1}
    - {name: beta, value: 1}`, `prior:
  family: point
  params:
    - {name: point, value: 1}`, 1)
	out, err := run(t, "bayes-factor", "-m", writeModel(t, body))
	require.NoError(t, err)

	got := decode(t, out)
	assert.Equal(t, 0.0, got["h1"])
	assert.Equal(t, 0.0, got["bf10"])
	v, ok := got["bf01"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestBayesFactor_NoNullPrior(t *testing.T) {
	body := binomialModel[:strings.Index(binomialModel, "null_prior:")]
	_, err := run(t, "bayes-factor", "-m", writeModel(t, body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null_prior")
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))
}

func TestEvaluate(t *testing.T) {
	path := writeModel(t, binomialModel)
	out, err := run(t, "evaluate", "-m", path, "--target", "prior", "--x", "-0.5,0.5")
	require.NoError(t, err)

	got := decode(t, out)
	values := got["values"].([]any)
	require.Len(t, values, 2)
	assert.Nil(t, values[0])
	assert.InDelta(t, 1.0, values[1], 1e-12)

	out, err = run(t, "evaluate", "-m", path, "--x", "0.3")
	require.NoError(t, err)
	want := 11 * 120 * math.Pow(0.3, 3) * math.Pow(0.7, 7)
	assert.InDelta(t, want, decode(t, out)["values"].([]any)[0], 1e-6)
}

func TestIntegrate(t *testing.T) {
	path := writeModel(t, binomialModel)

	out, err := run(t, "integrate", "-m", path)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, decode(t, out)["value"], 1e-8)

	out, err = run(t, "integrate", "-m", path, "--target", "prior", "--upper", "0.25")
	require.NoError(t, err)
	assert.InDelta(t, 0.25, decode(t, out)["value"], 1e-10)

	out, err = run(t, "integrate", "-m", path, "--target", "model")
	require.NoError(t, err)
	assert.InDelta(t, 1.0/11.0, decode(t, out)["value"], 1e-9)
}

func TestSweep(t *testing.T) {
	path := writeModel(t, binomialModel)
	export := filepath.Join(t.TempDir(), "sweep.csv")

	out, err := run(t, "sweep", "-m", path, "--lower", "0", "--upper", "1", "--points", "101", "--xlsx", export)
	require.NoError(t, err)
	assert.Contains(t, out, "SERIES")
	assert.Contains(t, out, "MASS")
	assert.Contains(t, out, "posterior")
	assert.Contains(t, out, "exported "+export)

	table, err := excel.NewSweepReader(export, excel.ExportConfig{}).ReadSweep()
	require.NoError(t, err)
	assert.Len(t, table.X, 101)
	require.Len(t, table.Columns, 3)
	assert.Equal(t, "posterior", table.Columns[2].Name)

	out, err = run(t, "summarize", export)
	require.NoError(t, err)
	assert.Contains(t, out, "likelihood")

	_, err = run(t, "summarize")
	assert.Error(t, err)
}

func TestSchema(t *testing.T) {
	out, err := run(t, "schema")
	require.NoError(t, err)
	got := decode(t, out)
	assert.Equal(t, "bayesplay model", got["title"])
}

func TestErrors(t *testing.T) {
	path := writeModel(t, binomialModel)
	missing := filepath.Join(t.TempDir(), "none.yaml")
	invalid := writeModel(t, "prior: {}\n")
	testCases := []struct {
		name string
		args []string
		code string
	}{
		{"missing model flag", []string{"evidence"}, errors.CodeInvalidInput},
		{"missing file", []string{"evidence", "-m", missing}, errors.CodeInternalError},
		{"unknown target", []string{"evaluate", "-m", path, "--target", "nope", "--x", "0"}, ""},
		{"likelihood has no integral", []string{"integrate", "-m", path, "--target", "likelihood"}, ""},
		{"bad grid", []string{"sweep", "-m", path, "--points", "1"}, ""},
		{"invalid document", []string{"evidence", "-m", invalid}, errors.CodeValidationError},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := run(t, tc.args...)
			require.Error(t, err)
			if tc.code != "" {
				assert.Equal(t, tc.code, errors.GetCode(err))
			}
		})
	}

	_, err := run(t, "evidence", "-m", invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model file "+invalid)
	var docErr *modelfile.DocumentError
	assert.ErrorAs(t, err, &docErr)
}
