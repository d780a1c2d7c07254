package modelfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bayesplay/domain/core"
)

const ttestYAML = `
likelihood:
  family: noncentral_d
  params:
    - {name: d, value: 0.2269608997162286}
    - {name: n, value: 80}
prior:
  family: Cauchy
  params:
    - {name: location, value: 0}
    - {name: scale, value: 1}
null_prior:
  family: point
  params:
    - {name: point, value: 0}
`

func TestParse_YAML(t *testing.T) {
	doc, err := Parse([]byte(ttestYAML), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "noncentral_d", doc.Likelihood.Family)
	require.Len(t, doc.Likelihood.Params, 2)
	assert.Equal(t, "n", doc.Likelihood.Params[1].Name)
	assert.Equal(t, 80.0, doc.Likelihood.Params[1].Value)
	require.NotNil(t, doc.NullPrior)

	c := doc.Prior.App()
	assert.Equal(t, "Cauchy", c.Family)
	assert.Equal(t, "scale", c.Params[1].Name)
}

func TestParse_JSON(t *testing.T) {
	body := `{
		"likelihood": {"family": "binomial", "params": [{"name": "successes", "value": 3}, {"name": "trials", "value": 10}]},
		"prior": {"family": "beta", "params": [{"name": "alpha", "value": 1}, {"name": "beta", "value": 1}]}
	}`
	doc, err := Parse([]byte(body), FormatJSON)
	require.NoError(t, err)
	assert.Nil(t, doc.NullPrior)
	assert.Equal(t, "beta", doc.Prior.Family)
}

func TestParse_SchemaViolations(t *testing.T) {
	testCases := []struct {
		name  string
		body  string
		field string
	}{
		{"missing prior", `{"likelihood": {"family": "normal", "params": []}}`, "(root)"},
		{"unknown parameter name", `{
			"likelihood": {"family": "normal", "params": [{"name": "mu", "value": 0}]},
			"prior": {"family": "normal", "params": []}
		}`, "likelihood.params.0.name"},
		{"value is a string", `{
			"likelihood": {"family": "normal", "params": [{"name": "mean", "value": "zero"}]},
			"prior": {"family": "normal", "params": []}
		}`, "likelihood.params.0.value"},
		{"extra field", `{
			"likelihood": {"family": "normal", "params": []},
			"prior": {"family": "normal", "params": [], "shape": 2}
		}`, "prior"},
		{"empty family", `{
			"likelihood": {"family": "", "params": []},
			"prior": {"family": "normal", "params": []}
		}`, "likelihood.family"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.body), FormatJSON)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidDocument)
			assert.True(t, core.IsValidationError(err))

			var de *DocumentError
			require.ErrorAs(t, err, &de)
			fields := make([]string, len(de.Errors))
			for i, fe := range de.Errors {
				fields[i] = fe.Field
			}
			assert.Contains(t, fields, tc.field)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("likelihood: [unterminated"), FormatYAML)
	assert.ErrorIs(t, err, ErrInvalidDocument)

	_, err = Parse([]byte(""), FormatYAML)
	assert.ErrorIs(t, err, ErrInvalidDocument)

	_, err = Parse([]byte("{not json"), FormatJSON)
	assert.ErrorIs(t, err, ErrInvalidDocument)

	_, err = Parse([]byte("{}"), Format("toml"))
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ttest.yml")
	require.NoError(t, os.WriteFile(path, []byte(ttestYAML), 0o600))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "point", doc.NullPrior.Family)

	_, err = Load(filepath.Join(dir, "model.txt"))
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSchema(t *testing.T) {
	raw, err := Schema()
	require.NoError(t, err)

	var s map[string]any
	require.NoError(t, json.Unmarshal(raw, &s))
	assert.Equal(t, "object", s["type"])
	assert.ElementsMatch(t, []any{"likelihood", "prior"}, s["required"])

	props, ok := s["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "null_prior")
}
