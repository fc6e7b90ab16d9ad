package search

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-product-search/internal/apperr"
)

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"":                                FormatJSON,
		"application/json":                FormatJSON,
		"application/json; charset=utf-8": FormatJSON,
		"application/vnd.api+json":        FormatJSON,
		"application/yaml":                FormatYAML,
		"application/x-yaml":              FormatYAML,
		"text/yaml":                       FormatYAML,
		"Text/YAML; charset=utf-8":        FormatYAML,
		"application/xml":                 FormatXML,
		"text/xml; charset=utf-8":         FormatXML,
		"application/atom+xml":            FormatXML,
	}
	for ct, want := range cases {
		got, err := ParseFormat(ct)
		require.NoError(t, err, ct)
		assert.Equal(t, want, got, ct)
	}
}

func TestParseFormatRejects(t *testing.T) {
	for _, ct := range []string{"text/plain", "multipart/form-data; boundary=x", "application/"} {
		_, err := ParseFormat(ct)
		require.Error(t, err, ct)
		ae := apperr.From(err)
		assert.Equal(t, apperr.InvalidRequest, ae.Kind, ct)
		assert.Equal(t, http.StatusUnsupportedMediaType, ae.HTTPStatus(), ct)
	}
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "json", FormatJSON.String())
	assert.Equal(t, "yaml", FormatYAML.String())
	assert.Equal(t, "xml", FormatXML.String())
}
