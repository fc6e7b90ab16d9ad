package search

import (
	"mime"
	"net/http"
	"strings"

	"github.com/ariefcatur/go-product-search/internal/apperr"
)

type Format int

const (
	FormatJSON Format = iota
	FormatYAML
	FormatXML
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatXML:
		return "xml"
	default:
		return "json"
	}
}

// ParseFormat maps a Content-Type header to a body format. An empty header
// is read as JSON.
func ParseFormat(contentType string) (Format, error) {
	if strings.TrimSpace(contentType) == "" {
		return FormatJSON, nil
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return 0, apperr.Invalid("malformed content type").WithStatus(http.StatusUnsupportedMediaType)
	}
	switch mt {
	case "application/json":
		return FormatJSON, nil
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return FormatYAML, nil
	case "application/xml", "text/xml":
		return FormatXML, nil
	}
	switch {
	case strings.HasSuffix(mt, "+json"):
		return FormatJSON, nil
	case strings.HasSuffix(mt, "+xml"):
		return FormatXML, nil
	case strings.HasSuffix(mt, "+yaml"):
		return FormatYAML, nil
	}
	return 0, apperr.Invalid("unsupported content type " + mt).WithStatus(http.StatusUnsupportedMediaType)
}
