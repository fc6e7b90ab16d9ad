package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/ariefcatur/go-product-search/internal/apperr"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto its status and stable code. The underlying cause
// is only echoed back when debug is set.
func writeError(w http.ResponseWriter, r *http.Request, err error, debug bool) {
	ae := apperr.From(err)

	ev := hlog.FromRequest(r).Warn()
	if ae.Kind == apperr.UpstreamError {
		ev = hlog.FromRequest(r).Error()
	}
	ev.Err(err).Str("kind", ae.Kind.Code()).Msg("request failed")

	if ae.Kind == apperr.AuthError {
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	}
	d := errorDetail{Code: ae.Kind.Code(), Message: ae.Message}
	if debug {
		d.Detail = ae.Detail()
	}
	writeJSON(w, ae.HTTPStatus(), errorBody{Error: d})
}
