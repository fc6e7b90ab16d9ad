package httpx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-product-search/internal/apperr"
	"github.com/ariefcatur/go-product-search/internal/auth"
	"github.com/ariefcatur/go-product-search/internal/catalog"
	kafkax "github.com/ariefcatur/go-product-search/internal/kafka"
	"github.com/ariefcatur/go-product-search/internal/redisx"
	"github.com/ariefcatur/go-product-search/internal/search"
)

const (
	defaultPopular = 10
	maxPopular     = 50
)

type Store interface {
	ListProducts(ctx context.Context, limit int) ([]catalog.Product, error)
	SearchProducts(ctx context.Context, q search.Query, limit int) ([]catalog.Product, error)
	PurchaseHistory(ctx context.Context, userID int64, limit int) ([]catalog.Order, error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header) bool
}

type PopularTerms interface {
	Top(ctx context.Context, n int) ([]redisx.TermCount, error)
}

type CatalogHandler struct {
	Store       Store
	Verifier    auth.TokenVerifier
	Revocations auth.Revocations
	Normalizer  search.Normalizer
	Producer    Publisher // optional
	Popular     PopularTerms
	Service     string

	MaxBodyBytes int64
	DebugErrors  bool
}

func (h *CatalogHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Get("/products", h.listProducts)
		r.Post("/products-search", h.searchProducts)
		r.Post("/products-search-yaml", h.searchAs(search.FormatYAML))
		r.Post("/products-search-xml", h.searchAs(search.FormatXML))
		r.Get("/products-search/popular", h.popularTerms)
		r.Get("/purchase-history", h.purchaseHistory)
		r.Post("/logout", h.logout)
	})
}

func (h *CatalogHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, err, h.DebugErrors)
}

func (h *CatalogHandler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := auth.BearerToken(r)
		if err != nil {
			h.fail(w, r, apperr.Auth("missing or malformed authorization header", err))
			return
		}
		claims, err := h.Verifier.Verify(r.Context(), raw)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Int64("user_id", claims.UserID)
		})
		next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
	})
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Store.ListProducts(ctx, catalog.MaxResults)
	if err != nil {
		h.fail(w, r, apperr.Upstream("could not list products", err))
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

// searchProducts picks the body format from Content-Type.
func (h *CatalogHandler) searchProducts(w http.ResponseWriter, r *http.Request) {
	f, err := search.ParseFormat(r.Header.Get("Content-Type"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.search(w, r, f)
}

// searchAs serves the legacy per-format paths, which ignore Content-Type.
func (h *CatalogHandler) searchAs(f search.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) { h.search(w, r, f) }
}

func (h *CatalogHandler) search(w http.ResponseWriter, r *http.Request, f search.Format) {
	body, err := h.readBody(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	q, err := h.Normalizer.Normalize(body, f)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ps, err := h.Store.SearchProducts(ctx, q, catalog.MaxResults)
	if err != nil {
		h.fail(w, r, apperr.Upstream("product search failed", err))
		return
	}
	h.publishSearch(r, q, f, len(ps))
	writeJSON(w, http.StatusOK, ps)
}

func (h *CatalogHandler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	limit := h.MaxBodyBytes
	if limit <= 0 {
		limit = 64 << 10
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, apperr.Invalid("request body too large").WithStatus(http.StatusRequestEntityTooLarge)
		}
		return nil, apperr.Parse("could not read request body", err)
	}
	return body, nil
}

func (h *CatalogHandler) publishSearch(r *http.Request, q search.Query, f search.Format, results int) {
	if h.Producer == nil {
		return
	}
	var userID int64
	if c, ok := auth.ClaimsFrom(r.Context()); ok {
		userID = c.UserID
	}
	ev := catalog.Envelope{
		EventID:      uuid.NewString(),
		EventType:    catalog.EventSearchPerformed,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     h.Service,
		TraceID:      middleware.GetReqID(r.Context()),
		Payload: kafkax.MustMarshal(catalog.SearchPerformedPayload{
			Query:   q.String(),
			Format:  f.String(),
			Results: results,
			UserID:  userID,
		}),
	}
	if !h.Producer.Publish(catalog.PartitionKey(userID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(catalog.EventSearchPerformed)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	) {
		hlog.FromRequest(r).Warn().Str("event_id", ev.EventID).Msg("search event not queued")
	}
}

func (h *CatalogHandler) popularTerms(w http.ResponseWriter, r *http.Request) {
	n := defaultPopular
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			h.fail(w, r, apperr.Invalid("limit must be a positive integer"))
			return
		}
		n = min(v, maxPopular)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	terms, err := h.Popular.Top(ctx, n)
	if err != nil {
		h.fail(w, r, apperr.Upstream("could not load popular terms", err))
		return
	}
	writeJSON(w, http.StatusOK, terms)
}

func (h *CatalogHandler) purchaseHistory(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		h.fail(w, r, apperr.Auth("missing token claims", nil))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	orders, err := h.Store.PurchaseHistory(ctx, claims.UserID, catalog.MaxResults)
	if err != nil {
		h.fail(w, r, apperr.Upstream("could not load purchase history", err))
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *CatalogHandler) logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		h.fail(w, r, apperr.Auth("missing token claims", nil))
		return
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		h.fail(w, r, apperr.Invalid("token cannot be revoked"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.Revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		h.fail(w, r, apperr.Upstream("could not revoke token", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
