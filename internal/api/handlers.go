// internal/api/handlers.go
//
// Consumption-side handlers.
//
// Context
// -------
// The presentation layer reads through these endpoints instead of the
// remote source.  Every read goes through the syncer, so a popular page
// costs one remote fetch per TTL window no matter how many renders hit it.
// Loader failures surface as a 503 with a fixed "content unavailable"
// body — never the remote's error text — except NotFound, which maps to a
// plain 404.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/curator/internal/content"
	"github.com/yanizio/curator/internal/source"
	"github.com/yanizio/curator/internal/syncer"
)

// Source is the slice of the client the read path consumes.
type Source interface {
	ListAll(ctx context.Context, t content.Type, f content.Filters) ([]content.Item, error)
	Get(ctx context.Context, t content.Type, idOrSlug string) (content.Item, error)
	GetMedia(ctx context.Context, id int) (content.MediaItem, error)
	ListTaxonomy(ctx context.Context, kind content.TaxonomyKind) ([]content.TaxonomyTerm, error)
}

// Handler holds the read-path collaborators.
type Handler struct {
	sync *syncer.Syncer
	src  Source
	ttl  time.Duration
	log  *zap.SugaredLogger
}

// NewHandler wires the syncer and source client.  ttl comes from config,
// which guarantees a positive default.
func NewHandler(sync *syncer.Syncer, src Source, ttl time.Duration, log *zap.SugaredLogger) *Handler {
	return &Handler{sync: sync, src: src, ttl: ttl, log: log}
}

// parseType admits only known content types; anything else is a 404, not a
// proxied remote call.
func parseType(raw string) (content.Type, bool) {
	switch content.Type(raw) {
	case content.TypeProject, content.TypePost:
		return content.Type(raw), true
	default:
		return "", false
	}
}

// ListContent handles GET /v1/content/{type}.
func (h *Handler) ListContent(w http.ResponseWriter, r *http.Request) {
	t, ok := parseType(chi.URLParam(r, "type"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("unknown content type"))
		return
	}

	f := filtersFromQuery(r)
	key := content.CacheKey(t, "*", f)

	items, err := syncer.Fetch(r.Context(), h.sync, key, h.ttl,
		[]string{content.TagContentItems},
		func(ctx context.Context) ([]content.Item, error) {
			return h.src.ListAll(ctx, t, f)
		})
	if err != nil {
		h.log.Warnw("list unavailable", "type", t, "key", key, "err", err)
		unavailable(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": len(items),
	})
}

// GetContent handles GET /v1/content/{type}/{idOrSlug}.
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	t, ok := parseType(chi.URLParam(r, "type"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("unknown content type"))
		return
	}
	idOrSlug := chi.URLParam(r, "idOrSlug")

	key := content.CacheKey(t, idOrSlug, content.Filters{})
	item, err := syncer.Fetch(r.Context(), h.sync, key, h.ttl,
		[]string{content.TagContentItems},
		func(ctx context.Context) (content.Item, error) {
			return h.src.Get(ctx, t, idOrSlug)
		})
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		h.log.Warnw("item unavailable", "type", t, "id_or_slug", idOrSlug, "err", err)
		unavailable(w)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// GetMedia handles GET /v1/media/{id}.
func (h *Handler) GetMedia(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		writeJSON(w, http.StatusBadRequest, errorBody("media id must be a positive integer"))
		return
	}

	key := "media:" + strconv.Itoa(id) + ":all"
	media, err := syncer.Fetch(r.Context(), h.sync, key, h.ttl,
		[]string{content.TagMedia},
		func(ctx context.Context) (content.MediaItem, error) {
			return h.src.GetMedia(ctx, id)
		})
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		h.log.Warnw("media unavailable", "id", id, "err", err)
		unavailable(w)
		return
	}

	writeJSON(w, http.StatusOK, media)
}

// ListTaxonomy handles GET /v1/taxonomy/{kind}.
func (h *Handler) ListTaxonomy(w http.ResponseWriter, r *http.Request) {
	kind := content.TaxonomyKind(chi.URLParam(r, "kind"))
	if kind != content.TaxonomyCategories && kind != content.TaxonomyTags {
		writeJSON(w, http.StatusNotFound, errorBody("unknown taxonomy"))
		return
	}

	key := "taxonomy:" + string(kind) + ":all"
	terms, err := syncer.Fetch(r.Context(), h.sync, key, h.ttl,
		[]string{content.TagTaxonomy},
		func(ctx context.Context) ([]content.TaxonomyTerm, error) {
			return h.src.ListTaxonomy(ctx, kind)
		})
	if err != nil {
		h.log.Warnw("taxonomy unavailable", "kind", kind, "err", err)
		unavailable(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"terms": terms,
		"total": len(terms),
	})
}

// Invalidate handles POST /v1/invalidate — the webhook/admin cache-bust
// entry point.
func (h *Handler) Invalidate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Tag string `json:"tag"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Tag == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("body must be {\"tag\": \"...\"}"))
		return
	}

	dropped := h.sync.Invalidate(body.Tag)
	h.log.Infow("cache invalidated via webhook", "tag", body.Tag, "entries", dropped)

	writeJSON(w, http.StatusOK, map[string]any{
		"tag":         body.Tag,
		"invalidated": dropped,
	})
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// filtersFromQuery maps list query parameters onto content.Filters.
func filtersFromQuery(r *http.Request) content.Filters {
	q := r.URL.Query()
	return content.Filters{
		Categories: parseIDList(q.Get("categories")),
		Tags:       parseIDList(q.Get("tags")),
		Search:     q.Get("search"),
		Status:     content.Status(q.Get("status")),
		OrderBy:    q.Get("orderby"),
		Order:      q.Get("order"),
	}
}

func parseIDList(raw string) []int {
	if raw == "" {
		return nil
	}
	var ids []int
	for _, tok := range strings.Split(raw, ",") {
		if n, err := strconv.Atoi(strings.TrimSpace(tok)); err == nil {
			ids = append(ids, n)
		}
	}
	return ids
}
