// internal/source/client.go
//
// HTTP client for the remote content API.
//
// Context
// -------
// The remote speaks paginated JSON: list endpoints take `page`/`per_page`
// plus filter parameters and return an array of raw items with an
// `X-Total-Pages` header; error bodies are a tagged envelope
// `{code, message, status}`.  Reads are idempotent; writes require
// credentials and become idempotent only when the caller supplies an
// existing ID (update, not create).
//
// Every method takes a context and returns a typed *Error on failure.
// Raw payloads are mapped through the normalize package before they leave
// this file, so callers only ever see content.Item and friends.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/curator/internal/content"
	"github.com/yanizio/curator/internal/metrics"
	"github.com/yanizio/curator/internal/normalize"
)

// MaxPerPage is the page-size cap the remote enforces; larger requests are
// clamped rather than rejected here so callers need not know the limit.
const MaxPerPage = 100

// Credentials carries the write-side auth material.  Method is "basic" or
// "bearer"; reads work unauthenticated.
type Credentials struct {
	Method   string
	Username string
	Token    string
}

// Client talks to one content-source API root.
type Client struct {
	baseURL string
	creds   Credentials
	http    *http.Client
	log     *zap.SugaredLogger
}

// New builds a Client for baseURL (the API root, no trailing slash
// required).  timeout bounds every request end-to-end.
func New(baseURL string, creds Credentials, timeout time.Duration, log *zap.SugaredLogger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: trimSlash(baseURL),
		creds:   creds,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// resource maps a content type to its collection path on the remote.
func resource(t content.Type) string {
	switch t {
	case content.TypeProject:
		return "projects"
	case content.TypePost:
		return "posts"
	default:
		return string(t) + "s"
	}
}

//
// Read path
//

// List fetches one page of items.  Pagination is 1-indexed; perPage is
// clamped to MaxPerPage.
func (c *Client) List(ctx context.Context, t content.Type, f content.Filters, page, perPage int) ([]content.Item, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	q := filterQuery(f)
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	op := "list " + resource(t)
	body, _, err := c.do(ctx, http.MethodGet, resource(t), q, nil, op)
	if err != nil {
		return nil, err
	}

	items, err := normalize.ItemsFromJSON(body)
	if err != nil {
		return nil, errf(KindMalformed, op, err, "decoding item list")
	}
	return items, nil
}

// ListAll loops List until the remote reports no further pages, using the
// X-Total-Pages header when present and a short page otherwise.
func (c *Client) ListAll(ctx context.Context, t content.Type, f content.Filters) ([]content.Item, error) {
	var all []content.Item
	for page := 1; ; page++ {
		q := filterQuery(f)
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(MaxPerPage))

		op := "list " + resource(t)
		body, hdr, err := c.do(ctx, http.MethodGet, resource(t), q, nil, op)
		if err != nil {
			return nil, err
		}

		items, err := normalize.ItemsFromJSON(body)
		if err != nil {
			return nil, errf(KindMalformed, op, err, "decoding item list page %d", page)
		}
		all = append(all, items...)

		if total, _ := strconv.Atoi(hdr.Get("X-Total-Pages")); total > 0 {
			if page >= total {
				break
			}
			continue
		}
		if len(items) < MaxPerPage {
			break
		}
	}
	return all, nil
}

// Get resolves an item by numeric ID or slug.  Slug lookup is a filtered
// list call reduced to at most one result.
func (c *Client) Get(ctx context.Context, t content.Type, idOrSlug string) (content.Item, error) {
	op := fmt.Sprintf("get %s %s", resource(t), idOrSlug)

	if id, err := strconv.Atoi(idOrSlug); err == nil {
		body, _, err := c.do(ctx, http.MethodGet, resource(t)+"/"+strconv.Itoa(id), nil, nil, op)
		if err != nil {
			return content.Item{}, err
		}
		var raw normalize.RawItem
		if err := json.Unmarshal(body, &raw); err != nil {
			return content.Item{}, errf(KindMalformed, op, err, "decoding item")
		}
		return normalize.ItemFromRaw(raw), nil
	}

	q := url.Values{}
	q.Set("slug", idOrSlug)
	q.Set("per_page", "1")
	body, _, err := c.do(ctx, http.MethodGet, resource(t), q, nil, op)
	if err != nil {
		return content.Item{}, err
	}

	items, err := normalize.ItemsFromJSON(body)
	if err != nil {
		return content.Item{}, errf(KindMalformed, op, err, "decoding slug lookup")
	}
	if len(items) == 0 {
		return content.Item{}, &Error{Kind: KindNotFound, Op: op, Msg: "no item with that slug"}
	}
	return items[0], nil
}

// GetMedia fetches one media item by ID.
func (c *Client) GetMedia(ctx context.Context, id int) (content.MediaItem, error) {
	op := fmt.Sprintf("get media %d", id)
	body, _, err := c.do(ctx, http.MethodGet, "media/"+strconv.Itoa(id), nil, nil, op)
	if err != nil {
		return content.MediaItem{}, err
	}

	var raw struct {
		ID           int    `json:"id"`
		MimeType     string `json:"mime_type"`
		MediaDetails struct {
			Width  int                            `json:"width"`
			Height int                            `json:"height"`
			Sizes  map[string]content.MediaSize `json:"sizes"`
		} `json:"media_details"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return content.MediaItem{}, errf(KindMalformed, op, err, "decoding media")
	}

	return content.MediaItem{
		ID:       raw.ID,
		MimeType: raw.MimeType,
		Width:    raw.MediaDetails.Width,
		Height:   raw.MediaDetails.Height,
		Sizes:    raw.MediaDetails.Sizes,
	}, nil
}

// ListTaxonomy fetches every term of one taxonomy kind.
func (c *Client) ListTaxonomy(ctx context.Context, kind content.TaxonomyKind) ([]content.TaxonomyTerm, error) {
	op := "list " + string(kind)
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(MaxPerPage))

	body, _, err := c.do(ctx, http.MethodGet, string(kind), q, nil, op)
	if err != nil {
		return nil, err
	}

	var terms []content.TaxonomyTerm
	if err := json.Unmarshal(body, &terms); err != nil {
		return nil, errf(KindMalformed, op, err, "decoding taxonomy")
	}
	return terms, nil
}

//
// Write path
//

// Create publishes a new item.  Not idempotent: calling it twice with the
// same fields creates two items.  Callers that need safe re-runs must
// resolve an existing ID first and use Update.
func (c *Client) Create(ctx context.Context, t content.Type, fields content.Fields) (content.Item, error) {
	op := "create " + resource(t)
	return c.write(ctx, http.MethodPost, resource(t), fields, op)
}

// Update patches an existing item.  Only the supplied fields change;
// everything else is left untouched on the remote.  Idempotent for a fixed
// (id, fields) pair.
func (c *Client) Update(ctx context.Context, t content.Type, id int, fields content.Fields) (content.Item, error) {
	op := fmt.Sprintf("update %s %d", resource(t), id)
	return c.write(ctx, http.MethodPost, resource(t)+"/"+strconv.Itoa(id), fields, op)
}

func (c *Client) write(ctx context.Context, method, path string, fields content.Fields, op string) (content.Item, error) {
	if c.creds.Token == "" {
		return content.Item{}, &Error{Kind: KindUnauthorized, Op: op, Msg: "no write credentials configured"}
	}

	payload, err := json.Marshal(fields)
	if err != nil {
		return content.Item{}, errf(KindMalformed, op, err, "encoding fields")
	}

	body, _, err := c.do(ctx, method, path, nil, payload, op)
	if err != nil {
		return content.Item{}, err
	}

	var raw normalize.RawItem
	if err := json.Unmarshal(body, &raw); err != nil {
		return content.Item{}, errf(KindMalformed, op, err, "decoding write response")
	}
	return normalize.ItemFromRaw(raw), nil
}

//
// Transport plumbing
//

// remoteError is the tagged envelope the remote returns for failures.
// Field-level validation detail rides in data.params.
type remoteError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Data    struct {
		Status int               `json:"status"`
		Params map[string]string `json:"params"`
	} `json:"data"`
}

// do issues one request and returns the response body and headers, or a
// classified *Error.  It never returns a raw transport error.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, payload []byte, op string) ([]byte, http.Header, error) {
	u := c.baseURL + "/" + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var rdr io.Reader
	if payload != nil {
		rdr = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, nil, errf(KindTransport, op, err, "building request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
		c.authorize(req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.SourceErrorsTotal.WithLabelValues("transport").Inc()
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, nil, errf(KindTimeout, op, err, "request timed out")
		}
		return nil, nil, errf(KindTransport, op, err, "request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.SourceErrorsTotal.WithLabelValues("transport").Inc()
		return nil, nil, errf(KindTransport, op, err, "reading response")
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, resp.Header, nil
	}

	e := c.classify(resp.StatusCode, body, op)
	metrics.SourceErrorsTotal.WithLabelValues(e.Kind.String()).Inc()
	c.log.Warnw("source request failed",
		"op", op, "status", resp.StatusCode, "kind", e.Kind.String())
	return nil, nil, e
}

// classify turns a non-2xx response into the matching error kind, decoding
// the remote envelope when one is present.
func (c *Client) classify(status int, body []byte, op string) *Error {
	var env remoteError
	_ = json.Unmarshal(body, &env) // best effort; envelope may be absent

	e := &Error{Op: op, Msg: env.Message, Status: status}
	switch {
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Kind = KindUnauthorized
	case status == http.StatusBadRequest && len(env.Data.Params) > 0:
		e.Kind = KindValidation
		e.Fields = env.Data.Params
	case status == http.StatusBadRequest && env.Code != "":
		e.Kind = KindValidation
	case status >= 500:
		e.Kind = KindTransport
	default:
		e.Kind = KindMalformed
	}
	return e
}

func (c *Client) authorize(req *http.Request) {
	switch c.creds.Method {
	case "basic":
		req.SetBasicAuth(c.creds.Username, c.creds.Token)
	default:
		req.Header.Set("Authorization", "Bearer "+c.creds.Token)
	}
}

func isTimeout(err error) bool {
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}

func filterQuery(f content.Filters) url.Values {
	q := url.Values{}
	for _, id := range f.Categories {
		q.Add("categories[]", strconv.Itoa(id))
	}
	for _, id := range f.Tags {
		q.Add("tags[]", strconv.Itoa(id))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.OrderBy != "" {
		q.Set("orderby", f.OrderBy)
	}
	if f.Order != "" {
		q.Set("order", f.Order)
	}
	return q
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
