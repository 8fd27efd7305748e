// Package store is the client side of the hosted table-query datastore. The
// datastore speaks the PostgREST protocol: one URL per table, filters as
// query parameters, JSON rows in and out. Query execution, pooling, and
// consistency are owned by the hosted service; this package only shapes
// requests and decodes responses, via the postgrest-go client.
package store

import (
	"context"
	"strings"
	"unicode/utf8"

	goerrors "github.com/goliatone/go-errors"
	"github.com/supabase-community/postgrest-go"
	"go.uber.org/zap"
)

const (
	restPath      = "/rest/v1"
	defaultSchema = "public"
)

// TextCodeUpstream is returned for any datastore failure. The upstream detail
// is logged but never forwarded to clients.
const TextCodeUpstream = "UPSTREAM_ERROR"

// ErrUpstream is the client-facing error for datastore failures.
var ErrUpstream = goerrors.New("datastore request failed", goerrors.CategoryInternal).
	WithTextCode(TextCodeUpstream).
	WithCode(goerrors.CodeInternal)

// Client issues table queries against the hosted datastore using a single API
// key. Construct one client per key (anonymous for normal operations, service
// role for privileged ones) and share it; it is safe for concurrent use.
type Client struct {
	rest   *postgrest.Client
	logger *zap.Logger
}

// NewClient creates a datastore client for the given endpoint and API key.
func NewClient(baseURL, apiKey string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	rest := postgrest.NewClient(strings.TrimRight(baseURL, "/")+restPath, defaultSchema, map[string]string{
		"apikey":        apiKey,
		"Authorization": "Bearer " + apiKey,
	})

	return &Client{rest: rest, logger: logger}
}

// Table starts a query against the named table.
func (c *Client) Table(name string) *Query {
	return &Query{client: c, table: name}
}

// Query accumulates filters for a single table operation.
type Query struct {
	client  *Client
	table   string
	columns string
	filters [][2]string
	limit   int
}

// Select restricts the returned columns, e.g. "id,email,name".
func (q *Query) Select(columns string) *Query {
	q.columns = columns
	return q
}

// Eq adds an equality filter on a column.
func (q *Query) Eq(column, value string) *Query {
	q.filters = append(q.filters, [2]string{column, value})
	return q
}

// Limit caps the number of returned rows.
func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Get fetches matching rows into dest, which must be a pointer to a slice.
func (q *Query) Get(ctx context.Context, dest any) error {
	columns := q.columns
	if columns == "" {
		columns = "*"
	}
	return q.client.run(ctx, q.apply(q.client.rest.From(q.table).Select(columns, "", false)), dest)
}

// Insert creates a row. When dest is non-nil the created representation is
// decoded into it.
func (q *Query) Insert(ctx context.Context, row, dest any) error {
	fb := q.client.rest.From(q.table).Insert(row, false, "", returningFor(dest), "")
	return q.client.run(ctx, q.apply(fb), dest)
}

// Update patches matching rows. When dest is non-nil the updated
// representation is decoded into it.
func (q *Query) Update(ctx context.Context, patch, dest any) error {
	fb := q.client.rest.From(q.table).Update(patch, returningFor(dest), "")
	return q.client.run(ctx, q.apply(fb), dest)
}

// Delete removes matching rows.
func (q *Query) Delete(ctx context.Context) error {
	fb := q.client.rest.From(q.table).Delete("minimal", "")
	return q.client.run(ctx, q.apply(fb), nil)
}

func (q *Query) apply(fb *postgrest.FilterBuilder) *postgrest.FilterBuilder {
	for _, f := range q.filters {
		fb = fb.Eq(f[0], f[1])
	}
	if q.limit > 0 {
		fb = fb.Limit(q.limit, "")
	}
	return fb
}

func returningFor(dest any) string {
	if dest == nil {
		return "minimal"
	}
	return "representation"
}

// run executes the built request. Every failure mode collapses into
// ErrUpstream: upstream detail stays in the logs, clients get a generic
// message.
func (c *Client) run(ctx context.Context, fb *postgrest.FilterBuilder, dest any) error {
	if err := c.rest.ClientError; err != nil {
		c.logger.Error("datastore client misconfigured", zap.Error(err))
		return ErrUpstream
	}

	var err error
	if dest == nil {
		_, _, err = fb.ExecuteWithContext(ctx)
	} else {
		_, err = fb.ExecuteToWithContext(ctx, dest)
	}
	if err != nil {
		c.logger.Error("datastore request rejected", zap.String("detail", truncate(err.Error(), 512)))
		return ErrUpstream
	}

	return nil
}

// truncate shortens s to at most max bytes without splitting a UTF-8 rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
