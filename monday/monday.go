package monday

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/pure-golang/board-mailer/monday")

// Item is a board row.
type Item struct {
	Name         string        `json:"name"`
	ColumnValues []ColumnValue `json:"column_values"`
}

// ColumnValue is a named field on an item.
type ColumnValue struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Page is a batch of items. A non-empty Cursor means the board has more
// items than were returned.
type Page struct {
	Items  []Item
	Cursor string
}

// Client queries a single board.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the instrumented default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a board client. Requests go through an otelhttp transport.
func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.Timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchItems returns the configured board's items with the given columns.
// Only the first page is fetched unless Config.Paginate is set, in which
// case cursors are followed until the board is exhausted.
func (c *Client) FetchItems(ctx context.Context, columnIDs ...string) (*Page, error) {
	q := Query{
		BoardID:   c.cfg.BoardID,
		Limit:     c.cfg.pageLimit(),
		ColumnIDs: columnIDs,
	}

	page, err := c.FetchPage(ctx, q)
	if err != nil {
		return nil, err
	}
	if !c.cfg.Paginate {
		return page, nil
	}

	for page.Cursor != "" {
		q.Cursor = page.Cursor
		next, err := c.FetchPage(ctx, q)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to fetch page after %d items", len(page.Items))
		}
		page.Items = append(page.Items, next.Items...)
		page.Cursor = next.Cursor
	}

	return page, nil
}

// FetchPage issues one query and decodes the resulting page.
func (c *Client) FetchPage(ctx context.Context, q Query) (*Page, error) {
	ctx, span := tracer.Start(ctx, "Monday.FetchPage", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("monday.board_id", q.BoardID),
		attribute.Int("monday.limit", q.Limit),
		attribute.Bool("monday.next_page", q.Cursor != ""),
	)

	page, err := c.fetchPage(ctx, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("monday.items", len(page.Items)))
	span.SetStatus(codes.Ok, "")
	return page, nil
}

func (c *Client) fetchPage(ctx context.Context, q Query) (*Page, error) {
	payload, err := json.Marshal(map[string]string{"query": q.String()})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode query")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.url(), bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Authorization", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIVersion != "" {
		req.Header.Set("API-Version", c.cfg.APIVersion)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query board")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return decodePage(body, q.Cursor != "")
}

type itemsPage struct {
	Cursor string `json:"cursor"`
	Items  []Item `json:"items"`
}

type response struct {
	Data *struct {
		Boards []struct {
			ItemsPage *itemsPage `json:"items_page"`
		} `json:"boards"`
		NextItemsPage *itemsPage `json:"next_items_page"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
	ErrorMessage string `json:"error_message"`
}

func (r response) errorMessages() []string {
	var msgs []string
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	if r.ErrorMessage != "" {
		msgs = append(msgs, r.ErrorMessage)
	}
	return msgs
}

func decodePage(body []byte, next bool) (*Page, error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ResponseError{Reason: "invalid JSON: " + err.Error()}
	}

	if resp.Data == nil {
		return nil, &ResponseError{Reason: "'data' key not found", Errors: resp.errorMessages()}
	}

	var page *itemsPage
	if next {
		page = resp.Data.NextItemsPage
	} else {
		if len(resp.Data.Boards) == 0 {
			return nil, &ResponseError{Reason: "no boards found", Errors: resp.errorMessages()}
		}
		page = resp.Data.Boards[0].ItemsPage
	}

	if page == nil || page.Items == nil {
		return nil, &ResponseError{Reason: "no items found on the board", Errors: resp.errorMessages()}
	}

	return &Page{Items: page.Items, Cursor: page.Cursor}, nil
}
