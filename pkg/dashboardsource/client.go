// Package dashboardsource implements the upstream BI service client:
// fetch_dashboard and fetch_dashboards_by_tags from spec.md §4.1.
package dashboardsource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	dserrors "github.com/kakumanuram-sai-ram/metamind-sub000/pkg/shared/errors"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/shared/httpclient"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/shared/retry"

	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/model"
)

// ErrFatalAuth signals a 401 from the upstream BI service — fatal for
// the whole run per spec.md §4.1/§7.
var ErrFatalAuth = fmt.Errorf("dashboard source: authentication failed (401)")

// ErrNotFound signals a non-auth 4xx — terminal for the current
// dashboard, non-fatal for the run.
type ErrNotFound struct {
	DashboardID int
	StatusCode  int
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("dashboard %d: upstream returned %d", e.DashboardID, e.StatusCode)
}

// Client fetches dashboards, charts, datasets, and SQL from the
// upstream BI service over HTTP, with session-cookie + CSRF-token
// auth headers carried on every request.
type Client struct {
	baseURL    string
	cookie     string
	csrfToken  string
	httpClient *http.Client
	retryPol   retry.Policy
	breaker    *gobreaker.CircuitBreaker
}

// New builds a Client. timeout bounds every individual HTTP request.
func New(baseURL, cookie, csrfToken string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		cookie:     cookie,
		csrfToken:  csrfToken,
		httpClient: httpclient.NewClient(httpclient.DashboardClientConfig(timeout)),
		retryPol:   retry.Default(),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "dashboard-source",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

type retryableHTTPError struct {
	statusCode int
	err        error
}

func (e *retryableHTTPError) Error() string { return e.err.Error() }
func (e *retryableHTTPError) Unwrap() error { return e.err }
func (e *retryableHTTPError) Retryable() bool {
	return e.statusCode >= 500 || e.statusCode == 0
}

func (c *Client) doJSON(ctx context.Context, method, path string, out interface{}) error {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		var body []byte
		err := retry.Do(ctx, c.retryPol, func(attempt int) error {
			req, rerr := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
			if rerr != nil {
				return rerr
			}
			req.Header.Set("Cookie", c.cookie)
			req.Header.Set("X-CSRFToken", c.csrfToken)
			req.Header.Set("Accept", "application/json")

			resp, rerr := c.httpClient.Do(req)
			if rerr != nil {
				return &retryableHTTPError{statusCode: 0, err: rerr}
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusUnauthorized {
				return &retryableHTTPError{statusCode: resp.StatusCode, err: ErrFatalAuth}
			}
			if resp.StatusCode >= 500 {
				return &retryableHTTPError{statusCode: resp.StatusCode, err: fmt.Errorf("upstream status %d", resp.StatusCode)}
			}
			if resp.StatusCode >= 400 {
				return &retryableHTTPError{statusCode: resp.StatusCode, err: fmt.Errorf("upstream status %d", resp.StatusCode)}
			}

			b, rerr := io.ReadAll(resp.Body)
			if rerr != nil {
				return &retryableHTTPError{statusCode: 0, err: rerr}
			}
			body = b
			return nil
		})
		return body, err
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(result.([]byte), out)
}

// rawDashboard and rawChart mirror the JSON shape this client expects
// from the upstream BI service; they are internal to this package.
type rawDashboard struct {
	ID        int        `json:"id"`
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	Owner     string     `json:"owner"`
	Tags      []string   `json:"tags"`
	CreatedAt time.Time  `json:"created_at"`
	ChangedAt time.Time  `json:"changed_at"`
	ChartIDs  []int      `json:"chart_ids"`
}

type rawChart struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	VizType      string          `json:"viz_type"`
	DatasetID    int             `json:"dataset_id"`
	DatasetName  string          `json:"dataset_name"`
	DatabaseName string          `json:"database_name"`
	Params       json.RawMessage `json:"params"`
}

type chartParams struct {
	Metrics   []metricSpec  `json:"metrics"`
	Columns   []string      `json:"groupby"`
	Filters   []filterSpec  `json:"adhoc_filters"`
	TimeRange *timeRangeSpec `json:"time_range"`
}

type metricSpec struct {
	Label      string `json:"label"`
	Expression string `json:"sqlExpression"`
}

type filterSpec struct {
	SubjectColumn string `json:"subject"`
	Operator      string `json:"operator"`
	Comparator    string `json:"comparator"`
}

type timeRangeSpec struct {
	Column string `json:"granularity_sqla"`
	Range  string `json:"time_range"`
}

// FetchDashboard retrieves the dashboard header, enumerates its
// charts, and resolves each chart's executed SQL (falling back to the
// dataset's defining SQL). A chart with no SQL from either path keeps
// sql_query == nil.
func (c *Client) FetchDashboard(ctx context.Context, id int) (*model.DashboardRecord, error) {
	var raw rawDashboard
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/v1/dashboard/%d", id), &raw); err != nil {
		return nil, classifyFetchError(id, err)
	}

	rec := &model.DashboardRecord{
		ID:        raw.ID,
		Title:     raw.Title,
		URL:       raw.URL,
		Owner:     raw.Owner,
		Tags:      raw.Tags,
		CreatedAt: raw.CreatedAt,
		ChangedAt: raw.ChangedAt,
	}

	for _, chartID := range raw.ChartIDs {
		chart, err := c.fetchChart(ctx, chartID)
		if err != nil {
			// A single bad chart does not fail the dashboard; it's
			// recorded with no SQL and downstream phases skip it.
			rec.Charts = append(rec.Charts, model.ChartRecord{ChartID: chartID})
			continue
		}
		rec.Charts = append(rec.Charts, *chart)
	}

	return rec, nil
}

func classifyFetchError(id int, err error) error {
	if errors.Is(err, ErrFatalAuth) {
		return ErrFatalAuth
	}
	var httpErr *retryableHTTPError
	if e, ok := err.(*retryableHTTPError); ok {
		httpErr = e
	}
	if httpErr != nil && httpErr.statusCode >= 400 && httpErr.statusCode < 500 {
		return &ErrNotFound{DashboardID: id, StatusCode: httpErr.statusCode}
	}
	return dserrors.FailedToWithDetails("fetch dashboard", "dashboard_source", fmt.Sprintf("%d", id), err)
}

func (c *Client) fetchChart(ctx context.Context, chartID int) (*model.ChartRecord, error) {
	var raw rawChart
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/v1/chart/%d", chartID), &raw); err != nil {
		return nil, err
	}

	rec := &model.ChartRecord{
		ChartID:      raw.ID,
		ChartName:    raw.Name,
		ChartType:    model.NormalizeChartType(raw.VizType),
		DatasetID:    raw.DatasetID,
		DatasetName:  raw.DatasetName,
		DatabaseName: raw.DatabaseName,
	}

	var params chartParams
	if len(raw.Params) > 0 {
		_ = json.Unmarshal(raw.Params, &params)
	}
	for _, m := range params.Metrics {
		rec.Metrics = append(rec.Metrics, model.Metric{Label: m.Label, Expression: m.Expression})
	}
	rec.Columns = append(rec.Columns, params.Columns...)
	rec.GroupbyColumns = append(rec.GroupbyColumns, params.Columns...)
	for _, f := range params.Filters {
		rec.Filters = append(rec.Filters, model.Filter{Column: f.SubjectColumn, Operator: f.Operator, Value: f.Comparator})
	}
	if params.TimeRange != nil {
		rec.TimeRange = &model.TimeRange{Column: params.TimeRange.Column, Range: params.TimeRange.Range}
	}

	sql, err := c.resolveChartSQL(ctx, chartID, raw.DatasetID)
	if err == nil && sql != "" {
		rec.SQLQuery = &sql
	}

	return rec, nil
}

// resolveChartSQL tries the chart-exec endpoint first (executed SQL),
// then falls back to the dataset's stored query template.
func (c *Client) resolveChartSQL(ctx context.Context, chartID, datasetID int) (string, error) {
	var exec struct {
		Query string `json:"query"`
	}
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/v1/chart/%d/data", chartID), &exec); err == nil && exec.Query != "" {
		return exec.Query, nil
	}

	var dataset struct {
		SQL string `json:"sql"`
	}
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/v1/dataset/%d", datasetID), &dataset); err == nil && dataset.SQL != "" {
		return dataset.SQL, nil
	}

	return "", fmt.Errorf("no SQL available from either chart-exec or dataset endpoints")
}

// FetchDashboardsByTags lists dashboards matching any of the given
// tags, case-insensitively. When both a sub-vertical and a vertical
// tag match the same dashboard, only the sub-vertical tag is reported
// in the result's matched-tag ordering (sub-vertical tags take
// precedence per spec.md §4.1).
func (c *Client) FetchDashboardsByTags(ctx context.Context, tags []string) ([]model.DashboardSummary, error) {
	var all struct {
		Result []rawDashboard `json:"result"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/dashboard/", &all); err != nil {
		return nil, dserrors.FailedTo("list dashboards", err)
	}

	wantedLower := make(map[string]bool, len(tags))
	for _, t := range tags {
		wantedLower[strings.ToLower(t)] = true
	}

	var out []model.DashboardSummary
	for _, d := range all.Result {
		if matched := matchTags(d.Tags, wantedLower); len(matched) > 0 {
			out = append(out, model.DashboardSummary{ID: d.ID, Title: d.Title, Tags: matched})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func matchTags(dashboardTags []string, wantedLower map[string]bool) []string {
	var subVertical, vertical []string
	for _, tag := range dashboardTags {
		if !wantedLower[strings.ToLower(tag)] {
			continue
		}
		if strings.Contains(strings.ToLower(tag), "-") {
			subVertical = append(subVertical, tag) // e.g. "payments-upi" treated as sub-vertical
		} else {
			vertical = append(vertical, tag)
		}
	}
	if len(subVertical) > 0 {
		return subVertical
	}
	return vertical
}
