package dashboardsource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetchDashboard_HappyPath(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/dashboard/42", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cookie") == "" || r.Header.Get("X-CSRFToken") == "" {
			t.Errorf("missing auth headers")
		}
		json.NewEncoder(w).Encode(rawDashboard{
			ID: 42, Title: "Payments Overview", Tags: []string{"payments"},
			ChartIDs: []int{7},
		})
	})
	mux.HandleFunc("/api/v1/chart/7", func(w http.ResponseWriter, r *http.Request) {
		params, _ := json.Marshal(chartParams{
			Metrics: []metricSpec{{Label: "Total", Expression: "SUM(amount)"}},
			Columns: []string{"merchant_id"},
		})
		json.NewEncoder(w).Encode(rawChart{ID: 7, Name: "Total by merchant", VizType: "bar", DatasetID: 3, Params: params})
	})
	mux.HandleFunc("/api/v1/chart/7/data", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"query": "SELECT merchant_id, SUM(amount) FROM hive.sales.fact_orders GROUP BY merchant_id"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL, "session=x", "csrf", 5*time.Second)
	dash, err := c.FetchDashboard(context.Background(), 42)
	if err != nil {
		t.Fatalf("FetchDashboard() error = %v", err)
	}
	if dash.Title != "Payments Overview" || len(dash.Charts) != 1 {
		t.Fatalf("unexpected dashboard: %+v", dash)
	}
	chart := dash.Charts[0]
	if !chart.HasSQL() || !strings.Contains(*chart.SQLQuery, "fact_orders") {
		t.Errorf("chart SQL not resolved: %+v", chart)
	}
	if len(chart.Metrics) != 1 || chart.Metrics[0].Expression != "SUM(amount)" {
		t.Errorf("metrics not parsed: %+v", chart.Metrics)
	}
}

func TestFetchDashboard_401IsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, "bad", "bad", 2*time.Second)
	_, err := c.FetchDashboard(context.Background(), 1)
	if err != ErrFatalAuth {
		t.Fatalf("FetchDashboard() error = %v, want ErrFatalAuth", err)
	}
}

func TestFetchDashboard_404IsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, "x", "y", 2*time.Second)
	_, err := c.FetchDashboard(context.Background(), 99)
	var nf *ErrNotFound
	if !castErrNotFound(err, &nf) {
		t.Fatalf("FetchDashboard() error = %v, want *ErrNotFound", err)
	}
	if nf.DashboardID != 99 {
		t.Errorf("DashboardID = %d, want 99", nf.DashboardID)
	}
}

func castErrNotFound(err error, out **ErrNotFound) bool {
	e, ok := err.(*ErrNotFound)
	if ok {
		*out = e
	}
	return ok
}

func TestFetchDashboardsByTags_SubVerticalPrecedence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"result": []rawDashboard{
				{ID: 1, Title: "D1", Tags: []string{"payments", "payments-upi"}},
				{ID: 2, Title: "D2", Tags: []string{"payments"}},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "x", "y", 2*time.Second)
	out, err := c.FetchDashboardsByTags(context.Background(), []string{"payments", "payments-upi"})
	if err != nil {
		t.Fatalf("FetchDashboardsByTags() error = %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("FetchDashboardsByTags() = %+v, want 2 results", out)
	}
	if len(out[0].Tags) != 1 || out[0].Tags[0] != "payments-upi" {
		t.Errorf("dashboard 1 tags = %v, want sub-vertical precedence", out[0].Tags)
	}
}
