package phaseengine

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"

	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/artifactstore"
	dserrors "github.com/kakumanuram-sai-ram/metamind-sub000/pkg/shared/errors"
)

// phase1Extraction fetches the dashboard and its charts, then persists
// the raw JSON dashboard record and a flat CSV of every chart's SQL.
func (e *Engine) phase1Extraction(ctx context.Context, st *dashboardState) error {
	dash, err := e.dashboards.FetchDashboard(ctx, st.id)
	if err != nil {
		return dserrors.FailedToWithDetails("fetch dashboard", "phaseengine", "dashboard_extraction", err)
	}
	st.dashboard = dash

	if err := artifactstore.WriteJSON(e.store.JSONPath(st.id), dash); err != nil {
		return err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"chart_id", "chart_name", "sql_query"})
	for _, c := range dash.Charts {
		sql := ""
		if c.HasSQL() {
			sql = *c.SQLQuery
		}
		_ = w.Write([]string{strconv.Itoa(c.ChartID), c.ChartName, sql})
	}
	w.Flush()
	return artifactstore.WriteText(e.store.QueriesPath(st.id), buf.String())
}
