package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"sentinel/domain/military"
	"sentinel/internal"
	"sentinel/internal/errors"
	"sentinel/ui/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	table *military.Table
	err   error
}

func (s *stubSource) Load(ctx context.Context) (*military.Table, error) {
	return s.table, s.err
}

func testTable(t *testing.T) *military.Table {
	t.Helper()
	table, err := military.Build([]military.Record{
		{Country: "United States", Rank: 1, BudgetUSD: 831.5e9, PersonnelActive: 1_328_000, PersonnelReserve: 799_500, AircraftTotal: 13_209, Tanks: 4_657, NavyTotal: 472, PowerIndex: 0.0699},
		{Country: "Russia", Rank: 2, BudgetUSD: 109e9, PersonnelActive: 1_320_000, PersonnelReserve: 2_000_000, AircraftTotal: 4_255, Tanks: 14_777, NavyTotal: 781, PowerIndex: 0.0702},
		{Country: "China", Rank: 3, BudgetUSD: 227e9, PersonnelActive: 2_035_000, PersonnelReserve: 510_000, AircraftTotal: 3_304, Tanks: 4_950, NavyTotal: 730, PowerIndex: 0.0706},
		{Country: "India", Rank: 4, BudgetUSD: 74e9, PersonnelActive: 1_455_550, PersonnelReserve: 1_155_000, AircraftTotal: 2_296, Tanks: 4_614, NavyTotal: 294, PowerIndex: 0.1023},
	}, military.BuildOptions{LoadID: "test"})
	require.NoError(t, err)
	return table
}

func newTestServer(t *testing.T, source *stubSource) *Server {
	t.Helper()
	srv, err := NewServer(source, Config{GinMode: gin.TestMode, DefaultMinRank: 1, DefaultMaxRank: 10},
		internal.NewLogger(internal.LogLevelError))
	require.NoError(t, err)
	return srv
}

func get(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func countriesOf(t *testing.T, rows interface{}) []string {
	t.Helper()
	list, ok := rows.([]interface{})
	require.True(t, ok, "expected a list, got %T", rows)
	out := make([]string, 0, len(list))
	for _, r := range list {
		out = append(out, r.(map[string]interface{})["Country"].(string))
	}
	return out
}

func TestNewServerRequiresSource(t *testing.T) {
	_, err := NewServer(nil, Config{GinMode: gin.TestMode}, nil)
	assert.Error(t, err)
}

func TestIndexRendersSelector(t *testing.T) {
	srv := newTestServer(t, &stubSource{table: testTable(t)})

	rec := get(t, srv, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, `<option value="Global" selected>Global</option>`)
	assert.Contains(t, body, `<option value="India">India</option>`)
	assert.Contains(t, body, `max="4"`)
	assert.Contains(t, body, `value="10"`)
}

func TestBriefingRendersMarkdown(t *testing.T) {
	srv := newTestServer(t, &stubSource{table: testTable(t)})

	rec := get(t, srv, "/briefing")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<h1 id="briefing">Briefing</h1>`)
	assert.Contains(t, rec.Body.String(), "<table>")
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &stubSource{table: testTable(t)})

	rec := get(t, srv, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(4), body["rows"])
	assert.Equal(t, "test", body["load_id"])

	failing := newTestServer(t, &stubSource{err: errors.SchemaError("missing required columns: Country")})
	rec = get(t, failing, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, errors.CodeSchemaError, decode(t, rec)["code"])
}

func TestCountriesListsGlobalFirst(t *testing.T) {
	srv := newTestServer(t, &stubSource{table: testTable(t)})

	rec := get(t, srv, "/api/countries")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, []interface{}{"Global", "China", "India", "Russia", "United States"}, body["options"])
	assert.Equal(t, []interface{}{"Global"}, body["default"])
	assert.Equal(t, float64(4), body["max_rank"])
}

func TestTableSelection(t *testing.T) {
	srv := newTestServer(t, &stubSource{table: testTable(t)})

	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{"defaults", "/api/table", []string{"United States", "Russia", "China", "India"}},
		{"rank window", "/api/table?min_rank=2&max_rank=3", []string{"Russia", "China"}},
		{"repeated countries", "/api/table?country=India&country=Russia", []string{"Russia", "India"}},
		{"comma separated", "/api/table?country=India,China", []string{"China", "India"}},
		{"global lifts restriction", "/api/table?country=Global&country=India", []string{"United States", "Russia", "China", "India"}},
		{"unknown country", "/api/table?country=Atlantis", []string{}},
		{"window outside dataset", "/api/table?min_rank=50&max_rank=60", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, srv, tt.target)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			body := decode(t, rec)
			assert.Equal(t, tt.want, countriesOf(t, body["rows"]))
			assert.Equal(t, float64(len(tt.want)), body["count"])
		})
	}
}

func TestTableReportsEffectiveRange(t *testing.T) {
	srv := newTestServer(t, &stubSource{table: testTable(t)})

	rec := get(t, srv, "/api/table?min_rank=0&max_rank=99")
	require.Equal(t, http.StatusOK, rec.Code)
	sel := decode(t, rec)["selection"].(map[string]interface{})
	assert.Equal(t, float64(0), sel["min_rank"])
	assert.Equal(t, float64(1), sel["effective_min_rank"])
	assert.Equal(t, float64(4), sel["effective_max_rank"])
}

func TestTableRowsCarryNormalizedColumns(t *testing.T) {
	srv := newTestServer(t, &stubSource{table: testTable(t)})

	rec := get(t, srv, "/api/table?country=United%20States")
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode(t, rec)["rows"].([]interface{})
	require.Len(t, rows, 1)
	row := rows[0].(map[string]interface{})
	assert.Equal(t, 1.0, row["norm_Budget_USD"])
	assert.Equal(t, 1.0, row["norm_Aircraft_Total"])
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		source *stubSource
		target string
		status int
		code   string
	}{
		{"inverted range", &stubSource{table: testTable(t)}, "/api/table?min_rank=5&max_rank=2", http.StatusBadRequest, errors.CodeInvalidRange},
		{"bad integer", &stubSource{table: testTable(t)}, "/api/table?min_rank=abc", http.StatusBadRequest, errors.CodeInvalidInput},
		{"bad toggle", &stubSource{table: testTable(t)}, "/api/dashboard?funding=maybe", http.StatusBadRequest, errors.CodeInvalidInput},
		{"unknown radar country", &stubSource{table: testTable(t)}, "/api/radar?a=India&b=Atlantis", http.StatusNotFound, errors.CodeNotFound},
		{"schema failure", &stubSource{err: errors.SchemaError("missing required columns: Rank")}, "/api/table", http.StatusServiceUnavailable, errors.CodeSchemaError},
		{"load failure", &stubSource{err: errors.DataLoadError("dataset file not found", nil)}, "/api/dashboard", http.StatusServiceUnavailable, errors.CodeDataLoadError},
		{"load failure on index", &stubSource{err: errors.DataLoadError("dataset file not found", nil)}, "/", http.StatusServiceUnavailable, errors.CodeDataLoadError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newTestServer(t, tt.source), tt.target)
			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.code, body["code"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestDashboardToggles(t *testing.T) {
	srv := newTestServer(t, &stubSource{table: testTable(t)})

	rec := get(t, srv, "/api/dashboard?max_rank=2")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	summary := body["summary"].(map[string]interface{})
	assert.Equal(t, "United States", summary["top_country"])
	assert.Equal(t, float64(2), summary["count"])
	assert.Equal(t, []string{"United States", "Russia"}, countriesOf(t, body["map"]))
	assert.Equal(t, []string{"United States", "Russia"}, countriesOf(t, body["budget"]))
	assert.Contains(t, body, "efficiency")

	rec = get(t, srv, "/api/dashboard?funding=false&manpower=false")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Contains(t, body, "summary")
	assert.NotContains(t, body, "map")
	assert.NotContains(t, body, "budget")
	assert.NotContains(t, body, "efficiency")
}

func TestRadar(t *testing.T) {
	srv := newTestServer(t, &stubSource{table: testTable(t)})

	rec := get(t, srv, "/api/radar")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	traces := body["traces"].([]interface{})
	require.Len(t, traces, 2)
	assert.Equal(t, "United States", traces[0].(map[string]interface{})["country"])
	assert.Equal(t, "China", traces[1].(map[string]interface{})["country"])
	assert.Equal(t, []interface{}{0.0, 1.0}, body["range"])

	rec = get(t, srv, "/api/radar?a=India&b=Russia")
	require.Equal(t, http.StatusOK, rec.Code)
	traces = decode(t, rec)["traces"].([]interface{})
	russia := traces[1].(map[string]interface{})
	assert.Equal(t, "Russia", russia["country"])
	assert.Len(t, russia["values"], len(military.Metrics))
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t, &stubSource{table: testTable(t)})

	rec := get(t, srv, "/healthz")
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(middleware.RequestIDHeader, "trace-123")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "trace-123", rec.Header().Get(middleware.RequestIDHeader))
}

func TestProfile(t *testing.T) {
	srv := newTestServer(t, &stubSource{table: testTable(t)})

	rec := get(t, srv, "/api/profile")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(4), body["count"])
	metrics := body["metrics"].([]interface{})
	require.Len(t, metrics, len(military.Metrics))
	budget := metrics[0].(map[string]interface{})
	assert.Equal(t, "Budget_USD", budget["metric"])
	assert.Equal(t, 831.5e9, budget["max"])
	assert.Equal(t, float64(4), budget["count"])
}
