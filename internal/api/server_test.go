package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/fifa-analytics/internal/api/handler"
	"github.com/albapepper/fifa-analytics/internal/api/respond"
	"github.com/albapepper/fifa-analytics/internal/cache"
	"github.com/albapepper/fifa-analytics/internal/config"
	"github.com/albapepper/fifa-analytics/internal/metrics"
	"github.com/albapepper/fifa-analytics/internal/predict"
	"github.com/albapepper/fifa-analytics/internal/source"
)

const playersCSV = "sofifa_id,player_url,short_name,age,height_cm,overall,potential,value_eur,wage_eur,nationality,club_name,preferred_foot,dob\n" +
	"158023,https://sofifa.com/player/158023,L. Messi,33,170,93,93,67500000,560000,Argentina,FC Barcelona,Left,1987-06-24\n" +
	"20801,https://sofifa.com/player/20801,Cristiano Ronaldo,35,187,92,92,46000000,220000,Portugal,Juventus,Right,1985-02-05\n" +
	"231747,https://sofifa.com/player/231747,K. Mbappé,21,178,90,95,105500000,160000,France,Paris Saint-Germain,Right,1998-12-20\n" +
	"209331,https://sofifa.com/player/209331,M. Salah,28,175,90,90,78000000,250000,Egypt,Liverpool,Left,1992-06-15\n" +
	"999999,https://sofifa.com/player/999999,Prospect,,180,65,85,,,,,Right,not a date\n"

const modelJSON = `{"target":"potential","features":["age","height_cm","overall","potential","value_eur","wage_eur"],"coefficients":[-0.5,0,0.5,0.5,0,0],"intercept":10}`

type testEnv struct {
	router http.Handler
	cfg    *config.Config
	dir    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	cfg := &config.Config{
		DataSource:         write("players_21.csv", playersCSV),
		ModelPath:          write("model.json", modelJSON),
		DescriptionPath:    filepath.Join(dir, "description.html"),
		FetchTimeout:       time.Second,
		FetchRatePerMinute: 600,
		CORSAllowOrigins:   []string{"http://localhost:3000"},
		CacheEnabled:       true,
	}

	m := metrics.New()
	loader := source.NewLoader(source.Options{FetchTimeout: cfg.FetchTimeout, RequestsPerMinute: cfg.FetchRatePerMinute}, nil)
	responses := cache.New(true)
	t.Cleanup(responses.Close)

	router := NewRouter(handler.Deps{
		Config:    cfg,
		Store:     cache.NewStore(loader.LoadClean, true, nil, m),
		Responses: responses,
		Predictor: predict.NewAdapter(cfg.ModelPath, nil),
		Metrics:   m,
	})
	return &testEnv{router: router, cfg: cfg, dir: dir}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body respond.ErrorResponse
	decodeBody(t, rec, &body)
	return body.Error.Code
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Process-Time"))

	rec = env.do(t, http.MethodGet, "/health/db", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_configured")

	rec = env.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "FIFA Player Analytics API")
}

func TestGetDataset(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/dataset", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))

	var info handler.DatasetInfo
	decodeBody(t, rec, &info)
	assert.Equal(t, 5, info.Info.Rows)
	assert.NotContains(t, info.Info.ColumnNames, "sofifa_id")
	assert.NotContains(t, info.Info.ColumnNames, "player_url")
	assert.ElementsMatch(t, []string{"sofifa_id", "player_url"}, info.Report.DroppedColumns)
	assert.Equal(t, 1, info.Report.InvalidDates)

	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	rec = env.do(t, http.MethodGet, "/api/v1/dataset", nil)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))

	rec = env.do(t, http.MethodGet, "/api/v1/dataset", nil, "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, rec.Code)
}

func TestGetPreview(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/dataset/preview?n=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var table struct {
		Columns []string        `json:"columns"`
		Rows    [][]interface{} `json:"rows"`
	}
	decodeBody(t, rec, &table)
	assert.Len(t, table.Rows, 2)
	assert.Equal(t, "short_name", table.Columns[0])
	assert.Equal(t, "L. Messi", table.Rows[0][0])

	for _, bad := range []string{"0", "abc", "5000"} {
		rec = env.do(t, http.MethodGet, "/api/v1/dataset/preview?n="+bad, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
		assert.Equal(t, respond.CodeInvalidRequest, errorCode(t, rec))
	}
}

func TestGetDescribe(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/dataset/describe", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summaries []map[string]interface{}
	decodeBody(t, rec, &summaries)
	require.NotEmpty(t, summaries)

	byName := map[string]map[string]interface{}{}
	for _, s := range summaries {
		byName[s["name"].(string)] = s
	}
	assert.Equal(t, "numeric", byName["age"]["kind"])
	assert.Contains(t, byName["age"], "mean")
	assert.Equal(t, "text", byName["nationality"]["kind"])
	assert.Contains(t, byName["nationality"], "top")
}

func TestGetOptions(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/dataset/options/nationality", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Values []string `json:"values"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, []string{"Argentina", "Egypt", "France", "Portugal", "Unknown"}, body.Values)

	rec = env.do(t, http.MethodGet, "/api/v1/dataset/options/shoe_size", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, respond.CodeColumnMissing, errorCode(t, rec))
}

func TestGetBounds(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/dataset/bounds", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var bounds []struct {
		Column string `json:"column"`
		Min    int64  `json:"min"`
		Max    int64  `json:"max"`
	}
	decodeBody(t, rec, &bounds)
	require.Len(t, bounds, 4)
	assert.Equal(t, "age", bounds[0].Column)
	assert.Equal(t, int64(21), bounds[0].Min)
	assert.Equal(t, int64(35), bounds[0].Max)
}

func TestPostFilter(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		body    interface{}
		status  int
		matches int
		code    string
	}{
		{
			name:    "overall range",
			body:    map[string]interface{}{"ranges": map[string]interface{}{"overall": map[string]float64{"min": 91, "max": 99}}},
			status:  http.StatusOK,
			matches: 2,
		},
		{
			name:    "categories and range",
			body:    map[string]interface{}{"categories": map[string][]string{"preferred_foot": {"Left"}}, "ranges": map[string]interface{}{"age": map[string]float64{"min": 30, "max": 40}}},
			status:  http.StatusOK,
			matches: 1,
		},
		{
			name:    "unknown is an ordinary option",
			body:    map[string]interface{}{"categories": map[string][]string{"nationality": {"Unknown"}}},
			status:  http.StatusOK,
			matches: 1,
		},
		{
			name:    "empty body matches everything",
			body:    map[string]interface{}{},
			status:  http.StatusOK,
			matches: 5,
		},
		{
			name:   "inverted range",
			body:   map[string]interface{}{"ranges": map[string]interface{}{"age": map[string]float64{"min": 40, "max": 20}}},
			status: http.StatusBadRequest,
			code:   respond.CodeInvalidRequest,
		},
		{
			name:   "range on text column",
			body:   map[string]interface{}{"ranges": map[string]interface{}{"nationality": map[string]float64{"min": 0, "max": 1}}},
			status: http.StatusBadRequest,
			code:   respond.CodeInvalidColumn,
		},
		{
			name:   "malformed json",
			body:   `{"ranges": [`,
			status: http.StatusBadRequest,
			code:   respond.CodeInvalidRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/filter", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.code != "" {
				assert.Equal(t, tt.code, errorCode(t, rec))
				return
			}
			var resp handler.FilterResponse
			decodeBody(t, rec, &resp)
			assert.Equal(t, tt.matches, resp.Matches)
			assert.Equal(t, 5, resp.Total)
		})
	}
}

func TestPostFilter_Limit(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/filter", map[string]interface{}{"limit": 0})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.FilterResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, 5, resp.Matches)
	assert.Empty(t, resp.Rows.Rows)
}

func TestPostPredict(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/predict", predict.FeatureRow{
		Age: 20, HeightCM: 180, Overall: 70, Potential: 80, ValueEUR: 1_000_000, WageEUR: 5_000,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp handler.PredictResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "potential", resp.Target)
	assert.InDelta(t, 75.0, resp.Prediction, 1e-9)

	rec = env.do(t, http.MethodPost, "/api/v1/predict", predict.FeatureRow{Age: 12, HeightCM: 180, Overall: 70, Potential: 80})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "age")
}

func TestPostPredict_ModelUnavailable(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.Remove(env.cfg.ModelPath))

	rec := env.do(t, http.MethodPost, "/api/v1/predict", predict.FeatureRow{
		Age: 20, HeightCM: 180, Overall: 70, Potential: 80,
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, respond.CodeModelUnavailable, errorCode(t, rec))
	assert.NotContains(t, rec.Body.String(), "prediction")
}

func TestGetDescription(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/description", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"available":false`)

	require.NoError(t, os.WriteFile(env.cfg.DescriptionPath, []byte("<h1>FIFA 21</h1>"), 0o644))
	rec = env.do(t, http.MethodGet, "/api/v1/description", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))
	assert.Equal(t, "<h1>FIFA 21</h1>", rec.Body.String())
}

func TestSourceUnavailable(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.Remove(env.cfg.DataSource))

	rec := env.do(t, http.MethodGet, "/api/v1/dataset", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, respond.CodeSourceUnavailable, errorCode(t, rec))

	// The process keeps serving once the source comes back.
	require.NoError(t, os.WriteFile(env.cfg.DataSource, []byte(playersCSV), 0o644))
	rec = env.do(t, http.MethodGet, "/api/v1/dataset", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestParseError(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(env.cfg.DataSource, []byte("age,overall\n1,2,3\n"), 0o644))

	rec := env.do(t, http.MethodGet, "/api/v1/dataset/describe", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, respond.CodeParseError, errorCode(t, rec))
}

func TestReloadDataset(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/dataset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var before handler.DatasetInfo
	decodeBody(t, rec, &before)

	trimmed := strings.Join(strings.Split(playersCSV, "\n")[:3], "\n") + "\n"
	require.NoError(t, os.WriteFile(env.cfg.DataSource, []byte(trimmed), 0o644))

	rec = env.do(t, http.MethodPost, "/api/v1/dataset/reload", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var after handler.DatasetInfo
	decodeBody(t, rec, &after)
	assert.NotEqual(t, before.LoadID, after.LoadID)
	assert.Equal(t, 2, after.Info.Rows)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/api/v1/dataset", nil)

	rec := env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `fifa_dataset_loads_total{outcome="ok"} 1`)
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.RateLimitEnabled = true
	env.cfg.RateLimitRequests = 2
	env.cfg.RateLimitWindow = time.Minute

	m := metrics.New()
	router := NewRouter(handler.Deps{
		Config:    env.cfg,
		Store:     cache.NewStore(nil, false, nil, m),
		Responses: cache.New(false),
		Predictor: predict.NewAdapter(env.cfg.ModelPath, nil),
		Metrics:   m,
	})

	var last int
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		last = rec.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
