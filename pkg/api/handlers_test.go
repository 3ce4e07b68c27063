package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/specwatch/specwatch/pkg/config"
	"github.com/specwatch/specwatch/pkg/snapshot"
	"github.com/specwatch/specwatch/pkg/store"
	"github.com/specwatch/specwatch/pkg/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, cfg *config.ServerConfig) (http.Handler, store.Store) {
	t.Helper()

	log := logrus.New()
	tracking := snapshot.Config{Enabled: true}

	st := store.NewFileStore(log,
		filepath.Join(t.TempDir(), "snapshot.json"), tracking)
	tr := tracker.New(log, tracking, st)

	srv := &server{
		log:     log.WithField("component", "api"),
		cfg:     cfg,
		tracker: tr,
		store:   st,
	}

	return srv.buildRouter(), st
}

func doRequest(
	t *testing.T,
	router http.Handler,
	method, path, body string,
) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestHandleHealth(t *testing.T) {
	router, _ := newTestServer(t, &config.ServerConfig{Listen: ":0"})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestRunLifecycle(t *testing.T) {
	router, st := newTestServer(t, &config.ServerConfig{Listen: ":0"})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/run/start", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, st.Load())

	rec = doRequest(t, router, http.MethodPost, "/api/v1/run/cleanup", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, st.Load())
}

func TestHandleTestSample(t *testing.T) {
	router, st := newTestServer(t, &config.ServerConfig{Listen: ":0"})
	doRequest(t, router, http.MethodPost, "/api/v1/run/start", "")

	body := `{
		"specName": "login.spec.ts",
		"testTitle": "logs in",
		"memory": {
			"timestamp": 1700000000000,
			"usedJSHeapSize": 1048576,
			"totalJSHeapSize": 2097152,
			"jsHeapSizeLimit": 4294967296
		}
	}`

	rec := doRequest(t, router, http.MethodPost, "/api/v1/samples/test", body)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	snap := st.Load()
	require.NotNil(t, snap)

	test := snap.Tests[snapshot.TestKey("login.spec.ts", "logs in")]
	require.NotNil(t, test)
	require.Len(t, test.Samples, 1)
	assert.Equal(t, uint64(1048576), test.Samples[0].UsedJSHeapSize)
	assert.Equal(t, test.Samples, snap.Specs["login.spec.ts"].Tests["logs in"])
}

func TestHandleSpecSample(t *testing.T) {
	router, st := newTestServer(t, &config.ServerConfig{Listen: ":0"})
	doRequest(t, router, http.MethodPost, "/api/v1/run/start", "")

	body := `{"specName": "a.spec.ts", "memory": {"usedJSHeapSize": 2048}}`

	rec := doRequest(t, router, http.MethodPost, "/api/v1/samples/spec", body)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	snap := st.Load()
	require.NotNil(t, snap)
	assert.Len(t, snap.Specs["a.spec.ts"].Samples, 1)
}

func TestHandleSample_MissingFields(t *testing.T) {
	router, st := newTestServer(t, &config.ServerConfig{Listen: ":0"})
	doRequest(t, router, http.MethodPost, "/api/v1/run/start", "")

	tests := []struct {
		name string
		path string
		body string
	}{
		{"spec sample without name", "/api/v1/samples/spec",
			`{"memory": {"usedJSHeapSize": 1}}`},
		{"spec sample without memory", "/api/v1/samples/spec",
			`{"specName": "a.spec.ts"}`},
		{"test sample without title", "/api/v1/samples/test",
			`{"specName": "a.spec.ts", "memory": {"usedJSHeapSize": 1}}`},
		{"garbage body", "/api/v1/samples/test", `{nope`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	snap := st.Load()
	require.NotNil(t, snap)
	assert.Empty(t, snap.Specs)
	assert.Empty(t, snap.Tests)
}

func TestHandleBatch(t *testing.T) {
	router, st := newTestServer(t, &config.ServerConfig{Listen: ":0"})
	doRequest(t, router, http.MethodPost, "/api/v1/run/start", "")

	body := `[
		{"specName": "a.spec.ts", "testTitle": "t1",
		 "memory": {"usedJSHeapSize": 1048576}},
		{"specName": "a.spec.ts", "testTitle": "t1",
		 "memory": {"usedJSHeapSize": 2097152}}
	]`

	rec := doRequest(t, router, http.MethodPost, "/api/v1/samples/batch", body)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	snap := st.Load()
	require.NotNil(t, snap)
	assert.Len(t, snap.Tests[snapshot.TestKey("a.spec.ts", "t1")].Samples, 2)
}

func TestHandleBatch_MalformedBodyDoesNotMutate(t *testing.T) {
	router, st := newTestServer(t, &config.ServerConfig{Listen: ":0"})
	doRequest(t, router, http.MethodPost, "/api/v1/run/start", "")

	// An object is not a batch; a batch is a JSON array.
	rec := doRequest(t, router, http.MethodPost, "/api/v1/samples/batch",
		`{"specName": "a.spec.ts"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	snap := st.Load()
	require.NotNil(t, snap)
	assert.Empty(t, snap.Specs)
	assert.Empty(t, snap.Tests)
}

func TestHandleReport(t *testing.T) {
	router, _ := newTestServer(t, &config.ServerConfig{Listen: ":0"})

	// No snapshot yet.
	rec := doRequest(t, router, http.MethodGet, "/api/v1/report", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	doRequest(t, router, http.MethodPost, "/api/v1/run/start", "")
	doRequest(t, router, http.MethodPost, "/api/v1/samples/test", `{
		"specName": "a.spec.ts", "testTitle": "t1",
		"memory": {"usedJSHeapSize": 3145728}
	}`)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/report", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a.spec.ts")
	assert.Contains(t, rec.Body.String(), `"max":3`)
}

func TestRateLimit_RejectsOverBudget(t *testing.T) {
	router, _ := newTestServer(t, &config.ServerConfig{
		Listen: ":0",
		RateLimit: config.RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 2,
		},
	})

	body := `[]`

	for i := 0; i < 2; i++ {
		rec := doRequest(t, router, http.MethodPost, "/api/v1/samples/batch", body)
		assert.Equal(t, http.StatusAccepted, rec.Code)
	}

	rec := doRequest(t, router, http.MethodPost, "/api/v1/samples/batch", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
