package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/faq-engine/internal/domain/admin"
	"github.com/yanqian/faq-engine/internal/domain/faq"
	"github.com/yanqian/faq-engine/internal/infra/config"
	apperrors "github.com/yanqian/faq-engine/pkg/errors"
)

const testPassword = "s3cret"

func TestRouter_SearchSuccess(t *testing.T) {
	want := faq.SearchResponse{
		Results:      []faq.SearchResult{{Question: "What is the refund policy?", Identifier: "Q1.1", CombinedScore: 0.9, Method: faq.MethodHybrid}},
		TotalResults: 1,
		Method:       faq.MethodHybrid,
	}
	svc := &stubFAQService{
		searchFn: func(_ context.Context, req faq.SearchRequest) (faq.SearchResponse, error) {
			require.Equal(t, "refund", req.Query)
			require.Equal(t, 2, req.TopK)
			return want, nil
		},
	}

	rec := performRequest(t, newRouterUnderTest(t, svc, testPassword, nil), http.MethodPost, "/api/v1/faq/search", `{"query":"refund","topK":2}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got faq.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, want, got)
}

func TestRouter_SearchErrors(t *testing.T) {
	cases := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "invalid json", body: `{"query":1}`, wantStatus: http.StatusBadRequest, wantCode: "invalid_request"},
		{name: "invalid input", body: `{"query":""}`, err: apperrors.Wrap(apperrors.CodeInvalidInput, "query cannot be empty", nil), wantStatus: http.StatusBadRequest, wantCode: apperrors.CodeInvalidInput},
		{name: "internal", body: `{"query":"x"}`, err: apperrors.Wrap(apperrors.CodeInternal, "boom", nil), wantStatus: http.StatusInternalServerError, wantCode: apperrors.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubFAQService{
				searchFn: func(context.Context, faq.SearchRequest) (faq.SearchResponse, error) {
					return faq.SearchResponse{}, tc.err
				},
			}
			rec := performRequest(t, newRouterUnderTest(t, svc, testPassword, nil), http.MethodPost, "/api/v1/faq/search", tc.body, nil)
			require.Equal(t, tc.wantStatus, rec.Code)
			body := decodeErrorBody(t, rec.Body.Bytes())
			require.Equal(t, tc.wantCode, body["error"]["code"])
			require.NotEmpty(t, body["error"]["message"])
		})
	}
}

func TestRouter_Trending(t *testing.T) {
	svc := &stubFAQService{trending: []faq.TrendingQuery{{Query: "refund", Count: 3}}}
	rec := performRequest(t, newRouterUnderTest(t, svc, testPassword, nil), http.MethodGet, "/api/v1/faq/trending", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"recommendations":[{"query":"refund","count":3}]}`, rec.Body.String())
}

func TestRouter_AddRequiresAdmin(t *testing.T) {
	cases := []struct {
		name       string
		password   string
		headers    map[string]string
		wantStatus int
		wantCode   string
	}{
		{name: "missing header", password: testPassword, wantStatus: http.StatusUnauthorized, wantCode: apperrors.CodeUnauthorized},
		{name: "wrong password", password: testPassword, headers: map[string]string{"X-Admin-Password": "nope"}, wantStatus: http.StatusUnauthorized, wantCode: apperrors.CodeUnauthorized},
		{name: "placeholder", password: testPassword, headers: map[string]string{"X-User-M-Key": "{{ADMIN_PASSWORD}}"}, wantStatus: http.StatusUnauthorized, wantCode: apperrors.CodeUnauthorized},
		{name: "bad bearer", password: testPassword, headers: map[string]string{"Authorization": "Bearer junk"}, wantStatus: http.StatusUnauthorized, wantCode: apperrors.CodeUnauthorized},
		{name: "unconfigured", password: "", headers: map[string]string{"X-Admin-Password": "anything"}, wantStatus: http.StatusServiceUnavailable, wantCode: apperrors.CodeAdminUnconfigured},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubFAQService{}
			rec := performRequest(t, newRouterUnderTest(t, svc, tc.password, nil), http.MethodPost, "/api/v1/admin/faqs",
				`{"question":"How do refunds work here?","answer":"Refunds are processed within 30 days.","category":"Billing"}`, tc.headers)
			require.Equal(t, tc.wantStatus, rec.Code)
			require.Equal(t, tc.wantCode, decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
			require.Zero(t, svc.addCalls)
		})
	}
}

func TestRouter_AddResolvesAttribution(t *testing.T) {
	svc := &stubFAQService{
		addFn: func(_ context.Context, req faq.AddRequest) faq.AddResponse {
			require.Equal(t, "alice@example.com", req.AddedBy)
			return faq.AddResponse{Success: true, Identifier: "Q1.2", Message: "FAQ successfully added with ID: Q1.2"}
		},
	}
	rec := performRequest(t, newRouterUnderTest(t, svc, testPassword, nil), http.MethodPost, "/api/v1/admin/faqs",
		`{"question":"How do refunds work here?","answer":"Refunds are processed within 30 days.","category":"Billing"}`,
		map[string]string{"X-User-Password": testPassword, "X-User-Email": "alice@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var got faq.AddResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.True(t, got.Success)
	require.Equal(t, "Q1.2", got.Identifier)
}

func TestRouter_AddOutcomeStatus(t *testing.T) {
	cases := map[string]int{
		faq.ReasonDuplicateExact:    http.StatusConflict,
		faq.ReasonDuplicateFuzzy:    http.StatusConflict,
		faq.ReasonDuplicateSemantic: http.StatusConflict,
		faq.ReasonValidation:        http.StatusBadRequest,
		faq.ReasonStoreUnavailable:  http.StatusServiceUnavailable,
	}
	for reason, status := range cases {
		t.Run(reason, func(t *testing.T) {
			svc := &stubFAQService{
				addFn: func(context.Context, faq.AddRequest) faq.AddResponse {
					return faq.AddResponse{Success: false, Reason: reason, Message: "rejected"}
				},
			}
			rec := performRequest(t, newRouterUnderTest(t, svc, testPassword, nil), http.MethodPost, "/api/v1/admin/faqs",
				`{"question":"q","answer":"a","category":"c"}`, map[string]string{"X-Admin-Password": testPassword})
			require.Equal(t, status, rec.Code)
			require.Contains(t, rec.Body.String(), `"reason":"`+reason+`"`)
		})
	}
}

func TestRouter_LoginThenBearer(t *testing.T) {
	svc := &stubFAQService{stats: faq.Stats{Total: 2, WithEmbeddings: 1, Categories: map[string]int{"Billing": 2}, Version: 4}}
	server := newRouterUnderTest(t, svc, testPassword, nil)

	rec := performRequest(t, server, http.MethodPost, "/api/v1/admin/login", `{"password":"wrong"}`, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, admin.UnauthorizedMessage, decodeErrorBody(t, rec.Body.Bytes())["error"]["message"])

	rec = performRequest(t, server, http.MethodPost, "/api/v1/admin/login", `{"password":"`+testPassword+`"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var login admin.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	rec = performRequest(t, server, http.MethodGet, "/api/v1/admin/stats", "", map[string]string{"Authorization": "Bearer " + login.Token})
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"total":2,"withEmbeddings":1,"categories":{"Billing":2},"version":4}`, rec.Body.String())
}

func TestRouter_RecentExportAndInvalidate(t *testing.T) {
	svc := &stubFAQService{
		recent: []faq.Record{{Identifier: "Q1.1", Question: "q", Answer: "a", Category: "c"}},
		export: faq.ExportResult{Key: "exports/faqs_all_20240101_000000_x.csv", Rows: 1, Location: "r2://faq/exports/x.csv", Data: []byte("Question ID\nQ1.1\n")},
	}
	server := newRouterUnderTest(t, svc, testPassword, nil)
	auth := map[string]string{"X-Admin-Password": testPassword}

	rec := performRequest(t, server, http.MethodGet, "/api/v1/admin/faqs/recent?n=5", "", auth)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 5, svc.recentN)
	require.Contains(t, rec.Body.String(), `"count":1`)

	rec = performRequest(t, server, http.MethodGet, "/api/v1/admin/faqs/recent?n=abc", "", auth)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = performRequest(t, server, http.MethodGet, "/api/v1/admin/faqs/export?limit=10", "", auth)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 10, svc.exportReq.Limit)
	require.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Equal(t, `attachment; filename="faqs_all_20240101_000000_x.csv"`, rec.Header().Get("Content-Disposition"))
	require.Equal(t, "r2://faq/exports/x.csv", rec.Header().Get("X-Export-Location"))
	require.Equal(t, "Question ID\nQ1.1\n", rec.Body.String())

	rec = performRequest(t, server, http.MethodPost, "/api/v1/admin/cache/invalidate", "", auth)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, svc.invalidations)
}

func TestRouter_RateLimit(t *testing.T) {
	svc := &stubFAQService{}
	server := newRouterUnderTest(t, svc, testPassword, func(cfg *config.Config) {
		cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 2}
	})
	for i := 0; i < 2; i++ {
		rec := performRequest(t, server, http.MethodGet, "/api/v1/faq/trending", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := performRequest(t, server, http.MethodGet, "/api/v1/faq/trending", "", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "rate_limit_exceeded", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func TestRouter_RetriesTransientSearchFailure(t *testing.T) {
	attempts := 0
	svc := &stubFAQService{
		searchFn: func(context.Context, faq.SearchRequest) (faq.SearchResponse, error) {
			attempts++
			if attempts == 1 {
				return faq.SearchResponse{}, apperrors.Wrap(apperrors.CodeStoreUnavailable, "store down", nil)
			}
			return faq.SearchResponse{Results: []faq.SearchResult{}, Method: faq.MethodTFIDF}, nil
		},
	}
	server := newRouterUnderTest(t, svc, testPassword, func(cfg *config.Config) {
		cfg.HTTP.Retry = config.RetryConfig{Enabled: true, MaxAttempts: 2, BaseBackoff: time.Millisecond}
	})
	rec := performRequest(t, server, http.MethodPost, "/api/v1/faq/search", `{"query":"refund"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 2, attempts)
}

func TestRouter_CORSPreflight(t *testing.T) {
	server := newRouterUnderTest(t, &stubFAQService{}, testPassword, func(cfg *config.Config) {
		cfg.HTTP.CORS.AllowedOrigins = []string{"https://admin.example.com"}
	})
	rec := performRequest(t, server, http.MethodOptions, "/api/v1/admin/faqs", "", map[string]string{"Origin": "https://admin.example.com"})
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://admin.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-User-M-Key")
}

func TestRouter_MountsMCPHandler(t *testing.T) {
	mcp := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	cfg := testConfig()
	cfg.MCP = config.MCPConfig{Enabled: true, Path: "mcp"}
	logger := newTestLogger()
	adminSvc := admin.NewService(admin.Config{Password: testPassword, Secret: "test"}, logger)
	server := NewRouter(cfg, NewHandler(&stubFAQService{}, adminSvc, logger), adminSvc, mcp)

	rec := performRequest(t, server, http.MethodPost, "/mcp", `{}`, nil)
	require.Equal(t, http.StatusAccepted, rec.Code)
}

func TestRouter_NeverRetriesMCPPath(t *testing.T) {
	calls := 0
	mcp := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	cfg := testConfig()
	cfg.HTTP.Retry = config.RetryConfig{Enabled: true, MaxAttempts: 3, BaseBackoff: time.Millisecond, Exclude: []string{"/mcp"}}
	cfg.MCP = config.MCPConfig{Enabled: true, Path: "/tools/faq"}
	logger := newTestLogger()
	adminSvc := admin.NewService(admin.Config{Password: testPassword, Secret: "test"}, logger)
	server := NewRouter(cfg, NewHandler(&stubFAQService{}, adminSvc, logger), adminSvc, mcp)

	rec := performRequest(t, server, http.MethodPost, "/tools/faq", `{}`, nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, 1, calls)
	require.Equal(t, []string{"/mcp"}, cfg.HTTP.Retry.Exclude)
}

func performRequest(t *testing.T, server *http.Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func testConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
}

func newRouterUnderTest(t *testing.T, svc faq.Service, password string, mutate func(*config.Config)) *http.Server {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}
	logger := newTestLogger()
	adminSvc := admin.NewService(admin.Config{Password: password, Secret: "test-secret"}, logger)
	return NewRouter(cfg, NewHandler(svc, adminSvc, logger), adminSvc, nil)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubFAQService struct {
	mu            sync.Mutex
	searchFn      func(ctx context.Context, req faq.SearchRequest) (faq.SearchResponse, error)
	addFn         func(ctx context.Context, req faq.AddRequest) faq.AddResponse
	trending      []faq.TrendingQuery
	recent        []faq.Record
	export        faq.ExportResult
	stats         faq.Stats
	addCalls      int
	invalidations int
	recentN       int
	exportReq     faq.ExportRequest
}

func (s *stubFAQService) Search(ctx context.Context, req faq.SearchRequest) (faq.SearchResponse, error) {
	if s.searchFn != nil {
		return s.searchFn(ctx, req)
	}
	return faq.SearchResponse{Results: []faq.SearchResult{}, Method: faq.MethodTFIDF}, nil
}

func (s *stubFAQService) AddRecord(ctx context.Context, req faq.AddRequest) faq.AddResponse {
	s.mu.Lock()
	s.addCalls++
	s.mu.Unlock()
	if s.addFn != nil {
		return s.addFn(ctx, req)
	}
	return faq.AddResponse{Success: true}
}

func (s *stubFAQService) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidations++
}

func (s *stubFAQService) Trending(context.Context) ([]faq.TrendingQuery, error) {
	if s.trending == nil {
		return []faq.TrendingQuery{}, nil
	}
	return s.trending, nil
}

func (s *stubFAQService) Recent(_ context.Context, n int) ([]faq.Record, error) {
	s.recentN = n
	return s.recent, nil
}

func (s *stubFAQService) Export(_ context.Context, req faq.ExportRequest) (faq.ExportResult, error) {
	s.exportReq = req
	return s.export, nil
}

func (s *stubFAQService) Stats(context.Context) (faq.Stats, error) {
	return s.stats, nil
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
