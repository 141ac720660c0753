package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/faq-engine/internal/domain/admin"
	"github.com/yanqian/faq-engine/internal/domain/faq"
	"github.com/yanqian/faq-engine/internal/infra/config"
	apperrors "github.com/yanqian/faq-engine/pkg/errors"
)

type stubFAQ struct {
	faq.Service
	searchReq faq.SearchRequest
	searchErr error
	addReq    *faq.AddRequest
}

func (s *stubFAQ) Search(_ context.Context, req faq.SearchRequest) (faq.SearchResponse, error) {
	s.searchReq = req
	if s.searchErr != nil {
		return faq.SearchResponse{}, s.searchErr
	}
	return faq.SearchResponse{Results: []faq.SearchResult{{Identifier: "Q1.1", Question: "What is the refund policy?"}}}, nil
}

func (s *stubFAQ) AddRecord(_ context.Context, req faq.AddRequest) faq.AddResponse {
	s.addReq = &req
	return faq.AddResponse{Success: true, Identifier: "Q1.2", Message: "FAQ successfully added with ID: Q1.2"}
}

func newTestServer(password string) (*Server, *stubFAQ) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := &stubFAQ{}
	adminSvc := admin.NewService(admin.Config{Password: password, Secret: "test", DefaultUser: "admin"}, logger)
	return NewServer(config.MCPConfig{Name: "faq-engine", Version: "test"}, svc, adminSvc, logger), svc
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestSearchFAQ(t *testing.T) {
	cases := []struct {
		name     string
		args     map[string]any
		wantTopK int
	}{
		{name: "default top_k", args: map[string]any{"query": "refund"}, wantTopK: 3},
		{name: "explicit", args: map[string]any{"query": "refund", "top_k": 5}, wantTopK: 5},
		{name: "below range", args: map[string]any{"query": "refund", "top_k": -2}, wantTopK: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, svc := newTestServer("pw")
			res, err := srv.handleSearchFAQ(context.Background(), callRequest(toolSearchFAQ, tc.args))
			require.NoError(t, err)
			require.False(t, res.IsError)
			require.Equal(t, tc.wantTopK, svc.searchReq.TopK)

			var results []faq.SearchResult
			require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &results))
			require.Len(t, results, 1)
			require.Equal(t, "Q1.1", results[0].Identifier)
		})
	}
}

func TestSearchFAQInvalidQuery(t *testing.T) {
	srv, svc := newTestServer("pw")
	svc.searchErr = apperrors.Wrap(apperrors.CodeInvalidInput, "query cannot be empty", nil)
	res, err := srv.handleSearchFAQ(context.Background(), callRequest(toolSearchFAQ, map[string]any{"query": ""}))
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.Equal(t, "query cannot be empty", resultText(t, res))
}

func TestAddFAQAuthentication(t *testing.T) {
	cases := []struct {
		name        string
		configured  string
		headers     map[string]string
		wantMessage string
	}{
		{name: "missing header", configured: "pw", wantMessage: admin.UnauthorizedMessage},
		{name: "placeholder", configured: "pw", headers: map[string]string{"x-user-m-key": "{{M_KEY}}"}, wantMessage: admin.UnauthorizedMessage},
		{name: "wrong password", configured: "pw", headers: map[string]string{"x-admin-password": "nope"}, wantMessage: admin.UnauthorizedMessage},
		{name: "server unconfigured", configured: "", headers: map[string]string{"x-admin-password": "pw"}, wantMessage: admin.UnconfiguredMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, svc := newTestServer(tc.configured)
			ctx := withSession(context.Background(), sessionFromHeaders(headerGetter(tc.headers)))
			res, err := srv.handleAddFAQ(ctx, callRequest(toolAddFAQ, map[string]any{
				"question": "How do I reset my password?",
				"answer":   "Use the forgot password link on the login page.",
				"category": "Platform",
			}))
			require.NoError(t, err)

			var got faq.AddResponse
			require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &got))
			require.False(t, got.Success)
			require.Equal(t, faq.ReasonUnauthorized, got.Reason)
			require.Equal(t, tc.wantMessage, got.Message)
			require.Nil(t, svc.addReq)
		})
	}
}

func TestAddFAQAttribution(t *testing.T) {
	cases := []struct {
		name    string
		args    map[string]any
		headers map[string]string
		meta    map[string]any
		want    string
	}{
		{name: "explicit wins", args: map[string]any{"added_by": "Dana"}, headers: map[string]string{"x-user-name": "Lee"}, want: "Dana"},
		{name: "header", headers: map[string]string{"x-user-email": "lee@example.com"}, want: "lee@example.com"},
		{name: "meta", meta: map[string]any{"username": "kim"}, want: "kim"},
		{name: "default", want: "admin"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, svc := newTestServer("pw")
			headers := map[string]string{"x-user-password": "pw"}
			for k, v := range tc.headers {
				headers[k] = v
			}
			args := map[string]any{
				"question":    "How do I reset my password?",
				"answer":      "Use the forgot password link on the login page.",
				"category":    "Platform",
				"question_id": "Q4.2",
			}
			for k, v := range tc.args {
				args[k] = v
			}
			req := callRequest(toolAddFAQ, args)
			if tc.meta != nil {
				req.Params.Meta = &mcp.Meta{AdditionalFields: tc.meta}
			}
			ctx := withSession(context.Background(), sessionFromHeaders(headerGetter(headers)))

			res, err := srv.handleAddFAQ(ctx, req)
			require.NoError(t, err)
			require.NotNil(t, svc.addReq)
			require.Equal(t, tc.want, svc.addReq.AddedBy)
			require.Equal(t, "Q4.2", svc.addReq.Identifier)
			require.Contains(t, resultText(t, res), `"success": true`)
		})
	}
}

func TestHandlerIsMountable(t *testing.T) {
	srv, _ := newTestServer("pw")
	require.NotNil(t, srv.Handler("/mcp"))
}

func headerGetter(headers map[string]string) func(string) string {
	return func(name string) string { return headers[name] }
}
