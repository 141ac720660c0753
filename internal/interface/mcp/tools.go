package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/yanqian/faq-engine/internal/domain/faq"
	apperrors "github.com/yanqian/faq-engine/pkg/errors"
)

const defaultTopK = 3

// metaUserKeys are the request _meta fields some clients use to identify the user.
var metaUserKeys = []string{"name", "email", "username", "user_id", "client_id"}

func (s *Server) handleSearchFAQ(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := request.GetString("query", "")
	topK := request.GetInt("top_k", defaultTopK)
	if topK < 1 {
		topK = 1
	}

	resp, err := s.faqSvc.Search(ctx, faq.SearchRequest{Query: query, TopK: topK})
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeInvalidInput) {
			return mcp.NewToolResultError(apperrors.MessageOf(err)), nil
		}
		s.logger.Error("search_faq failed", "error", err)
		return mcp.NewToolResultError("FAQ search failed"), nil
	}
	return jsonResult(resp.Results)
}

func (s *Server) handleAddFAQ(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := sessionFrom(ctx)
	if err := s.adminSvc.Authorize(ctx, sess.Password); err != nil {
		s.logger.Warn("add_faq rejected", "code", apperrors.CodeOf(err))
		return jsonResult(faq.AddResponse{Success: false, Reason: faq.ReasonUnauthorized, Message: apperrors.MessageOf(err)})
	}

	req := faq.AddRequest{
		Question:   request.GetString("question", ""),
		Answer:     request.GetString("answer", ""),
		Category:   request.GetString("category", ""),
		Identifier: request.GetString("question_id", ""),
		AddedBy:    s.adminSvc.ResolveAddedBy(request.GetString("added_by", ""), sess.User, metaUser(request)),
	}
	resp := s.faqSvc.AddRecord(ctx, req)
	if resp.Success {
		s.logger.Info("add_faq accepted", "identifier", resp.Identifier, "added_by", req.AddedBy)
	}
	return jsonResult(resp)
}

func metaUser(request mcp.CallToolRequest) string {
	if request.Params.Meta == nil {
		return ""
	}
	for _, key := range metaUserKeys {
		if v, ok := request.Params.Meta.AdditionalFields[key].(string); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
