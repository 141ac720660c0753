package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	toolSearchFAQ = "search_faq"
	toolAddFAQ    = "add_faq"
)

// searchFAQTool returns the tool definition for search_faq
func searchFAQTool() mcp.Tool {
	return mcp.Tool{
		Name: toolSearchFAQ,
		Description: "Search the FAQ database for answers to user questions. Combines keyword matching (TF-IDF) " +
			"with semantic embeddings. Pass a clear, concise question; avoid meta-instructions such as \"search the database\".",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "The user's question",
				},
				"top_k": map[string]interface{}{
					"type":        "integer",
					"description": "Number of results to return",
					"default":     3,
					"minimum":     1,
					"maximum":     5,
				},
			},
			Required: []string{"query"},
		},
	}
}

// addFAQTool returns the tool definition for add_faq
func addFAQTool() mcp.Tool {
	return mcp.Tool{
		Name: toolAddFAQ,
		Description: "Add a new FAQ question-answer pair. Requires the admin password configured for this client. " +
			"Duplicates are rejected by exact, fuzzy (85%) and semantic (90%) matching. " +
			"The added_by field is detected automatically; do not ask the user for it.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "The FAQ question (minimum 10 characters)",
				},
				"answer": map[string]interface{}{
					"type":        "string",
					"description": "The FAQ answer (minimum 20 characters)",
				},
				"category": map[string]interface{}{
					"type":        "string",
					"description": "FAQ category, e.g. 'Program Overview'",
				},
				"question_id": map[string]interface{}{
					"type":        "string",
					"description": "Optional identifier such as Q3.7; allocated automatically when omitted",
				},
				"added_by": map[string]interface{}{
					"type":        "string",
					"description": "Optional. Detected from the session; only set when the user explicitly names an author",
				},
			},
			Required: []string{"question", "answer", "category"},
		},
	}
}
