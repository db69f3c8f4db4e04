// Package mcpserver exposes the holding pen via MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/finops-claw-gang/holdingpen/internal/holdingpen"
	"github.com/finops-claw-gang/holdingpen/internal/record"
	"github.com/finops-claw-gang/holdingpen/internal/search"
	"github.com/finops-claw-gang/holdingpen/internal/uischema"
)

// Backend is the part of the holding pen the tools use.
type Backend interface {
	List(ctx context.Context, p search.Params, base *url.URL) (*holdingpen.Listing, error)
	View(ctx context.Context, id int64, listing *search.Params) (*record.Record, uischema.UISchema, error)
	Apply(ctx context.Context, id int64, verb string, args map[string]any) (any, error)
}

// RegisterTools registers all holding pen MCP tools on the given server.
func RegisterTools(server *mcp.Server, b Backend) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "list_workflows",
			Description: "Search holding pen workflow objects and return one page of formatted rows",
		},
		listWorkflowsHandler(b),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "get_workflow",
			Description: "Get a workflow object's record and its detail-view UI schema",
		},
		getWorkflowHandler(b),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "resolve_workflow",
			Description: "Resolve the pending action of a workflow object (value: accept or reject)",
		},
		resolveWorkflowHandler(b),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "restart_workflow",
			Description: "Restart a workflow object from the first task or from callback_pos",
		},
		continueHandler(b, record.VerbRestart),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "resume_workflow",
			Description: "Resume a halted workflow object with the next task",
		},
		continueHandler(b, record.VerbResume),
	)
}

type listWorkflowsInput struct {
	Query    string   `json:"query,omitempty" jsonschema:"free-text search query"`
	Tags     []string `json:"tags,omitempty" jsonschema:"tag filters joined with operator"`
	Operator string   `json:"operator,omitempty" jsonschema:"AND or OR"`
	DataType string   `json:"data_type,omitempty" jsonschema:"restrict to one data type"`
	Sort     string   `json:"sort,omitempty" jsonschema:"sort key, suffix _desc for descending"`
	Page     int      `json:"page,omitempty"`
	Size     int      `json:"size,omitempty"`
}

func listWorkflowsHandler(b Backend) mcp.ToolHandlerFor[listWorkflowsInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input listWorkflowsInput) (*mcp.CallToolResult, any, error) {
		listing, err := b.List(ctx, search.Params{
			Query:    input.Query,
			Tags:     input.Tags,
			Operator: input.Operator,
			DataType: input.DataType,
			Sort:     input.Sort,
			Page:     input.Page,
			Size:     input.Size,
		}, nil)
		if err != nil {
			return errorResult(fmt.Sprintf("list_workflows: %v", err)), nil, nil
		}
		return textResult(map[string]any{
			"pagination": listing.Pagination,
			"rows":       listing.Rows,
		})
	}
}

type objectIDInput struct {
	ID int64 `json:"id" jsonschema:"workflow object id"`
}

func getWorkflowHandler(b Backend) mcp.ToolHandlerFor[objectIDInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input objectIDInput) (*mcp.CallToolResult, any, error) {
		if input.ID <= 0 {
			return errorResult("id is required"), nil, nil
		}
		rec, schema, err := b.View(ctx, input.ID, nil)
		if err != nil {
			return errorResult(fmt.Sprintf("get_workflow: %v", err)), nil, nil
		}
		return textResult(map[string]any{"record": rec, "ui_schema": schema})
	}
}

type resolveInput struct {
	ID    int64  `json:"id" jsonschema:"workflow object id"`
	Value string `json:"value,omitempty" jsonschema:"accept or reject"`
}

func resolveWorkflowHandler(b Backend) mcp.ToolHandlerFor[resolveInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input resolveInput) (*mcp.CallToolResult, any, error) {
		if input.ID <= 0 || input.Value == "" {
			return errorResult("id and value are required"), nil, nil
		}
		out, err := b.Apply(ctx, input.ID, string(record.VerbResolve), map[string]any{"value": input.Value})
		if err != nil {
			return errorResult(fmt.Sprintf("resolve_workflow: %v", err)), nil, nil
		}
		return textResult(map[string]any{"result": out})
	}
}

type continueInput struct {
	ID          int64 `json:"id" jsonschema:"workflow object id"`
	CallbackPos []int `json:"callback_pos,omitempty" jsonschema:"task position to continue from"`
}

func continueHandler(b Backend, verb record.Verb) mcp.ToolHandlerFor[continueInput, any] {
	name := string(verb) + "_workflow"
	return func(ctx context.Context, _ *mcp.CallToolRequest, input continueInput) (*mcp.CallToolResult, any, error) {
		if input.ID <= 0 {
			return errorResult("id is required"), nil, nil
		}
		var args map[string]any
		if input.CallbackPos != nil {
			args = map[string]any{"callback_pos": input.CallbackPos}
		}
		taskID, err := b.Apply(ctx, input.ID, string(verb), args)
		if err != nil {
			return errorResult(fmt.Sprintf("%s: %v", name, err)), nil, nil
		}
		return textResult(map[string]any{"task_id": taskID})
	}
}

func textResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("marshal result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}, nil, nil
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}
