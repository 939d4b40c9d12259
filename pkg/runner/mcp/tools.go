package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerListOverlaysTool(srv, svc)
	registerListThemesTool(srv, svc)
	registerShowOverlayTool(srv, svc)
	registerHideOverlayTool(srv, svc)
	registerActiveStateTool(srv, svc)
	registerSetActiveThemeTool(srv, svc)
}

func registerListOverlaysTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_overlays",
		mcp.WithDescription("List lower thirds in display order, with whether each is on air."),
		mcp.WithString("type",
			mcp.Description("Only list lower thirds of this type."),
			mcp.Enum("person", "music"),
		),
		mcp.WithString("match",
			mcp.Description("Glob over the title, case-insensitive, e.g. 'amazing*'."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Type  string `json:"type"`
			Match string `json:"match"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		overlays, err := svc.ListOverlays(ctx, args.Type, args.Match)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"lowerThirds": overlays,
			"count":       len(overlays),
		})
	})
}

func registerListThemesTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_themes",
		mcp.WithDescription("List themes; the active one is used for the next show_overlay."),
	)

	srv.AddTool(tool, func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		themes, err := svc.ListThemes(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"themes": themes,
			"count":  len(themes),
		})
	})
}

func registerShowOverlayTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"show_overlay",
		mcp.WithDescription("Put a lower third on air with the active theme, replacing whatever is shown."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Lower third identifier."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.Show(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerHideOverlayTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"hide_overlay",
		mcp.WithDescription("Take the lower third off air. Harmless when nothing is shown."),
	)

	srv.AddTool(tool, func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dto, err := svc.Hide(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerActiveStateTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"active_state",
		mcp.WithDescription("Report the lower third and theme currently on air."),
	)

	srv.AddTool(tool, func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dto, err := svc.Active(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerSetActiveThemeTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"set_active_theme",
		mcp.WithDescription("Select the theme used by later activations. What is on air keeps its theme."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Theme identifier."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		themes, err := svc.SetActiveTheme(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"themes": themes,
			"count":  len(themes),
		})
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return result, nil
}
