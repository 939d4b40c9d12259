package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerActiveResource(srv, svc)
	registerOverlaysResource(srv, svc)
	registerOverlayTemplate(srv, svc)
}

func registerActiveResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"lowerthird://active",
		"On Air",
		mcp.WithResourceDescription("The lower third and theme currently on air."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		dto, err := svc.Active(ctx)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, dto)
	})
}

func registerOverlaysResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"lowerthird://overlays",
		"Lower Thirds",
		mcp.WithResourceDescription("Every lower third in display order."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		overlays, err := svc.ListOverlays(ctx, "", "")
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"lowerThirds": overlays,
			"count":       len(overlays),
		})
	})
}

func registerOverlayTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"lowerthird://overlays/{id}",
		"Lower Third",
		mcp.WithTemplateDescription("A single lower third."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id, _ := request.Params.Arguments["id"].(string)
		if id == "" {
			return nil, fmt.Errorf("lower third id is required")
		}
		o, err := svc.App.Overlay(ctx, id)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, svc.overlayDTO(o))
	})
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
