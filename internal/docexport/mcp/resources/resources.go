package resources

import (
	"context"
	"encoding/json"

	"github.com/aisa-it/docexport/internal/docexport/editor/tiptap"
	"github.com/aisa-it/docexport/internal/docexport/htmlexport"
	"github.com/aisa-it/docexport/internal/docexport/markdown"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type ResourceHandler func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error)

type Resource struct {
	Resource mcp.Resource
	Handler  ResourceHandler
}

var exportResources = []Resource{
	{
		mcp.NewResource(
			"docexport://styles/light",
			"stylesheet_light",
			mcp.WithResourceDescription("Таблица стилей HTML экспорта, светлая тема, префикс классов по умолчанию"),
			mcp.WithMIMEType("text/css"),
		),
		stylesheet(htmlexport.ThemeLight),
	},
	{
		mcp.NewResource(
			"docexport://styles/dark",
			"stylesheet_dark",
			mcp.WithResourceDescription("Таблица стилей HTML экспорта, темная тема, префикс классов по умолчанию"),
			mcp.WithMIMEType("text/css"),
		),
		stylesheet(htmlexport.ThemeDark),
	},
	{
		mcp.NewResource(
			"docexport://schema/nodes",
			"supported_nodes",
			mcp.WithResourceDescription("Типы нод и отметок редактора, которые понимают экспортеры, с признаком поддержки в Markdown"),
			mcp.WithMIMEType("application/json"),
		),
		supportedNodes,
	},
}

func GetExportResources() []server.ServerResource {
	var resources []server.ServerResource
	for _, r := range exportResources {
		resources = append(resources, server.ServerResource{
			Resource: r.Resource,
			Handler:  server.ResourceHandlerFunc(r.Handler),
		})
	}
	return resources
}

func stylesheet(theme htmlexport.Theme) ResourceHandler {
	return func(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		css, err := htmlexport.Stylesheet(htmlexport.DefaultClassPrefix, 24, theme)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "text/css",
				Text:     css,
			},
		}, nil
	}
}

type typeSupport struct {
	Type     string `json:"type"`
	Markdown bool   `json:"markdown"`
}

func supportedNodes(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	var res struct {
		Nodes []typeSupport `json:"nodes"`
		Marks []typeSupport `json:"marks"`
	}
	for _, t := range tiptap.KnownNodeTypes() {
		res.Nodes = append(res.Nodes, typeSupport{Type: string(t), Markdown: markdown.Handles(t)})
	}
	for _, t := range tiptap.KnownMarkTypes() {
		res.Marks = append(res.Marks, typeSupport{Type: string(t), Markdown: markdown.HandlesMark(t)})
	}

	data, _ := json.Marshal(res)
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
