// Package mcp exposes the dashboard queries as Model Context Protocol tools
// over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cognicore/hitflop/pkg/hitflop"
	"github.com/cognicore/hitflop/pkg/hitflop/dataset"
	"github.com/cognicore/hitflop/pkg/hitflop/filter"
	"github.com/cognicore/hitflop/pkg/hitflop/internalerr"
	"github.com/cognicore/hitflop/pkg/hitflop/topics"
)

// ServerConfig holds configuration for the MCP server.
type ServerConfig struct {
	Dashboard *hitflop.Dashboard
	Version   string
}

// NewServer creates an MCP server with the dashboard tools and resources.
func NewServer(cfg ServerConfig) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}

	s := server.NewMCPServer(
		"hitflop",
		ver,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	registerKeywordsTool(s, cfg.Dashboard)
	registerTopicsTool(s, cfg.Dashboard)
	registerRepresentativesTool(s, cfg.Dashboard)
	registerReviewTool(s, cfg.Dashboard)
	registerOverviewResource(s, cfg.Dashboard)

	return s
}

// ServeStdio runs s on stdin and stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func cohortArgs() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("content_type",
			mcp.Required(),
			mcp.Description("Content type: movie or drama"),
		),
		mcp.WithString("category",
			mcp.Required(),
			mcp.Description("Cohort: hit or flop"),
			mcp.Enum(dataset.Hit, dataset.Flop),
		),
	}
}

func viewArg() mcp.ToolOption {
	return mcp.WithString("view",
		mcp.Description("Grouping: cluster or topic (default: cluster)"),
		mcp.Enum(string(topics.KindCluster), string(topics.KindTopic)),
	)
}

// toolError turns a dashboard error into a tool error result. Unexpected
// errors are returned as protocol errors.
func toolError(err error) (*mcp.CallToolResult, error) {
	switch {
	case errors.Is(err, internalerr.ErrNotFound), errors.Is(err, internalerr.ErrSchema):
		return mcp.NewToolResultError(internalerr.ErrNotFound.Error()), nil
	case errors.Is(err, internalerr.ErrInvalidInput):
		return mcp.NewToolResultError(err.Error()), nil
	default:
		return nil, err
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func registerKeywordsTool(s *server.MCPServer, d *hitflop.Dashboard) {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("TF-IDF keywords that favour the hit or the flop cohort of a content type, highest delta first."),
	}, cohortArgs()...)
	opts = append(opts, mcp.WithNumber("limit",
		mcp.Description("Maximum number of keywords (default: all)"),
	))
	tool := mcp.NewTool("hitflop_keywords", opts...)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ct, err := req.RequireString("content_type")
		if err != nil {
			return mcp.NewToolResultError("content_type is required"), nil
		}
		cat, err := req.RequireString("category")
		if err != nil {
			return mcp.NewToolResultError("category is required"), nil
		}

		kws, err := d.Keywords(ctx, ct, cat)
		if err != nil {
			return toolError(err)
		}
		if limit := int(req.GetFloat("limit", 0)); limit > 0 && limit < len(kws) {
			kws = kws[:limit]
		}
		return jsonResult(kws)
	})
}

func registerTopicsTool(s *server.MCPServer, d *hitflop.Dashboard) {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Topic or cluster groups of a cohort with their display names and title counts. Noise is excluded."),
	}, cohortArgs()...)
	opts = append(opts, viewArg())
	tool := mcp.NewTool("hitflop_topics", opts...)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kind, err := topics.ParseKind(req.GetString("view", ""))
		if err != nil {
			return toolError(err)
		}
		v, err := d.View(ctx, req.GetString("content_type", ""), req.GetString("category", ""))
		if err != nil {
			return toolError(err)
		}
		return jsonResult(map[string]any{
			"content_type": v.ContentType,
			"category":     v.Category,
			"view":         kind,
			"titles":       len(v.Titles),
			"groups":       v.Distribution(kind),
		})
	})
}

func registerRepresentativesTool(s *server.MCPServer, d *hitflop.Dashboard) {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Representative works of selected topics or clusters, with keywords and poster URLs."),
	}, cohortArgs()...)
	opts = append(opts, viewArg(), mcp.WithString("ids",
		mcp.Description("Comma-separated topic or cluster ids. Empty = all."),
	))
	tool := mcp.NewTool("hitflop_representatives", opts...)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kind, err := topics.ParseKind(req.GetString("view", ""))
		if err != nil {
			return toolError(err)
		}
		ids, err := parseIDs(req.GetString("ids", ""))
		if err != nil {
			return toolError(err)
		}
		reps, err := d.Representatives(ctx, req.GetString("content_type", ""), req.GetString("category", ""), kind, ids)
		if err != nil {
			return toolError(err)
		}
		return jsonResult(reps.Cards)
	})
}

func parseIDs(raw string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("ids %q: %w", part, internalerr.ErrInvalidInput)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func registerReviewTool(s *server.MCPServer, d *hitflop.Dashboard) {
	tool := mcp.NewTool("hitflop_review",
		mcp.WithDescription("Review topic summary KPIs after filtering by content type, year range and hit label."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("content_type",
			mcp.Description("movie, drama or All (default: All)"),
		),
		mcp.WithNumber("start", mcp.Description("First year, inclusive")),
		mcp.WithNumber("end", mcp.Description("Last year, inclusive")),
		mcp.WithString("hit_type",
			mcp.Description("Hit, Non-Hit or All (default: All)"),
			mcp.Enum(filter.All, "Hit", "Non-Hit"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		q := url.Values{}
		q.Set("content_type", req.GetString("content_type", ""))
		q.Set("hit_type", req.GetString("hit_type", ""))
		if start := req.GetInt("start", 0); start != 0 {
			q.Set("start", strconv.Itoa(start))
		}
		if end := req.GetInt("end", 0); end != 0 {
			q.Set("end", strconv.Itoa(end))
		}
		spec, err := filter.ParseSpec(q)
		if err != nil {
			return toolError(err)
		}

		rev, err := d.Review(ctx, spec)
		if err != nil {
			return toolError(err)
		}
		return jsonResult(map[string]any{
			"total":   rev.Total,
			"dropped": rev.Dropped,
			"kpis":    rev.KPIs,
		})
	})
}

func registerOverviewResource(s *server.MCPServer, d *hitflop.Dashboard) {
	resource := mcp.NewResource(
		"hitflop://overview",
		"Overview",
		mcp.WithResourceDescription("Title counts, hit rate and top titles over all content types."),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(resource, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		o, err := d.Overview(ctx, filter.Spec{})
		if err != nil {
			return nil, fmt.Errorf("overview resource: %w", err)
		}
		data, _ := json.MarshalIndent(o.Summary, "", "  ")
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: req.Params.URI, MIMEType: "application/json", Text: string(data)},
		}, nil
	})
}
