// Package resources implements MCP resource handlers.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (sdd://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/specwright/specwright/internal/install"
	"github.com/specwright/specwright/internal/staging"
)

// Handler manages specwright resource endpoints.
type Handler struct{}

// NewHandler creates a resource Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// upgradeStatus is the JSON shape served for the upgrade resource.
type upgradeStatus struct {
	TemplateRepo     string            `json:"template_repo"`
	InstalledVersion string            `json:"installed_version"`
	InFlight         bool              `json:"in_flight"`
	Attempt          *staging.Metadata `json:"attempt,omitempty"`
}

// UpgradeResource returns the MCP resource definition for upgrade status.
func (h *Handler) UpgradeResource() mcp.Resource {
	return mcp.NewResource(
		"sdd://upgrade/status",
		"Template Upgrade Status",
		mcp.WithResourceDescription("Installed template version and the in-flight upgrade attempt, if any"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleUpgrade returns the upgrade pipeline state as JSON. The attempt
// record is read from disk, so it is accurate even after a restart.
func (h *Handler) HandleUpgrade(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	layout, err := install.FindFromCwd()
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	cfg, err := install.LoadConfig(layout)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	status := upgradeStatus{
		TemplateRepo:     cfg.TemplateRepo,
		InstalledVersion: cfg.TemplateVersion,
	}

	sctx, err := staging.Open(layout)
	if err != nil {
		return nil, fmt.Errorf("opening staging tree: %w", err)
	}
	if sctx != nil {
		status.InFlight = true
		status.Attempt = sctx.Metadata
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling status: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
