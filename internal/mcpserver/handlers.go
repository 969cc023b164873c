package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/kingrea/promptlayers/internal/compose"
	"github.com/kingrea/promptlayers/internal/digest"
	"github.com/kingrea/promptlayers/internal/document"
	"github.com/kingrea/promptlayers/internal/workspace"
)

// Service handles MCP tool calls against one workspace. Each call composes
// independently; nothing is cached between calls.
type Service struct {
	ws *workspace.Workspace
}

// NewService returns a Service for ws.
func NewService(ws *workspace.Workspace) *Service {
	return &Service{ws: ws}
}

// Compose runs a composition. Composition failures are reported in the
// output's Status rather than as tool errors.
func (s *Service) Compose(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ComposeInput,
) (*mcp.CallToolResult, ComposeOutput, error) {
	req := compose.Request{BaseID: input.Base, PreferenceIDs: input.Preferences}
	res, warnings, err := s.ws.Run(req, input.Separator)
	if err != nil {
		kind := compose.Classify(err)
		s.ws.Logger.Info("mcp compose failed", zap.String("base", input.Base), zap.Stringer("kind", kind), zap.Error(err))
		return nil, ComposeOutput{Status: kind.String(), Message: err.Error()}, nil
	}

	out := ComposeOutput{
		Status:      compose.KindOK.String(),
		Text:        res.Text,
		SourceOrder: res.SourceOrder,
		Warnings:    warnings,
	}
	if input.Digest {
		sum, err := digest.Of(res.Text)
		if err != nil {
			return nil, ComposeOutput{}, fmt.Errorf("mcpserver: digest: %w", err)
		}
		out.Digest = sum
	}
	return nil, out, nil
}

// List returns the catalog, optionally filtered by role.
func (s *Service) List(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	var filter document.Role
	if input.Role != "" {
		role, err := document.ParseRole(input.Role)
		if err != nil {
			return nil, ListOutput{}, err
		}
		filter = role
	}

	out := ListOutput{Documents: []DocumentInfo{}}
	for _, l := range s.ws.List() {
		if filter != "" && l.Entry.Role != filter {
			continue
		}
		info := DocumentInfo{
			ID:     l.Entry.ID,
			Role:   string(l.Entry.Role),
			Path:   l.Entry.Path,
			Module: l.Entry.Module,
			Status: "ok",
		}
		switch {
		case l.Missing:
			info.Status = "missing"
		case l.Err != nil:
			info.Status = "unreadable"
		default:
			info.LastUpdated = l.LastUpdated.UTC().Format("2006-01-02")
		}
		out.Documents = append(out.Documents, info)
	}
	return nil, out, nil
}

// Validate checks a request and reports which ids do not resolve.
func (s *Service) Validate(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ValidateInput,
) (*mcp.CallToolResult, ValidateOutput, error) {
	req := compose.Request{BaseID: input.Base, PreferenceIDs: input.Preferences}
	findings := compose.ValidateRequest(req)

	out := ValidateOutput{Warnings: compose.Warnings(findings)}
	var invalid *compose.InvalidRequestError
	if errors.As(compose.RequestError(findings), &invalid) {
		out.Errors = invalid.Problems
		return nil, out, nil
	}

	out.Valid = true
	ids := append([]string{req.BaseID}, req.PreferenceIDs...)
	for i, id := range ids {
		_, err := s.ws.Locator.Resolve(id)
		if err == nil {
			continue
		}
		out.Unresolved = append(out.Unresolved, id)
		var notFound *document.NotFoundError
		if i == 0 || !errors.As(err, &notFound) {
			out.Valid = false
			out.Errors = append(out.Errors, err.Error())
		}
	}
	return nil, out, nil
}
