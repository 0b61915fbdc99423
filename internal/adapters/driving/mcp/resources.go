package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rotisserie/eris"

	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for OmniTicket resources.
	uriScheme = "omniticket://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "rules",
		Name:        "rules",
		Description: "Product normalisation rules in priority order",
		MIMEType:    "application/json",
	}, s.handleRulesResource)
}

// handleRulesResource returns every rule as JSON.
func (s *Server) handleRulesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	rules := []domain.Rule{}
	if s.ports.Rules != nil {
		listed, err := s.ports.Rules.List(ctx)
		if err != nil {
			return nil, eris.Wrap(err, "listing rules")
		}
		if listed != nil {
			rules = listed
		}
	}

	data, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "marshalling rules")
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
