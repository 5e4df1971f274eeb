// Package mcp implements the agent-protocol stdio server: seven tools
// over the standard JSON-RPC transport, each backed by the same pipeline
// the CLI drives (spec §6). Tool registration and response-shaping follow
// the teacher's MCP server conventions, generalized from dozens of
// code-intelligence tools down to the seven this system exposes.
package mcp

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/mantic/internal/session"
)

// Server wraps the MCP SDK server with the session manager and scan root
// shared by every tool handler.
type Server struct {
	server   *mcp.Server
	root     string
	sessions *session.Manager
}

// NewServer constructs the stdio server rooted at root, ready to register
// tools and run.
func NewServer(root string) *Server {
	s := &Server{
		root:     root,
		sessions: session.NewManager(root),
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "mantic",
		Version: "0.1.0",
	}, nil)

	s.registerTools()
	return s
}

// Run blocks, serving tool calls over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "search_files",
		Description: "Search the repository for files relevant to a free-text query, ranked by structural and semantic relevance.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"query": {
					Type:        "string",
					Description: "Free-text description of what you're looking for",
				},
				"cwd": {
					Type:        "string",
					Description: "Scan root, defaults to the server's working directory",
				},
				"filter": {
					Type:        "string",
					Description: "Restrict results to one file class: \"code\", \"config\", or \"test\"",
				},
				"maxResults": {
					Type:        "integer",
					Description: "Cap on the number of files returned",
				},
				"includeImpact": {
					Type:        "boolean",
					Description: "Attach blast-radius/dependency impact to each result",
				},
				"session": {
					Type:        "string",
					Description: "Session id to record this query against",
				},
			},
			Required: []string{"query"},
		},
	}, s.handleSearchFiles)

	s.server.AddTool(&mcp.Tool{
		Name:        "analyze_intent",
		Description: "Classify a free-text query into an intent category, subcategory, keyword set, and extracted entities, without running a search.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"query": {Type: "string", Description: "Free-text query to analyze"},
			},
			Required: []string{"query"},
		},
	}, s.handleAnalyzeIntent)

	s.server.AddTool(&mcp.Tool{
		Name:        "session_start",
		Description: "Start a new named search session, so later searches accumulate view-based relevance boosts.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"name":   {Type: "string", Description: "Human-readable session name"},
				"intent": {Type: "string", Description: "Declared intent category for the session"},
			},
		},
	}, s.handleSessionStart)

	s.server.AddTool(&mcp.Tool{
		Name:        "session_list",
		Description: "List known sessions, most recently active first.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
		},
	}, s.handleSessionList)

	s.server.AddTool(&mcp.Tool{
		Name:        "session_info",
		Description: "Fetch the full record for one session: query history, viewed files, and insights.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"id": {Type: "string", Description: "Session id or active session name"},
			},
			Required: []string{"id"},
		},
	}, s.handleSessionInfo)

	s.server.AddTool(&mcp.Tool{
		Name:        "session_end",
		Description: "Mark a session ended.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"id": {Type: "string", Description: "Session id or active session name"},
			},
			Required: []string{"id"},
		},
	}, s.handleSessionEnd)

	s.server.AddTool(&mcp.Tool{
		Name:        "session_record_view",
		Description: "Record that a file returned by search_files was actually opened/viewed, feeding future relevance boosts for that session.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"id":    {Type: "string", Description: "Session id or active session name"},
				"path":  {Type: "string", Description: "Repository-relative path that was viewed"},
				"score": {Type: "number", Description: "Relevance score the file was returned with, if known"},
			},
			Required: []string{"id", "path"},
		},
	}, s.handleSessionRecordView)
}
