package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/mantic/internal/intent"
	"github.com/standardbeagle/mantic/internal/pipeline"
	"github.com/standardbeagle/mantic/internal/types"
)

func (s *Server) handleSearchFiles(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params SearchFilesParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("search_files", fmt.Errorf("invalid parameters: %w", err))
	}
	if params.Query == "" {
		return createErrorResponse("search_files", fmt.Errorf("query is required"))
	}

	root := params.Cwd
	if root == "" {
		root = s.root
	}

	result, err := pipeline.Run(ctx, pipeline.Options{
		Root:          root,
		Query:         params.Query,
		Filter:        pipeline.Filter(params.Filter),
		MaxFiles:      params.MaxResults,
		IncludeImpact: params.IncludeImpact,
		SessionID:     params.Session,
		Sessions:      s.sessions,
	})
	if err != nil {
		return createErrorResponse("search_files", err)
	}
	return createJSONResponse(result)
}

func (s *Server) handleAnalyzeIntent(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params AnalyzeIntentParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("analyze_intent", fmt.Errorf("invalid parameters: %w", err))
	}
	if params.Query == "" {
		return createErrorResponse("analyze_intent", fmt.Errorf("query is required"))
	}

	analysis := intent.Analyze(params.Query)
	return createJSONResponse(analysis)
}

func (s *Server) handleSessionStart(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params SessionStartParams
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
			return createErrorResponse("session_start", fmt.Errorf("invalid parameters: %w", err))
		}
	}

	sess, err := s.sessions.Start(params.Name, types.IntentCategory(params.Intent))
	if err != nil {
		return createErrorResponse("session_start", err)
	}
	return createJSONResponse(sess.Meta)
}

func (s *Server) handleSessionList(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metas, err := s.sessions.List()
	if err != nil {
		return createErrorResponse("session_list", err)
	}
	return createJSONResponse(map[string]any{"sessions": metas})
}

func (s *Server) handleSessionInfo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params SessionIDParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("session_info", fmt.Errorf("invalid parameters: %w", err))
	}
	if params.ID == "" {
		return createErrorResponse("session_info", fmt.Errorf("id is required"))
	}

	sess, err := s.sessions.Load(params.ID)
	if err != nil {
		return createErrorResponse("session_info", err)
	}
	if sess == nil {
		return createErrorResponse("session_info", fmt.Errorf("no session matches %q", params.ID))
	}
	return createJSONResponse(sess)
}

func (s *Server) handleSessionEnd(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params SessionIDParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("session_end", fmt.Errorf("invalid parameters: %w", err))
	}
	if params.ID == "" {
		return createErrorResponse("session_end", fmt.Errorf("id is required"))
	}

	if sess, err := s.sessions.Load(params.ID); err != nil || sess == nil {
		return createErrorResponse("session_end", fmt.Errorf("no session matches %q", params.ID))
	}
	if err := s.sessions.End(); err != nil {
		return createErrorResponse("session_end", err)
	}
	return createJSONResponse(map[string]any{"success": true, "id": params.ID})
}

func (s *Server) handleSessionRecordView(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params SessionRecordViewParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("session_record_view", fmt.Errorf("invalid parameters: %w", err))
	}
	if params.ID == "" || params.Path == "" {
		return createErrorResponse("session_record_view", fmt.Errorf("id and path are required"))
	}

	if sess, err := s.sessions.Load(params.ID); err != nil || sess == nil {
		return createErrorResponse("session_record_view", fmt.Errorf("no session matches %q", params.ID))
	}
	err := s.sessions.RecordFileViews(map[string]types.ScoredFile{
		params.Path: {Path: params.Path, Score: params.Score},
	})
	if err != nil {
		return createErrorResponse("session_record_view", err)
	}
	return createJSONResponse(map[string]any{"success": true, "path": params.Path})
}
