// Package mcp exposes the learning hour operations as tools over a
// line-delimited JSON-RPC stdio protocol (initialize, tools/list,
// tools/call).
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"learninghour/internal/canvas"
	"learninghour/internal/errdefs"
	"learninghour/internal/generator"
	"learninghour/internal/logging"
	"learninghour/internal/metrics"
	"learninghour/internal/models"
	"learninghour/internal/whiteboard"
)

const (
	serverName    = "learning-hour"
	serverVersion = "2.0.0"
)

type CodeHost interface {
	Connect(ctx context.Context) error
}

type RepositoryScanner interface {
	AnalyzeRepository(ctx context.Context, repositoryURL, codeSmell string) (models.AnalysisResult, error)
}

type TechStackAnalyzer interface {
	AnalyzeTechStack(ctx context.Context, repositoryURL string) (models.TechStackProfile, error)
}

type ContentGenerator interface {
	GenerateSession(ctx context.Context, topic, style string) (generator.SessionContent, error)
	GenerateCodeExample(ctx context.Context, topic, language string) (generator.CodeExampleContent, error)
}

// BoardClient is the whiteboard surface the board tools use.
type BoardClient interface {
	canvas.Whiteboard
	ListBoards(ctx context.Context) ([]whiteboard.Board, error)
}

// Deps wires the server to its collaborators. Whiteboard is called with the
// access token a tool call supplied, or "" for the configured one.
type Deps struct {
	CodeHost     CodeHost
	Scanner      RepositoryScanner
	TechStack    TechStackAnalyzer
	Generator    ContentGenerator
	Whiteboard   func(accessToken string) BoardClient
	Images       canvas.ImageGenerator
	MiroClientID string
	Logger       logging.Logger
	Metrics      *metrics.Metrics
}

type Server struct {
	deps    Deps
	logger  logging.Logger
	metrics *metrics.Metrics
}

func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{deps: deps, logger: logger, metrics: deps.Metrics}
}

// Run serves requests read line by line from in until EOF or ctx is done.
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	writer := bufio.NewWriter(out)
	s.logger.Info("tool server running on stdio", "name", serverName, "version", serverVersion)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := reader.ReadBytes('\n')
		if len(strings.TrimSpace(string(line))) > 0 {
			if werr := s.handleLine(ctx, writer, line); werr != nil {
				return fmt.Errorf("write response: %w", werr)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (s *Server) handleLine(ctx context.Context, writer *bufio.Writer, line []byte) error {
	var req JSONRPCRequest
	if err := json.Unmarshal(line, &req); err != nil {
		return writeError(writer, nil, codeParseError, "Parse error")
	}
	// Notifications get no reply.
	if req.ID == nil && strings.HasPrefix(req.Method, "notifications/") {
		return nil
	}
	return s.handleRequest(ctx, writer, &req)
}

func (s *Server) handleRequest(ctx context.Context, writer *bufio.Writer, req *JSONRPCRequest) error {
	switch req.Method {
	case "initialize":
		return writeResponse(writer, req.ID, map[string]any{
			"protocolVersion": protocolVersion,
			"serverInfo": map[string]string{
				"name":    serverName,
				"version": serverVersion,
			},
			"capabilities": map[string]any{
				"tools": map[string]bool{},
			},
		})
	case "tools/list":
		return writeResponse(writer, req.ID, map[string]any{"tools": toolDefinitions()})
	case "tools/call":
		return s.handleToolsCall(ctx, writer, req)
	case "ping":
		return writeResponse(writer, req.ID, map[string]any{})
	default:
		return writeError(writer, req.ID, codeMethodNotFound, "Method not found")
	}
}

func (s *Server) handleToolsCall(ctx context.Context, writer *bufio.Writer, req *JSONRPCRequest) error {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return writeError(writer, req.ID, codeInvalidParams, "Invalid params")
	}

	result, err := s.CallTool(ctx, params.Name, params.Arguments)
	if err != nil {
		code := codeInternalError
		if errors.Is(err, errdefs.ErrInvalidInput) {
			code = codeInvalidParams
		}
		return writeError(writer, req.ID, code, err.Error())
	}
	return writeResponse(writer, req.ID, result)
}

// CallTool runs one tool by name. The CLI uses it directly so both surfaces
// share argument handling and output.
func (s *Server) CallTool(ctx context.Context, name string, args json.RawMessage) (ToolResult, error) {
	tool, ok := toolsByName[name]
	if !ok {
		s.metrics.ToolCall("unknown", errdefs.Kind(errdefs.ErrInvalidInput))
		return ToolResult{}, errdefs.InvalidInput("unknown tool %q", name)
	}
	if len(args) == 0 || string(args) == "null" {
		args = json.RawMessage(`{}`)
	}

	callID := uuid.NewString()
	started := time.Now()
	s.logger.InfoContext(ctx, "tool call started", "call_id", callID, "tool", name)

	result, err := tool.handler(s, ctx, args)
	s.metrics.ToolCall(name, errdefs.Kind(err))
	if err != nil {
		s.logger.ErrorContext(ctx, "tool call failed",
			"call_id", callID,
			"tool", name,
			"kind", errdefs.Kind(err),
			"duration", time.Since(started),
			"error", err)
		return ToolResult{}, fmt.Errorf("failed to %s: %w", tool.purpose, err)
	}
	s.logger.InfoContext(ctx, "tool call finished", "call_id", callID, "tool", name, "duration", time.Since(started))
	return result, nil
}
