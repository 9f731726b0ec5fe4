package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"learninghour/internal/analyzer"
	"learninghour/internal/anonymizer"
	"learninghour/internal/canvas"
	"learninghour/internal/codehost"
	"learninghour/internal/errdefs"
	"learninghour/internal/generator"
	"learninghour/internal/models"
	"learninghour/internal/whiteboard"
)

type tool struct {
	name        string
	description string
	purpose     string
	schema      map[string]any
	handler     func(s *Server, ctx context.Context, args json.RawMessage) (ToolResult, error)
}

var tools = []tool{
	{
		name:        "analyze-repository",
		description: "Find real examples of a code smell in a GitHub repository",
		purpose:     "analyze repository",
		schema: object(map[string]any{
			"repositoryUrl": str("Repository URL, e.g. github.com/owner/repo"),
			"codeSmell":     str("Code smell to look for, e.g. 'Feature Envy'"),
		}, "repositoryUrl", "codeSmell"),
		handler: (*Server).analyzeRepository,
	},
	{
		name:        "analyze-tech-stack",
		description: "Profile a repository's languages, frameworks, test tools and layout",
		purpose:     "analyze tech stack",
		schema: object(map[string]any{
			"repositoryUrl": str("Repository URL, e.g. github.com/owner/repo"),
			"topic":         str("Optional Learning Hour topic to tailor examples for"),
		}, "repositoryUrl"),
		handler: (*Server).analyzeTechStack,
	},
	{
		name:        "generate-session",
		description: "Generate comprehensive Learning Hour content for Technical Coaches",
		purpose:     "generate session",
		schema: object(map[string]any{
			"topic": str("The learning topic (e.g., 'Feature Envy', 'DRY Principle')"),
			"style": map[string]any{
				"type":        "string",
				"enum":        []string{generator.StyleSlide, generator.StyleVertical, generator.StyleWorkshop},
				"description": "Board style (default: slide)",
			},
		}, "topic"),
		handler: (*Server).generateSession,
	},
	{
		name:        "generate-code-example",
		description: "Generate a multi-step refactoring walkthrough for a learning topic",
		purpose:     "generate code example",
		schema: object(map[string]any{
			"topic":    str("The learning topic (e.g., 'Feature Envy', 'DRY Principle')"),
			"language": str("Programming language for examples (default: javascript)"),
		}, "topic"),
		handler: (*Server).generateCodeExample,
	},
	{
		name:        "create-board",
		description: "Create a Miro board from Learning Hour session content",
		purpose:     "create Miro board",
		schema: object(map[string]any{
			"sessionContent": map[string]any{"type": "object", "description": "Session content from generate-session output"},
			"accessToken":    str("Miro access token; defaults to MIRO_ACCESS_TOKEN"),
		}, "sessionContent"),
		handler: (*Server).createBoard,
	},
	{
		name:        "list-boards",
		description: "List Miro boards visible to the access token",
		purpose:     "list Miro boards",
		schema: object(map[string]any{
			"accessToken": str("Miro access token; defaults to MIRO_ACCESS_TOKEN"),
		}),
		handler: (*Server).listBoards,
	},
	{
		name:        "get-board",
		description: "Get a Miro board and its view link",
		purpose:     "get Miro board",
		schema: object(map[string]any{
			"boardId":     str("Miro board id"),
			"accessToken": str("Miro access token; defaults to MIRO_ACCESS_TOKEN"),
		}, "boardId"),
		handler: (*Server).getBoard,
	},
	{
		name:        "anonymize-example",
		description: "Replace credentials, personal data and internal hosts in a code example",
		purpose:     "anonymize example",
		schema: object(map[string]any{
			"code": str("Code to anonymize"),
		}, "code"),
		handler: (*Server).anonymizeExample,
	},
	{
		name:        "get-auth-url",
		description: "Generate Miro OAuth authorization URL",
		purpose:     "generate Miro auth URL",
		schema: object(map[string]any{
			"redirectUri": str("OAuth redirect URI for your application"),
			"state":       str("Optional state parameter for OAuth security"),
		}, "redirectUri"),
		handler: (*Server).getAuthURL,
	},
}

var toolsByName = func() map[string]tool {
	out := make(map[string]tool, len(tools))
	for _, t := range tools {
		out[t.name] = t
	}
	return out
}()

// ToolNames lists the tools in declaration order.
func ToolNames() []string {
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.name
	}
	return names
}

func toolDefinitions() []map[string]any {
	defs := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		defs = append(defs, map[string]any{
			"name":        t.name,
			"description": t.description,
			"inputSchema": t.schema,
		})
	}
	return defs
}

func object(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{"type": "object", "properties": properties}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func str(description string) map[string]string {
	return map[string]string{"type": "string", "description": description}
}

var argValidator = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		return name
	})
	return v
}()

// decodeArgs unmarshals args into dst and checks its required fields.
func decodeArgs(args json.RawMessage, dst any) error {
	if err := json.Unmarshal(args, dst); err != nil {
		return errdefs.InvalidInput("arguments: %v", err)
	}
	if err := argValidator.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			missing := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				missing = append(missing, fe.Field())
			}
			return errdefs.InvalidInput("missing required argument: %s", strings.Join(missing, ", "))
		}
		return errdefs.InvalidInput("arguments: %v", err)
	}
	return nil
}

func (s *Server) connectCodeHost(ctx context.Context) error {
	if s.deps.CodeHost == nil {
		return errdefs.NotConfigured("code host client not available")
	}
	return s.deps.CodeHost.Connect(ctx)
}

func (s *Server) analyzeRepository(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var in struct {
		RepositoryURL string `json:"repositoryUrl" validate:"required"`
		CodeSmell     string `json:"codeSmell" validate:"required"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return ToolResult{}, err
	}
	if _, err := codehost.ParseRepoURL(in.RepositoryURL); err != nil {
		return ToolResult{}, err
	}
	if err := s.connectCodeHost(ctx); err != nil {
		return ToolResult{}, err
	}
	result, err := s.deps.Scanner.AnalyzeRepository(ctx, in.RepositoryURL, in.CodeSmell)
	if err != nil {
		return ToolResult{}, err
	}
	return textResult(fmt.Sprintf("✅ Found %d examples of %s in %s",
		len(result.Examples), result.CodeSmell, result.RepositoryURL), result)
}

type techStackPayload struct {
	Profile models.TechStackProfile      `json:"profile"`
	Content *models.StackSpecificContent `json:"content,omitempty"`
}

func (s *Server) analyzeTechStack(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var in struct {
		RepositoryURL string `json:"repositoryUrl" validate:"required"`
		Topic         string `json:"topic"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return ToolResult{}, err
	}
	if _, err := codehost.ParseRepoURL(in.RepositoryURL); err != nil {
		return ToolResult{}, err
	}
	if err := s.connectCodeHost(ctx); err != nil {
		return ToolResult{}, err
	}
	profile, err := s.deps.TechStack.AnalyzeTechStack(ctx, in.RepositoryURL)
	if err != nil {
		return ToolResult{}, err
	}
	payload := techStackPayload{Profile: profile}
	if in.Topic != "" {
		content := analyzer.GenerateStackSpecificContent(in.Topic, profile)
		payload.Content = &content
	}
	return textResult(fmt.Sprintf("✅ Tech stack analyzed for %s: %s",
		in.RepositoryURL, strings.Join(profile.PrimaryLanguages, ", ")), payload)
}

func (s *Server) generateSession(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var in struct {
		Topic string `json:"topic" validate:"required"`
		Style string `json:"style"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return ToolResult{}, err
	}
	content, err := s.deps.Generator.GenerateSession(ctx, in.Topic, in.Style)
	if err != nil {
		return ToolResult{}, err
	}
	return textResult("✅ Learning Hour session generated for: "+in.Topic, content)
}

func (s *Server) generateCodeExample(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var in struct {
		Topic    string `json:"topic" validate:"required"`
		Language string `json:"language"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return ToolResult{}, err
	}
	if in.Language == "" {
		in.Language = generator.DefaultLanguage
	}
	content, err := s.deps.Generator.GenerateCodeExample(ctx, in.Topic, in.Language)
	if err != nil {
		return ToolResult{}, err
	}
	return textResult(fmt.Sprintf("✅ Code examples generated for: %s (%s)", in.Topic, in.Language), content)
}

func (s *Server) boardClient(token string) (BoardClient, error) {
	if s.deps.Whiteboard == nil {
		return nil, errdefs.NotConfigured("Miro integration not configured: set MIRO_ACCESS_TOKEN")
	}
	return s.deps.Whiteboard(token), nil
}

func (s *Server) createBoard(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var in struct {
		SessionContent json.RawMessage `json:"sessionContent" validate:"required"`
		AccessToken    string          `json:"accessToken"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return ToolResult{}, err
	}
	session, err := generator.ValidateSessionContentJSON(bytes.TrimSpace(in.SessionContent))
	if err != nil {
		return ToolResult{}, errdefs.InvalidInput("sessionContent: %v", err)
	}
	board, err := s.boardClient(in.AccessToken)
	if err != nil {
		return ToolResult{}, err
	}
	layout, err := canvas.New(board, s.deps.Images, s.logger).Build(ctx, session)
	if err != nil {
		return ToolResult{}, err
	}
	return textResult(fmt.Sprintf("✅ Miro board created successfully! Board ID: %s View Link: %s",
		layout.BoardID, layout.ViewLink), layout)
}

func (s *Server) listBoards(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var in struct {
		AccessToken string `json:"accessToken"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return ToolResult{}, err
	}
	board, err := s.boardClient(in.AccessToken)
	if err != nil {
		return ToolResult{}, err
	}
	boards, err := board.ListBoards(ctx)
	if err != nil {
		return ToolResult{}, err
	}
	if boards == nil {
		boards = []whiteboard.Board{}
	}
	return textResult(fmt.Sprintf("✅ Found %d Miro boards", len(boards)), boards)
}

func (s *Server) getBoard(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var in struct {
		BoardID     string `json:"boardId" validate:"required"`
		AccessToken string `json:"accessToken"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return ToolResult{}, err
	}
	board, err := s.boardClient(in.AccessToken)
	if err != nil {
		return ToolResult{}, err
	}
	got, err := board.GetBoard(ctx, in.BoardID)
	if err != nil {
		return ToolResult{}, err
	}
	return textResult("✅ View Link: "+got.ViewLink, got)
}

func (s *Server) anonymizeExample(_ context.Context, args json.RawMessage) (ToolResult, error) {
	var in struct {
		Code string `json:"code" validate:"required"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return ToolResult{}, err
	}
	result := anonymizer.Anonymize(in.Code)
	status := "✅ Example anonymized, nothing flagged"
	if len(result.FlaggedElements) > 0 {
		status = "✅ Example anonymized, replaced: " + strings.Join(result.FlaggedElements, "; ")
	}
	return textResult(status, result)
}

func (s *Server) getAuthURL(_ context.Context, args json.RawMessage) (ToolResult, error) {
	var in struct {
		RedirectURI string `json:"redirectUri" validate:"required"`
		State       string `json:"state"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return ToolResult{}, err
	}
	authURL, err := whiteboard.AuthorizationURL(s.deps.MiroClientID, in.RedirectURI, in.State)
	if err != nil {
		return ToolResult{}, err
	}
	return textResult("✅ Miro OAuth authorization URL generated. Visit this URL to authorize: "+authURL,
		map[string]string{"authorizationUrl": authURL})
}
