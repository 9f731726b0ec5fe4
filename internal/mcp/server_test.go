package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"learninghour/internal/errdefs"
	"learninghour/internal/generator"
	"learninghour/internal/metrics"
	"learninghour/internal/models"
	"learninghour/internal/whiteboard"
)

type fakeHost struct{ err error }

func (f fakeHost) Connect(context.Context) error { return f.err }

type fakeScanner struct{ urls []string }

func (f *fakeScanner) AnalyzeRepository(_ context.Context, url, smell string) (models.AnalysisResult, error) {
	f.urls = append(f.urls, url)
	return models.AnalysisResult{
		RepositoryURL: url,
		CodeSmell:     smell,
		Examples:      []models.CodeExample{{FilePath: "a.java", CodeSnippet: "x.get().get()"}},
	}, nil
}

type fakeTechStack struct{}

func (fakeTechStack) AnalyzeTechStack(context.Context, string) (models.TechStackProfile, error) {
	return models.TechStackProfile{PrimaryLanguages: []string{"Go"}, TestingFrameworks: []string{"go test"}}, nil
}

type fakeGenerator struct{ err error }

func (f fakeGenerator) GenerateSession(_ context.Context, topic, _ string) (generator.SessionContent, error) {
	if f.err != nil {
		return generator.SessionContent{}, f.err
	}
	return generator.SessionContent{Topic: topic}, nil
}

func (f fakeGenerator) GenerateCodeExample(_ context.Context, topic, language string) (generator.CodeExampleContent, error) {
	return generator.CodeExampleContent{Topic: topic, Language: language}, nil
}

// fakeBoards implements BoardClient and remembers the token it was built with.
type fakeBoards struct {
	token string
	items int
}

func (f *fakeBoards) CreateBoard(_ context.Context, name, _ string) (whiteboard.Board, error) {
	return whiteboard.Board{ID: "b1", Name: name, ViewLink: "https://miro.com/app/board/b1"}, nil
}

func (f *fakeBoards) GetBoard(_ context.Context, id string) (whiteboard.Board, error) {
	return whiteboard.Board{ID: id, ViewLink: "https://miro.com/app/board/" + id}, nil
}

func (f *fakeBoards) ListBoards(context.Context) ([]whiteboard.Board, error) {
	return nil, nil
}

func (f *fakeBoards) item() (whiteboard.Item, error) {
	f.items++
	return whiteboard.Item{ID: "i"}, nil
}

func (f *fakeBoards) CreateFrame(context.Context, string, whiteboard.Frame) (whiteboard.Item, error) {
	return f.item()
}

func (f *fakeBoards) CreateStickyNote(context.Context, string, whiteboard.StickyNote) (whiteboard.Item, error) {
	return f.item()
}

func (f *fakeBoards) CreateText(context.Context, string, whiteboard.Text) (whiteboard.Item, error) {
	return f.item()
}

func (f *fakeBoards) CreateShape(context.Context, string, whiteboard.Shape) (whiteboard.Item, error) {
	return f.item()
}

func (f *fakeBoards) CreateImage(context.Context, string, whiteboard.Image) (whiteboard.Item, error) {
	return f.item()
}

func newTestServer(t *testing.T, gen ContentGenerator) (*Server, *metrics.Metrics, *[]*fakeBoards) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	var built []*fakeBoards
	srv := NewServer(Deps{
		CodeHost:  fakeHost{},
		Scanner:   &fakeScanner{},
		TechStack: fakeTechStack{},
		Generator: gen,
		Whiteboard: func(token string) BoardClient {
			b := &fakeBoards{token: token}
			built = append(built, b)
			return b
		},
		MiroClientID: "client-1",
		Metrics:      m,
	})
	return srv, m, &built
}

// exchange feeds requests to Run and returns the decoded responses.
func exchange(t *testing.T, srv *Server, lines ...string) []JSONRPCResponse {
	t.Helper()
	var out bytes.Buffer
	if err := srv.Run(context.Background(), strings.NewReader(strings.Join(lines, "\n")), &out); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	var resps []JSONRPCResponse
	scanner := bufio.NewScanner(&out)
	scanner.Buffer(make([]byte, 1<<20), 1<<20)
	for scanner.Scan() {
		var resp JSONRPCResponse
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			t.Fatalf("response is not JSON: %v", err)
		}
		resps = append(resps, resp)
	}
	return resps
}

func call(id int, name string, args string) string {
	return `{"jsonrpc":"2.0","id":` + string(rune('0'+id)) + `,"method":"tools/call","params":{"name":"` + name + `","arguments":` + args + `}}`
}

func resultParts(t *testing.T, resp JSONRPCResponse) (string, string) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected error response: %+v", resp.Error)
	}
	raw, _ := json.Marshal(resp.Result)
	var result ToolResult
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("result shape: %v", err)
	}
	if len(result.Content) != 2 {
		t.Fatalf("content parts=%d, want 2", len(result.Content))
	}
	return result.Content[0].Text, result.Content[1].Text
}

func TestInitializeListAndNotifications(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t, fakeGenerator{})
	resps := exchange(t, srv,
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`not json`,
		`{"jsonrpc":"2.0","id":3,"method":"resources/list"}`,
	)
	if len(resps) != 4 {
		t.Fatalf("responses=%d, want 4", len(resps))
	}

	raw, _ := json.Marshal(resps[1].Result)
	var list struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(raw, &list); err != nil {
		t.Fatalf("tools/list shape: %v", err)
	}
	var names []string
	for _, tl := range list.Tools {
		names = append(names, tl.Name)
	}
	if strings.Join(names, ",") != strings.Join(ToolNames(), ",") || len(names) != 9 {
		t.Fatalf("tools=%v", names)
	}
	if resps[2].Error == nil || resps[2].Error.Code != codeParseError {
		t.Fatalf("parse error response=%+v", resps[2])
	}
	if resps[3].Error == nil || resps[3].Error.Code != codeMethodNotFound {
		t.Fatalf("unknown method response=%+v", resps[3])
	}
}

func TestToolCalls(t *testing.T) {
	t.Parallel()

	srv, m, built := newTestServer(t, fakeGenerator{})
	session := `{"topic":"Feature Envy","sessionOverview":"Practise moving behaviour.","learningObjectives":["Define Feature Envy","Spot chained getters","Apply Move Method"],` +
		`"activities":[{"title":"a","duration":"5m","description":"Pairs share examples","instructions":["x"]},{"title":"b","duration":"5m","description":"Refactor together now","instructions":["y"]}],` +
		`"discussionPrompts":["Where?","Who owns?","What broke?","What next?"],"keyTakeaways":["Move it","Tests!","Small steps"],` +
		`"miroContent":{"boardTitle":"LH","sections":[{"title":"Key Takeaways","type":"sticky_notes","items":["one","two"]}]}}`

	resps := exchange(t, srv,
		call(1, "analyze-repository", `{"repositoryUrl":"github.com/acme/shop","codeSmell":"Feature Envy"}`),
		call(2, "analyze-tech-stack", `{"repositoryUrl":"github.com/acme/shop","topic":"Clean Code"}`),
		call(3, "generate-session", `{"topic":"Feature Envy"}`),
		call(4, "generate-code-example", `{"topic":"Feature Envy"}`),
		call(5, "create-board", `{"sessionContent":`+session+`,"accessToken":"tok-1"}`),
		call(6, "list-boards", `{}`),
		call(7, "get-board", `{"boardId":"b9"}`),
		call(8, "anonymize-example", `{"code":"const key = \"sk_live_abc123\""}`),
		call(9, "get-auth-url", `{"redirectUri":"https://app.example/cb"}`),
	)
	if len(resps) != 9 {
		t.Fatalf("responses=%d, want 9", len(resps))
	}

	wantStatus := []string{
		"✅ Found 1 examples of Feature Envy in github.com/acme/shop",
		"✅ Tech stack analyzed for github.com/acme/shop: Go",
		"✅ Learning Hour session generated for: Feature Envy",
		"✅ Code examples generated for: Feature Envy (javascript)",
		"✅ Miro board created successfully! Board ID: b1 View Link: https://miro.com/app/board/b1",
		"✅ Found 0 Miro boards",
		"✅ View Link: https://miro.com/app/board/b9",
		"✅ Example anonymized, replaced: API key",
		"✅ Miro OAuth authorization URL generated. Visit this URL to authorize: https://miro.com/oauth/authorize?",
	}
	payloads := make([]string, len(resps))
	for i, resp := range resps {
		status, payload := resultParts(t, resp)
		if !strings.HasPrefix(status, wantStatus[i]) {
			t.Fatalf("call %d status=%q, want prefix %q", i+1, status, wantStatus[i])
		}
		payloads[i] = payload
	}

	if !strings.Contains(payloads[1], `"testExamples"`) {
		t.Fatalf("tech stack payload lacks stack-specific content: %s", payloads[1])
	}
	if !strings.Contains(payloads[4], `"itemCount": 4`) {
		t.Fatalf("board payload=%s", payloads[4])
	}
	if payloads[5] != "[]" {
		t.Fatalf("list payload=%s, want []", payloads[5])
	}
	if (*built)[0].token != "tok-1" || (*built)[1].token != "" {
		t.Fatalf("board tokens=%q,%q", (*built)[0].token, (*built)[1].token)
	}
	if strings.Contains(payloads[7], "sk_live_abc123") {
		t.Fatalf("anonymized payload leaks secret: %s", payloads[7])
	}
	if got := testutil.ToFloat64(m.ToolCalls.WithLabelValues("create-board", "ok")); got != 1 {
		t.Fatalf("create-board ok count=%v, want 1", got)
	}
}

func TestToolErrorsMapToRPCCodes(t *testing.T) {
	t.Parallel()

	notConfigured := errdefs.NotConfigured("LLM integration not configured: set OPENAI_API_KEY")
	srv, m, _ := newTestServer(t, fakeGenerator{err: notConfigured})

	resps := exchange(t, srv,
		call(1, "generate-session", `{}`),
		call(2, "generate-session", `{"topic":"x"}`),
		call(3, "no-such-tool", `{}`),
		call(4, "create-board", `{"sessionContent":{"topic":"x"}}`),
		call(5, "analyze-repository", `{"repositoryUrl":"github.com/a/b"}`),
		`{"jsonrpc":"2.0","id":6,"method":"tools/call","params":"oops"}`,
	)

	tests := []struct {
		code    int
		message string
	}{
		{codeInvalidParams, "failed to generate session: invalid input: missing required argument: topic"},
		{codeInternalError, "failed to generate session: not configured: LLM integration not configured"},
		{codeInvalidParams, `unknown tool "no-such-tool"`},
		{codeInvalidParams, "failed to create Miro board: invalid input: sessionContent"},
		{codeInvalidParams, "missing required argument: codeSmell"},
		{codeInvalidParams, "Invalid params"},
	}
	for i, tc := range tests {
		resp := resps[i]
		if resp.Error == nil {
			t.Fatalf("call %d: expected error, got %+v", i+1, resp.Result)
		}
		if resp.Error.Code != tc.code || !strings.Contains(resp.Error.Message, tc.message) {
			t.Fatalf("call %d error=%+v, want code %d containing %q", i+1, resp.Error, tc.code, tc.message)
		}
	}
	if got := testutil.ToFloat64(m.ToolCalls.WithLabelValues("generate-session", "not_configured")); got != 1 {
		t.Fatalf("not_configured count=%v, want 1", got)
	}
}

func TestCallToolConnectFailure(t *testing.T) {
	t.Parallel()

	srv := NewServer(Deps{
		CodeHost: fakeHost{err: errdefs.NotConfigured("GitHub integration not configured: set GITHUB_TOKEN")},
		Scanner:  &fakeScanner{},
	})
	_, err := srv.CallTool(context.Background(), "analyze-repository",
		json.RawMessage(`{"repositoryUrl":"github.com/a/b","codeSmell":"Long Method"}`))
	if !errors.Is(err, errdefs.ErrNotConfigured) || !strings.Contains(err.Error(), "GITHUB_TOKEN") {
		t.Fatalf("CallTool() error = %v", err)
	}

	_, err = srv.CallTool(context.Background(), "list-boards", nil)
	if !errors.Is(err, errdefs.ErrNotConfigured) {
		t.Fatalf("list-boards without whiteboard error = %v", err)
	}
}

func TestCallToolRejectsBadURLBeforeConnecting(t *testing.T) {
	t.Parallel()

	scanner := &fakeScanner{}
	srv := NewServer(Deps{
		CodeHost: fakeHost{err: errdefs.NotConfigured("GitHub integration not configured: set GITHUB_TOKEN")},
		Scanner:  scanner,
	})
	for _, tc := range []struct{ tool, args string }{
		{"analyze-repository", `{"repositoryUrl":"not a url","codeSmell":"Feature Envy"}`},
		{"analyze-tech-stack", `{"repositoryUrl":"acme/shop"}`},
	} {
		_, err := srv.CallTool(context.Background(), tc.tool, json.RawMessage(tc.args))
		if !errors.Is(err, errdefs.ErrInvalidInput) || errors.Is(err, errdefs.ErrNotConfigured) {
			t.Fatalf("%s error = %v, want ErrInvalidInput", tc.tool, err)
		}
	}
	if len(scanner.urls) != 0 {
		t.Fatalf("scanner called with %v", scanner.urls)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t, fakeGenerator{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	err := srv.Run(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`+"\n"), &out)
	if !errors.Is(err, context.Canceled) || out.Len() != 0 {
		t.Fatalf("Run() error = %v, output %q", err, out.String())
	}
}
