package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"learninghour/internal/errdefs"
	"learninghour/internal/logging"
	"learninghour/internal/mcp"
	"learninghour/internal/models"
	"learninghour/internal/report"
)

// toolFlag maps one string flag onto one tool argument.
type toolFlag struct {
	name     string
	arg      string
	usage    string
	required bool
	def      string
	// file flags hold a path ("-" for stdin) whose content becomes the argument.
	file bool
	// raw file content is embedded as JSON rather than as a string.
	rawJSON bool
}

type toolCommand struct {
	tool  string
	short string
	flags []toolFlag
}

var toolCommandTable = []toolCommand{
	{
		tool:  "analyze-repository",
		short: "Find real examples of a code smell in a GitHub repository",
		flags: []toolFlag{
			{name: "repo", arg: "repositoryUrl", usage: "Repository URL, e.g. github.com/owner/repo", required: true},
			{name: "smell", arg: "codeSmell", usage: "Code smell to look for", required: true},
		},
	},
	{
		tool:  "analyze-tech-stack",
		short: "Profile a repository's tech stack",
		flags: []toolFlag{
			{name: "repo", arg: "repositoryUrl", usage: "Repository URL, e.g. github.com/owner/repo", required: true},
			{name: "topic", arg: "topic", usage: "Learning Hour topic to tailor examples for"},
		},
	},
	{
		tool:  "generate-session",
		short: "Generate a Learning Hour session plan",
		flags: []toolFlag{
			{name: "topic", arg: "topic", usage: "Learning topic, e.g. 'Feature Envy'", required: true},
			{name: "style", arg: "style", usage: "Board style: slide, vertical or workshop", def: "slide"},
		},
	},
	{
		tool:  "generate-code-example",
		short: "Generate a step-by-step refactoring example",
		flags: []toolFlag{
			{name: "topic", arg: "topic", usage: "Learning topic, e.g. 'Feature Envy'", required: true},
			{name: "language", arg: "language", usage: "Programming language", def: "javascript"},
		},
	},
	{
		tool:  "create-board",
		short: "Create a Miro board from generate-session output",
		flags: []toolFlag{
			{name: "session", arg: "sessionContent", usage: "Path to session JSON, or - for stdin", required: true, file: true, rawJSON: true},
			{name: "token", arg: "accessToken", usage: "Miro access token (defaults to MIRO_ACCESS_TOKEN)"},
		},
	},
	{
		tool:  "list-boards",
		short: "List Miro boards",
		flags: []toolFlag{
			{name: "token", arg: "accessToken", usage: "Miro access token (defaults to MIRO_ACCESS_TOKEN)"},
		},
	},
	{
		tool:  "get-board",
		short: "Show a Miro board and its view link",
		flags: []toolFlag{
			{name: "id", arg: "boardId", usage: "Board id", required: true},
			{name: "token", arg: "accessToken", usage: "Miro access token (defaults to MIRO_ACCESS_TOKEN)"},
		},
	},
	{
		tool:  "anonymize-example",
		short: "Scrub sensitive literals from a code file",
		flags: []toolFlag{
			{name: "file", arg: "code", usage: "Path to the code, or - for stdin", required: true, file: true},
		},
	},
	{
		tool:  "get-auth-url",
		short: "Print the Miro OAuth authorization URL",
		flags: []toolFlag{
			{name: "redirect-uri", arg: "redirectUri", usage: "OAuth redirect URI", required: true},
			{name: "state", arg: "state", usage: "OAuth state parameter"},
		},
	},
}

func toolCommands() []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(toolCommandTable))
	for _, tc := range toolCommandTable {
		cmds = append(cmds, newToolCommand(tc))
	}
	return cmds
}

func newToolCommand(tc toolCommand) *cobra.Command {
	c := &cobra.Command{
		Use:   tc.tool,
		Short: tc.short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			args, err := toolArgs(cmd, tc.flags)
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			server, err := newServer(cfg, logging.NewStderr(cfg.LogLevel), nil)
			if err != nil {
				return err
			}

			console := report.NewConsole()
			console.Step("running %s", tc.tool)
			result, err := server.CallTool(cmd.Context(), tc.tool, args)
			if err != nil {
				console.Fail("%v", err)
				if errdefs.Kind(err) == "not_configured" {
					console.Warn("set the missing credential in .env or ~/.learninghour/config.json")
				}
				return err
			}

			asJSON, _ := cmd.Flags().GetBool("json")
			return printResult(console, tc.tool, result, asJSON)
		},
	}
	for _, f := range tc.flags {
		c.Flags().String(f.name, f.def, f.usage)
		if f.required {
			_ = c.MarkFlagRequired(f.name)
		}
	}
	c.Flags().Bool("json", false, "Print only the JSON payload")
	return c
}

// toolArgs builds the tool's argument object from the command's flags.
func toolArgs(cmd *cobra.Command, flags []toolFlag) (json.RawMessage, error) {
	args := make(map[string]any, len(flags))
	for _, f := range flags {
		value, _ := cmd.Flags().GetString(f.name)
		if value == "" {
			continue
		}
		if !f.file {
			args[f.arg] = value
			continue
		}
		content, err := readInput(cmd.InOrStdin(), value)
		if err != nil {
			return nil, fmt.Errorf("read --%s: %w", f.name, err)
		}
		if f.rawJSON {
			if !json.Valid(content) {
				return nil, errdefs.InvalidInput("--%s: %s is not valid JSON", f.name, value)
			}
			args[f.arg] = json.RawMessage(content)
		} else {
			args[f.arg] = string(content)
		}
	}
	return json.Marshal(args)
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func printResult(console *report.Console, tool string, result mcp.ToolResult, asJSON bool) error {
	if len(result.Content) < 2 {
		return fmt.Errorf("%s returned %d content parts, want 2", tool, len(result.Content))
	}
	status, payload := result.Content[0].Text, result.Content[1].Text

	if asJSON {
		fmt.Println(payload)
		return nil
	}
	if tool == "analyze-repository" {
		var analysis models.AnalysisResult
		if err := json.Unmarshal([]byte(payload), &analysis); err == nil {
			console.Analysis(analysis)
			return nil
		}
	}
	console.Success("%s", strings.TrimSpace(strings.TrimPrefix(status, "✅")))
	fmt.Println(payload)
	return nil
}
