package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ruuvi/oaskit/internal/coverage"
	"github.com/ruuvi/oaskit/internal/doctree"
	"github.com/ruuvi/oaskit/internal/oas"
	"github.com/ruuvi/oaskit/internal/query"
	"github.com/ruuvi/oaskit/internal/version"
)

var agentSpecPath string

// agentState holds the document in both representations the tools
// need: the parsed kin-openapi model and the raw order-preserving tree.
type agentState struct {
	specPath string
	doc      *openapi3.T
	tree     *yaml.Node
	decoded  any
}

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Serve the spec to documentation agents over MCP stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := oas.Load(agentSpecPath)
		if err != nil {
			return err
		}
		tree, err := doctree.LoadFile(agentSpecPath)
		if err != nil {
			return err
		}
		decoded, err := doctree.Decode(tree)
		if err != nil {
			return err
		}
		state := &agentState{specPath: agentSpecPath, doc: doc, tree: tree, decoded: decoded}

		s := server.NewMCPServer("oaskit", version.Version(),
			server.WithToolCapabilities(false))
		registerAgentTools(s, state)

		fmt.Fprintf(cmd.ErrOrStderr(), "serving %s over MCP stdio\n", agentSpecPath)
		return server.ServeStdio(s)
	},
}

func registerAgentTools(s *server.MCPServer, state *agentState) {
	s.AddTool(
		mcp.NewTool("list_endpoints",
			mcp.WithDescription("List every operation in the spec: method, path and summary."),
		),
		state.listEndpoints,
	)
	s.AddTool(
		mcp.NewTool("get_operation",
			mcp.WithDescription("Return one operation's subtree as YAML."),
			mcp.WithString("method", mcp.Required(), mcp.Description("HTTP method, e.g. GET")),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path template, e.g. /sensors")),
		),
		state.getOperation,
	)
	s.AddTool(
		mcp.NewTool("query_spec",
			mcp.WithDescription("Evaluate a JSONPath expression against the spec and return matches as YAML."),
			mcp.WithString("jsonpath", mcp.Required(), mcp.Description("JSONPath expression, e.g. $.paths.*.get.summary")),
		),
		state.querySpec,
	)
	s.AddTool(
		mcp.NewTool("coverage_summary",
			mcp.WithDescription("Join a Schemathesis HAR capture and JUnit report with the spec and return the coverage text report."),
			mcp.WithString("har", mcp.Required(), mcp.Description("Path to Schemathesis HAR JSON")),
			mcp.WithString("junit", mcp.Required(), mcp.Description("Path to Schemathesis JUnit XML")),
			mcp.WithString("ignore", mcp.Description("Status codes or patterns to ignore, e.g. \"429 5XX\"")),
		),
		state.coverageSummary,
	)
}

func (a *agentState) listEndpoints(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(oas.Endpoints(a.doc), "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (a *agentState) getOperation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	method, err := req.RequireString("method")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	paths := doctree.Find(a.tree, "paths")
	item := doctree.Find(paths, path)
	op := doctree.Find(item, strings.ToLower(method))
	if op == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no operation %s %s", strings.ToUpper(method), path)), nil
	}
	var sb strings.Builder
	if err := doctree.Write(&sb, op); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (a *agentState) querySpec(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	selector, err := req.RequireString("jsonpath")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	matches, err := query.Eval(a.decoded, selector)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var sb strings.Builder
	for i, m := range matches {
		if i > 0 {
			sb.WriteString("---\n")
		}
		out, err := yaml.Marshal(m)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		sb.Write(out)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (a *agentState) coverageSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	harPath, err := req.RequireString("har")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	junitPath, err := req.RequireString("junit")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	seen, cases, err := coverage.LoadHAR(harPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	failingIDs, err := coverage.LoadFailingCaseIDs(junitPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	patterns := coverage.DefaultIgnorePatterns
	if raw := req.GetString("ignore", ""); raw != "" {
		patterns = []string{raw}
	}
	rep := coverage.Build(coverage.Inputs{
		Documented: oas.DocumentedStatuses(a.doc),
		Seen:       seen,
		Cases:      cases,
		FailingIDs: failingIDs,
		Ignore:     coverage.NewIgnore(patterns),
	})
	var sb strings.Builder
	if err := coverage.WriteText(&sb, rep); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func init() {
	agentCmd.Flags().StringVar(&agentSpecPath, "spec", "", "Path to the OpenAPI document to serve")
	_ = agentCmd.MarkFlagRequired("spec")
	rootCmd.AddCommand(agentCmd)
}
