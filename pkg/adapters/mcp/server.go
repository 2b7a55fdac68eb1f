package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/cardflow/internal/logging"
	mermaid "github.com/aretw0/cardflow/internal/presentation/graph"
	"github.com/aretw0/cardflow/internal/validator"
	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/graph"
	"github.com/aretw0/cardflow/pkg/ports"
	"github.com/aretw0/cardflow/pkg/runner"
	"github.com/aretw0/cardflow/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

const cardsURI = "cardflow://cards"

// GraphArgs carries a graph document as tool input.
type GraphArgs struct {
	Document string `json:"document" jsonschema_description:"The graph document (JSON, YAML or HCL)"`
	Format   string `json:"format,omitempty" jsonschema_description:"json, yaml or hcl (default json)"`
}

// ValidateArgs extends GraphArgs with the strict flag.
type ValidateArgs struct {
	GraphArgs
	Strict bool `json:"strict,omitempty" jsonschema_description:"Treat warnings and unresolved cards as failures"`
}

// RunArgs extends GraphArgs with the run input.
type RunArgs struct {
	GraphArgs
	Input string `json:"input,omitempty" jsonschema_description:"JSON value fed to every input node"`
}

// SessionArgs names an edit session.
type SessionArgs struct {
	SessionID string `json:"session_id" jsonschema_description:"The edit session id"`
}

// EditArgs carries a batch of edits for a session.
type EditArgs struct {
	SessionArgs
	Edits string `json:"edits" jsonschema_description:"JSON array of edits: {op, node, edge, id, position, data, key, value}"`
}

// ValidateResponse is the output of validate_graph.
type ValidateResponse struct {
	OK         bool                     `json:"ok" jsonschema_description:"Whether the graph passed"`
	Issues     []domain.ValidationIssue `json:"issues" jsonschema_description:"Errors, then port and parameter findings"`
	Warnings   []domain.ValidationIssue `json:"warnings" jsonschema_description:"Non-blocking findings"`
	Unresolved []string                 `json:"unresolved,omitempty" jsonschema_description:"Nodes whose card is unknown"`
}

// PlanResponse is the output of compile_graph.
type PlanResponse struct {
	Order   []string   `json:"order" jsonschema_description:"Execution order"`
	Inputs  []string   `json:"inputs"`
	Outputs []string   `json:"outputs"`
	Levels  [][]string `json:"levels" jsonschema_description:"Steps grouped by dependency depth"`
}

// CardsResponse is the output of list_cards.
type CardsResponse struct {
	Cards []domain.CardMeta `json:"cards"`
}

// Server wraps a GraphService and exposes it as an MCP Server.
type Server struct {
	service   ports.GraphService
	sessions  *session.Manager
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithSessions registers the session tools.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.sessions = m
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(svc ports.GraphService, version string, opts ...Option) *Server {
	s := &Server{
		service: svc,
		logger:  logging.NewNop(),
		mcpServer: server.NewMCPServer("cardflow-mcp", strings.TrimSpace(version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
			server.WithRecovery(),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	if s.sessions != nil {
		s.registerSessionTools()
	}
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	graphParams := []mcp.ToolOption{
		mcp.WithString("document", mcp.Required(), mcp.Description("The graph document (JSON, YAML or HCL)")),
		mcp.WithString("format", mcp.Description("json, yaml or hcl (default json)"), mcp.Enum("json", "yaml", "hcl")),
	}
	tool := func(name, description string, opts ...mcp.ToolOption) mcp.Tool {
		all := append([]mcp.ToolOption{mcp.WithDescription(description)}, graphParams...)
		return mcp.NewTool(name, append(all, opts...)...)
	}

	s.mcpServer.AddTool(tool("validate_graph",
		"Validate a graph: missing nodes, cycles, port type mismatches and parameter values.",
		mcp.WithBoolean("strict", mcp.Description("Treat warnings and unresolved cards as failures")),
		mcp.WithOutputSchema[ValidateResponse](),
	), mcp.NewStructuredToolHandler(s.handleValidate))

	s.mcpServer.AddTool(tool("compile_graph",
		"Compile a graph into a dependency-ordered execution plan.",
		mcp.WithOutputSchema[PlanResponse](),
	), mcp.NewStructuredToolHandler(s.handleCompile))

	s.mcpServer.AddTool(tool("layout_graph",
		"Assign layered canvas positions to every node.",
		mcp.WithOutputSchema[graph.Document](),
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, args GraphArgs) (graph.Document, error) {
		g, err := s.parse(args)
		if err != nil {
			return graph.Document{}, err
		}
		return graph.ToDocument(s.service.Layout(g)), nil
	}))

	s.mcpServer.AddTool(tool("optimize_graph",
		"Remove pass-through nodes, reconnecting their neighbours.",
		mcp.WithOutputSchema[graph.Document](),
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, args GraphArgs) (graph.Document, error) {
		g, err := s.parse(args)
		if err != nil {
			return graph.Document{}, err
		}
		return graph.ToDocument(s.service.Optimize(g)), nil
	}))

	s.mcpServer.AddTool(tool("mermaid",
		"Render a graph as a Mermaid flowchart, marking invalid edges and cyclic nodes.",
	), mcp.NewTypedToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, args GraphArgs) (*mcp.CallToolResult, error) {
		g, err := s.parse(args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(mermaid.Inspected(g, s.service.Resolver())), nil
	}))

	s.mcpServer.AddTool(tool("run_graph",
		"Execute a graph once and return every node's output.",
		mcp.WithString("input", mcp.Description("JSON value fed to every input node")),
	), mcp.NewTypedToolHandler(s.handleRun))

	s.mcpServer.AddTool(mcp.NewTool("list_cards",
		mcp.WithDescription("List the cards available to graphs."),
		mcp.WithOutputSchema[CardsResponse](),
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, _ struct{}) (CardsResponse, error) {
		return CardsResponse{Cards: s.cardMetas()}, nil
	}))
}

func (s *Server) registerSessionTools() {
	s.mcpServer.AddTool(mcp.NewTool("session_get",
		mcp.WithDescription("Get the current graph of an edit session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("The edit session id")),
		mcp.WithOutputSchema[graph.Document](),
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (graph.Document, error) {
		g, err := s.sessions.LoadOrStart(ctx, args.SessionID, nil)
		if err != nil {
			return graph.Document{}, err
		}
		return graph.ToDocument(g), nil
	}))

	s.mcpServer.AddTool(mcp.NewTool("session_edit",
		mcp.WithDescription("Apply a batch of edits to a session graph as one undo step. Starts the session if needed."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("The edit session id")),
		mcp.WithString("edits", mcp.Required(), mcp.Description("JSON array of edits: {op, node, edge, id, position, data, key, value}")),
		mcp.WithOutputSchema[graph.Document](),
	), mcp.NewStructuredToolHandler(s.handleEdit))

	s.mcpServer.AddTool(mcp.NewTool("session_undo",
		mcp.WithDescription("Undo the last edit of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("The edit session id")),
		mcp.WithOutputSchema[graph.Document](),
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (graph.Document, error) {
		g, err := s.sessions.Undo(ctx, args.SessionID)
		if err != nil {
			return graph.Document{}, err
		}
		return graph.ToDocument(g), nil
	}))
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(cardsURI, "Card catalog",
		mcp.WithResourceDescription("Metadata of every card available to graphs"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.cardMetas())
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: cardsURI, MIMEType: "application/json", Text: string(jsonBytes)},
		}, nil
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(cardsURI+"/{id}", "Card",
		mcp.WithTemplateDescription("Metadata and signature of one card"),
		mcp.WithTemplateMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		uri := request.Params.URI
		id := strings.TrimPrefix(uri, cardsURI+"/")
		c, ok := s.service.Resolver().Resolve(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrCardNotFound, id)
		}
		jsonBytes, err := json.Marshal(map[string]any{"meta": c.Meta(), "signature": c.Signature()})
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(jsonBytes)},
		}, nil
	})
}

func (s *Server) handleValidate(ctx context.Context, _ mcp.CallToolRequest, args ValidateArgs) (ValidateResponse, error) {
	g, err := s.parse(args.GraphArgs)
	if err != nil {
		return ValidateResponse{}, err
	}
	var opts []validator.Option
	if args.Strict {
		opts = append(opts, validator.Strict())
	}
	report := validator.Check(g, s.service.Resolver(), opts...)
	return ValidateResponse{
		OK:         report.OK(),
		Issues:     report.Issues,
		Warnings:   report.Validation.Warnings,
		Unresolved: report.Unresolved,
	}, nil
}

func (s *Server) handleCompile(ctx context.Context, _ mcp.CallToolRequest, args GraphArgs) (PlanResponse, error) {
	g, err := s.parse(args)
	if err != nil {
		return PlanResponse{}, err
	}
	p, err := s.service.Compile(g)
	if err != nil {
		return PlanResponse{}, err
	}
	return PlanResponse{Order: p.Order(), Inputs: p.Inputs, Outputs: p.Outputs, Levels: p.Levels()}, nil
}

func (s *Server) handleRun(ctx context.Context, _ mcp.CallToolRequest, args RunArgs) (*mcp.CallToolResult, error) {
	g, err := s.parse(args.GraphArgs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var input any
	if args.Input != "" {
		if err := json.Unmarshal([]byte(args.Input), &input); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("input is not valid JSON: %v", err)), nil
		}
	}

	report, err := s.service.Run(ctx, g, runner.Request{Input: input})
	if err != nil {
		s.logger.Warn("MCP run failed", "graph_id", g.ID(), "err", err)
		return mcp.NewToolResultError(fmt.Sprintf("run failed: %v", err)), nil
	}
	jsonBytes, err := json.Marshal(report)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("report is not serializable: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleEdit(ctx context.Context, _ mcp.CallToolRequest, args EditArgs) (graph.Document, error) {
	var edits []session.Edit
	if err := json.Unmarshal([]byte(args.Edits), &edits); err != nil {
		return graph.Document{}, fmt.Errorf("edits are not a valid JSON array: %w", err)
	}
	fn, err := session.Edits(s.service.Resolver(), edits...)
	if err != nil {
		return graph.Document{}, err
	}
	if _, err := s.sessions.LoadOrStart(ctx, args.SessionID, nil); err != nil {
		return graph.Document{}, err
	}
	g, err := s.sessions.Apply(ctx, args.SessionID, fn)
	if err != nil {
		return graph.Document{}, err
	}
	return graph.ToDocument(g), nil
}

func (s *Server) parse(args GraphArgs) (*graph.Graph, error) {
	format := args.Format
	if format == "" {
		format = "json"
	}
	return s.service.Parse([]byte(args.Document), format)
}

func (s *Server) cardMetas() []domain.CardMeta {
	resolver := s.service.Resolver()
	ids := s.service.CardIDs()
	out := make([]domain.CardMeta, 0, len(ids))
	for _, id := range ids {
		if c, ok := resolver.Resolve(id); ok {
			out = append(out, c.Meta())
		}
	}
	return out
}
