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

	"github.com/aretw0/cascade"
	"github.com/aretw0/cascade/internal/config"
	"github.com/aretw0/cascade/pkg/domain"
	"github.com/aretw0/cascade/pkg/ports"
	"github.com/aretw0/cascade/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RunSummary is the structured answer of run_cascade and get_cascade.
type RunSummary struct {
	ID            string                `json:"id" jsonschema_description:"Run identifier"`
	State         session.State         `json:"state" jsonschema_description:"running or done"`
	Reason        domain.Reason         `json:"reason,omitempty" jsonschema_description:"Why the run stopped"`
	LoopsExecuted int                   `json:"loops_executed" jsonschema_description:"Loops that recorded at least one reaction"`
	Reactions     int                   `json:"reactions" jsonschema_description:"Number of admitted reactions"`
	TotalEnergy   float64               `json:"total_energy_mev" jsonschema_description:"Sum of admitted reaction energies"`
	Pool          []domain.Nuclide      `json:"pool,omitempty" jsonschema_description:"Final nuclide pool, sorted"`
	TopProducts   []domain.ProductCount `json:"top_products,omitempty" jsonschema_description:"Most frequent products"`
	Progress      *domain.Progress      `json:"progress,omitempty" jsonschema_description:"Latest progress of a live run"`
	Error         string                `json:"error,omitempty" jsonschema_description:"Run error, if any"`
}

// LookupResponse lists the dataset reactions involving one nuclide.
type LookupResponse struct {
	Nuclide   domain.Nuclide   `json:"nuclide"`
	Reactions []string         `json:"reactions" jsonschema_description:"Fusion and two-to-two reactions consuming the nuclide"`
	Fission   []domain.Fission `json:"fission" jsonschema_description:"Fission channels of the nuclide"`
}

// topProducts bounds the distribution returned to the client.
const topProducts = 10

// Server wraps the session manager and exposes it as an MCP Server.
type Server struct {
	manager   *session.Manager
	browser   ports.ReactionBrowser
	defaults  domain.Parameters
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithDefaults sets the parameters that tool arguments are overlaid on.
func WithDefaults(p domain.Parameters) Option {
	return func(s *Server) {
		s.defaults = p.Clone()
	}
}

// WithBrowser enables the lookup_reactions tool.
func WithBrowser(b ports.ReactionBrowser) Option {
	return func(s *Server) {
		s.browser = b
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(manager *session.Manager, opts ...Option) *Server {
	s := &Server{
		manager:   manager,
		defaults:  domain.DefaultParameters(),
		mcpServer: server.NewMCPServer("cascade-mcp", strings.TrimSpace(cascade.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
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

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		slog.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("CORS Middleware", "method", r.Method, "path", r.URL.Path)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Baggage, Sentry-Trace")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: run_cascade
	runTool := mcp.NewTool("run_cascade",
		mcp.WithDescription("Run a reaction cascade from the given fuel and wait for its result."),
		mcp.WithString("fuel", mcp.Required(), mcp.Description("Comma separated fuel nuclides, e.g. \"H-1, Li-7, Ni-58\"")),
		mcp.WithNumber("max_loops", mcp.Description("Maximum number of loops")),
		mcp.WithNumber("max_nuclides", mcp.Description("Pool capacity")),
		mcp.WithNumber("temperature_k", mcp.Description("Reactor temperature in kelvin")),
		mcp.WithNumber("min_fusion_mev", mcp.Description("Minimum energy of admitted fusion reactions")),
		mcp.WithNumber("min_two_to_two_mev", mcp.Description("Minimum energy of admitted two-to-two reactions")),
		mcp.WithBoolean("feedback_bosons", mcp.Description("Feed boson products back into the pool")),
		mcp.WithBoolean("feedback_fermions", mcp.Description("Feed fermion products back into the pool")),
		mcp.WithBoolean("allow_dimers", mcp.Description("Allow reactions between two atoms of a diatomic element")),
		mcp.WithBoolean("exclude_melted", mcp.Description("Drop reactions with a melted input")),
		mcp.WithBoolean("exclude_boiled_off", mcp.Description("Drop reactions with a boiled off input")),
		mcp.WithString("statistics_basis", mcp.Description("nuclear or atomic")),
		mcp.WithOutputSchema[RunSummary](),
	)
	s.mcpServer.AddTool(runTool, mcp.NewStructuredToolHandler(s.handleRunCascade))

	// TOOL: get_cascade
	getTool := mcp.NewTool("get_cascade",
		mcp.WithDescription("Get the status or result of a previous run."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Run identifier")),
		mcp.WithOutputSchema[RunSummary](),
	)
	s.mcpServer.AddTool(getTool, mcp.NewStructuredToolHandler(s.handleGetCascade))

	// TOOL: lookup_reactions
	if s.browser != nil {
		lookupTool := mcp.NewTool("lookup_reactions",
			mcp.WithDescription("List the dataset reactions consuming a nuclide and its fission channels."),
			mcp.WithString("nuclide", mcp.Required(), mcp.Description("Nuclide identifier, e.g. \"Li-7\"")),
			mcp.WithOutputSchema[LookupResponse](),
		)
		s.mcpServer.AddTool(lookupTool, mcp.NewStructuredToolHandler(s.handleLookup))
	}
}

// Handler methods for structured tools

func (s *Server) handleRunCascade(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RunSummary, error) {
	params, err := config.DecodeParameters(args, s.defaults)
	if err != nil {
		return RunSummary{}, err
	}

	run, err := s.manager.Start(ctx, params)
	if err != nil {
		return RunSummary{}, err
	}

	select {
	case <-run.Done():
	case <-ctx.Done():
		// The client went away, the run is not worth finishing.
		run.Cancel()
		<-run.Done()
	}
	result, runErr := run.Wait()
	return summarize(&session.Status{ID: run.ID(), State: session.StateDone, Result: result}, runErr), nil
}

func (s *Server) handleGetCascade(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RunSummary, error) {
	id, _ := args["id"].(string)
	if id == "" {
		return RunSummary{}, errors.New("id is required")
	}
	st, err := s.manager.Status(ctx, id)
	if err != nil {
		return RunSummary{}, err
	}
	sum := summarize(st, nil)
	sum.Error = st.Error
	return sum, nil
}

func (s *Server) handleLookup(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (LookupResponse, error) {
	raw, _ := args["nuclide"].(string)
	nuclide, err := domain.ParseNuclide(raw)
	if err != nil {
		return LookupResponse{}, err
	}

	reactions, err := s.browser.ReactionsWith(ctx, nuclide)
	if err != nil {
		return LookupResponse{}, fmt.Errorf("lookup failed: %w", err)
	}
	fission, err := s.browser.FissionOf(ctx, nuclide)
	if err != nil {
		return LookupResponse{}, fmt.Errorf("lookup failed: %w", err)
	}

	resp := LookupResponse{Nuclide: nuclide, Reactions: make([]string, 0, len(reactions)), Fission: fission}
	for _, r := range reactions {
		resp.Reactions = append(resp.Reactions, r.String())
	}
	if resp.Fission == nil {
		resp.Fission = []domain.Fission{}
	}
	return resp, nil
}

func summarize(st *session.Status, runErr error) RunSummary {
	sum := RunSummary{ID: st.ID, State: st.State, Progress: st.Progress}
	if r := st.Result; r != nil {
		sum.Reason = r.Reason
		sum.LoopsExecuted = r.LoopsExecuted
		sum.Reactions = len(r.Reactions)
		sum.TotalEnergy = r.TotalEnergy
		sum.Pool = r.Pool
		sum.TopProducts = r.TopProducts(topProducts)
	}
	if runErr != nil {
		sum.Error = runErr.Error()
	}
	return sum
}

func (s *Server) registerResources() {
	// EXPOSE: cascade://runs
	s.mcpServer.AddResource(mcp.NewResource("cascade://runs", "Known cascade runs",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.manager.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list runs: %w", err)
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "cascade://runs",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
