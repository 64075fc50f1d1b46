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

	"github.com/aretw0/quoteflow"
	"github.com/aretw0/quoteflow/internal/logging"
	presentation "github.com/aretw0/quoteflow/internal/presentation/graph"
	"github.com/aretw0/quoteflow/internal/runtime"
	"github.com/aretw0/quoteflow/pkg/answers"
	"github.com/aretw0/quoteflow/pkg/domain"
	"github.com/aretw0/quoteflow/pkg/graph"
	"github.com/aretw0/quoteflow/pkg/validation"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const graphURI = "quoteflow://graph"

// StepResponse is returned by every navigation tool.
type StepResponse struct {
	Step     domain.StepID    `json:"step" jsonschema_description:"The step to show; empty when the wizard is complete"`
	Info     *graph.StepInfo  `json:"info,omitempty" jsonschema_description:"Description of the step to show"`
	Terminal bool             `json:"terminal" jsonschema_description:"True when the answers are complete and ready to be priced"`
	Answers  map[string]any   `json:"answers,omitempty" jsonschema_description:"The answer tree after the call"`
	Error    *ValidationError `json:"error,omitempty" jsonschema_description:"Why the answer was rejected"`
}

// ValidationError describes a rejected answer.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// PostcodeResponse is returned by validate_postcode.
type PostcodeResponse struct {
	Valid      bool   `json:"valid"`
	Normalised string `json:"normalised"`
	Message    string `json:"message,omitempty"`
}

// ResolveArgs are the arguments of resolve_step.
type ResolveArgs struct {
	Step      string `json:"step"`
	Direction string `json:"direction"`
	Answers   string `json:"answers"`
}

// AnswerArgs are the arguments of answer_step.
type AnswerArgs struct {
	Step    string `json:"step"`
	Value   any    `json:"value"`
	Answers string `json:"answers"`
}

// ResumeArgs are the arguments of resume.
type ResumeArgs struct {
	Answers string `json:"answers"`
}

// PostcodeArgs are the arguments of validate_postcode.
type PostcodeArgs struct {
	Postcode string `json:"postcode"`
}

// Server exposes the navigation engine as MCP tools. It is stateless: callers
// pass the answer tree on every call.
type Server struct {
	engine    *runtime.Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine *runtime.Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("quoteflow-mcp", strings.TrimSpace(quoteflow.Version)),
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

// ServeSSE serves the MCP SSE transport on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	answersArg := mcp.WithString("answers", mcp.Description("JSON object with the current answer tree (optional, defaults to empty answers)"))

	s.mcpServer.AddTool(mcp.NewTool("resolve_step",
		mcp.WithDescription("Resolve the step reached from a step in a direction, skipping steps that do not apply."),
		mcp.WithString("step", mcp.Required(), mcp.Description("Current step ID")),
		mcp.WithString("direction", mcp.Enum(string(domain.Forward), string(domain.Backward)), mcp.Description("next (default) or prev")),
		answersArg,
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleResolve))

	s.mcpServer.AddTool(mcp.NewTool("answer_step",
		mcp.WithDescription("Validate and record an answer, then move to the next applicable step."),
		mcp.WithString("step", mcp.Required(), mcp.Description("Step being answered")),
		mcp.WithAny("value", mcp.Required(), mcp.Description("The raw answer: text, yes/no or a number")),
		answersArg,
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleAnswer))

	s.mcpServer.AddTool(mcp.NewTool("resume",
		mcp.WithDescription("Find the step to show for a saved answer tree."),
		answersArg,
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleResume))

	s.mcpServer.AddTool(mcp.NewTool("validate_postcode",
		mcp.WithDescription("Normalise and validate a UK postcode."),
		mcp.WithString("postcode", mcp.Required()),
		mcp.WithOutputSchema[PostcodeResponse](),
	), mcp.NewStructuredToolHandler(s.handlePostcode))

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the step graph for introspection."),
		mcp.WithString("format", mcp.Enum("json", "mermaid"), mcp.Description("json (default) or mermaid")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		steps := s.engine.Graph().Describe()
		if request.GetString("format", "json") == "mermaid" {
			return mcp.NewToolResultText(presentation.GenerateMermaid(steps, nil)), nil
		}
		data, err := json.Marshal(steps)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode graph: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(graphURI, "Quote step graph",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.engine.Graph().Describe())
		if err != nil {
			return nil, fmt.Errorf("encode graph: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      graphURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

func loadAnswers(raw string) (*answers.Store, error) {
	var tree map[string]any
	if strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &tree); err != nil {
			return nil, fmt.Errorf("answers must be a JSON object: %w", err)
		}
	}
	return answers.FromTree(nil, tree)
}

func (s *Server) describe(store *answers.Store, id domain.StepID) *graph.StepInfo {
	step, ok := s.engine.Graph().Lookup(id)
	if !ok {
		return nil
	}
	info := step.Describe(store)
	return &info
}

func (s *Server) handleResolve(ctx context.Context, _ mcp.CallToolRequest, args ResolveArgs) (StepResponse, error) {
	store, err := loadAnswers(args.Answers)
	if err != nil {
		return StepResponse{}, err
	}
	dir := domain.Direction(args.Direction)
	if dir == "" {
		dir = domain.Forward
	}

	next, err := s.engine.Resolve(ctx, store, domain.StepID(args.Step), dir)
	if err != nil {
		s.logger.Warn("MCP resolve failed", "step", args.Step, "error", err)
		return StepResponse{}, err
	}
	return StepResponse{
		Step:     next,
		Info:     s.describe(store, next),
		Terminal: next == "" && dir == domain.Forward,
	}, nil
}

func (s *Server) handleAnswer(ctx context.Context, _ mcp.CallToolRequest, args AnswerArgs) (StepResponse, error) {
	store, err := loadAnswers(args.Answers)
	if err != nil {
		return StepResponse{}, err
	}

	tr, err := s.engine.Answer(ctx, store, domain.StepID(args.Step), args.Value)
	var inputErr *validation.InputError
	if errors.As(err, &inputErr) {
		return StepResponse{
			Step:    tr.To,
			Info:    s.describe(store, tr.To),
			Answers: store.Tree(),
			Error:   &ValidationError{Field: inputErr.Field, Message: inputErr.Message},
		}, nil
	}
	if err != nil {
		return StepResponse{}, err
	}
	return StepResponse{
		Step:     tr.To,
		Info:     s.describe(store, tr.To),
		Terminal: tr.Terminal,
		Answers:  store.Tree(),
	}, nil
}

func (s *Server) handleResume(ctx context.Context, _ mcp.CallToolRequest, args ResumeArgs) (StepResponse, error) {
	store, err := loadAnswers(args.Answers)
	if err != nil {
		return StepResponse{}, err
	}
	id := s.engine.Resume(ctx, store)
	return StepResponse{Step: id, Info: s.describe(store, id)}, nil
}

func (s *Server) handlePostcode(_ context.Context, _ mcp.CallToolRequest, args PostcodeArgs) (PostcodeResponse, error) {
	pc, err := validation.Postcode(args.Postcode)
	if err != nil {
		var inputErr *validation.InputError
		if errors.As(err, &inputErr) {
			return PostcodeResponse{Normalised: validation.NormalizePostcode(args.Postcode), Message: inputErr.Message}, nil
		}
		return PostcodeResponse{}, err
	}
	return PostcodeResponse{Valid: true, Normalised: pc}, nil
}
