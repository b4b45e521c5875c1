// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/poiesic/hybridkb/core"
	"github.com/poiesic/hybridkb/metrics"
)

const serverName = "hybridkb"

// Tool names.
const (
	ToolAnswer = "answer"
	ToolHealth = "health"
)

// ErrAnswererRequired is returned when New is given a nil Answerer.
var ErrAnswererRequired = errors.New("answerer required")

// Answerer answers a free-text query. *engine.Engine implements it.
type Answerer interface {
	Answer(ctx context.Context, rawText string) *core.StructuredResponse
}

// EntityCounter reports how many entities are stored.
// storage.EntityRepository implements it.
type EntityCounter interface {
	CountEntities(ctx context.Context) (int, error)
}

// Server exposes the knowledge engine as MCP tools.
type Server struct {
	server   *mcp.Server
	answerer Answerer
	counter  EntityCounter
	recorder metrics.Recorder
	version  string
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithRecorder records tool calls. Nil selects metrics.Noop.
func WithRecorder(recorder metrics.Recorder) Option {
	return func(s *Server) error {
		if recorder == nil {
			recorder = metrics.Noop{}
		}
		s.recorder = recorder
		return nil
	}
}

// WithEntityCounter makes the health tool report the store size.
func WithEntityCounter(counter EntityCounter) Option {
	return func(s *Server) error {
		s.counter = counter
		return nil
	}
}

// WithVersion sets the version advertised to clients.
func WithVersion(version string) Option {
	return func(s *Server) error {
		s.version = version
		return nil
	}
}

// New creates a Server and registers its tools.
func New(answerer Answerer, opts ...Option) (*Server, error) {
	if answerer == nil {
		return nil, ErrAnswererRequired
	}

	s := &Server{
		answerer: answerer,
		recorder: metrics.Noop{},
		version:  "dev",
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "server")

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: s.version,
	}, nil)

	if err := s.registerTools(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) registerTools() error {
	answerInput, err := jsonschema.For[AnswerArgs]()
	if err != nil {
		return fmt.Errorf("answer input schema: %w", err)
	}
	answerOutput, err := jsonschema.For[AnswerResult]()
	if err != nil {
		return fmt.Errorf("answer output schema: %w", err)
	}
	healthInput, err := jsonschema.For[HealthArgs]()
	if err != nil {
		return fmt.Errorf("health input schema: %w", err)
	}
	healthOutput, err := jsonschema.For[HealthResult]()
	if err != nil {
		return fmt.Errorf("health output schema: %w", err)
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         ToolAnswer,
		Title:        "Answer",
		Description:  "Answer a question from the knowledge base using semantic and graph retrieval.",
		InputSchema:  answerInput,
		OutputSchema: answerOutput,
		Annotations:  &mcp.ToolAnnotations{Title: "Answer"},
	}, s.handleAnswer)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         ToolHealth,
		Title:        "Health",
		Description:  "Report whether the knowledge base is reachable and how many entities it holds.",
		InputSchema:  healthInput,
		OutputSchema: healthOutput,
		Annotations:  &mcp.ToolAnnotations{Title: "Health"},
	}, s.handleHealth)

	return nil
}

func (s *Server) handleAnswer(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[AnswerArgs],
) (*mcp.CallToolResultFor[AnswerResult], error) {
	query := strings.TrimSpace(params.Arguments.Query)
	if query == "" {
		s.recorder.IncToolCall(ToolAnswer, false)
		return &mcp.CallToolResultFor[AnswerResult]{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: "query must not be empty"}},
		}, nil
	}

	start := time.Now()
	resp := s.answerer.Answer(ctx, query)
	s.recorder.IncToolCall(ToolAnswer, true)
	s.logger.Debug("answer tool", "strategy", resp.Strategy, "confidence", resp.Confidence, "elapsed", time.Since(start))

	return &mcp.CallToolResultFor[AnswerResult]{
		Content:           []mcp.Content{&mcp.TextContent{Text: resp.Answer}},
		StructuredContent: NewAnswerResult(resp),
	}, nil
}

func (s *Server) handleHealth(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[HealthArgs],
) (*mcp.CallToolResultFor[HealthResult], error) {
	result := HealthResult{Name: serverName, Version: s.version, Status: "ok"}
	if s.counter != nil {
		count, err := s.counter.CountEntities(ctx)
		if err != nil {
			result.Status = "unavailable"
			result.Error = err.Error()
		}
		result.Entities = count
	}

	ok := result.Status == "ok"
	s.recorder.IncToolCall(ToolHealth, ok)
	text := fmt.Sprintf("status: %s, entities: %d", result.Status, result.Entities)
	return &mcp.CallToolResultFor[HealthResult]{
		IsError:           !ok,
		Content:           []mcp.Content{&mcp.TextContent{Text: text}},
		StructuredContent: result,
	}, nil
}

// MCPServer returns the underlying MCP server, for custom transports.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}

// RunStdio serves MCP over stdin/stdout until ctx is done or the client disconnects.
func (s *Server) RunStdio(ctx context.Context) error {
	s.logger.Info("serving MCP over stdio")
	return s.server.Run(ctx, mcp.NewStdioTransport())
}

// RunSSE serves MCP over server-sent events at addr and endpoint until ctx is done.
func (s *Server) RunSSE(ctx context.Context, addr, endpoint string) error {
	handler := mcp.NewSSEHandler(func(r *http.Request) *mcp.Server { return s.server })
	mux := http.NewServeMux()
	mux.Handle(endpoint, handler)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("serving MCP over SSE", "addr", addr, "endpoint", endpoint)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
