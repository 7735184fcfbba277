package mcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/rcliao/taskmarket/internal/domain"
	"github.com/rcliao/taskmarket/internal/logging"
)

// JSONRPCRequest represents a JSON-RPC 2.0 request
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC 2.0 response
type JSONRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      interface{}   `json:"id,omitempty"`
	Result  interface{}   `json:"result,omitempty"`
	Error   *JSONRPCError `json:"error,omitempty"`
}

// JSONRPCError represents a JSON-RPC 2.0 error
type JSONRPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Standard JSON-RPC error codes
const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603
)

const (
	protocolVersion    = "2024-11-05"
	defaultIdleTimeout = 10 * time.Minute
)

// Transport handles JSON-RPC 2.0 communication over line-delimited streams.
type Transport struct {
	reader      *bufio.Reader
	writer      io.Writer
	server      *Server
	version     string
	idleTimeout time.Duration
	connected   bool
	mu          sync.Mutex
	writeMu     sync.Mutex
	log         zerolog.Logger
}

// NewStdioTransport serves on stdin and stdout.
func NewStdioTransport(server *Server, version string) *Transport {
	return NewTransport(server, os.Stdin, os.Stdout, version)
}

func NewTransport(server *Server, r io.Reader, w io.Writer, version string) *Transport {
	return &Transport{
		reader:      bufio.NewReader(r),
		writer:      w,
		server:      server,
		version:     version,
		idleTimeout: defaultIdleTimeout,
		connected:   true,
		log:         logging.With("mcp.transport"),
	}
}

// SetIdleTimeout changes how long Start waits for input; zero waits forever.
func (t *Transport) SetIdleTimeout(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.idleTimeout = d
}

// Start reads requests until the input ends, the client sends exit, the
// connection idles out, or ctx is cancelled.
func (t *Transport) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		for {
			line, err := t.reader.ReadBytes('\n')
			if len(line) > 0 {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	for {
		var (
			idle  <-chan time.Time
			timer *time.Timer
		)
		if timeout := t.currentIdleTimeout(); timeout > 0 {
			timer = time.NewTimer(timeout)
			idle = timer.C
		}

		line, err := t.next(ctx, lines, readErr, idle)
		if timer != nil {
			timer.Stop()
		}
		if err != nil || line == nil {
			return err
		}

		if err := t.serveLine(ctx, line); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			t.log.Error().Err(err).Msg("error processing request")
		}
		if !t.isConnected() {
			return nil
		}
	}
}

// next waits for the following request line. A nil line with a nil error
// means the client went away cleanly.
func (t *Transport) next(ctx context.Context, lines <-chan []byte, readErr <-chan error, idle <-chan time.Time) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-readErr:
		if errors.Is(err, io.EOF) {
			t.log.Info().Msg("client disconnected")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read request: %w", err)
	case <-idle:
		t.log.Warn().Msg("connection timeout")
		return nil, fmt.Errorf("connection timeout")
	case line := <-lines:
		return line, nil
	}
}

// serveLine processes one request with panic recovery.
func (t *Transport) serveLine(ctx context.Context, line []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Error().Interface("panic", r).Msg("panic recovered")
			_ = t.sendResponse(&JSONRPCResponse{
				JSONRPC: "2.0",
				Error: &JSONRPCError{
					Code:    InternalError,
					Message: "Internal server error",
				},
			})
			err = fmt.Errorf("panic recovered: %v", r)
		}
	}()

	line = []byte(strings.TrimSpace(string(line)))
	if len(line) == 0 {
		return nil
	}

	response := t.processRequest(ctx, line)
	if response == nil {
		return nil
	}
	if err := t.sendResponse(response); err != nil {
		if strings.Contains(err.Error(), "broken pipe") ||
			strings.Contains(err.Error(), "connection reset") {
			t.log.Info().Err(err).Msg("client disconnected")
			return io.EOF
		}
		return fmt.Errorf("failed to send response: %w", err)
	}
	return nil
}

// processRequest processes a JSON-RPC request and returns a response, or
// nil for notifications.
func (t *Transport) processRequest(ctx context.Context, data []byte) *JSONRPCResponse {
	var req JSONRPCRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return errorResponse(nil, ParseError, "Parse error", err.Error())
	}

	if req.JSONRPC != "2.0" {
		return errorResponse(req.ID, InvalidRequest, "Invalid Request - JSON-RPC 2.0 required", nil)
	}

	switch req.Method {
	case "initialize":
		return t.handleInitialize(req)
	case "initialized", "notifications/initialized":
		return nil
	case "ping":
		return resultResponse(req.ID, struct{}{})
	case "shutdown":
		return t.handleShutdown(req)
	case "exit":
		t.log.Info().Msg("received exit")
		t.setConnected(false)
		return nil
	case "tools/list":
		return t.handleToolsList(req)
	case "tools/call":
		return t.handleToolCall(ctx, req)
	case "resources/list":
		return t.handleResourcesList(req)
	case "resources/read":
		return t.handleResourceRead(ctx, req)
	default:
		result, err := t.server.HandleCommand(ctx, req.Method, req.Params)
		if err != nil {
			return t.commandError(req.ID, err)
		}
		return resultResponse(req.ID, result)
	}
}

func (t *Transport) handleInitialize(req JSONRPCRequest) *JSONRPCResponse {
	type InitParams struct {
		ProtocolVersion string `json:"protocolVersion"`
		ClientInfo      struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"clientInfo,omitempty"`
	}

	var params InitParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, InvalidParams, "Invalid params", err.Error())
		}
	}
	t.log.Info().
		Str("client", params.ClientInfo.Name).
		Str("client_version", params.ClientInfo.Version).
		Str("protocol", params.ProtocolVersion).
		Msg("client initialized")

	return resultResponse(req.ID, map[string]interface{}{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{
				"listChanged": false,
			},
			"resources": map[string]interface{}{
				"subscribe":   false,
				"listChanged": false,
			},
		},
		"serverInfo": map[string]interface{}{
			"name":    "taskmarket",
			"version": t.version,
		},
	})
}

func (t *Transport) handleShutdown(req JSONRPCRequest) *JSONRPCResponse {
	t.setConnected(false)
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
	}
}

func (t *Transport) handleToolsList(req JSONRPCRequest) *JSONRPCResponse {
	list := make([]map[string]interface{}, 0, len(tools))
	for _, tool := range tools {
		list = append(list, map[string]interface{}{
			"name":        tool.Name,
			"description": tool.Description,
			"inputSchema": tool.InputSchema,
		})
	}
	return resultResponse(req.ID, map[string]interface{}{"tools": list})
}

func (t *Transport) handleToolCall(ctx context.Context, req JSONRPCRequest) *JSONRPCResponse {
	type ToolCallParams struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments,omitempty"`
	}

	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, InvalidParams, "Invalid params", err.Error())
	}

	tool, ok := toolByName(params.Name)
	if !ok {
		return errorResponse(req.ID, MethodNotFound, fmt.Sprintf("Unknown tool: %s", params.Name), nil)
	}

	result, err := t.server.HandleCommand(ctx, tool.Command, params.Arguments)
	if err != nil {
		return t.commandError(req.ID, err)
	}

	text, ok := formatResult(result)
	if !ok {
		data, err := json.Marshal(result)
		if err != nil {
			return errorResponse(req.ID, InternalError, "Failed to serialize result", err.Error())
		}
		text = string(data)
	}

	return resultResponse(req.ID, map[string]interface{}{
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": text,
			},
		},
	})
}

var resources = []map[string]interface{}{
	{
		"uri":         "taskmarket://tasks/active",
		"name":        "Active tasks",
		"description": "Every task currently open in the marketplace",
		"mimeType":    "text/markdown",
	},
	{
		"uri":         "taskmarket://properties",
		"name":        "Properties",
		"description": "All properties tasks can be tagged with",
		"mimeType":    "application/json",
	},
}

func (t *Transport) handleResourcesList(req JSONRPCRequest) *JSONRPCResponse {
	return resultResponse(req.ID, map[string]interface{}{"resources": resources})
}

func (t *Transport) handleResourceRead(ctx context.Context, req JSONRPCRequest) *JSONRPCResponse {
	var params struct {
		URI string `json:"uri"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, InvalidParams, "Invalid params", err.Error())
	}

	var (
		text     string
		mimeType string
	)
	switch params.URI {
	case "taskmarket://tasks/active":
		active := true
		result, err := t.server.HandleCommand(ctx, "taskmarket.task.list", mustJSON(ListTasksParams{Active: &active}))
		if err != nil {
			return t.commandError(req.ID, err)
		}
		text, _ = formatResult(result)
		mimeType = "text/markdown"
	case "taskmarket://properties":
		result, err := t.server.HandleCommand(ctx, "taskmarket.property.list", nil)
		if err != nil {
			return t.commandError(req.ID, err)
		}
		text = string(mustJSON(result))
		mimeType = "application/json"
	default:
		return errorResponse(req.ID, InvalidParams, fmt.Sprintf("Unknown resource: %s", params.URI), nil)
	}

	return resultResponse(req.ID, map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"uri":      params.URI,
				"mimeType": mimeType,
				"text":     text,
			},
		},
	})
}

// commandError maps command failures onto JSON-RPC error codes.
func (t *Transport) commandError(id interface{}, err error) *JSONRPCResponse {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return errorResponse(id, InvalidParams, err.Error(), verr.Fields)
	case errors.Is(err, ErrInvalidParams):
		return errorResponse(id, InvalidParams, err.Error(), nil)
	case errors.Is(err, ErrUnknownMethod):
		return errorResponse(id, MethodNotFound, err.Error(), nil)
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrAlreadyExists):
		return errorResponse(id, InvalidParams, err.Error(), nil)
	default:
		t.log.Error().Err(err).Msg("command failed")
		return errorResponse(id, InternalError, err.Error(), nil)
	}
}

func (t *Transport) sendResponse(response *JSONRPCResponse) error {
	data, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if _, err := t.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

func (t *Transport) currentIdleTimeout() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.idleTimeout
}

func (t *Transport) isConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

func (t *Transport) setConnected(connected bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connected = connected
}

func resultResponse(id, result interface{}) *JSONRPCResponse {
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}
}

func errorResponse(id interface{}, code int, message string, data interface{}) *JSONRPCResponse {
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &JSONRPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
