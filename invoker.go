package aientity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Request is everything one model call needs.
type Request struct {
	Model       string
	Endpoint    string
	APIKey      string
	Instruction string // system message, from a PromptBuilder
	Text        string // user message, the caller's raw text
}

// NewRequest builds the request for extracting d from text.
func NewRequest(d *SchemaDescriptor, pb PromptBuilder, text string) (*Request, error) {
	if pb == nil {
		pb = DefaultPromptBuilder{}
	}
	instruction, err := pb.Build(d)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}
	return &Request{
		Model:       d.Model(),
		Endpoint:    d.Endpoint(),
		APIKey:      d.APIKey(),
		Instruction: instruction,
		Text:        text,
	}, nil
}

// Invoker performs one model call and returns the raw reply content, which is
// expected, but not guaranteed, to be JSON text.
type Invoker interface {
	Invoke(ctx context.Context, req *Request) (string, error)
}

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// CallEvent describes one completed model call.
type CallEvent struct {
	Model      string
	Endpoint   string
	Payload    []byte // request body
	StatusCode int    // 0 when no response arrived
	Body       []byte // raw response body
	Content    string // extracted reply content on success
	Duration   time.Duration
	Err        error
}

// Observer receives one event per model call.
type Observer interface {
	ObserveCall(ctx context.Context, ev CallEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ev CallEvent)

func (f ObserverFunc) ObserveCall(ctx context.Context, ev CallEvent) { f(ctx, ev) }

// SlogObserver logs call events at debug level, failures at warn.
type SlogObserver struct {
	Log *slog.Logger
}

func (o SlogObserver) ObserveCall(ctx context.Context, ev CallEvent) {
	log := o.Log
	if log == nil {
		log = slog.Default()
	}
	if ev.Err != nil {
		log.WarnContext(ctx, "Model call failed",
			"model", ev.Model,
			"endpoint", ev.Endpoint,
			"status", ev.StatusCode,
			"duration", ev.Duration,
			"error", ev.Err)
		return
	}
	log.DebugContext(ctx, "Model call completed",
		"model", ev.Model,
		"endpoint", ev.Endpoint,
		"status", ev.StatusCode,
		"payload_length", len(ev.Payload),
		"content_preview", ev.Content[:min(200, len(ev.Content))],
		"duration", ev.Duration)
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []*Message     `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
	Temperature    float64        `json:"temperature"`
}

type chatResponse struct {
	Error   json.RawMessage `json:"error"`
	Choices []struct {
		Message *struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// HTTPInvoker calls an OpenAI-compatible chat-completions endpoint with a
// single POST. It does not retry.
type HTTPInvoker struct {
	client      HTTPDoer
	temperature float64
	observer    Observer
}

// NewHTTPInvoker returns an invoker using client, or http.DefaultClient when nil.
func NewHTTPInvoker(client HTTPDoer, temperature float64, observer Observer) *HTTPInvoker {
	if client == nil {
		client = http.DefaultClient
	}
	if observer == nil {
		observer = SlogObserver{}
	}
	return &HTTPInvoker{client: client, temperature: temperature, observer: observer}
}

func (h *HTTPInvoker) Invoke(ctx context.Context, req *Request) (string, error) {
	ev := CallEvent{Model: req.Model, Endpoint: req.Endpoint}
	start := time.Now()
	content, err := h.invoke(ctx, req, &ev)
	ev.Duration = time.Since(start)
	ev.Content = content
	ev.Err = err
	h.observer.ObserveCall(ctx, ev)
	return content, err
}

func (h *HTTPInvoker) invoke(ctx context.Context, req *Request, ev *CallEvent) (string, error) {
	payload, err := chatPayload(req, h.temperature)
	if err != nil {
		return "", err
	}
	ev.Payload = payload

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &TransportError{Endpoint: req.Endpoint, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)
	}

	res, err := h.client.Do(httpReq)
	if err != nil {
		return "", &TransportError{Endpoint: req.Endpoint, Err: err}
	}
	defer func() {
		_ = res.Body.Close() // Best effort close, body already consumed
	}()
	ev.StatusCode = res.StatusCode

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", &TransportError{Endpoint: req.Endpoint, Err: fmt.Errorf("read body: %w", err)}
	}
	ev.Body = body

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg := errorMessage(body)
		if msg == "" {
			msg = string(body[:min(500, len(body))])
		}
		return "", &APIError{StatusCode: res.StatusCode, Message: msg}
	}

	return parseChatResponse(res.StatusCode, body)
}

// chatPayload encodes the chat-completions request body for req.
func chatPayload(req *Request, temperature float64) ([]byte, error) {
	payload, err := json.Marshal(chatRequest{
		Model:          req.Model,
		Messages:       []*Message{NewSystemMessage(req.Instruction), NewUserMessage(req.Text)},
		ResponseFormat: responseFormat{Type: "json_object"},
		Temperature:    temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return payload, nil
}

// parseChatResponse extracts choices[0].message.content from a 2xx body.
func parseChatResponse(status int, body []byte) (string, error) {
	var cr chatResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return "", &ProtocolError{Reason: "response body is not JSON", Err: err}
	}
	if len(cr.Error) > 0 && string(cr.Error) != "null" {
		return "", &APIError{StatusCode: status, Message: errorMessage(body)}
	}
	if len(cr.Choices) == 0 {
		return "", &ProtocolError{Reason: "missing choices"}
	}
	msg := cr.Choices[0].Message
	if msg == nil || len(msg.Content) == 0 || string(msg.Content) == "null" {
		return "", &ProtocolError{Reason: "missing message content"}
	}
	var content string
	if err := json.Unmarshal(msg.Content, &content); err != nil {
		return "", &ProtocolError{Reason: "message content is not a string", Err: err}
	}
	return content, nil
}

// errorMessage reads the message of an {"error": ...} envelope, which may be
// an object with a message field or a bare string.
func errorMessage(body []byte) string {
	var env struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil || len(env.Error) == 0 {
		return ""
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(env.Error, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	var s string
	if err := json.Unmarshal(env.Error, &s); err == nil {
		return s
	}
	return string(env.Error)
}
