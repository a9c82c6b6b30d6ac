package aientity

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"
)

// genaiEndpoint labels Gemini calls in events and errors.
const genaiEndpoint = "genai"

// GenAIInvoker sends requests to Gemini through the Google GenAI SDK. The
// instruction becomes the system instruction and JSON output is requested
// through the response MIME type. Request.Endpoint and Request.APIKey are
// ignored; the client carries its own.
type GenAIInvoker struct {
	client      *genai.Client
	temperature float32
	observer    Observer
}

// NewGenAIInvoker wraps an initialized genai client.
func NewGenAIInvoker(client *genai.Client, temperature float64, observer Observer) *GenAIInvoker {
	if observer == nil {
		observer = SlogObserver{}
	}
	return &GenAIInvoker{client: client, temperature: float32(temperature), observer: observer}
}

func (g *GenAIInvoker) Invoke(ctx context.Context, req *Request) (string, error) {
	start := time.Now()
	content, err := g.generate(ctx, req)
	g.observer.ObserveCall(ctx, CallEvent{
		Model:    req.Model,
		Endpoint: genaiEndpoint,
		Content:  content,
		Duration: time.Since(start),
		Err:      err,
	})
	return content, err
}

func (g *GenAIInvoker) generate(ctx context.Context, req *Request) (string, error) {
	if g.client == nil {
		return "", &TransportError{Endpoint: genaiEndpoint, Err: errors.New("client not initialized")}
	}

	temp := g.temperature
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.Instruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       &temp,
	}

	resp, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Text), config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &APIError{StatusCode: apiErr.Code, Message: apiErr.Message}
		}
		var apiErrPtr *genai.APIError
		if errors.As(err, &apiErrPtr) {
			return "", &APIError{StatusCode: apiErrPtr.Code, Message: apiErrPtr.Message}
		}
		return "", &TransportError{Endpoint: genaiEndpoint, Err: err}
	}

	if len(resp.Candidates) == 0 {
		return "", &ProtocolError{Reason: "no candidates in response"}
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", &ProtocolError{Reason: "no parts in candidate content"}
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", &ProtocolError{Reason: "no text in candidate content"}
	}
	return sb.String(), nil
}
