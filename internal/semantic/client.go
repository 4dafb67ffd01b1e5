package semantic

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/tidwall/gjson"

	"github.com/flowforge/flowforge/internal/flowgraph"
	"github.com/flowforge/flowforge/internal/geometry"
)

// Config configures the semantic client.
type Config struct {
	// Model is the vision-capable chat model name.
	Model string

	// APIKey authenticates against the API. Ollama ignores it but the
	// client library requires a non-empty value.
	APIKey string

	// BaseURL overrides the API endpoint, e.g.
	// "http://localhost:11434/v1" for Ollama. Empty means the OpenAI
	// default.
	BaseURL string

	// MaxAttempts and Backoff tune the retry loop. Defaults: 3
	// attempts, 600ms base with exponential growth.
	MaxAttempts int
	Backoff     time.Duration
}

// Client talks to an OpenAI-compatible vision model.
type Client struct {
	api         *openai.Client
	model       string
	maxAttempts int
	backoff     time.Duration
}

// NewClient builds a semantic client from config.
func NewClient(cfg Config) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = 600 * time.Millisecond
	}
	return &Client{
		api:         openai.NewClientWithConfig(apiCfg),
		model:       cfg.Model,
		maxAttempts: attempts,
		backoff:     backoff,
	}
}

// ReviewGraph sends the image and the canonical graph JSON to the
// model and parses the revised graph out of its reply. The revision is
// rejected if it does not preserve the node-id set, so a successful
// return can always replace the baseline graph.
func (c *Client) ReviewGraph(ctx context.Context, imagePath string, graph flowgraph.FlowGraph) (flowgraph.FlowGraph, error) {
	graphJSON, err := flowgraph.MarshalGraph(graph)
	if err != nil {
		return flowgraph.FlowGraph{}, fmt.Errorf("review: %w", err)
	}

	reply, err := c.chatWithImage(ctx, reviewPrompt+string(graphJSON), imagePath)
	if err != nil {
		return flowgraph.FlowGraph{}, fmt.Errorf("review: %w", err)
	}

	cleaned := ExtractJSON(reply)
	if cleaned == "" {
		return flowgraph.FlowGraph{}, fmt.Errorf("review: no JSON object in model reply")
	}
	revised, err := flowgraph.ParseGraph([]byte(cleaned))
	if err != nil {
		return flowgraph.FlowGraph{}, fmt.Errorf("review: %w", err)
	}
	if !graph.SameNodeSet(revised) {
		return flowgraph.FlowGraph{}, fmt.Errorf("review: revision changed the node-id set")
	}
	return revised, nil
}

// Calibrate asks the model for diagram-wide detection hints. Absent or
// malformed fields come back as their zero value; the result is
// normalized so out-of-range estimates cannot harm detection.
func (c *Client) Calibrate(ctx context.Context, imagePath string) (geometry.Calibration, error) {
	reply, err := c.chatWithImage(ctx, calibratePrompt, imagePath)
	if err != nil {
		return geometry.Calibration{}, fmt.Errorf("calibrate: %w", err)
	}

	cleaned := ExtractJSON(reply)
	if cleaned == "" {
		return geometry.Calibration{}, fmt.Errorf("calibrate: no JSON object in model reply")
	}

	calib := geometry.Calibration{
		Orientation:        geometry.ParseOrientation(gjson.Get(cleaned, "orientation").String()),
		MedianShapeWidth:   int(gjson.Get(cleaned, "median_shape_width").Int()),
		MedianShapeHeight:  int(gjson.Get(cleaned, "median_shape_height").Int()),
		EstimatedNodeCount: int(gjson.Get(cleaned, "estimated_node_count").Int()),
		ArrowThicknessPx:   int(gjson.Get(cleaned, "arrow_thickness_px").Int()),
		ArrowStyle:         geometry.ArrowStyle(gjson.Get(cleaned, "arrow_style").String()),
	}
	for _, t := range gjson.Get(cleaned, "shape_types_present").Array() {
		calib.ShapeTypes = append(calib.ShapeTypes, geometry.ParseShapeType(t.String()))
	}
	return calib.Normalize(), nil
}

// chatWithImage posts one user message carrying the prompt and the
// image as a data URL, retrying transient failures with exponential
// backoff. Context cancellation aborts between attempts.
func (c *Client) chatWithImage(ctx context.Context, prompt, imagePath string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: prompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
			},
		}},
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.backoff << (attempt - 1)):
			}
		}
		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			lastErr = err
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("empty completion")
			continue
		}
		return resp.Choices[0].Message.Content, nil
	}
	return "", fmt.Errorf("chat failed after %d attempts: %w", c.maxAttempts, lastErr)
}
