// Copyright 2025 Atom
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


package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/nitin-atom/finetuning-customer-support/ai"
	"github.com/nitin-atom/finetuning-customer-support/core"
)

// defaultCompletionWindow is the batch turnaround the API accepts today.
const defaultCompletionWindow = 24 * time.Hour

// BatchClient implements ai.BatchClient against the OpenAI Batch API.
// langchaingo does not expose the /files and /batches endpoints, so the
// client talks to them directly.
type BatchClient struct {
	host   string
	apiKey string
	model  string
	http   *http.Client
	logger *slog.Logger
}

var _ ai.BatchClient = (*BatchClient)(nil)

// newBatchClient is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newBatchClient(config *ai.Config) (*BatchClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &BatchClient{
		host:   config.Host,
		apiKey: config.APIKey,
		model:  config.Model,
		http:   &http.Client{Timeout: 120 * time.Second},
		logger: slog.Default().With("component", "openai-batch"),
	}, nil
}

// NewBatchClient creates a new batch completion service.
//
// Returns ai.BatchClient interface to enforce abstraction.
func NewBatchClient(config *ai.Config) (ai.BatchClient, error) {
	return newBatchClient(config)
}

// batchRequestLine is one line of the uploaded JSONL input file.
type batchRequestLine struct {
	CustomID string           `json:"custom_id"`
	Method   string           `json:"method"`
	URL      string           `json:"url"`
	Body     batchRequestBody `json:"body"`
}

type batchRequestBody struct {
	Model       string         `json:"model"`
	Messages    []batchMessage `json:"messages"`
	Temperature float64        `json:"temperature"`
	MaxTokens   int            `json:"max_tokens,omitempty"`
}

type batchMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// fileObject is the API's file resource.
type fileObject struct {
	ID string `json:"id"`
}

// batchObject is the API's batch resource.
type batchObject struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	OutputFileID string `json:"output_file_id"`
	ErrorFileID  string `json:"error_file_id"`
}

// outputLine is one line of the batch output (or error) file.
type outputLine struct {
	CustomID string `json:"custom_id"`
	Response *struct {
		Body struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
		} `json:"body"`
	} `json:"response"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SubmitBatch uploads the requests as a JSONL file and creates a batch job
// against /v1/chat/completions. Any failure before the batch exists is
// reported as ErrSubmission.
func (c *BatchClient) SubmitBatch(ctx context.Context, requests []ai.Request, spec ai.RequestSpec) (string, error) {
	if len(requests) == 0 {
		return "", fmt.Errorf("%w: empty request list", ai.ErrSubmission)
	}

	fileID, err := c.uploadInputFile(ctx, requests, spec)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ai.ErrSubmission, err)
	}

	batchID, err := c.createBatch(ctx, fileID, spec)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ai.ErrSubmission, err)
	}

	c.logger.Info("submitted batch",
		"batch_id", batchID,
		"requests", len(requests),
		"description", spec.Description)
	return batchID, nil
}

// uploadInputFile builds the JSONL payload in memory and uploads it with
// purpose=batch. Returns the file ID.
func (c *BatchClient) uploadInputFile(ctx context.Context, requests []ai.Request, spec ai.RequestSpec) (string, error) {
	var payload bytes.Buffer
	enc := json.NewEncoder(&payload)
	for _, req := range requests {
		line := batchRequestLine{
			CustomID: string(req.CustomID),
			Method:   http.MethodPost,
			URL:      "/v1/chat/completions",
			Body: batchRequestBody{
				Model: c.model,
				Messages: []batchMessage{
					{Role: "user", Content: req.Prompt},
				},
				Temperature: spec.Temperature,
				MaxTokens:   spec.MaxTokens,
			},
		}
		if err := enc.Encode(&line); err != nil {
			return "", err
		}
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("purpose", "batch"); err != nil {
		return "", err
	}
	part, err := writer.CreateFormFile("file", "batch_input.jsonl")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(payload.Bytes()); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/files", &body)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	var file fileObject
	if err := c.do(httpReq, &file); err != nil {
		return "", err
	}
	return file.ID, nil
}

// createBatch creates the batch job for an uploaded input file.
func (c *BatchClient) createBatch(ctx context.Context, fileID string, spec ai.RequestSpec) (string, error) {
	window := spec.CompletionWindow
	if window <= 0 {
		window = defaultCompletionWindow
	}

	payload := map[string]any{
		"input_file_id":     fileID,
		"endpoint":          "/v1/chat/completions",
		"completion_window": fmt.Sprintf("%dh", int(window.Hours())),
	}
	if spec.Description != "" {
		payload["metadata"] = map[string]string{"description": spec.Description}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/batches", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var batch batchObject
	if err := c.do(httpReq, &batch); err != nil {
		return "", err
	}
	return batch.ID, nil
}

// BatchStatus retrieves the batch and maps the provider's status to the
// orchestration status model. Retryable failures are wrapped in
// ErrTransientPoll.
func (c *BatchClient) BatchStatus(ctx context.Context, batchID string) (core.BatchStatus, error) {
	batch, err := c.retrieveBatch(ctx, batchID)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ai.ErrTransientPoll, err)
	}
	return c.mapStatus(batch.Status), nil
}

func (c *BatchClient) mapStatus(status string) core.BatchStatus {
	switch status {
	case "validating", "in_progress", "finalizing", "cancelling":
		return core.BatchInProgress
	case "completed":
		return core.BatchCompleted
	case "failed", "cancelled":
		return core.BatchFailed
	case "expired":
		return core.BatchExpired
	default:
		c.logger.Warn("unknown batch status", "status", status)
		return core.BatchInProgress
	}
}

func (c *BatchClient) retrieveBatch(ctx context.Context, batchID string) (*batchObject, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/batches/"+batchID, nil)
	if err != nil {
		return nil, err
	}

	var batch batchObject
	if err := c.do(httpReq, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// BatchResults fetches and parses the output of a completed batch. Lines
// from the error file, when one exists, are merged in as failed results.
func (c *BatchClient) BatchResults(ctx context.Context, batchID string) (map[core.ID]ai.Result, error) {
	batch, err := c.retrieveBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrTransientPoll, err)
	}

	results := make(map[core.ID]ai.Result)
	if batch.OutputFileID != "" {
		if err := c.parseResultFile(ctx, batch.OutputFileID, results); err != nil {
			return nil, fmt.Errorf("%w: %w", ai.ErrTransientPoll, err)
		}
	}
	if batch.ErrorFileID != "" {
		if err := c.parseResultFile(ctx, batch.ErrorFileID, results); err != nil {
			return nil, fmt.Errorf("%w: %w", ai.ErrTransientPoll, err)
		}
	}

	c.logger.Info("retrieved batch results", "batch_id", batchID, "results", len(results))
	return results, nil
}

// parseResultFile downloads a JSONL result file and folds its lines into the
// results map.
func (c *BatchClient) parseResultFile(ctx context.Context, fileID string, results map[core.ID]ai.Result) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/files/"+fileID+"/content", nil)
	if err != nil {
		return err
	}
	c.authorize(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.apiError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var line outputLine
		if err := json.Unmarshal([]byte(text), &line); err != nil {
			return fmt.Errorf("malformed result line: %w", err)
		}

		id := core.ID(line.CustomID)
		switch {
		case line.Error != nil:
			results[id] = ai.Result{
				Err: fmt.Errorf("request %s failed: %s (%s)", line.CustomID, line.Error.Message, line.Error.Code),
			}
		case line.Response == nil || len(line.Response.Body.Choices) == 0:
			results[id] = ai.Result{
				Err: fmt.Errorf("request %s: %w", line.CustomID, ai.ErrNoChoices),
			}
		default:
			results[id] = ai.Result{
				Content: line.Response.Body.Choices[0].Message.Content,
			}
		}
	}
	return scanner.Err()
}

// CancelBatch requests cancellation of an in-flight batch.
func (c *BatchClient) CancelBatch(ctx context.Context, batchID string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/batches/"+batchID+"/cancel", nil)
	if err != nil {
		return err
	}

	var batch batchObject
	if err := c.do(httpReq, &batch); err != nil {
		return err
	}

	c.logger.Info("cancelled batch", "batch_id", batchID, "status", batch.Status)
	return nil
}

// do executes a request and decodes the JSON response into out.
func (c *BatchClient) do(req *http.Request, out any) error {
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.apiError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *BatchClient) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// apiError extracts the error message from a non-2xx response.
func (c *BatchClient) apiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var apiResp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	message := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &apiResp); err == nil && apiResp.Error.Message != "" {
		message = apiResp.Error.Message
	}

	return fmt.Errorf("api returned %d: %s", resp.StatusCode, message)
}
