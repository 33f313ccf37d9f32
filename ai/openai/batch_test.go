package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nitin-atom/finetuning-customer-support/ai"
	"github.com/nitin-atom/finetuning-customer-support/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBatchClient(t *testing.T, handler http.Handler) *BatchClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := newBatchClient(ai.NewConfig(
		ai.WithHost(server.URL),
		ai.WithModel("gpt-4o-mini"),
		ai.WithAPIKey("test-key"),
	))
	require.NoError(t, err)
	return client
}

func TestMapStatus(t *testing.T) {
	client, err := newBatchClient(ai.NewConfig(ai.WithHost("http://localhost")))
	require.NoError(t, err)

	cases := []struct {
		provider string
		want     core.BatchStatus
	}{
		{"validating", core.BatchInProgress},
		{"in_progress", core.BatchInProgress},
		{"finalizing", core.BatchInProgress},
		{"cancelling", core.BatchInProgress},
		{"completed", core.BatchCompleted},
		{"failed", core.BatchFailed},
		{"cancelled", core.BatchFailed},
		{"expired", core.BatchExpired},
		{"something_new", core.BatchInProgress},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, client.mapStatus(tc.provider), "status %q", tc.provider)
	}
}

func TestSubmitBatch(t *testing.T) {
	var uploadedLines []batchRequestLine
	var createPayload map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/files", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "batch", r.FormValue("purpose"))

		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		dec := json.NewDecoder(file)
		for dec.More() {
			var line batchRequestLine
			require.NoError(t, dec.Decode(&line))
			uploadedLines = append(uploadedLines, line)
		}

		json.NewEncoder(w).Encode(fileObject{ID: "file-123"})
	})
	mux.HandleFunc("/v1/batches", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&createPayload))
		json.NewEncoder(w).Encode(batchObject{ID: "batch-123", Status: "validating"})
	})

	client := newTestBatchClient(t, mux)

	requests := []ai.Request{
		{CustomID: "article-1", Prompt: "Generate questions."},
		{CustomID: "article-2", Prompt: "Generate more questions."},
	}
	spec := ai.RequestSpec{Temperature: 0.7, MaxTokens: 1000, Description: "test run"}

	batchID, err := client.SubmitBatch(context.Background(), requests, spec)
	require.NoError(t, err)
	assert.Equal(t, "batch-123", batchID)

	require.Len(t, uploadedLines, 2)
	assert.Equal(t, "article-1", uploadedLines[0].CustomID)
	assert.Equal(t, http.MethodPost, uploadedLines[0].Method)
	assert.Equal(t, "/v1/chat/completions", uploadedLines[0].URL)
	assert.Equal(t, "gpt-4o-mini", uploadedLines[0].Body.Model)
	assert.Equal(t, 0.7, uploadedLines[0].Body.Temperature)
	assert.Equal(t, "Generate questions.", uploadedLines[0].Body.Messages[0].Content)

	assert.Equal(t, "file-123", createPayload["input_file_id"])
	assert.Equal(t, "/v1/chat/completions", createPayload["endpoint"])
	assert.Equal(t, "24h", createPayload["completion_window"])
}

func TestSubmitBatch_RejectionIsSubmissionError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/files", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limited"}}`)
	})

	client := newTestBatchClient(t, mux)

	_, err := client.SubmitBatch(context.Background(),
		[]ai.Request{{CustomID: "a", Prompt: "p"}}, ai.RequestSpec{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrSubmission)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestSubmitBatch_Empty(t *testing.T) {
	client := newTestBatchClient(t, http.NewServeMux())

	_, err := client.SubmitBatch(context.Background(), nil, ai.RequestSpec{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrSubmission)
}

func TestBatchStatus_TransientError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/batches/batch-1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	client := newTestBatchClient(t, mux)

	_, err := client.BatchStatus(context.Background(), "batch-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrTransientPoll)
}

func TestBatchResults(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/batches/batch-1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(batchObject{
			ID:           "batch-1",
			Status:       "completed",
			OutputFileID: "file-out",
			ErrorFileID:  "file-err",
		})
	})
	mux.HandleFunc("/v1/files/file-out/content", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"custom_id":"a","response":{"body":{"choices":[{"message":{"content":"answer a"}}]}}}`)
		fmt.Fprintln(w, `{"custom_id":"b","response":{"body":{"choices":[]}}}`)
	})
	mux.HandleFunc("/v1/files/file-err/content", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"custom_id":"c","error":{"code":"content_filter","message":"blocked"}}`)
	})

	client := newTestBatchClient(t, mux)

	results, err := client.BatchResults(context.Background(), "batch-1")
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "answer a", results["a"].Content)
	assert.NoError(t, results["a"].Err)

	require.Error(t, results["b"].Err)
	assert.ErrorIs(t, results["b"].Err, ai.ErrNoChoices)

	require.Error(t, results["c"].Err)
	assert.Contains(t, results["c"].Err.Error(), "content_filter")
}

func TestCancelBatch(t *testing.T) {
	cancelled := false
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/batches/batch-1/cancel", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		cancelled = true
		json.NewEncoder(w).Encode(batchObject{ID: "batch-1", Status: "cancelling"})
	})

	client := newTestBatchClient(t, mux)

	require.NoError(t, client.CancelBatch(context.Background(), "batch-1"))
	assert.True(t, cancelled)
}
