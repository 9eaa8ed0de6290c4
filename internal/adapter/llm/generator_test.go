package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rag-gateway/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, false, req["stream"])

		messages := req["messages"].([]interface{})
		require.Len(t, messages, 2)
		first := messages[0].(map[string]interface{})
		assert.Equal(t, "system", first["role"])

		fmt.Fprint(w, `{"message":{"content":"  the answer  "},"done":true}`)
	}))
	defer server.Close()

	g := NewGenerator(server.URL, "test-model", 5*time.Second)
	out, err := g.Generate(context.Background(), "be brief", "question", domain.GenerateOptions{MaxTokens: 100})

	require.NoError(t, err)
	assert.Equal(t, "the answer", out)
}

func TestGenerator_Generate_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	g := NewGenerator(server.URL, "test-model", 5*time.Second)
	_, err := g.Generate(context.Background(), "", "question", domain.GenerateOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestGenerator_GenerateStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, true, req["stream"])

		lines := []string{
			`{"message":{"content":"Hello"},"done":false}`,
			`{"message":{"content":" world"},"done":false}`,
			`{"message":{"content":""},"done":true}`,
		}
		for _, line := range lines {
			fmt.Fprintln(w, line)
		}
	}))
	defer server.Close()

	g := NewGenerator(server.URL, "test-model", 5*time.Second)
	chunks, errs, err := g.GenerateStream(context.Background(), "", "greet", domain.GenerateOptions{})
	require.NoError(t, err)

	var got strings.Builder
	for chunk := range chunks {
		got.WriteString(chunk)
	}
	assert.Equal(t, "Hello world", got.String())
	assert.NoError(t, <-errs)
}

func TestGenerator_GenerateStream_MalformedLine(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"message":{"content":"partial"},"done":false}`)
		fmt.Fprintln(w, `not json`)
	}))
	defer server.Close()

	g := NewGenerator(server.URL, "test-model", 5*time.Second)
	chunks, errs, err := g.GenerateStream(context.Background(), "", "q", domain.GenerateOptions{})
	require.NoError(t, err)

	var got strings.Builder
	for chunk := range chunks {
		got.WriteString(chunk)
	}
	assert.Equal(t, "partial", got.String())
	assert.Error(t, <-errs)
}

func TestEmbedder_Encode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		fmt.Fprint(w, `{"embeddings":[[0.1,0.2],[0.3,0.4]]}`)
	}))
	defer server.Close()

	e := NewEmbedder(server.URL, "embed-model", 5*time.Second)
	vecs, err := e.Encode(context.Background(), []string{"a", "b"})

	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.InDelta(t, 0.3, vecs[1][0], 1e-6)
}

func TestEmbedder_Encode_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"embeddings":[[0.1]]}`)
	}))
	defer server.Close()

	e := NewEmbedder(server.URL, "embed-model", 5*time.Second)
	_, err := e.Encode(context.Background(), []string{"a", "b"})

	assert.Error(t, err)
}
