package telephony

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ionutpopescu27/ByteMeHackaton/internal/http/handlers"
)

func TestBackendClientAnswer(t *testing.T) {
	var gotPath, gotCallSid string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCallSid = r.Header.Get(handlers.CallIDHeader)
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]string{"text": "the answer"})
	}))
	defer server.Close()

	client := NewBackendClient(server.URL, time.Second, nil)
	got, err := client.Answer(context.Background(), "CA1", "question")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if got != "the answer" {
		t.Errorf("Answer() = %q", got)
	}
	if gotPath != "/rsp" || gotCallSid != "CA1" {
		t.Errorf("request = %s, call sid %q", gotPath, gotCallSid)
	}
	if gotBody["text"] != "question" {
		t.Errorf("body = %v", gotBody)
	}
}

func TestBackendClientAnswerWithDocs(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]string{"text": "grounded answer"})
	}))
	defer server.Close()

	client := NewBackendClient(server.URL, time.Second, nil)
	got, err := client.AnswerWithDocs(context.Background(), "CA1", "question", "docs_x", 3)
	if err != nil {
		t.Fatalf("AnswerWithDocs() error = %v", err)
	}
	if got != "grounded answer" {
		t.Errorf("AnswerWithDocs() = %q", got)
	}
	if gotBody["collection_name"] != "docs_x" || gotBody["k"] != float64(3) {
		t.Errorf("body = %v", gotBody)
	}
}

func TestBackendClientStopCall(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]string{"text": "ok"})
	}))
	defer server.Close()

	client := NewBackendClient(server.URL, time.Second, nil)
	if err := client.StopCall(context.Background(), "CA1", "+40774596204"); err != nil {
		t.Fatalf("StopCall() error = %v", err)
	}
	if gotPath != "/stop_call" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestBackendClientSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewBackendClient(server.URL, time.Second, nil)
	if _, err := client.Answer(context.Background(), "CA1", "q"); err == nil {
		t.Error("Answer() should fail on a 500 response")
	}
}
