package moderation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestModerateSuccess(t *testing.T) {
	var gotPath string
	var gotBody struct {
		Text           string   `json:"text"`
		ExistingTitles []string `json:"existing_titles"`
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"is_toxic": true, "duplicate_detected": false, "toxicity_score": 0.92}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, time.Second)
	verdict, err := c.Moderate(context.Background(), "Broken window Smashed glass", []string{"old report text"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/moderate" {
		t.Errorf("expected POST to /moderate, got %s", gotPath)
	}
	if gotBody.Text != "Broken window Smashed glass" {
		t.Errorf("unexpected text sent: %q", gotBody.Text)
	}
	if len(gotBody.ExistingTitles) != 1 || gotBody.ExistingTitles[0] != "old report text" {
		t.Errorf("unexpected historical texts sent: %v", gotBody.ExistingTitles)
	}
	if !verdict.IsToxic || verdict.IsDuplicate || verdict.ToxicityScore != 0.92 {
		t.Errorf("unexpected verdict: %+v", verdict)
	}
}

func TestModerateSendsEmptyContextAsEmptyList(t *testing.T) {
	var raw map[string]json.RawMessage
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.Write([]byte(`{"is_toxic": false, "duplicate_detected": false, "toxicity_score": 0}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, time.Second)
	if _, err := c.Moderate(context.Background(), "text", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw["existing_titles"]) != "[]" {
		t.Errorf("expected existing_titles to be an empty list, got %s", raw["existing_titles"])
	}
}

func TestModerateErrors(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
	}

	for _, testCase := range testCases {
		ts := httptest.NewServer(testCase.handler)
		c := NewClient(ts.URL, time.Second)
		if _, err := c.Moderate(context.Background(), "text", nil); err == nil {
			t.Errorf("%s: expected error", testCase.name)
		}
		ts.Close()
	}
}

func TestModerateTimesOut(t *testing.T) {
	block := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer func() {
		close(block)
		ts.Close()
	}()

	c := NewClient(ts.URL, 50*time.Millisecond)
	start := time.Now()
	if _, err := c.Moderate(context.Background(), "text", nil); err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout took too long: %v", elapsed)
	}
}

func TestModerateConnectionRefused(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()

	c := NewClient(ts.URL, time.Second)
	if _, err := c.Moderate(context.Background(), "text", nil); err == nil {
		t.Fatal("expected connection error")
	}
}
