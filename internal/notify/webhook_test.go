package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRelay(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		w.Write([]byte("Accepted"))
	}))
	t.Cleanup(srv.Close)

	relay := NewWebhookRelay(srv.URL)
	result, err := relay.Relay(context.Background(), []byte(`{"name":"김철수"}`))
	if err != nil {
		t.Fatalf("Relay failed: %v", err)
	}
	if result.StatusCode != http.StatusOK || result.Body != "Accepted" {
		t.Errorf("result = %+v", result)
	}
	if string(gotBody) != `{"name":"김철수"}` {
		t.Errorf("forwarded body = %s", gotBody)
	}
}

func TestRelayNon2xxIsResultNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("denied"))
	}))
	t.Cleanup(srv.Close)

	relay := NewWebhookRelay(srv.URL)
	result, err := relay.Relay(context.Background(), []byte(`{}`))
	if err != nil {
		t.Fatalf("Relay returned error for an upstream denial: %v", err)
	}
	if result.StatusCode != http.StatusForbidden || result.Body != "denied" {
		t.Errorf("result = %+v", result)
	}
}
