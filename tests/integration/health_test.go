//go:build integration

package integration

import (
	"net/http"
	"strings"
	"testing"
)

// Both probes must report healthy once the compose stack is up: readiness
// covers the postgres ping and the manual gate, liveness the goroutine check.
func TestHealthProbes(t *testing.T) {
	for _, path := range []string{"/livez", "/readyz"} {
		t.Run(strings.TrimPrefix(path, "/"), func(t *testing.T) {
			resp := doGet(t, path)
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected 200, got %d", resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("content type: got %q, want application/json", ct)
			}

			body := decodeJSON[healthResponse](t, resp)
			if body.Status != "ok" {
				t.Fatalf("expected status ok, got %q", body.Status)
			}
			// A healthy probe omits the per-check failure map entirely.
			if len(body.Checks) != 0 {
				t.Errorf("unexpected failing checks: %v", body.Checks)
			}
		})
	}
}
