// End-to-end tests against a running TCKDB API server.  The suite is gated
// behind TCKDB_E2E_TEST so unit runs never require live infrastructure:
//
//	TCKDB_E2E_TEST=1 TCKDB_E2E_BASE_URL=http://localhost:8080 go test ./test/e2e/...
package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

const (
	envEnabled = "TCKDB_E2E_TEST"
	envBaseURL = "TCKDB_E2E_BASE_URL"

	defaultBaseURL = "http://localhost:8080"
)

type testEnv struct {
	baseURL    string
	httpClient *http.Client
}

var env *testEnv

func TestMain(m *testing.M) {
	if os.Getenv(envEnabled) == "" {
		fmt.Fprintf(os.Stderr, "skipping e2e tests: %s not set\n", envEnabled)
		os.Exit(0)
	}

	baseURL := os.Getenv(envBaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	env = &testEnv{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	if err := env.waitReady(60 * time.Second); err != nil {
		fmt.Fprintf(os.Stderr, "e2e setup failed: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

// waitReady polls the readiness probe until the server answers or the
// deadline passes.
func (e *testEnv) waitReady(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := e.httpClient.Get(e.baseURL + "/readyz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(time.Second)
	}
	return fmt.Errorf("server at %s not ready within %s", e.baseURL, timeout)
}

// doJSON issues a request with an optional JSON body and decodes the JSON
// response into out when out is non-nil.  It returns the status code.
func (e *testEnv) doJSON(t *testing.T, method, path string, body, out interface{}) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.baseURL+path, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}
