package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lemonberrylabs/ego/pkg/api"
	grpcapi "github.com/lemonberrylabs/ego/pkg/api/grpc"
	"github.com/lemonberrylabs/ego/pkg/store"
	"github.com/lemonberrylabs/ego/web"
)

// host is a running HTTP and gRPC host for a test.
type host struct {
	baseURL  string
	grpcAddr string
}

// startHost runs the full host stack on loopback ports. EGO_HOST_URL points
// the HTTP tests at an external instance instead.
func startHost(t *testing.T) *host {
	t.Helper()

	s := store.New()
	exec := api.NewExecutor(s, 10_000, 32)
	server := api.New(exec)
	web.New(s).Register(server.App())
	grpcServer := grpcapi.New(exec)

	h := &host{}
	if external := os.Getenv("EGO_HOST_URL"); external != "" {
		h.baseURL = strings.TrimRight(external, "/")
	} else {
		lis, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("listen: %v", err)
		}
		go server.App().Listener(lis)
		h.baseURL = "http://" + lis.Addr().String()
		t.Cleanup(func() { _ = server.Shutdown() })
	}

	glis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("grpc listen: %v", err)
	}
	h.grpcAddr = glis.Addr().String()
	glis.Close()
	go grpcServer.Serve(h.grpcAddr)
	t.Cleanup(grpcServer.GracefulStop)

	waitForHTTP(t, h.baseURL+"/v1/runs")
	return h
}

func waitForHTTP(t *testing.T, url string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("host at %s did not come up", url)
}

// loadProgram reads an ego program from the testdata directory.
func loadProgram(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join("testdata", "programs", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load program %s: %v", name, err)
	}
	return string(data)
}

// runResult is the decoded response of POST /v1/runs.
type runResult struct {
	ID     string   `json:"id"`
	State  string   `json:"state"`
	Source string   `json:"source"`
	Output []string `json:"output"`
	Steps  int      `json:"steps"`
	Error  *struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
		Line    uint   `json:"line"`
	} `json:"error"`
}

// submit posts source to the runs API and decodes the finished run.
func (h *host) submit(t *testing.T, source string) runResult {
	t.Helper()

	data, _ := json.Marshal(map[string]string{"source": source})
	resp, err := http.Post(h.baseURL+"/v1/runs", "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("submit HTTP error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("submit failed with status %d: %s", resp.StatusCode, body)
	}
	var result runResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("submit decode error: %v", err)
	}
	return result
}

// get fetches path and returns the status code and body.
func (h *host) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(h.baseURL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func assertSucceeded(t *testing.T, r runResult) {
	t.Helper()
	if r.State != "SUCCEEDED" {
		t.Fatalf("expected SUCCEEDED, got %s (error: %+v)", r.State, r.Error)
	}
}

func assertOutput(t *testing.T, r runResult, want ...string) {
	t.Helper()
	if len(r.Output) != len(want) {
		t.Fatalf("output = %q, want %q", r.Output, want)
	}
	for i := range want {
		if r.Output[i] != want[i] {
			t.Errorf("output[%d] = %q, want %q", i, r.Output[i], want[i])
		}
	}
}

func assertFailed(t *testing.T, r runResult, kind string, line uint) {
	t.Helper()
	if r.State != "FAILED" || r.Error == nil {
		t.Fatalf("expected FAILED with error, got %s", r.State)
	}
	if r.Error.Kind != kind {
		t.Errorf("error kind = %s, want %s (%s)", r.Error.Kind, kind, r.Error.Message)
	}
	if r.Error.Line != line {
		t.Errorf("error line = %d, want %d", r.Error.Line, line)
	}
}
