package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"promptbench/pkg/types"
)

// findFreePort picks an available TCP port on localhost.
func findFreePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func waitStatus(t *testing.T, url string, want int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == want {
				return
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("%s did not return %d in time", url, want)
		}
		time.Sleep(25 * time.Millisecond)
	}
}

func TestServe_FlowAndShutdown(t *testing.T) {
	backend := newFakeOllama(t, "")
	port := findFreePort(t)
	base := fmt.Sprintf("http://127.0.0.1:%d", port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cmd := newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"serve", "--addr", fmt.Sprintf("127.0.0.1:%d", port), "--log-level", "off",
		"--backend-url", backend.URL, "--prompts", newPromptDir(t)})
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	waitStatus(t, base+"/healthz", http.StatusOK)
	waitStatus(t, base+"/readyz", http.StatusOK)

	put := func(kind, body string) {
		req, _ := http.NewRequest(http.MethodPut, base+"/selection/"+kind, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("put %s: %v", kind, err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("put %s: %d", kind, resp.StatusCode)
		}
	}
	put("models", `{"ids":["m1","m2"]}`)
	put("prompts", `{"ids":["haiku","summary"]}`)

	resp, err := http.Post(base+"/runs?wait=1", "application/json", nil)
	if err != nil {
		t.Fatalf("post runs: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("/runs status=%d", resp.StatusCode)
	}

	resp, err = http.Get(base + "/results")
	if err != nil {
		t.Fatalf("get results: %v", err)
	}
	var view types.ViewResponse
	_ = json.NewDecoder(resp.Body).Decode(&view)
	_ = resp.Body.Close()
	if view.State != types.RunCompleted || len(view.Results) != 4 {
		t.Fatalf("unexpected view: %+v", view)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("serve did not shut down")
	}
}
