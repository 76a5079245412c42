package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// TestE2ESmoke_SampleCorpus builds the binary and drives it against
// examples/corpus, first as a CLI and then as a server.
func TestE2ESmoke_SampleCorpus(t *testing.T) {
	if os.Getenv("BINDERY_E2E") == "" {
		t.Skip("set BINDERY_E2E=1 to run the CLI smoke test")
	}
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go not found in PATH")
	}

	repoRoot := findRepoRoot(t)
	examples := filepath.Join(repoRoot, "examples")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	bin := filepath.Join(t.TempDir(), "bindery-graph")
	runOrFail(t, ctx, repoRoot, nil, "go", "build", "-o", bin, ".")

	// bindery-graph.yaml in examples/ overrides the corpus preference for 6.1.
	out := runOrFail(t, ctx, examples, nil, bin, "resolve", "virtual/kernel", "virtual/libc")
	if !strings.Contains(out, "linux-yocto_6.6.yaml") || !strings.Contains(out, "glibc_2.39.yaml") {
		t.Fatalf("unexpected resolve output:\n%s", out)
	}

	out = runOrFail(t, ctx, examples, nil, bin, "resolve", "--runtime", "ssh-server")
	if !strings.Contains(out, "dropbear_2024.84.yaml") {
		t.Fatalf("preferred runtime provider not honoured:\n%s", out)
	}

	out = runOrFail(t, ctx, examples, nil, bin, "show", "curl", "--var", "PACKAGECONFIG")
	if strings.TrimSpace(out) != "ssl" {
		t.Fatalf("append overlay not applied, PACKAGECONFIG=%q", out)
	}

	out = runOrFail(t, ctx, examples, nil, bin, "-o", "json", "dependees", "zlib", "--recursive")
	var query queryResponse
	if err := json.Unmarshal([]byte(out), &query); err != nil {
		t.Fatalf("decode dependees: %v\n%s", err, out)
	}
	if !containsFile(query, "core-image-minimal.yaml") {
		t.Fatalf("core-image-minimal should transitively depend on zlib:\n%s", out)
	}

	if out, err := runOut(ctx, examples, nil, bin, "resolve", "rust-cross-canadian"); err == nil {
		t.Fatalf("resolving a skipped recipe should fail:\n%s", out)
	}

	// Server.
	port := pickFreePort(t)
	serveCtx, serveCancel := context.WithCancel(ctx)
	defer serveCancel()
	serveCmd := exec.CommandContext(serveCtx, bin, "serve", "--addr", fmt.Sprintf("127.0.0.1:%d", port))
	serveCmd.Dir = examples
	serveCmd.Cancel = func() error { return serveCmd.Process.Signal(os.Interrupt) }
	var serveOut bytes.Buffer
	serveCmd.Stdout = &serveOut
	serveCmd.Stderr = &serveOut
	if err := serveCmd.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(func() {
		serveCancel()
		_ = serveCmd.Wait()
	})

	httpClient := &http.Client{Timeout: 2 * time.Second}
	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	deadline := time.Now().Add(time.Minute)
	for {
		if time.Now().After(deadline) {
			t.Fatalf("server did not become healthy:\n%s", serveOut.String())
		}
		resp, err := httpClient.Get(base + "/healthz")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		time.Sleep(500 * time.Millisecond)
	}

	resp, err := httpClient.Get(base + "/v1/dependers?target=core-image-minimal&recursive=true")
	if err != nil {
		t.Fatalf("dependers: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dependers: status %d: %s", resp.StatusCode, body)
	}
	query.Visits = nil
	if err := json.Unmarshal(body, &query); err != nil {
		t.Fatalf("decode dependers: %v\n%s", err, body)
	}
	for _, want := range []string{"busybox_1.36.1.yaml", "dropbear_2024.84.yaml", "glibc_2.39.yaml"} {
		if !containsFile(query, want) {
			t.Fatalf("dependers of core-image-minimal missing %s:\n%s", want, body)
		}
	}
}

type queryResponse struct {
	Root   string `json:"root"`
	Visits []struct {
		File string `json:"file"`
		Seen bool   `json:"seen"`
	} `json:"visits"`
}

func containsFile(q queryResponse, suffix string) bool {
	for _, v := range q.Visits {
		if strings.HasSuffix(v.File, suffix) {
			return true
		}
	}
	return false
}

func pickFreePort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen free port: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func findRepoRoot(t *testing.T) string {
	t.Helper()

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	// e2e/smoke_test.go -> repo root
	return filepath.Clean(filepath.Join(filepath.Dir(file), ".."))
}

func runOrFail(t *testing.T, ctx context.Context, dir string, env []string, name string, args ...string) string {
	t.Helper()

	out, err := runOut(ctx, dir, env, name, args...)
	if err != nil {
		t.Fatalf("%s %s failed: %v\n%s", name, strings.Join(args, " "), err, out)
	}
	return out
}

func runOut(ctx context.Context, dir string, env []string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if env != nil {
		cmd.Env = env
	}
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = io.Discard
	err := cmd.Run()
	return stdout.String(), err
}
