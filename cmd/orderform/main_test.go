package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderCommand_WritesPage(t *testing.T) {
	out, err := execute(t, "render")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, `value="submit" disabled>`) {
		t.Fatalf("expected disabled submit in output")
	}

	path := filepath.Join(t.TempDir(), "order.html")
	if _, err := execute(t, "render", "--variant", "dark", "--output", path); err != nil {
		t.Fatalf("render to file: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "orderform--dark") {
		t.Fatalf("expected dark variant in file")
	}
}

func TestRenderCommand_UnknownVariant(t *testing.T) {
	if _, err := execute(t, "render", "--variant", "neon"); err == nil {
		t.Fatalf("expected error for unknown variant")
	}
}

func TestConfigCommand_PrintsEffectiveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orderform.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: 127.0.0.1:7070\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	out, err := execute(t, "--config", path, "config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if !strings.Contains(out, "addr: 127.0.0.1:7070") {
		t.Fatalf("expected addr in output, got:\n%s", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "orderform dev") {
		t.Fatalf("unexpected version output %q", out)
	}
}
