package hook

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// writeHook creates one hook directory with a manifest under dir.
func writeHook(t *testing.T, dir string, manifest Manifest) string {
	t.Helper()

	hookDir := filepath.Join(dir, manifest.Name)
	if err := os.MkdirAll(hookDir, 0755); err != nil {
		t.Fatalf("failed to create hook dir: %v", err)
	}

	manifestBytes, err := json.Marshal(manifest)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(hookDir, "hook.json"), manifestBytes, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return hookDir
}

func TestManager_Discover(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "mudra-hook-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	hookDir := writeHook(t, tmpDir, Manifest{
		Name:        "test-hook",
		Version:     "1.0.0",
		Description: "A test hook",
		Executable:  "test-hook",
		Events:      []string{"shoot", "clap"},
	})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	hooks := manager.List()
	if len(hooks) != 1 {
		t.Fatalf("expected 1 hook, got %d", len(hooks))
	}

	h := hooks[0]
	if h.Manifest.Name != "test-hook" {
		t.Errorf("expected hook name 'test-hook', got %q", h.Manifest.Name)
	}
	if h.Manifest.Version != "1.0.0" {
		t.Errorf("expected version '1.0.0', got %q", h.Manifest.Version)
	}
	if len(h.Manifest.Events) != 2 {
		t.Errorf("expected 2 subscribed events, got %d", len(h.Manifest.Events))
	}
	if h.Path != hookDir {
		t.Errorf("expected path %q, got %q", hookDir, h.Path)
	}
	if h.Executable != filepath.Join(hookDir, "test-hook") {
		t.Errorf("unexpected executable path %q", h.Executable)
	}
}

func TestManager_Discover_MissingDir(t *testing.T) {
	manager := NewManager("/nonexistent/hooks")
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() on a missing dir should be a no-op, got %v", err)
	}
	if len(manager.List()) != 0 {
		t.Error("expected no hooks")
	}
}

func TestManager_Discover_SkipsInvalidManifests(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "mudra-hook-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	writeHook(t, tmpDir, Manifest{Name: "good", Executable: "good"})

	badDir := filepath.Join(tmpDir, "bad")
	if err := os.MkdirAll(badDir, 0755); err != nil {
		t.Fatalf("failed to create hook dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(badDir, "hook.json"), []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	// A directory without a manifest is not a hook.
	if err := os.MkdirAll(filepath.Join(tmpDir, "empty"), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	if len(manager.List()) != 1 {
		t.Fatalf("expected only the valid hook, got %d", len(manager.List()))
	}
	if _, err := manager.Get("good"); err != nil {
		t.Errorf("the valid hook should be discoverable: %v", err)
	}
	if _, err := manager.Get("bad"); err != ErrHookNotFound {
		t.Errorf("expected ErrHookNotFound for the invalid hook, got %v", err)
	}
}

func TestManager_For(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "mudra-hook-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	writeHook(t, tmpDir, Manifest{Name: "shoot-only", Executable: "a", Events: []string{"shoot"}})
	writeHook(t, tmpDir, Manifest{Name: "everything", Executable: "b"})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	if got := manager.For("shoot"); len(got) != 2 {
		t.Errorf("expected both hooks for shoot, got %d", len(got))
	}
	if got := manager.For("blink"); len(got) != 1 || got[0].Manifest.Name != "everything" {
		t.Errorf("expected only the catch-all hook for blink, got %d", len(got))
	}
}
