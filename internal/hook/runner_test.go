package hook

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/landmark"
)

// scriptHook writes an executable shell script and returns a Hook for it.
func scriptHook(t *testing.T, name, script string) *Hook {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "mudra-runner-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	scriptPath := filepath.Join(tmpDir, name+".sh")
	if err := os.WriteFile(scriptPath, []byte(script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	return &Hook{
		Manifest:   Manifest{Name: name, Executable: name + ".sh"},
		Path:       tmpDir,
		Executable: scriptPath,
	}
}

func testEvent() event.Event {
	return event.Event{
		Type:       event.Shoot,
		Position:   &landmark.Point2D{X: 0.4, Y: 0.6},
		Confidence: 0.92,
		Timestamp:  time.Unix(100, 0).UTC(),
	}
}

func TestRunner_Run(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	h := scriptHook(t, "ok-hook", `#!/bin/sh
cat <<'EOF'
{"success":true,"data":{"message":"hello world"}}
EOF
`)

	runner := NewRunner(5 * time.Second)
	response, err := runner.Run(h, testEvent())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if !response.Success {
		t.Error("expected success=true, got false")
	}
	if response.Error != "" {
		t.Errorf("expected empty error, got %q", response.Error)
	}

	var data map[string]interface{}
	if err := json.Unmarshal(response.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if data["message"] != "hello world" {
		t.Errorf("expected message 'hello world', got %v", data["message"])
	}
}

func TestRunner_Run_ReceivesEventOnStdin(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	h := scriptHook(t, "echo-hook", `#!/bin/sh
INPUT=$(cat)
echo "{\"success\":true,\"data\":{\"received\":$INPUT}}"
`)

	runner := NewRunner(5 * time.Second)
	response, err := runner.Run(h, testEvent())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	var data struct {
		Received event.Event `json:"received"`
	}
	if err := json.Unmarshal(response.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}

	if data.Received.Type != event.Shoot {
		t.Errorf("hook should receive the event type, got %s", data.Received.Type)
	}
	if data.Received.Position == nil || data.Received.Position.X != 0.4 {
		t.Errorf("hook should receive the event position, got %+v", data.Received.Position)
	}
}

func TestRunner_Run_Timeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	h := scriptHook(t, "slow-hook", `#!/bin/sh
sleep 5
echo '{"success":true}'
`)

	runner := NewRunner(100 * time.Millisecond)
	_, err := runner.Run(h, testEvent())
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if !strings.Contains(err.Error(), "timeout") {
		t.Errorf("expected a timeout error, got %v", err)
	}
}

func TestRunner_Run_FailureIncludesStderr(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	h := scriptHook(t, "fail-hook", `#!/bin/sh
echo "something broke" >&2
exit 1
`)

	runner := NewRunner(5 * time.Second)
	_, err := runner.Run(h, testEvent())
	if err == nil {
		t.Fatal("expected an execution error")
	}
	if !strings.Contains(err.Error(), "something broke") {
		t.Errorf("error should carry stderr, got %v", err)
	}
}

func TestRunner_Run_RejectsBadOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	h := scriptHook(t, "garbage-hook", `#!/bin/sh
echo "not json"
`)

	runner := NewRunner(5 * time.Second)
	_, err := runner.Run(h, testEvent())
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if !strings.Contains(err.Error(), "parse") {
		t.Errorf("expected a parse error, got %v", err)
	}
}
