package buildgraph

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// BazelRunner shells out to `bazel query` in a workspace directory.
// Timeout and cancellation come in through the context.
type BazelRunner struct {
	Workspace string
	// Binary overrides the bazel executable name, for wrappers like bazelisk.
	Binary string
}

// Query runs one query expression and returns stdout split into lines.
func (r *BazelRunner) Query(ctx context.Context, expr string, kindOutput bool) ([]string, error) {
	bin := r.Binary
	if bin == "" {
		bin = "bazel"
	}
	args := []string{"query", expr}
	if kindOutput {
		args = append(args, "--output", "label_kind")
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = r.Workspace
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("bazel query %q: %w: %s", expr, err, msg)
		}
		return nil, fmt.Errorf("bazel query %q: %w", expr, err)
	}

	var lines []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// HasWorkspace reports whether a directory is a bazel workspace root.
func HasWorkspace(dir string) bool {
	for _, marker := range []string{"WORKSPACE", "WORKSPACE.bazel", "MODULE.bazel"} {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}
