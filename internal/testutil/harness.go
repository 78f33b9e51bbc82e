// Package testutil provides the shared harness for tests that compile and
// transform routine documents end to end.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amogorkon/pipeduct/internal/app"
	"github.com/amogorkon/pipeduct/internal/loader"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of a compile-and-transform run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
}

// CompileDocs writes the given files into a temporary directory, then
// loads, compiles, and transforms them the way the real application does.
// Keys are relative paths such as "docs/math.hcl".
func CompileDocs(t *testing.T, files map[string]string) *HarnessResult {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", ".tmp-pipeduct-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}

	logBuffer := &SafeBuffer{}
	appConfig := &app.Config{
		DocPaths:  []string{tmpDir},
		LogLevel:  "debug",
		LogFormat: "text",
	}

	testApp, err := app.NewApp(logBuffer, appConfig, loader.NewLoader())

	if os.Getenv("PIPEDUCT_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       err,
		App:       testApp,
	}
}

// MustCall compiles the documents, requires a clean startup, and invokes
// one routine with the given argument expressions.
func MustCall(t *testing.T, files map[string]string, routine string, args ...string) (*HarnessResult, string) {
	t.Helper()

	result := CompileDocs(t, files)
	require.NoError(t, result.Err)

	val, err := result.App.CallRoutine(context.Background(), routine, args...)
	require.NoError(t, err)

	return result, ValueString(val)
}
