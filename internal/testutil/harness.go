// Package testutil provides a harness for end-to-end tests of the app: it
// writes catalog and context files into a temporary directory, builds an App
// and runs one operation against it.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/assetgrid/internal/app"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
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

// Operation is one of the app's commands.
type Operation func(a *app.App, ctx context.Context) error

// Resolve, Classes and Validate adapt the App methods to Operation.
var (
	Resolve  Operation = (*app.App).Resolve
	Classes  Operation = (*app.App).Classes
	Validate Operation = (*app.App).Validate
)

// HarnessResult holds the outcomes of a harness run.
type HarnessResult struct {
	Output    string
	LogOutput string
	Err       error
	App       *app.App
}

// Run writes files into a temporary directory and runs op. Keys of files
// are relative paths; .hcl files under "catalog/" become the catalog unless
// cfg already names CatalogPaths. A relative cfg.ContextPath is resolved
// against the same directory. Panics are reported through Err.
func Run(t *testing.T, files map[string]string, cfg app.Config, op Operation) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	hasCatalog := false
	for name, content := range files {
		path := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		if filepath.Ext(name) == ".hcl" {
			hasCatalog = true
		}
	}
	if len(cfg.CatalogPaths) == 0 && hasCatalog {
		cfg.CatalogPaths = []string{filepath.Join(tmpDir, "catalog")}
	}
	if cfg.ContextPath != "" && !filepath.IsAbs(cfg.ContextPath) {
		cfg.ContextPath = filepath.Join(tmpDir, cfg.ContextPath)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}

	validated, err := app.NewConfig(cfg)
	require.NoError(t, err)

	out, logs := &SafeBuffer{}, &SafeBuffer{}
	result := &HarnessResult{}
	func() {
		defer func() {
			if r := recover(); r != nil {
				result.Err = fmt.Errorf("app panicked: %v", r)
			}
		}()
		result.App = app.NewApp(out, logs, validated)
		result.Err = op(result.App, context.Background())
	}()

	result.Output = out.String()
	result.LogOutput = logs.String()

	t.Cleanup(func() {
		if os.Getenv("ASSETGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), result.LogOutput)
		}
	})
	return result
}
