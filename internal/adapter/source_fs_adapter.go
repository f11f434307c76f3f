package adapter

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	m "gooze.dev/pkg/testforge/internal/model"
)

// SourceFSAdapter abstracts the filesystem operations the synthesis workflow
// relies on when scanning projects and writing test artifacts. It hides
// direct os access so the domain logic can be tested without a disk.
type SourceFSAdapter interface {
	// ListSources returns source units under root matching the supported
	// extensions, skipping anything that already looks like a test file.
	ListSources(ctx context.Context, root m.Path, exclude ...string) ([]m.Path, error)

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(ctx context.Context, path m.Path) ([]byte, error)

	// WriteFile writes content, creating parent directories as needed.
	WriteFile(ctx context.Context, path m.Path, content []byte) error

	// Exists reports whether path exists.
	Exists(ctx context.Context, path m.Path) bool

	// HashFile returns a stable fingerprint for the file at path.
	HashFile(ctx context.Context, path m.Path) (string, error)

	// TestBasePath maps a source path to its base test artifact path under
	// the output directory, mirroring the source tree layout.
	TestBasePath(sourcePath m.Path, sourceRoot m.Path, outputDir m.Path) (m.Path, error)
}

// sourceExtensions lists the file types the pipeline picks up.
var sourceExtensions = map[string]bool{
	".java": true,
	".kt":   true,
}

// LocalSourceFSAdapter backs SourceFSAdapter with the local filesystem.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// ListSources walks root and collects supported source files. Test files and
// excluded substrings are skipped.
func (a *LocalSourceFSAdapter) ListSources(ctx context.Context, root m.Path, exclude ...string) ([]m.Path, error) {
	sources := make([]m.Path, 0)

	err := filepath.Walk(string(root), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if info.IsDir() {
			base := filepath.Base(path)
			if base == ".git" || base == "build" || base == "target" || base == "node_modules" {
				return filepath.SkipDir
			}

			return nil
		}

		if !sourceExtensions[filepath.Ext(path)] {
			return nil
		}

		if isTestArtifactName(filepath.Base(path)) {
			return nil
		}

		for _, pattern := range exclude {
			if pattern != "" && strings.Contains(path, pattern) {
				return nil
			}
		}

		sources = append(sources, m.Path(path))

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan sources under %s: %w", root, err)
	}

	slog.Debug("listed sources", "root", root, "count", len(sources))

	return sources, nil
}

func isTestArtifactName(name string) bool {
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	// FooTest, FooTest2, ... are artifacts, not sources.
	for len(stem) > 0 && stem[len(stem)-1] >= '0' && stem[len(stem)-1] <= '9' {
		stem = stem[:len(stem)-1]
	}

	return strings.HasSuffix(stem, "Test") || strings.HasSuffix(stem, "Tests")
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(_ context.Context, path m.Path) ([]byte, error) {
	return os.ReadFile(string(path))
}

// WriteFile writes content to a file, creating parent directories first.
func (a *LocalSourceFSAdapter) WriteFile(_ context.Context, path m.Path, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(string(path)), 0o750); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}

	return os.WriteFile(string(path), content, 0o600)
}

// Exists reports whether the path exists on disk.
func (a *LocalSourceFSAdapter) Exists(_ context.Context, path m.Path) bool {
	_, err := os.Stat(string(path))
	return err == nil
}

// HashFile returns the SHA-256 hash of the file at the provided path.
func (a *LocalSourceFSAdapter) HashFile(_ context.Context, path m.Path) (string, error) {
	f, err := os.Open(string(path))
	if err != nil {
		return "", err
	}

	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// TestBasePath maps src/main/java style layouts to src/test/java and mirrors
// any other layout under outputDir, appending the Test suffix.
func (a *LocalSourceFSAdapter) TestBasePath(sourcePath m.Path, sourceRoot m.Path, outputDir m.Path) (m.Path, error) {
	rel, err := filepath.Rel(string(sourceRoot), string(sourcePath))
	if err != nil {
		return "", fmt.Errorf("relativize %s: %w", sourcePath, err)
	}

	ext := filepath.Ext(rel)
	stem := strings.TrimSuffix(rel, ext)

	// Maven/Gradle convention: main sources map into the test tree.
	stem = strings.Replace(stem, filepath.Join("src", "main"), filepath.Join("src", "test"), 1)

	return m.Path(filepath.Join(string(outputDir), stem+"Test"+ext)), nil
}
