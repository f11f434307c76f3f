package domain

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gooze.dev/pkg/testforge/internal/adapter"
	m "gooze.dev/pkg/testforge/internal/model"
)

// maxNumberedVersions bounds the contiguous scan for numbered artifacts.
const maxNumberedVersions = 50

// IncrementalVersionManager tracks the numbered test artifacts of a source
// unit and derives the next version to write.
type IncrementalVersionManager interface {
	ScanVersions(ctx context.Context, basePath m.Path) ([]m.TestArtifactVersion, error)
	NextVersionPath(basePath m.Path, existing []m.TestArtifactVersion) m.Path
}

type versionManager struct {
	adapter.SourceFSAdapter
	CoverageReconciler
}

// NewVersionManager creates an IncrementalVersionManager reading artifacts
// through the given adapter.
func NewVersionManager(fsAdapter adapter.SourceFSAdapter, reconciler CoverageReconciler) IncrementalVersionManager {
	return &versionManager{
		SourceFSAdapter:    fsAdapter,
		CoverageReconciler: reconciler,
	}
}

// splitTestBase returns the directory, class base and extension of a base
// test path like dir/FooTest.java.
func splitTestBase(basePath m.Path) (dir, classBase, ext string) {
	dir = filepath.Dir(string(basePath))
	name := filepath.Base(string(basePath))
	ext = filepath.Ext(name)

	stem := strings.TrimSuffix(name, ext)
	classBase = strings.TrimSuffix(stem, "Test")

	return dir, classBase, ext
}

// ScanVersions finds the base artifact and its numbered successors. Numbered
// files run contiguously from 2; the first gap halts the scan so stale
// leftovers past a gap are never picked up.
func (v *versionManager) ScanVersions(ctx context.Context, basePath m.Path) ([]m.TestArtifactVersion, error) {
	if !v.Exists(ctx, basePath) {
		return nil, nil
	}

	dir, classBase, ext := splitTestBase(basePath)

	versions := make([]m.TestArtifactVersion, 0, 1)

	base, err := v.loadVersion(ctx, basePath, 1, classBase+"Test")
	if err != nil {
		return nil, err
	}

	versions = append(versions, base)

	for ordinal := 2; ordinal <= maxNumberedVersions; ordinal++ {
		className := fmt.Sprintf("%sTest%d", classBase, ordinal)
		path := m.Path(filepath.Join(dir, className+ext))

		if !v.Exists(ctx, path) {
			break
		}

		version, err := v.loadVersion(ctx, path, ordinal, className)
		if err != nil {
			return nil, err
		}

		versions = append(versions, version)
	}

	slog.Debug("scanned test artifact versions", "base", basePath, "count", len(versions))

	return versions, nil
}

func (v *versionManager) loadVersion(ctx context.Context, path m.Path, ordinal int, className string) (m.TestArtifactVersion, error) {
	content, err := v.ReadFile(ctx, path)
	if err != nil {
		return m.TestArtifactVersion{}, fmt.Errorf("read test artifact %s: %w", path, err)
	}

	return m.TestArtifactVersion{
		Ordinal:     ordinal,
		Path:        path,
		ClassName:   className,
		TestMethods: v.ExtractTestMethods(string(content)),
	}, nil
}

// NextVersionPath names the artifact to write next: the base path when no
// artifacts exist, otherwise base name + (count + 1).
func (v *versionManager) NextVersionPath(basePath m.Path, existing []m.TestArtifactVersion) m.Path {
	if len(existing) == 0 {
		return basePath
	}

	dir, classBase, ext := splitTestBase(basePath)

	return m.Path(filepath.Join(dir, fmt.Sprintf("%sTest%d%s", classBase, len(existing)+1, ext)))
}

// CoveredTestMethods flattens the test method names of all versions.
func CoveredTestMethods(versions []m.TestArtifactVersion) []string {
	methods := make([]string, 0)
	for _, version := range versions {
		methods = append(methods, version.TestMethods...)
	}

	return methods
}

var filterMethodNameRes = []*regexp.Regexp{
	regexp.MustCompile(`(?:public|private|protected)?\s*(?:static\s+)?void\s+(\w+)\s*\(`),
	regexp.MustCompile(`(?:public|private|protected)?\s*(?:static\s+)?\w+\s+(\w+)\s*\(`),
	regexp.MustCompile(`void\s+(\w+)\s*\(`),
}

func isTestAnnotation(stripped string) bool {
	return strings.HasPrefix(stripped, "@Test") ||
		strings.HasPrefix(stripped, "@ParameterizedTest") ||
		strings.HasPrefix(stripped, "@RepeatedTest")
}

func isLifecycleAnnotation(stripped string) bool {
	return strings.HasPrefix(stripped, "@BeforeEach") ||
		strings.HasPrefix(stripped, "@AfterEach") ||
		strings.HasPrefix(stripped, "@BeforeAll") ||
		strings.HasPrefix(stripped, "@AfterAll")
}

func isMethodAnnotation(stripped string) bool {
	return isTestAnnotation(stripped) || isLifecycleAnnotation(stripped)
}

// FilterForUncovered keeps only the named test methods while retaining all
// scaffolding: package, imports, class declaration and annotations, fields,
// lifecycle methods and comments. Pure function over lines.
func FilterForUncovered(content string, keepMethods []string) string {
	if len(keepMethods) == 0 {
		return ""
	}

	keep := make(map[string]bool, len(keepMethods))
	for _, name := range keepMethods {
		keep[name] = true
	}

	lines := strings.Split(content, "\n")
	filtered := make([]string, 0, len(lines))

	inClass := false
	classBraceDepth := 0

	i := 0
	for i < len(lines) {
		line := lines[i]
		stripped := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(stripped, "package ") || strings.HasPrefix(stripped, "import ") || stripped == "":
			filtered = append(filtered, line)
			i++
			continue

		case strings.HasPrefix(stripped, "@ExtendWith") ||
			strings.HasPrefix(stripped, "@TestInstance") ||
			strings.HasPrefix(stripped, "@SpringBootTest") ||
			strings.HasPrefix(stripped, "public class ") ||
			strings.HasPrefix(stripped, "class "):
			filtered = append(filtered, line)

			if strings.Contains(stripped, "class ") {
				inClass = true
				classBraceDepth = 0
			}

			i++
			continue
		}

		if inClass {
			classBraceDepth += strings.Count(line, "{") - strings.Count(line, "}")
			if classBraceDepth < 0 {
				filtered = append(filtered, line)
				break
			}
		}

		// Class-level fields and wiring annotations stay.
		if inClass && !isMethodAnnotation(stripped) &&
			(strings.HasPrefix(stripped, "@Mock") ||
				strings.HasPrefix(stripped, "@InjectMocks") ||
				strings.HasPrefix(stripped, "@Autowired") ||
				strings.HasPrefix(stripped, "@Value") ||
				strings.HasPrefix(stripped, "private ") ||
				strings.HasPrefix(stripped, "protected ") ||
				strings.HasPrefix(stripped, "public ")) {
			filtered = append(filtered, line)
			i++
			continue
		}

		if isTestAnnotation(stripped) {
			name := lookaheadMethodName(lines, i)

			if name != "" && keep[name] {
				filtered = append(filtered, line)
				i = copyMethodBody(lines, i+1, &filtered)
			} else {
				i = skipMethodBody(lines, i+1)
			}

			continue
		}

		if isLifecycleAnnotation(stripped) {
			filtered = append(filtered, line)
			i = copyMethodBody(lines, i+1, &filtered)

			continue
		}

		if inClass && (strings.HasPrefix(stripped, "//") || strings.HasPrefix(stripped, "/*") || strings.HasPrefix(stripped, "*")) {
			filtered = append(filtered, line)
		}

		i++
	}

	if inClass && classBraceDepth >= 0 {
		filtered = append(filtered, "}")
	}

	return strings.Join(filtered, "\n")
}

// lookaheadMethodName finds the method name declared within a few lines of a
// test annotation.
func lookaheadMethodName(lines []string, from int) string {
	limit := from + 10
	if limit > len(lines) {
		limit = len(lines)
	}

	for j := from; j < limit; j++ {
		for _, re := range filterMethodNameRes {
			if match := re.FindStringSubmatch(lines[j]); match != nil {
				return match[1]
			}
		}
	}

	return ""
}

// copyMethodBody appends lines until the method's braces balance out.
// Returns the index after the method.
func copyMethodBody(lines []string, from int, out *[]string) int {
	depth := 0
	started := false

	i := from
	for i < len(lines) {
		line := lines[i]
		*out = append(*out, line)

		if strings.Contains(line, "{") {
			depth += strings.Count(line, "{")
			started = true
		}

		if strings.Contains(line, "}") {
			depth -= strings.Count(line, "}")
			if started && depth <= 0 {
				return i + 1
			}
		}

		i++
	}

	return i
}

// skipMethodBody advances past a method without copying it.
func skipMethodBody(lines []string, from int) int {
	depth := 0
	started := false

	i := from
	for i < len(lines) {
		line := lines[i]

		if strings.Contains(line, "{") {
			depth += strings.Count(line, "{")
			started = true
		}

		if strings.Contains(line, "}") {
			depth -= strings.Count(line, "}")
			if started && depth <= 0 {
				return i + 1
			}
		}

		i++
	}

	return i
}

var (
	publicTestClassRe = regexp.MustCompile(`public class \w+Test\d*`)
	bareTestClassRe   = regexp.MustCompile(`class \w+Test\d*`)
)

// RenameTestClass rewrites the class declaration so it matches the file the
// content is about to be written to.
func RenameTestClass(content string, newPath m.Path) string {
	name := filepath.Base(string(newPath))
	className := strings.TrimSuffix(name, filepath.Ext(name))

	content = publicTestClassRe.ReplaceAllString(content, "public class "+className)
	content = bareTestClassRe.ReplaceAllString(content, "class "+className)

	return content
}

// VersionOrdinal parses the ordinal out of an artifact class name; the base
// class without a numeric suffix is ordinal 1.
func VersionOrdinal(className string) int {
	idx := len(className)
	for idx > 0 && className[idx-1] >= '0' && className[idx-1] <= '9' {
		idx--
	}

	if idx == len(className) {
		return 1
	}

	ordinal, err := strconv.Atoi(className[idx:])
	if err != nil {
		return 1
	}

	return ordinal
}
