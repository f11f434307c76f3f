package domain

import (
	"path/filepath"
	"strings"

	m "gooze.dev/pkg/testforge/internal/model"
)

// StructuralAnalyzer extracts the testable structure of one source unit.
// Implementations are heuristic line/regex scanners, not full parsers.
type StructuralAnalyzer interface {
	Language() m.Language
	Analyze(origin m.Path, content string) (m.SourceUnit, error)
}

// ExceptionHinter is an optional capability: analyzers that can derive
// constructor exception hints from imports implement it in addition to
// StructuralAnalyzer.
type ExceptionHinter interface {
	ExceptionHints(unit m.SourceUnit) []m.ConstructorSignature
}

// AnalyzerOptions tunes analysis behavior for a whole run.
type AnalyzerOptions struct {
	// ExcludePrivate drops private methods from the analyzed unit.
	ExcludePrivate bool
}

// AnalyzerFor returns the analyzer handling the given path, chosen by file
// extension. Returns nil when the extension is not supported.
func AnalyzerFor(path m.Path, analyzers []StructuralAnalyzer) StructuralAnalyzer {
	var language m.Language

	switch strings.ToLower(filepath.Ext(string(path))) {
	case ".java":
		language = m.LanguageJava
	case ".kt", ".kts":
		language = m.LanguageKotlin
	default:
		return nil
	}

	for _, analyzer := range analyzers {
		if analyzer.Language() == language {
			return analyzer
		}
	}

	return nil
}

// objectProtocolMethods are never extracted; tests for them add no value.
var objectProtocolMethods = map[string]bool{
	"equals":   true,
	"hashCode": true,
	"toString": true,
}

func splitParamTypes(params string, kotlinStyle bool) []string {
	params = strings.TrimSpace(params)
	if params == "" {
		return nil
	}

	types := make([]string, 0, 4)

	depth := 0
	start := 0

	// Split on top-level commas only; generic arguments keep their commas.
	for i, r := range params {
		switch r {
		case '<', '(':
			depth++
		case '>', ')':
			depth--
		case ',':
			if depth == 0 {
				types = appendParamType(types, params[start:i], kotlinStyle)
				start = i + 1
			}
		}
	}

	return appendParamType(types, params[start:], kotlinStyle)
}

func appendParamType(types []string, param string, kotlinStyle bool) []string {
	param = strings.TrimSpace(param)
	if param == "" {
		return types
	}

	if kotlinStyle {
		// Kotlin parameters read "name: Type".
		if idx := strings.Index(param, ":"); idx >= 0 {
			return append(types, strings.TrimSpace(param[idx+1:]))
		}

		return append(types, param)
	}

	// Java parameters read "Type name", possibly with modifiers.
	parts := strings.Fields(param)
	if len(parts) >= 2 {
		return append(types, strings.Join(parts[:len(parts)-1], " "))
	}

	return append(types, param)
}
