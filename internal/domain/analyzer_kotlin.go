package domain

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	m "gooze.dev/pkg/testforge/internal/model"
)

var (
	kotlinPackageRe  = regexp.MustCompile(`package\s+([^\s\n]+)`)
	kotlinImportRe   = regexp.MustCompile(`import\s+([^\s\n]+)`)
	kotlinFunTypedRe = regexp.MustCompile(`(private|public|protected|internal)?\s*(?:(?:suspend|inline|infix|operator)\s+)?fun\s+(\w+)\s*\(([^)]*)\)\s*:\s*(\w+(?:<[^>]*>)?\??)`)
	kotlinFunUnitRe  = regexp.MustCompile(`(private|public|protected|internal)?\s*(?:(?:suspend|inline|infix|operator)\s+)?fun\s+(\w+)\s*\(([^)]*)\)\s*\{`)
	kotlinPropRe     = regexp.MustCompile(`(private|public|protected|internal)?\s*(val|var)\s+(\w+)\s*:\s*(\w+(?:<[^>]*>)?\??)`)
	kotlinCtorRe     = regexp.MustCompile(`constructor\s*\(([^)]*)\)`)
)

// kotlinClassPatterns are tried in order; the first hit names the unit.
var kotlinClassPatterns = []*regexp.Regexp{
	regexp.MustCompile(`data\s+class\s+(\w+)`),
	regexp.MustCompile(`sealed\s+class\s+(\w+)`),
	regexp.MustCompile(`enum\s+class\s+(\w+)`),
	regexp.MustCompile(`class\s+(\w+)`),
	regexp.MustCompile(`object\s+(\w+)`),
	regexp.MustCompile(`interface\s+(\w+)`),
}

// kotlinAnalyzer analyzes Kotlin-like sources with regex heuristics.
type kotlinAnalyzer struct {
	opts AnalyzerOptions
}

// NewKotlinAnalyzer creates a StructuralAnalyzer for Kotlin sources.
func NewKotlinAnalyzer(opts AnalyzerOptions) StructuralAnalyzer {
	return &kotlinAnalyzer{opts: opts}
}

func (a *kotlinAnalyzer) Language() m.Language { return m.LanguageKotlin }

func (a *kotlinAnalyzer) Analyze(origin m.Path, content string) (m.SourceUnit, error) {
	if strings.TrimSpace(content) == "" {
		return m.SourceUnit{}, &AnalysisError{Unit: origin, Err: fmt.Errorf("empty source")}
	}

	unit := m.SourceUnit{
		Origin:   origin,
		Language: m.LanguageKotlin,
		Content:  content,
	}

	if match := kotlinPackageRe.FindStringSubmatch(content); match != nil {
		unit.Package = strings.TrimSpace(match[1])
	}

	for _, pattern := range kotlinClassPatterns {
		if match := pattern.FindStringSubmatch(content); match != nil {
			unit.ClassName = match[1]
			break
		}
	}

	if unit.ClassName == "" {
		return m.SourceUnit{}, &AnalysisError{Unit: origin, Err: fmt.Errorf("no class, object or interface declaration")}
	}

	for _, match := range kotlinImportRe.FindAllStringSubmatch(content, -1) {
		unit.Imports = append(unit.Imports, strings.TrimSpace(match[1]))
	}

	unit.Methods = a.extractFunctions(content)
	unit.Constructors = extractKotlinConstructors(content, unit.ClassName)
	unit.Fields = extractKotlinProperties(content)
	unit.ApplicationClasses = samePackageImports(unit.Package, unit.Imports)

	unit.HasCollections = strings.Contains(content, "listOf(") || strings.Contains(content, "mapOf(") || strings.Contains(content, ".map {")
	unit.HasIO = strings.Contains(content, "java.io") || strings.Contains(content, "File(")
	unit.UsesConcurrency = strings.Contains(content, "suspend ") || strings.Contains(strings.ToLower(content), "coroutine")
	unit.ApplicationClass = strings.Contains(content, "fun main(")

	slog.Debug("analyzed kotlin unit",
		"path", origin,
		"class", unit.ClassName,
		"methods", len(unit.Methods),
	)

	return unit, nil
}

func (a *kotlinAnalyzer) extractFunctions(content string) []m.MethodSignature {
	methods := make([]m.MethodSignature, 0)
	seen := make(map[string]bool)

	appendMatch := func(visibility, name, params, returnType string) {
		if objectProtocolMethods[name] || seen[name] {
			return
		}

		// Kotlin members are public unless annotated otherwise.
		if visibility == "" {
			visibility = string(m.VisibilityPublic)
		}

		if a.opts.ExcludePrivate && visibility == string(m.VisibilityPrivate) {
			return
		}

		paramTypes := splitParamTypes(params, true)

		seen[name] = true
		methods = append(methods, m.MethodSignature{
			Name:          name,
			ReturnType:    returnType,
			ParamTypes:    paramTypes,
			Visibility:    m.Visibility(visibility),
			Getter:        strings.HasPrefix(name, "get") && len(paramTypes) == 0 && returnType != "Unit",
			Setter:        strings.HasPrefix(name, "set") && len(paramTypes) == 1 && returnType == "Unit",
			BooleanGetter: strings.HasPrefix(name, "is") && len(paramTypes) == 0 && strings.EqualFold(returnType, "Boolean"),
		})
	}

	for _, match := range kotlinFunTypedRe.FindAllStringSubmatch(content, -1) {
		appendMatch(match[1], match[2], match[3], match[4])
	}

	for _, match := range kotlinFunUnitRe.FindAllStringSubmatch(content, -1) {
		appendMatch(match[1], match[2], match[3], "Unit")
	}

	return methods
}

func extractKotlinConstructors(content, className string) []m.ConstructorSignature {
	constructors := make([]m.ConstructorSignature, 0)

	primary := regexp.MustCompile(`class\s+` + regexp.QuoteMeta(className) + `\s*\(([^)]*)\)`)
	if match := primary.FindStringSubmatch(content); match != nil {
		constructors = append(constructors, m.ConstructorSignature{
			Visibility: m.VisibilityPublic,
			ParamTypes: splitParamTypes(match[1], true),
		})
	}

	for _, match := range kotlinCtorRe.FindAllStringSubmatch(content, -1) {
		constructors = append(constructors, m.ConstructorSignature{
			Visibility: m.VisibilityPublic,
			ParamTypes: splitParamTypes(match[1], true),
		})
	}

	return constructors
}

func extractKotlinProperties(content string) []m.Field {
	matches := kotlinPropRe.FindAllStringSubmatch(content, -1)
	fields := make([]m.Field, 0, len(matches))

	for _, match := range matches {
		visibility := match[1]
		if visibility == "" {
			visibility = string(m.VisibilityPublic)
		}

		fields = append(fields, m.Field{
			Visibility: m.Visibility(visibility),
			Final:      match[2] == "val",
			Name:       match[3],
			Type:       match[4],
		})
	}

	return fields
}
