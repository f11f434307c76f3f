package domain

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	m "gooze.dev/pkg/testforge/internal/model"
)

var (
	javaPackageRe = regexp.MustCompile(`package\s+([^;]+);`)
	javaClassRe   = regexp.MustCompile(`public\s+class\s+(\w+)`)
	javaImportRe  = regexp.MustCompile(`import\s+([^;]+);`)
	javaMethodRe  = regexp.MustCompile(`(public|private|protected)\s+(static\s+)?(?:final\s+)?(\w+(?:<[^>]+>)?)\s+(\w+)\s*\(([^)]*)\)\s*(?:throws\s+[^{]+)?\{`)
	javaFieldRe   = regexp.MustCompile(`(private|protected|public)\s+(static\s+)?(final\s+)?(\w+(?:<[^>]+>)?)\s+(\w+)\s*[=;]`)
	javaMainRe    = regexp.MustCompile(`public\s+static\s+void\s+main\s*\(`)
)

// javaAnalyzer analyzes Java-like sources with regex heuristics.
type javaAnalyzer struct {
	opts AnalyzerOptions
}

// NewJavaAnalyzer creates a StructuralAnalyzer for Java sources.
func NewJavaAnalyzer(opts AnalyzerOptions) StructuralAnalyzer {
	return &javaAnalyzer{opts: opts}
}

func (a *javaAnalyzer) Language() m.Language { return m.LanguageJava }

func (a *javaAnalyzer) Analyze(origin m.Path, content string) (m.SourceUnit, error) {
	if strings.TrimSpace(content) == "" {
		return m.SourceUnit{}, &AnalysisError{Unit: origin, Err: fmt.Errorf("empty source")}
	}

	unit := m.SourceUnit{
		Origin:   origin,
		Language: m.LanguageJava,
		Content:  content,
	}

	if match := javaPackageRe.FindStringSubmatch(content); match != nil {
		unit.Package = strings.TrimSpace(match[1])
	}

	if match := javaClassRe.FindStringSubmatch(content); match != nil {
		unit.ClassName = match[1]
	} else {
		return m.SourceUnit{}, &AnalysisError{Unit: origin, Err: fmt.Errorf("no public class declaration")}
	}

	for _, match := range javaImportRe.FindAllStringSubmatch(content, -1) {
		unit.Imports = append(unit.Imports, strings.TrimSpace(match[1]))
	}

	unit.Methods = a.extractMethods(content)
	unit.Constructors = extractJavaConstructors(content, unit.ClassName)
	unit.Constructors = append(unit.Constructors, exceptionConstructorHints(unit.Imports)...)
	unit.Fields = extractJavaFields(content)
	unit.ApplicationClasses = samePackageImports(unit.Package, unit.Imports)

	unit.HasCollections = strings.Contains(content, ".stream()") || strings.Contains(content, "List<") || strings.Contains(content, "Map<")
	unit.HasIO = strings.Contains(content, "IOException") || strings.Contains(content, "InputStream") || strings.Contains(content, "Files.")
	unit.UsesServlet = strings.Contains(content, "javax.servlet") || strings.Contains(content, "jakarta.servlet")
	unit.UsesReflection = strings.Contains(content, ".setAccessible(") || strings.Contains(content, "Class.forName(")
	unit.UsesConcurrency = strings.Contains(content, "CompletableFuture") || strings.Contains(content, "ExecutorService")
	unit.ApplicationClass = javaMainRe.MatchString(content) || strings.Contains(content, "@SpringBootApplication")

	slog.Debug("analyzed java unit",
		"path", origin,
		"class", unit.ClassName,
		"methods", len(unit.Methods),
		"constructors", len(unit.Constructors),
	)

	return unit, nil
}

func (a *javaAnalyzer) extractMethods(content string) []m.MethodSignature {
	matches := javaMethodRe.FindAllStringSubmatch(content, -1)
	methods := make([]m.MethodSignature, 0, len(matches))

	for _, match := range matches {
		visibility := m.Visibility(match[1])
		static := strings.TrimSpace(match[2]) != ""
		returnType := match[3]
		name := match[4]
		params := splitParamTypes(match[5], false)

		if objectProtocolMethods[name] {
			continue
		}

		if a.opts.ExcludePrivate && visibility == m.VisibilityPrivate {
			continue
		}

		methods = append(methods, m.MethodSignature{
			Name:          name,
			ReturnType:    returnType,
			ParamTypes:    params,
			Visibility:    visibility,
			Static:        static,
			Getter:        strings.HasPrefix(name, "get") && len(params) == 0 && returnType != "void",
			Setter:        strings.HasPrefix(name, "set") && len(params) == 1 && returnType == "void",
			BooleanGetter: strings.HasPrefix(name, "is") && len(params) == 0 && strings.EqualFold(returnType, "boolean"),
		})
	}

	return methods
}

func extractJavaConstructors(content, className string) []m.ConstructorSignature {
	re := regexp.MustCompile(`(public|private|protected)\s+` + regexp.QuoteMeta(className) + `\s*\(([^)]*)\)\s*(?:throws\s+[^{]+)?\{`)

	matches := re.FindAllStringSubmatch(content, -1)
	constructors := make([]m.ConstructorSignature, 0, len(matches))

	for _, match := range matches {
		constructors = append(constructors, m.ConstructorSignature{
			Visibility: m.Visibility(match[1]),
			ParamTypes: splitParamTypes(match[2], false),
		})
	}

	return constructors
}

// exceptionConstructorHints derives synthetic constructor entries from
// exception imports. They carry ThrowsHint so the strategy can expect
// exception paths without a throws clause ever being parsed.
func exceptionConstructorHints(imports []string) []m.ConstructorSignature {
	hints := make([]m.ConstructorSignature, 0)

	for _, imp := range imports {
		if !strings.Contains(imp, "Exception") {
			continue
		}

		hints = append(hints, m.ConstructorSignature{
			Visibility: m.VisibilityPublic,
			ParamTypes: []string{"String"},
			ThrowsHint: true,
		})
	}

	return hints
}

func extractJavaFields(content string) []m.Field {
	matches := javaFieldRe.FindAllStringSubmatch(content, -1)
	fields := make([]m.Field, 0, len(matches))

	for _, match := range matches {
		fields = append(fields, m.Field{
			Visibility: m.Visibility(match[1]),
			Static:     strings.TrimSpace(match[2]) != "",
			Final:      strings.TrimSpace(match[3]) != "",
			Type:       match[4],
			Name:       match[5],
		})
	}

	return fields
}

// samePackageImports returns simple names of imports that resolve inside the
// unit's own package.
func samePackageImports(pkg string, imports []string) []string {
	if pkg == "" {
		return nil
	}

	names := make([]string, 0)

	for _, imp := range imports {
		if strings.HasPrefix(imp, pkg+".") {
			names = append(names, imp[strings.LastIndex(imp, ".")+1:])
		}
	}

	return names
}

// ExceptionHints implements ExceptionHinter.
func (a *javaAnalyzer) ExceptionHints(unit m.SourceUnit) []m.ConstructorSignature {
	return exceptionConstructorHints(unit.Imports)
}
