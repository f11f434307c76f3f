package domain

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	m "gooze.dev/pkg/testforge/internal/model"
)

// ImportRuleEngine maps code patterns to the imports a generated test needs.
// The rule set is fixed at construction; engines are safe for concurrent use.
type ImportRuleEngine interface {
	Detect(content string) []m.ImportRequirement
	ContextualImports(content string, className string) []string
}

type importRuleEngine struct {
	rules []compiledRule
}

type compiledRule struct {
	rule     m.ImportRule
	patterns []*regexp.Regexp
}

// NewImportRuleEngine compiles the given rules into an engine. The built-in
// rules are usually obtained from DefaultImportRules and extended with custom
// rules before construction; the engine never mutates after this point.
func NewImportRuleEngine(rules []m.ImportRule) (ImportRuleEngine, error) {
	compiled := make([]compiledRule, 0, len(rules))

	for _, rule := range rules {
		if !m.KnownCategory(rule.Category) {
			return nil, fmt.Errorf("unknown import category %q", rule.Category)
		}

		patterns := make([]*regexp.Regexp, 0, len(rule.Patterns))

		for _, pattern := range rule.Patterns {
			re, err := regexp.Compile("(?i)" + pattern)
			if err != nil {
				return nil, fmt.Errorf("compile pattern %q for category %s: %w", pattern, rule.Category, err)
			}

			patterns = append(patterns, re)
		}

		compiled = append(compiled, compiledRule{rule: rule, patterns: patterns})
	}

	// Higher priority rules contribute first; order inside a priority band
	// is kept stable.
	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].rule.Priority > compiled[j].rule.Priority
	})

	return &importRuleEngine{rules: compiled}, nil
}

// Detect returns the union of imports from every rule with at least one
// matching pattern, ordered by priority descending then import path.
func (e *importRuleEngine) Detect(content string) []m.ImportRequirement {
	seen := make(map[string]bool)
	requirements := make([]m.ImportRequirement, 0)

	for _, compiled := range e.rules {
		if !matchesAny(compiled.patterns, content) {
			continue
		}

		slog.Debug("import rule matched", "category", compiled.rule.Category, "priority", compiled.rule.Priority)

		for _, imp := range compiled.rule.Imports {
			if seen[imp] {
				continue
			}

			seen[imp] = true
			requirements = append(requirements, m.ImportRequirement{
				Import:   imp,
				Category: compiled.rule.Category,
				Priority: compiled.rule.Priority,
			})
		}
	}

	sort.SliceStable(requirements, func(i, j int) bool {
		if requirements[i].Priority != requirements[j].Priority {
			return requirements[i].Priority > requirements[j].Priority
		}

		return requirements[i].Import < requirements[j].Import
	})

	return requirements
}

func matchesAny(patterns []*regexp.Regexp, content string) bool {
	for _, pattern := range patterns {
		if pattern.MatchString(content) {
			return true
		}
	}

	return false
}

// ContextualImports supplements pattern detection with class-name
// conventions, then dedupes and sorts.
func (e *importRuleEngine) ContextualImports(content string, className string) []string {
	seen := make(map[string]bool)
	imports := make([]string, 0)

	add := func(values ...string) {
		for _, value := range values {
			if !seen[value] {
				seen[value] = true
				imports = append(imports, value)
			}
		}
	}

	for _, req := range e.Detect(content) {
		add(req.Import)
	}

	name := strings.ToLower(className)

	switch {
	case strings.Contains(name, "controller"):
		add(
			"org.springframework.web.bind.annotation.RestController",
			"org.springframework.web.bind.annotation.RequestMapping",
			"org.springframework.http.ResponseEntity",
		)
	case strings.Contains(name, "service"):
		add(
			"org.springframework.stereotype.Service",
			"org.springframework.beans.factory.annotation.Autowired",
		)
	case strings.Contains(name, "repository"), strings.Contains(name, "dao"):
		add(
			"org.springframework.stereotype.Repository",
			"org.springframework.data.jpa.repository.JpaRepository",
		)
	case strings.Contains(name, "validator"):
		add(
			"jakarta.validation.Valid",
			"jakarta.validation.constraints.NotNull",
			"jakarta.validation.constraints.NotEmpty",
		)
	}

	sort.Strings(imports)

	return imports
}

// FilterConflicting drops framework imports whose simple class name collides
// with an application class the unit already imports from its own package.
func FilterConflicting(requirements []m.ImportRequirement, applicationClasses []string) []m.ImportRequirement {
	if len(applicationClasses) == 0 {
		return requirements
	}

	appClasses := make(map[string]bool, len(applicationClasses))
	for _, name := range applicationClasses {
		appClasses[name] = true
	}

	filtered := make([]m.ImportRequirement, 0, len(requirements))

	for _, req := range requirements {
		simple := req.Import[strings.LastIndex(req.Import, ".")+1:]
		if appClasses[simple] {
			slog.Debug("filtered conflicting framework import", "import", req.Import, "application_class", simple)
			continue
		}

		filtered = append(filtered, req)
	}

	return filtered
}

// DefaultImportRules returns the built-in rule table.
func DefaultImportRules() []m.ImportRule {
	return []m.ImportRule{
		{
			Category: m.CategoryServlet,
			Priority: 10,
			Patterns: []string{
				`HttpServletRequest\s+\w+`,
				`ServletRequest\s+\w+`,
				`\.getHeaderNames\(\)`,
				`\.getParameterNames\(\)`,
				`\.getHeaders\(\w+\)`,
			},
			Imports: []string{
				"java.util.Enumeration",
				"jakarta.servlet.http.HttpServletRequest",
				"jakarta.servlet.http.HttpServletResponse",
				"jakarta.servlet.ServletRequest",
				"jakarta.servlet.ServletResponse",
			},
			Description: "Servlet API request/response handling",
		},
		{
			Category: m.CategorySpring,
			Priority: 9,
			Patterns: []string{
				`HttpHeaders\s+\w+`,
				`ResponseEntity\s*<[^>]*>`,
				`HttpStatus\.\w+`,
				`@RestController`,
				`@RequestMapping`,
				`@GetMapping`,
				`@PostMapping`,
				`@Autowired`,
				`@Service`,
				`@Component`,
				`@Repository`,
			},
			Imports: []string{
				"org.springframework.http.HttpHeaders",
				"org.springframework.http.ResponseEntity",
				"org.springframework.http.HttpStatus",
				"org.springframework.web.bind.annotation.RestController",
				"org.springframework.web.bind.annotation.RequestMapping",
				"org.springframework.beans.factory.annotation.Autowired",
				"org.springframework.stereotype.Service",
				"org.springframework.stereotype.Component",
				"org.springframework.stereotype.Repository",
			},
			Description: "Spring annotations and HTTP utilities",
		},
		{
			Category: m.CategoryJackson,
			Priority: 8,
			Patterns: []string{
				`ObjectMapper\s+\w+`,
				`JsonNode\s+\w+`,
				`\.readTree\(`,
				`\.writeValueAsString\(`,
				`\.readValue\(`,
				`@JsonProperty`,
				`@JsonIgnore`,
				`JsonProcessingException`,
			},
			Imports: []string{
				"com.fasterxml.jackson.databind.ObjectMapper",
				"com.fasterxml.jackson.databind.JsonNode",
				"com.fasterxml.jackson.core.JsonProcessingException",
				"com.fasterxml.jackson.annotation.JsonProperty",
				"com.fasterxml.jackson.annotation.JsonIgnore",
			},
			Description: "Jackson JSON processing",
		},
		{
			Category: m.CategoryCollections,
			Priority: 7,
			Patterns: []string{
				`\.stream\(\)`,
				`\.collect\(`,
				`Collectors\.\w+`,
				`Stream\s*<[^>]*>`,
				`\.filter\(`,
				`\.flatMap\(`,
				`\.distinct\(\)`,
				`\.sorted\(`,
			},
			Imports: []string{
				"java.util.stream.Stream",
				"java.util.stream.Collectors",
				"java.util.stream.IntStream",
				"java.util.function.Function",
				"java.util.function.Predicate",
				"java.util.function.Consumer",
			},
			Description: "Stream API and functional utilities",
		},
		{
			Category: m.CategoryReflection,
			Priority: 6,
			Patterns: []string{
				`\.setAccessible\(`,
				`\.getDeclaredMethods\(\)`,
				`\.getDeclaredFields\(\)`,
				`\.invoke\(`,
				`Class\.forName\(`,
				`\.newInstance\(\)`,
			},
			Imports: []string{
				"java.lang.reflect.Method",
				"java.lang.reflect.Field",
				"java.lang.reflect.Constructor",
				"java.lang.reflect.InvocationTargetException",
				"java.lang.reflect.Modifier",
			},
			Description: "Reflection API",
		},
		{
			Category: m.CategoryIO,
			Priority: 5,
			Patterns: []string{
				`InputStream\s+\w+`,
				`OutputStream\s+\w+`,
				`BufferedReader\s+\w+`,
				`PrintWriter\s+\w+`,
				`IOException`,
				`Files\.\w+`,
				`Paths\.get\(`,
			},
			Imports: []string{
				"java.io.InputStream",
				"java.io.OutputStream",
				"java.io.BufferedReader",
				"java.io.PrintWriter",
				"java.io.IOException",
				"java.nio.file.Files",
				"java.nio.file.Path",
				"java.nio.file.Paths",
			},
			Description: "I/O and file handling",
		},
		{
			Category: m.CategoryConcurrent,
			Priority: 4,
			Patterns: []string{
				`CompletableFuture\s*<[^>]*>`,
				`ExecutorService\s+\w+`,
				`Future\s*<[^>]*>`,
				`TimeUnit\.\w+`,
				`CountDownLatch\s+\w+`,
				`ConcurrentHashMap\s*<[^>]*>`,
				`AtomicInteger\s+\w+`,
				`ReentrantLock\s+\w+`,
			},
			Imports: []string{
				"java.util.concurrent.CompletableFuture",
				"java.util.concurrent.ExecutorService",
				"java.util.concurrent.Future",
				"java.util.concurrent.TimeUnit",
				"java.util.concurrent.CountDownLatch",
				"java.util.concurrent.ConcurrentHashMap",
				"java.util.concurrent.atomic.AtomicInteger",
				"java.util.concurrent.locks.ReentrantLock",
			},
			Description: "Concurrency utilities",
		},
		{
			Category: m.CategoryTime,
			Priority: 3,
			Patterns: []string{
				`LocalDateTime\s+\w+`,
				`LocalDate\s+\w+`,
				`Instant\s+\w+`,
				`ZonedDateTime\s+\w+`,
				`DateTimeFormatter\s+\w+`,
				`Duration\s+\w+`,
				`\.ofPattern\(`,
			},
			Imports: []string{
				"java.time.LocalDateTime",
				"java.time.LocalDate",
				"java.time.Instant",
				"java.time.ZonedDateTime",
				"java.time.format.DateTimeFormatter",
				"java.time.Duration",
				"java.time.ZoneId",
			},
			Description: "java.time API",
		},
		{
			Category: m.CategoryRegex,
			Priority: 2,
			Patterns: []string{
				`Pattern\s+\w+`,
				`Matcher\s+\w+`,
				`Pattern\.compile\(`,
				`\.matcher\(`,
				`\.replaceAll\(`,
			},
			Imports: []string{
				"java.util.regex.Pattern",
				"java.util.regex.Matcher",
				"java.util.regex.PatternSyntaxException",
			},
			Description: "Regular expressions",
		},
		{
			Category: m.CategoryNetwork,
			Priority: 1,
			Patterns: []string{
				`URL\s+\w+`,
				`URI\s+\w+`,
				`HttpURLConnection\s+\w+`,
				`MalformedURLException`,
				`URISyntaxException`,
				`Socket\s+\w+`,
				`InetAddress\s+\w+`,
			},
			Imports: []string{
				"java.net.URL",
				"java.net.URI",
				"java.net.HttpURLConnection",
				"java.net.MalformedURLException",
				"java.net.URISyntaxException",
				"java.net.Socket",
				"java.net.InetAddress",
			},
			Description: "Network utilities",
		},
		{
			Category: m.CategoryException,
			Priority: 1,
			Patterns: []string{
				`throw\s+new\s+\w+Exception`,
				`throws\s+\w+Exception`,
				`catch\s*\(\s*\w+Exception`,
				`IllegalArgumentException\s+\w+`,
				`IllegalStateException\s+\w+`,
			},
			Imports: []string{
				"java.lang.Exception",
				"java.lang.RuntimeException",
				"java.lang.IllegalArgumentException",
				"java.lang.IllegalStateException",
				"java.lang.UnsupportedOperationException",
			},
			Description: "Exception classes",
		},
		{
			Category: m.CategoryUtility,
			Priority: 1,
			Patterns: []string{
				`Optional\s*<[^>]*>`,
				`\.ofNullable\(`,
				`\.orElse\(`,
				`\.isPresent\(\)`,
				`Arrays\.\w+`,
				`Collections\.\w+`,
				`Objects\.\w+`,
			},
			Imports: []string{
				"java.util.Optional",
				"java.util.Arrays",
				"java.util.Collections",
				"java.util.Objects",
				"java.util.StringJoiner",
				"java.util.UUID",
				"java.util.Base64",
			},
			Description: "Common utility classes",
		},
	}
}
