package domain

import (
	"fmt"
	"strings"

	m "gooze.dev/pkg/testforge/internal/model"
)

// TestStrategy guides prompt construction for one unit.
type TestStrategy struct {
	Approaches       []string
	MethodStrategies []string
	EdgeCases        []string
	ExpectExceptions bool
}

// BuildTestStrategy derives a testing strategy from the analyzed unit. Pure
// and deterministic; the same unit always yields the same strategy.
func BuildTestStrategy(unit m.SourceUnit, targets []m.MethodSignature) TestStrategy {
	strategy := TestStrategy{}

	name := strings.ToLower(unit.ClassName)

	if strings.Contains(name, "service") || strings.Contains(name, "repository") {
		strategy.Approaches = append(strategy.Approaches, "Service layer testing: mock dependencies with Mockito")
	}

	if strings.Contains(name, "controller") {
		strategy.Approaches = append(strategy.Approaches, "Controller testing: use MockMvc for the web layer")
	}

	if unit.UsesServlet {
		strategy.Approaches = append(strategy.Approaches, "Servlet testing: use MockHttpServletRequest/Response")
	}

	if unit.UsesConcurrency {
		strategy.Approaches = append(strategy.Approaches, "Concurrency: assert on completed futures, avoid timing assumptions")
	}

	for _, method := range targets {
		strategy.MethodStrategies = append(strategy.MethodStrategies, methodStrategy(method))
	}

	strategy.EdgeCases = []string{
		"Null parameter testing",
		"Empty string/collection testing",
		"Boundary value testing",
		"Exception scenario testing",
	}

	for _, ctor := range unit.Constructors {
		if ctor.ThrowsHint {
			strategy.ExpectExceptions = true
			break
		}
	}

	return strategy
}

func methodStrategy(method m.MethodSignature) string {
	returnType := method.ReturnType

	switch {
	case returnType == "void" || returnType == "Unit":
		return method.Name + ": verify behavior and side effects"
	case strings.EqualFold(returnType, "boolean"):
		return method.Name + ": test true and false scenarios"
	case strings.Contains(returnType, "List") || strings.Contains(returnType, "Set") ||
		strings.Contains(returnType, "Collection") || strings.Contains(returnType, "Map"):
		return method.Name + ": test empty, single and multiple item scenarios"
	case strings.Contains(returnType, "String"):
		return method.Name + ": test null, empty and valid string scenarios"
	default:
		return method.Name + ": test return value variations and edge cases"
	}
}

const generationSystemPrompt = "You are an expert JVM test engineer. " +
	"Write complete, compilable JUnit 5 test classes. " +
	"Return only code, no explanations."

// BuildGenerationPrompt renders the user prompt for test synthesis from the
// unit, its strategy and the detected import requirements.
func BuildGenerationPrompt(unit m.SourceUnit, targets []m.MethodSignature, strategy TestStrategy, imports []m.ImportRequirement) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate a JUnit 5 test class for %s", unit.ClassName)

	if unit.Package != "" {
		fmt.Fprintf(&b, " in package %s", unit.Package)
	}

	b.WriteString(".\n\nMethods to cover:\n")

	for _, method := range targets {
		fmt.Fprintf(&b, "- %s %s %s(%s)\n", method.Visibility, method.ReturnType, method.Name, strings.Join(method.ParamTypes, ", "))
	}

	if len(unit.Constructors) > 0 {
		b.WriteString("\nConstructors:\n")

		for _, ctor := range unit.Constructors {
			fmt.Fprintf(&b, "- %s %s(%s)", ctor.Visibility, unit.ClassName, strings.Join(ctor.ParamTypes, ", "))

			if ctor.ThrowsHint {
				b.WriteString(" (may throw)")
			}

			b.WriteString("\n")
		}
	}

	if len(strategy.Approaches) > 0 {
		b.WriteString("\nTesting approach:\n")

		for _, approach := range strategy.Approaches {
			fmt.Fprintf(&b, "- %s\n", approach)
		}
	}

	if len(strategy.MethodStrategies) > 0 {
		b.WriteString("\nPer-method guidance:\n")

		for _, s := range strategy.MethodStrategies {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}

	if len(strategy.EdgeCases) > 0 {
		b.WriteString("\nEdge cases to include:\n")

		for _, edge := range strategy.EdgeCases {
			fmt.Fprintf(&b, "- %s\n", edge)
		}
	}

	if strategy.ExpectExceptions {
		b.WriteString("\nSome constructors may throw; include assertThrows scenarios.\n")
	}

	if len(imports) > 0 {
		b.WriteString("\nImports the tests will likely need:\n")

		for _, req := range imports {
			fmt.Fprintf(&b, "- %s\n", req.Import)
		}
	}

	b.WriteString("\nSource under test:\n```")
	b.WriteString(string(unit.Language))
	b.WriteString("\n")
	b.WriteString(unit.Content)
	b.WriteString("\n```\n\nUse @Test, @BeforeEach and Mockito where dependencies need mocking. Name the class ")
	b.WriteString(unit.ClassName)
	b.WriteString("Test. Return only the test class.\n")

	return b.String()
}
