package domain

import (
	"log/slog"
	"regexp"
	"strings"

	m "gooze.dev/pkg/testforge/internal/model"
)

// Matching thresholds for fuzzy coverage. Recall-biased on purpose: a
// wrongly-covered method costs a missing test, a wrongly-uncovered method
// only costs a duplicate.
const (
	// MinNameLength is the shortest name considered for any match.
	MinNameLength = 3
	// MinContainmentLength is the shortest name considered for containment.
	MinContainmentLength = 4
	// ContainmentRatio is the minimum length ratio for plain containment.
	ContainmentRatio = 0.4
	// StrippedContainmentRatio is the minimum ratio once separators are
	// stripped from both names.
	StrippedContainmentRatio = 0.5
)

// CoverageReconciler decides which declared methods existing test artifacts
// already cover.
type CoverageReconciler interface {
	ExtractTestMethods(content string) []string
	Reconcile(methods []m.MethodSignature, testMethods []string) []m.CoverageVerdict
	Uncovered(methods []m.MethodSignature, testMethods []string) []m.MethodSignature
	UncoveredTestMethods(newMethods []string, existingMethods []string) []string
}

type coverageReconciler struct{}

// NewCoverageReconciler creates a CoverageReconciler.
func NewCoverageReconciler() CoverageReconciler {
	return &coverageReconciler{}
}

var (
	annotatedTestRe      = regexp.MustCompile(`(?s)@Test\s*(?:\([^)]*\))?\s*(?:@\w+\s*(?:\([^)]*\))?\s*)*(?:public|private|protected)?\s*(?:static\s+)?(?:void|[\w<>\[\]]+)\s+(\w+)\s*\(`)
	parameterizedTestRe  = regexp.MustCompile(`(?s)@ParameterizedTest\s*(?:\([^)]*\))?\s*(?:@\w+\s*(?:\([^)]*\))?\s*)*(?:public|private|protected)?\s*(?:static\s+)?(?:void|[\w<>\[\]]+)\s+(\w+)\s*\(`)
	testPrefixedMethodRe = regexp.MustCompile(`(?i)(?:public|private|protected)\s+(?:static\s+)?(?:void|[\w<>\[\]]+)\s+(test\w+)\s*\(`)
)

// ExtractTestMethods pulls test method names out of artifact content. Only
// names containing "test" count; annotated setup helpers and data builders
// must never mark a source method as covered. Duplicates are dropped
// preserving the order of first sighting.
func (r *coverageReconciler) ExtractTestMethods(content string) []string {
	seen := make(map[string]bool)
	methods := make([]string, 0)

	add := func(name string) {
		if name == "" || seen[name] {
			return
		}

		if !strings.Contains(strings.ToLower(name), "test") {
			return
		}

		seen[name] = true
		methods = append(methods, name)
	}

	for _, match := range annotatedTestRe.FindAllStringSubmatch(content, -1) {
		add(match[1])
	}

	for _, match := range parameterizedTestRe.FindAllStringSubmatch(content, -1) {
		add(match[1])
	}

	for _, match := range testPrefixedMethodRe.FindAllStringSubmatch(content, -1) {
		add(match[1])
	}

	return methods
}

// nameVariations lowercases every test method name and adds copies with a
// leading or trailing "test" stripped.
func nameVariations(testMethods []string) []string {
	seen := make(map[string]bool)
	variations := make([]string, 0, len(testMethods))

	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			variations = append(variations, name)
		}
	}

	for _, method := range testMethods {
		lower := strings.ToLower(method)
		add(lower)

		if strings.HasPrefix(lower, "test") {
			add(lower[4:])
		}

		if strings.HasSuffix(lower, "test") {
			add(lower[:len(lower)-4])
		}
	}

	return variations
}

// Reconcile produces a verdict per declared method, preserving declaration
// order. With no test methods at all, everything is uncovered.
func (r *coverageReconciler) Reconcile(methods []m.MethodSignature, testMethods []string) []m.CoverageVerdict {
	variations := nameVariations(testMethods)
	verdicts := make([]m.CoverageVerdict, 0, len(methods))

	for _, method := range methods {
		matched, matches := matchVariations(strings.ToLower(method.Name), variations)

		verdict := m.CoverageVerdict{Method: method.Name, Covered: matched}
		if matched {
			verdict.MatchedTest = matches[0]
		}

		if len(matches) > 1 {
			// Informational only; first match wins.
			ambiguity := &ReconciliationAmbiguity{Method: method.Name, Matches: matches}
			slog.Debug("coverage match ambiguity", "detail", ambiguity.Error())
		}

		verdicts = append(verdicts, verdict)
	}

	return verdicts
}

// Uncovered returns the declared methods no existing test matches, in
// declaration order.
func (r *coverageReconciler) Uncovered(methods []m.MethodSignature, testMethods []string) []m.MethodSignature {
	if len(testMethods) == 0 {
		return methods
	}

	verdicts := r.Reconcile(methods, testMethods)
	uncovered := make([]m.MethodSignature, 0, len(methods))

	for i, verdict := range verdicts {
		if !verdict.Covered {
			uncovered = append(uncovered, methods[i])
		}
	}

	return uncovered
}

func matchVariations(methodName string, variations []string) (bool, []string) {
	matches := make([]string, 0, 1)

	for _, variation := range variations {
		if len(methodName) < MinNameLength || len(variation) < MinNameLength {
			continue
		}

		if methodName == variation {
			matches = append(matches, variation)
			continue
		}

		if len(methodName) >= MinContainmentLength && strings.Contains(variation, methodName) &&
			ratio(len(methodName), len(variation)) >= ContainmentRatio {
			matches = append(matches, variation)
			continue
		}

		if len(variation) >= MinContainmentLength && strings.Contains(methodName, variation) &&
			ratio(len(variation), len(methodName)) >= ContainmentRatio {
			matches = append(matches, variation)
			continue
		}

		methodClean := stripSeparators(methodName)
		variationClean := stripSeparators(variation)

		if len(methodClean) >= MinContainmentLength && len(variationClean) >= MinContainmentLength {
			if (strings.Contains(variationClean, methodClean) && ratio(len(methodClean), len(variationClean)) >= StrippedContainmentRatio) ||
				(strings.Contains(methodClean, variationClean) && ratio(len(variationClean), len(methodClean)) >= StrippedContainmentRatio) {
				matches = append(matches, variation)
			}
		}
	}

	return len(matches) > 0, matches
}

func ratio(part, whole int) float64 {
	if whole == 0 {
		return 0
	}

	return float64(part) / float64(whole)
}

func stripSeparators(name string) string {
	return strings.ReplaceAll(strings.ReplaceAll(name, "_", ""), "-", "")
}

// UncoveredTestMethods compares freshly generated test method names against
// the methods existing artifacts already define. Containment here is loose;
// these are test names on both sides.
func (r *coverageReconciler) UncoveredTestMethods(newMethods []string, existingMethods []string) []string {
	existing := make([]string, 0, len(existingMethods))
	for _, method := range existingMethods {
		existing = append(existing, strings.ToLower(method))
	}

	uncovered := make([]string, 0, len(newMethods))

	for _, method := range newMethods {
		lower := strings.ToLower(method)

		covered := false

		for _, known := range existing {
			if lower == known ||
				strings.Contains(known, lower) || strings.Contains(lower, known) ||
				strings.Contains(stripSeparators(known), stripSeparators(lower)) ||
				strings.Contains(stripSeparators(lower), stripSeparators(known)) {
				covered = true
				break
			}
		}

		if !covered {
			uncovered = append(uncovered, method)
		}
	}

	return uncovered
}
