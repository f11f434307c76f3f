package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "gooze.dev/pkg/testforge/internal/model"
)

func sigs(names ...string) []m.MethodSignature {
	methods := make([]m.MethodSignature, 0, len(names))
	for _, name := range names {
		methods = append(methods, m.MethodSignature{Name: name})
	}

	return methods
}

func TestCoverageReconciler_ExtractTestMethods(t *testing.T) {
	reconciler := NewCoverageReconciler()

	content := `import org.junit.jupiter.api.Test;

public class CalculatorTest {

    @BeforeEach
    public void setUp() {
    }

    @Test
    void testAddsNumbers() {
    }

    @Test
    @DisplayName("subtracts")
    public void subtractionTest() {
    }

    @ParameterizedTest
    @ValueSource(ints = {1, 2, 3})
    void testHandlesManyInputs(int value) {
    }

    public void testLegacyPath() {
    }

    @Test
    void buildOrder() {
    }

    private void helperRoutine() {
    }
}
`

	methods := reconciler.ExtractTestMethods(content)

	assert.Contains(t, methods, "testAddsNumbers")
	assert.Contains(t, methods, "subtractionTest")
	assert.Contains(t, methods, "testHandlesManyInputs")
	assert.Contains(t, methods, "testLegacyPath")
	assert.NotContains(t, methods, "buildOrder")
	assert.NotContains(t, methods, "helperRoutine")
	assert.NotContains(t, methods, "setUp")

	t.Run("names are unique", func(t *testing.T) {
		seen := make(map[string]int)
		for _, name := range methods {
			seen[name]++
		}

		for name, count := range seen {
			assert.Equal(t, 1, count, "method %s extracted twice", name)
		}
	})
}

func TestCoverageReconciler_ExtractTestMethods_SkipsLifecycle(t *testing.T) {
	reconciler := NewCoverageReconciler()

	content := `public class T {
    public void setUp() {}
    public void tearDown() {}
    public void beforeEach() {}
    public void afterEach() {}
    public void testReal() {}
}
`

	methods := reconciler.ExtractTestMethods(content)
	assert.Equal(t, []string{"testReal"}, methods)
}

func TestCoverageReconciler_HelpersNeverMarkCoverage(t *testing.T) {
	reconciler := NewCoverageReconciler()

	content := `public class OrderServiceTest {

    @Test
    public void testCancelOrder() {
    }

    private void createOrder() {
    }
}
`

	methods := reconciler.ExtractTestMethods(content)
	assert.Equal(t, []string{"testCancelOrder"}, methods)

	uncovered := reconciler.Uncovered(sigs("createOrder", "cancelOrder"), methods)

	require.Len(t, uncovered, 1)
	assert.Equal(t, "createOrder", uncovered[0].Name)
}

func TestCoverageReconciler_Reconcile(t *testing.T) {
	reconciler := NewCoverageReconciler()

	tests := []struct {
		name        string
		method      string
		testMethods []string
		covered     bool
	}{
		{"exact after test prefix strip", "add", []string{"testAdd"}, true},
		{"exact after test suffix strip", "add", []string{"addTest"}, true},
		{"case insensitive exact", "Add", []string{"testADD"}, true},
		{"containment with high ratio", "calculate", []string{"testCalculateSum"}, true},
		{"short name requires exact", "sum", []string{"testSumOfAllValues"}, false},
		{"short name exact still works", "sum", []string{"testSum"}, true},
		{"below minimum length never matches", "id", []string{"testIdentifier"}, false},
		{"containment below ratio rejected", "save", []string{"testSaveAndReloadEverything"}, false},
		{"separator stripped containment", "parseInput", []string{"test_parse_input"}, true},
		{"no tests at all", "add", nil, false},
		{"unrelated names", "multiply", []string{"testDivide"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdicts := reconciler.Reconcile(sigs(tt.method), tt.testMethods)

			require.Len(t, verdicts, 1)
			assert.Equal(t, tt.method, verdicts[0].Method)
			assert.Equal(t, tt.covered, verdicts[0].Covered)

			if tt.covered {
				assert.NotEmpty(t, verdicts[0].MatchedTest)
			} else {
				assert.Empty(t, verdicts[0].MatchedTest)
			}
		})
	}
}

func TestCoverageReconciler_Reconcile_FirstMatchWins(t *testing.T) {
	reconciler := NewCoverageReconciler()

	verdicts := reconciler.Reconcile(sigs("calculate"), []string{"testCalculate", "testCalculateAgain"})

	require.Len(t, verdicts, 1)
	assert.True(t, verdicts[0].Covered)
	assert.Equal(t, "testcalculate", verdicts[0].MatchedTest)
}

func TestCoverageReconciler_Uncovered(t *testing.T) {
	reconciler := NewCoverageReconciler()

	t.Run("empty test set leaves everything uncovered", func(t *testing.T) {
		methods := sigs("add", "subtract")
		assert.Equal(t, methods, reconciler.Uncovered(methods, nil))
	})

	t.Run("filters covered preserving declaration order", func(t *testing.T) {
		methods := sigs("add", "subtract", "multiply")
		uncovered := reconciler.Uncovered(methods, []string{"testAdd", "testMultiply"})

		require.Len(t, uncovered, 1)
		assert.Equal(t, "subtract", uncovered[0].Name)
	})
}

func TestCoverageReconciler_UncoveredTestMethods(t *testing.T) {
	reconciler := NewCoverageReconciler()

	t.Run("containment either direction counts as covered", func(t *testing.T) {
		uncovered := reconciler.UncoveredTestMethods(
			[]string{"testAdd", "testMultiply"},
			[]string{"testAddAndSubtract"},
		)

		assert.Equal(t, []string{"testMultiply"}, uncovered)
	})

	t.Run("separator stripped comparison", func(t *testing.T) {
		uncovered := reconciler.UncoveredTestMethods(
			[]string{"test_parse_input"},
			[]string{"testParseInput"},
		)

		assert.Empty(t, uncovered)
	})

	t.Run("no existing methods keeps all new ones", func(t *testing.T) {
		newMethods := []string{"testAdd", "testSubtract"}
		assert.Equal(t, newMethods, reconciler.UncoveredTestMethods(newMethods, nil))
	})
}
