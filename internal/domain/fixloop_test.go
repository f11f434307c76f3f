package domain

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "gooze.dev/pkg/testforge/internal/model"
)

// fakeGenerator returns scripted replies in order.
type fakeGenerator struct {
	replies []string
	err     error
	calls   int
	prompts []string
}

func (g *fakeGenerator) Generate(_ context.Context, _ string, userPrompt string) (string, error) {
	g.prompts = append(g.prompts, userPrompt)

	if g.err != nil {
		return "", g.err
	}

	reply := "// unchanged"
	if g.calls < len(g.replies) {
		reply = g.replies[g.calls]
	}

	g.calls++

	return reply, nil
}

// fakeValidator returns scripted reports in order.
type fakeValidator struct {
	reports []m.ValidationReport
	err     error
	calls   int
}

func (v *fakeValidator) Validate(_ context.Context, _ string, _ string) (m.ValidationReport, error) {
	if v.err != nil {
		return m.ValidationReport{}, v.err
	}

	report := m.ValidationReport{Status: m.ValidationPass}
	if v.calls < len(v.reports) {
		report = v.reports[v.calls]
	}

	v.calls++

	return report, nil
}

func TestScoreWeights_Score(t *testing.T) {
	weights := DefaultScoreWeights()

	tests := []struct {
		name   string
		report m.ValidationReport
		want   int
	}{
		{"clean report", m.ValidationReport{}, 0},
		{"one critical", m.ValidationReport{CriticalIssues: []string{"a"}}, 10},
		{"one compilation", m.ValidationReport{CompilationErrors: []string{"a"}}, 8},
		{"one missing import", m.ValidationReport{MissingImports: []string{"a"}}, 5},
		{"one unused import", m.ValidationReport{UnusedImports: []string{"a"}}, 1},
		{
			"mixed",
			m.ValidationReport{
				CriticalIssues:    []string{"a", "b"},
				CompilationErrors: []string{"c"},
				MissingImports:    []string{"d"},
				UnusedImports:     []string{"e", "f", "g"},
			},
			2*10 + 8 + 5 + 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, weights.Score(tt.report))
		})
	}
}

func TestClampIterations(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want int
	}{
		{"zero clamps to minimum", 0, MinIterations},
		{"negative clamps to minimum", -5, MinIterations},
		{"in range unchanged", 5, 5},
		{"min boundary", 1, 1},
		{"max boundary", 10, 10},
		{"above cap clamped", 99, MaxIterationsCap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampIterations(tt.n))
		})
	}
}

func TestBestIteration(t *testing.T) {
	t.Run("empty history yields zero record", func(t *testing.T) {
		assert.Equal(t, m.IterationRecord{}, BestIteration(nil))
	})

	t.Run("lowest score wins", func(t *testing.T) {
		records := []m.IterationRecord{
			{Iteration: 0, Score: 20},
			{Iteration: 1, Score: 5},
			{Iteration: 2, Score: 12},
		}

		assert.Equal(t, 1, BestIteration(records).Iteration)
	})

	t.Run("earliest iteration wins ties", func(t *testing.T) {
		records := []m.IterationRecord{
			{Iteration: 0, Score: 5},
			{Iteration: 1, Score: 5},
			{Iteration: 2, Score: 5},
		}

		assert.Equal(t, 0, BestIteration(records).Iteration)
	})
}

func TestFixLoop_Repair(t *testing.T) {
	ctx := context.Background()
	unit := m.SourceUnit{ClassName: "Calculator"}

	failing := m.ValidationReport{
		Status:            m.ValidationFail,
		CriticalIssues:    []string{"assertion on wrong type"},
		CompilationErrors: []string{"cannot find symbol"},
	}

	t.Run("clean initial report never calls the generator", func(t *testing.T) {
		generator := &fakeGenerator{}
		loop := NewValidationFixLoop(generator, &fakeValidator{}, 3, DefaultScoreWeights())

		result := loop.Repair(ctx, "code", unit, m.ValidationReport{Status: m.ValidationPass})

		assert.Equal(t, 0, generator.calls)
		assert.Equal(t, 0, result.Iterations)
		assert.Equal(t, "code", result.Code)
		require.Len(t, result.History, 1)
	})

	t.Run("stops when validation passes", func(t *testing.T) {
		generator := &fakeGenerator{replies: []string{"fixed code"}}
		validator := &fakeValidator{reports: []m.ValidationReport{{Status: m.ValidationPass}}}
		loop := NewValidationFixLoop(generator, validator, 5, DefaultScoreWeights())

		result := loop.Repair(ctx, "broken code", unit, failing)

		assert.Equal(t, 1, result.Iterations)
		assert.Equal(t, "fixed code", result.Code)
		assert.Equal(t, m.ValidationPass, result.Report.Status)
		assert.Len(t, result.History, 2)
	})

	t.Run("keeps best snapshot when later iterations regress", func(t *testing.T) {
		generator := &fakeGenerator{replies: []string{"better", "worse"}}
		validator := &fakeValidator{reports: []m.ValidationReport{
			{Status: m.ValidationFail, CompilationErrors: []string{"still broken"}},
			{Status: m.ValidationFail, CriticalIssues: []string{"x", "y"}},
		}}

		loop := NewValidationFixLoop(generator, validator, 2, DefaultScoreWeights())

		result := loop.Repair(ctx, "broken", unit, failing)

		assert.Equal(t, "better", result.Code)
		assert.Len(t, result.History, 3)
	})

	t.Run("generation error returns best so far", func(t *testing.T) {
		generator := &fakeGenerator{err: fmt.Errorf("backend down")}
		loop := NewValidationFixLoop(generator, &fakeValidator{}, 3, DefaultScoreWeights())

		result := loop.Repair(ctx, "broken", unit, failing)

		assert.Equal(t, "broken", result.Code)
		assert.Equal(t, 0, result.Iterations)
	})

	t.Run("validation error returns best so far", func(t *testing.T) {
		generator := &fakeGenerator{replies: []string{"candidate"}}
		validator := &fakeValidator{err: fmt.Errorf("backend down")}
		loop := NewValidationFixLoop(generator, validator, 3, DefaultScoreWeights())

		result := loop.Repair(ctx, "broken", unit, failing)

		// The unvalidated candidate never enters the history.
		assert.Equal(t, "broken", result.Code)
		require.Len(t, result.History, 1)
	})

	t.Run("iteration budget bounds the loop", func(t *testing.T) {
		generator := &fakeGenerator{}
		validator := &fakeValidator{reports: []m.ValidationReport{failing, failing, failing, failing}}
		loop := NewValidationFixLoop(generator, validator, 2, DefaultScoreWeights())

		result := loop.Repair(ctx, "broken", unit, failing)

		assert.Equal(t, 2, result.Iterations)
		assert.Equal(t, 2, generator.calls)
	})

	t.Run("fenced replies are stripped", func(t *testing.T) {
		generator := &fakeGenerator{replies: []string{"```java\nclass T {}\n```"}}
		validator := &fakeValidator{reports: []m.ValidationReport{{Status: m.ValidationPass}}}
		loop := NewValidationFixLoop(generator, validator, 3, DefaultScoreWeights())

		result := loop.Repair(ctx, "broken", unit, failing)

		assert.Equal(t, "class T {}", result.Code)
	})
}

func TestCollectIssues(t *testing.T) {
	report := m.ValidationReport{
		CriticalIssues:    []string{"bad assertion"},
		MissingImports:    []string{"java.util.List"},
		CompilationErrors: []string{"cannot find symbol"},
		UnusedImports:     []string{"java.io.File"},
	}

	issues := collectIssues(report)

	require.Len(t, issues, 4)
	assert.Equal(t, "[CRITICAL] bad assertion", issues[0])
	assert.Contains(t, issues[1], "[MISSING_IMPORT]")
	assert.Contains(t, issues[1], "import java.util.List;")
	assert.Equal(t, "[COMPILATION] cannot find symbol", issues[2])
	assert.Contains(t, issues[3], "[UNUSED_IMPORT]")
}

func TestBuildRepairPrompt_CapsIssues(t *testing.T) {
	issues := make([]string, 0, 15)
	for i := 0; i < 15; i++ {
		issues = append(issues, fmt.Sprintf("[CRITICAL] issue %d", i))
	}

	prompt := buildRepairPrompt(issues, "code")

	assert.Contains(t, prompt, "issue 9")
	assert.NotContains(t, prompt, "issue 10")
	assert.Contains(t, prompt, "Current code:")
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"no fence", "class T {}", "class T {}"},
		{"java fence", "```java\nclass T {}\n```", "class T {}"},
		{"kotlin fence", "```kotlin\nclass T\n```", "class T"},
		{"bare fence", "```\nclass T {}\n```", "class T {}"},
		{"surrounding whitespace", "  \n```java\nclass T {}\n```\n  ", "class T {}"},
		{"empty reply", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFences(tt.reply))
		})
	}
}
