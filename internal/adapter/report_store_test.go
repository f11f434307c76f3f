package adapter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "gooze.dev/pkg/testforge/internal/model"
)

func TestReportStore_SaveAndLoad(t *testing.T) {
	store := NewReportStore()
	dir := t.TempDir()

	report := m.NewSynthesisReport()
	report.Outcomes = []m.UnitOutcome{
		{
			Source:          m.Path("proj/Calculator.java"),
			ClassName:       "Calculator",
			Status:          m.UnitGenerated,
			Artifact:        m.Path("out/CalculatorTest.java"),
			MethodsTargeted: 2,
			Iterations:      1,
			FinalStatus:     m.ValidationPass,
		},
	}

	path, err := store.SaveReport(m.Path(dir), report)
	require.NoError(t, err)
	assert.Contains(t, string(path), "synthesis-"+report.SessionID)

	loaded, err := store.LoadReport(path)
	require.NoError(t, err)

	assert.Equal(t, report.SessionID, loaded.SessionID)
	require.Len(t, loaded.Outcomes, 1)
	assert.Equal(t, report.Outcomes[0].ClassName, loaded.Outcomes[0].ClassName)
	assert.Equal(t, report.Outcomes[0].Status, loaded.Outcomes[0].Status)
	assert.Equal(t, report.Outcomes[0].FinalStatus, loaded.Outcomes[0].FinalStatus)
}

func TestReportStore_SaveCreatesDirectory(t *testing.T) {
	store := NewReportStore()
	dir := filepath.Join(t.TempDir(), "nested", "reports")

	_, err := store.SaveReport(m.Path(dir), m.NewSynthesisReport())
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestReportStore_LoadReport_Errors(t *testing.T) {
	store := NewReportStore()

	t.Run("missing file", func(t *testing.T) {
		_, err := store.LoadReport(m.Path(filepath.Join(t.TempDir(), "nope.yaml")))
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("{not yaml: ["), 0o644))

		_, err := store.LoadReport(m.Path(path))
		require.Error(t, err)
	})
}

func TestReportStore_ListReports(t *testing.T) {
	store := NewReportStore()
	dir := t.TempDir()

	t.Run("empty directory", func(t *testing.T) {
		paths, err := store.ListReports(m.Path(dir))
		require.NoError(t, err)
		assert.Empty(t, paths)
	})

	t.Run("orders reports oldest to newest", func(t *testing.T) {
		older := filepath.Join(dir, "synthesis-aaa.yaml")
		newer := filepath.Join(dir, "synthesis-bbb.yaml")

		require.NoError(t, os.WriteFile(older, []byte("session_id: aaa\n"), 0o644))
		require.NoError(t, os.WriteFile(newer, []byte("session_id: bbb\n"), 0o644))

		past := time.Now().Add(-time.Hour)
		require.NoError(t, os.Chtimes(older, past, past))

		// Non-report files are ignored.
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

		paths, err := store.ListReports(m.Path(dir))
		require.NoError(t, err)

		require.Len(t, paths, 2)
		assert.Equal(t, m.Path(older), paths[0])
		assert.Equal(t, m.Path(newer), paths[1])
	})

	t.Run("missing directory errors", func(t *testing.T) {
		_, err := store.ListReports(m.Path(filepath.Join(dir, "absent")))
		require.Error(t, err)
	})
}

func TestLoadImportRules(t *testing.T) {
	t.Run("valid rules file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		content := `- category: testing
  priority: 11
  patterns:
    - '@AcmeWidget'
  imports:
    - com.acme.widget.AcmeWidget
  description: Acme widget annotations
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		rules, err := LoadImportRules(m.Path(path))
		require.NoError(t, err)

		require.Len(t, rules, 1)
		assert.Equal(t, m.CategoryTesting, rules[0].Category)
		assert.Equal(t, 11, rules[0].Priority)
		assert.Equal(t, []string{"com.acme.widget.AcmeWidget"}, rules[0].Imports)
	})

	t.Run("unknown category rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		content := `- category: nonsense
  priority: 1
  patterns: ['x']
  imports: ['a.B']
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		_, err := LoadImportRules(m.Path(path))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown category")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadImportRules(m.Path(filepath.Join(t.TempDir(), "nope.yaml")))
		require.Error(t, err)
	})
}
