package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "gooze.dev/pkg/testforge/internal/model"
)

func TestAnalyzerFor(t *testing.T) {
	analyzers := []StructuralAnalyzer{
		NewJavaAnalyzer(AnalyzerOptions{}),
		NewKotlinAnalyzer(AnalyzerOptions{}),
	}

	tests := []struct {
		name string
		path string
		want m.Language
		nil_ bool
	}{
		{"java extension", "src/main/java/Calculator.java", m.LanguageJava, false},
		{"kotlin extension", "src/Parser.kt", m.LanguageKotlin, false},
		{"kotlin script extension", "build.gradle.kts", m.LanguageKotlin, false},
		{"upper case extension", "Calculator.JAVA", m.LanguageJava, false},
		{"unsupported extension", "main.go", "", true},
		{"no extension", "Makefile", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzerFor(m.Path(tt.path), analyzers)
			if tt.nil_ {
				assert.Nil(t, got)
				return
			}

			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Language())
		})
	}
}

func TestAnalyzerFor_MissingAnalyzer(t *testing.T) {
	onlyJava := []StructuralAnalyzer{NewJavaAnalyzer(AnalyzerOptions{})}

	assert.Nil(t, AnalyzerFor(m.Path("Parser.kt"), onlyJava))
	assert.NotNil(t, AnalyzerFor(m.Path("Calculator.java"), onlyJava))
}

func TestSplitParamTypes(t *testing.T) {
	tests := []struct {
		name   string
		params string
		kotlin bool
		want   []string
	}{
		{"empty", "", false, nil},
		{"single java param", "int a", false, []string{"int"}},
		{"two java params", "int a, String name", false, []string{"int", "String"}},
		{"java generic keeps inner comma", "Map<String, Integer> index, int count", false, []string{"Map<String, Integer>", "int"}},
		{"java final modifier", "final String name", false, []string{"final String"}},
		{"single kotlin param", "name: String", true, []string{"String"}},
		{"two kotlin params", "name: String, count: Int", true, []string{"String", "Int"}},
		{"kotlin generic keeps inner comma", "index: Map<String, Int>, strict: Boolean", true, []string{"Map<String, Int>", "Boolean"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitParamTypes(tt.params, tt.kotlin))
		})
	}
}
