package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "gooze.dev/pkg/testforge/internal/model"
)

const kotlinParserSource = `package com.acme.parse

import java.io.File
import com.acme.parse.Tokenizer

class Parser(val strict: Boolean) {

    constructor(raw: String) : this(true)

    fun parse(input: String): List<String> {
        return listOf(input)
    }

    private fun reset() {
    }

    fun isEmpty(): Boolean {
        return false
    }

    fun describe() {
    }

    override fun toString(): String {
        return "Parser"
    }
}
`

func TestKotlinAnalyzer_Analyze(t *testing.T) {
	analyzer := NewKotlinAnalyzer(AnalyzerOptions{})

	unit, err := analyzer.Analyze(m.Path("Parser.kt"), kotlinParserSource)
	require.NoError(t, err)

	assert.Equal(t, "com.acme.parse", unit.Package)
	assert.Equal(t, "Parser", unit.ClassName)
	assert.Equal(t, m.LanguageKotlin, unit.Language)

	t.Run("extracts functions once each", func(t *testing.T) {
		names := make([]string, 0, len(unit.Methods))
		for _, method := range unit.Methods {
			names = append(names, method.Name)
		}

		assert.ElementsMatch(t, []string{"parse", "reset", "isEmpty", "describe"}, names)
		assert.NotContains(t, names, "toString")
	})

	t.Run("defaults visibility to public", func(t *testing.T) {
		byName := make(map[string]m.MethodSignature)
		for _, method := range unit.Methods {
			byName[method.Name] = method
		}

		assert.Equal(t, m.VisibilityPublic, byName["parse"].Visibility)
		assert.Equal(t, m.VisibilityPrivate, byName["reset"].Visibility)
		assert.Equal(t, "Unit", byName["describe"].ReturnType)
		assert.True(t, byName["isEmpty"].BooleanGetter)
		assert.Equal(t, []string{"String"}, byName["parse"].ParamTypes)
	})

	t.Run("extracts primary and secondary constructors", func(t *testing.T) {
		require.Len(t, unit.Constructors, 2)
		assert.Equal(t, []string{"Boolean"}, unit.Constructors[0].ParamTypes)
		assert.Equal(t, []string{"String"}, unit.Constructors[1].ParamTypes)
	})

	t.Run("extracts properties", func(t *testing.T) {
		require.NotEmpty(t, unit.Fields)
		assert.Equal(t, "strict", unit.Fields[0].Name)
		assert.Equal(t, "Boolean", unit.Fields[0].Type)
		assert.True(t, unit.Fields[0].Final)
	})

	t.Run("detects io and collections", func(t *testing.T) {
		assert.True(t, unit.HasIO)
		assert.True(t, unit.HasCollections)
		assert.False(t, unit.ApplicationClass)
	})
}

func TestKotlinAnalyzer_ClassPatternPriority(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"data class", "data class Point(val x: Int, val y: Int)", "Point"},
		{"sealed class", "sealed class Shape {\n}", "Shape"},
		{"enum class", "enum class Color {\n RED\n}", "Color"},
		{"plain class", "class Widget {\n}", "Widget"},
		{"object", "object Registry {\n}", "Registry"},
		{"interface", "interface Greeter {\n}", "Greeter"},
	}

	analyzer := NewKotlinAnalyzer(AnalyzerOptions{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit, err := analyzer.Analyze(m.Path("Unit.kt"), tt.content)
			require.NoError(t, err)
			assert.Equal(t, tt.want, unit.ClassName)
		})
	}
}

func TestKotlinAnalyzer_ExcludePrivate(t *testing.T) {
	analyzer := NewKotlinAnalyzer(AnalyzerOptions{ExcludePrivate: true})

	unit, err := analyzer.Analyze(m.Path("Parser.kt"), kotlinParserSource)
	require.NoError(t, err)

	for _, method := range unit.Methods {
		assert.NotEqual(t, m.VisibilityPrivate, method.Visibility, "method %s should be excluded", method.Name)
	}
}

func TestKotlinAnalyzer_Errors(t *testing.T) {
	analyzer := NewKotlinAnalyzer(AnalyzerOptions{})

	tests := []struct {
		name    string
		content string
	}{
		{"empty source", "\n\n"},
		{"no declaration", "package com.acme\n\nval answer = 42\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := analyzer.Analyze(m.Path("Broken.kt"), tt.content)
			require.Error(t, err)

			var analysisErr *AnalysisError
			assert.True(t, errors.As(err, &analysisErr))
		})
	}
}

func TestKotlinAnalyzer_CoroutineDetection(t *testing.T) {
	source := `package com.acme

class Fetcher {
    suspend fun fetch(url: String): String {
        return url
    }
}
`

	analyzer := NewKotlinAnalyzer(AnalyzerOptions{})
	unit, err := analyzer.Analyze(m.Path("Fetcher.kt"), source)
	require.NoError(t, err)

	assert.True(t, unit.UsesConcurrency)
}
