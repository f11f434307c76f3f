package model

// CoverageVerdict records whether an existing test artifact already covers a
// declared method.
type CoverageVerdict struct {
	Method      string
	Covered     bool
	MatchedTest string // test method name that satisfied coverage, if any
}

// TestArtifactVersion is one numbered test file for a source unit. The base
// file (FooTest) is ordinal 1; numbered files (FooTest2, FooTest3, ...) run
// contiguously from 2.
type TestArtifactVersion struct {
	Ordinal     int
	Path        Path
	ClassName   string
	TestMethods []string
}
