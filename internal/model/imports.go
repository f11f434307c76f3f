package model

// ImportCategory groups detected imports for reporting and prioritization.
type ImportCategory string

// Available ImportCategory values. The set is closed; rules may only use
// one of these categories.
const (
	CategoryServlet     ImportCategory = "servlet"
	CategorySpring      ImportCategory = "spring"
	CategoryJackson     ImportCategory = "jackson"
	CategoryCollections ImportCategory = "collections"
	CategoryReflection  ImportCategory = "reflection"
	CategoryIO          ImportCategory = "io"
	CategoryConcurrent  ImportCategory = "concurrent"
	CategoryTime        ImportCategory = "time"
	CategoryRegex       ImportCategory = "regex"
	CategoryNetwork     ImportCategory = "network"
	CategoryDatabase    ImportCategory = "database"
	CategoryValidation  ImportCategory = "validation"
	CategoryLogging     ImportCategory = "logging"
	CategoryTesting     ImportCategory = "testing"
	CategoryException   ImportCategory = "exception"
	CategoryUtility     ImportCategory = "utility"
)

// KnownCategory reports whether c is one of the closed category values.
func KnownCategory(c ImportCategory) bool {
	switch c {
	case CategoryServlet, CategorySpring, CategoryJackson, CategoryCollections,
		CategoryReflection, CategoryIO, CategoryConcurrent, CategoryTime,
		CategoryRegex, CategoryNetwork, CategoryDatabase, CategoryValidation,
		CategoryLogging, CategoryTesting, CategoryException, CategoryUtility:
		return true
	}

	return false
}

// ImportRule maps code patterns to the imports a generated test will need.
// A rule fires when any one of its patterns matches; all of its imports are
// then required.
type ImportRule struct {
	Patterns    []string       `yaml:"patterns"`
	Imports     []string       `yaml:"imports"`
	Category    ImportCategory `yaml:"category"`
	Priority    int            `yaml:"priority"`
	Description string         `yaml:"description,omitempty"`
}

// ImportRequirement is one import the generated test must carry.
type ImportRequirement struct {
	Import   string
	Category ImportCategory
	Priority int
}
