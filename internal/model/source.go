// Package model defines the data structures for test synthesis.
package model

// Path represents a file system path.
type Path string

// Language identifies the source language of a unit.
type Language string

const (
	// LanguageJava represents Java-like sources (.java).
	LanguageJava Language = "java"
	// LanguageKotlin represents Kotlin-like sources (.kt).
	LanguageKotlin Language = "kotlin"
)

// Visibility of a class member.
type Visibility string

const (
	// VisibilityPublic is the default for Kotlin members and explicit public Java members.
	VisibilityPublic Visibility = "public"
	// VisibilityProtected marks protected members.
	VisibilityProtected Visibility = "protected"
	// VisibilityPrivate marks private members.
	VisibilityPrivate Visibility = "private"
	// VisibilityPackage marks Java package-private members.
	VisibilityPackage Visibility = "package"
)

// MethodSignature describes a method declared by a source unit.
type MethodSignature struct {
	Name       string
	ReturnType string
	ParamTypes []string
	Visibility Visibility
	Static     bool

	// Accessor classification derived at analysis time.
	Getter        bool
	Setter        bool
	BooleanGetter bool
}

// ConstructorSignature describes a constructor declared by a source unit.
type ConstructorSignature struct {
	ParamTypes []string
	Visibility Visibility

	// ThrowsHint is set when exception imports suggest the constructor
	// may throw. It is synthetic and never parsed from a throws clause.
	ThrowsHint bool
}

// Field describes a field declared by a source unit.
type Field struct {
	Name       string
	Type       string
	Visibility Visibility
	Static     bool
	Final      bool
}

// SourceUnit is the analyzed structure of one source class.
type SourceUnit struct {
	Origin       Path
	Package      string
	ClassName    string
	Language     Language
	Content      string
	Methods      []MethodSignature
	Constructors []ConstructorSignature
	Fields       []Field
	Imports      []string

	// ApplicationClasses are simple names of same-package classes the unit
	// imports. Framework imports that collide with them are filtered out.
	ApplicationClasses []string

	// Derived capability flags used by strategy and import detection.
	HasCollections   bool
	HasIO            bool
	UsesServlet      bool
	UsesReflection   bool
	UsesConcurrency  bool
	ApplicationClass bool
}
