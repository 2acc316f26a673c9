package scanner

import "fmt"

// Severity indicates how severe a finding is.
type Severity string

const (
	SeverityInfo          Severity = "info"
	SeverityWarning       Severity = "warning"
	SeverityError         Severity = "error"
	SeverityInternalError Severity = "internal-error"
)

// Rank orders severities; unknown values rank below info.
func (s Severity) Rank() int {
	switch s {
	case SeverityInfo:
		return 1
	case SeverityWarning:
		return 2
	case SeverityError:
		return 3
	case SeverityInternalError:
		return 4
	default:
		return 0
	}
}

// AtLeast reports whether s is as severe as min or more.
func (s Severity) AtLeast(min Severity) bool { return s.Rank() >= min.Rank() }

// ParseSeverity accepts the threshold names used on the command line.
func ParseSeverity(v string) (Severity, error) {
	switch s := Severity(v); s {
	case SeverityInfo, SeverityWarning, SeverityError, SeverityInternalError:
		return s, nil
	}
	return "", fmt.Errorf("unknown severity %q (want info, warning or error)", v)
}

// Position indicates where in source code a unit or finding is located.
// File is relative to the scan root and uses forward slashes. Line 0 marks
// a file-level location.
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string { return fmt.Sprintf("%s:%d", p.File, p.Line) }

// Finding is a single rule violation.
type Finding struct {
	RuleID   string
	Severity Severity
	Position Position
	Message  string
}

// UnitKind tags the payload carried by a Unit.
type UnitKind int

const (
	_ UnitKind = iota
	KindFunction
	KindErrorString
	KindImportGroup
	KindStructField
	KindLogCall
)

func (k UnitKind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindErrorString:
		return "error-string"
	case KindImportGroup:
		return "import-group"
	case KindStructField:
		return "struct-field"
	case KindLogCall:
		return "log-call"
	default:
		return fmt.Sprintf("unit-kind(%d)", int(k))
	}
}

// Unit is one location-tagged syntax fragment. Exactly one payload matching
// Kind is set. Units are never modified after the loader emits them.
type Unit struct {
	Kind     UnitKind
	Position Position

	Function    *FunctionUnit
	ErrorString *ErrorStringUnit
	ImportGroup *ImportGroupUnit
	Field       *FieldUnit
	LogCall     *LogCallUnit
}

// TypeCategory is the semantic class of a type as resolved by the language adapter.
type TypeCategory int

const (
	CategoryUnknown TypeCategory = iota
	CategoryBasic
	// CategoryReference covers slices, maps, channels, funcs and interfaces.
	CategoryReference
	CategoryStruct
	CategoryArray
)

func (c TypeCategory) String() string {
	switch c {
	case CategoryBasic:
		return "basic"
	case CategoryReference:
		return "reference"
	case CategoryStruct:
		return "struct"
	case CategoryArray:
		return "array"
	default:
		return "unknown"
	}
}

// Param describes a parameter, result, receiver or field type.
type Param struct {
	Name     string
	Type     string
	Pointer  bool
	Category TypeCategory
	// Fields is the field count when Category is CategoryStruct.
	Fields   int
	Position Position
}

type FunctionUnit struct {
	Name     string
	Receiver *Param
	Params   []Param
	Results  []Param
}

type ErrorStringUnit struct {
	Constructor string
	Text        string
}

type ImportSpec struct {
	Path string
	// Block counts blank-line separated runs of imports within the file.
	Block    int
	Position Position
}

type ImportGroupUnit struct {
	Imports []ImportSpec
}

type FieldUnit struct {
	Struct string
	Field  Param
}

// LogKey is a literal key passed to a structured logging call.
type LogKey struct {
	Name     string
	Position Position
}

type LogCallUnit struct {
	Callee string
	Method string
	// Interpolated is set when the message is built with format verbs or concatenation.
	Interpolated bool
	Keys         []LogKey
}
