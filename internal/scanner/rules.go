package scanner

// This file declares rule IDs the engine supports.

const (
	// Naming
	RuleNamingConsistencyID = "naming-consistency"

	// Errors
	RuleErrorStringsID = "error-strings"

	// Formatting
	RuleImportGroupingID = "import-grouping"

	// Performance idioms
	RulePointerValueID = "pointer-value"

	// Logging
	RuleLogKeysID = "log-keys"

	// Synthetic findings produced by the loader and the engine
	RuleIOErrorID       = "io-error"
	RuleParseErrorID    = "parse-error"
	RuleInternalErrorID = "internal-error"
)
