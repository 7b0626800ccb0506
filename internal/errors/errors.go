package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ConfigInvalid indicates .modtrack/config.json could not be read or failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// RulesFileInvalid indicates the YAML rules file could not be parsed
	RulesFileInvalid ErrorCode = "RULES_FILE_INVALID"
	// DeclarationInvalid indicates MODULES.toml could not be parsed
	DeclarationInvalid ErrorCode = "DECLARATION_INVALID"
	// HistoryCorrupt indicates the stored history could not be decoded
	HistoryCorrupt ErrorCode = "HISTORY_CORRUPT"
	// HistoryUnwritable indicates the history store rejected a save
	HistoryUnwritable ErrorCode = "HISTORY_UNWRITABLE"
	// SerializationFailed indicates the report could not be encoded
	SerializationFailed ErrorCode = "SERIALIZATION_FAILED"
	// OutputUnwritable indicates an output file or directory could not be written
	OutputUnwritable ErrorCode = "OUTPUT_UNWRITABLE"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// EditFile suggests editing a file by hand
	EditFile FixActionType = "edit-file"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Path        string        `json:"path,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
}

// TrackerError represents a modtrack error with code, message, and suggestions
type TrackerError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a new TrackerError, attaching the default fixes for the code
func New(code ErrorCode, message string, cause error) *TrackerError {
	return &TrackerError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Error implements the error interface
func (e *TrackerError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *TrackerError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *TrackerError) WithDetails(details interface{}) *TrackerError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first TrackerError in err's chain, or
// InternalError when there is none.
func CodeOf(err error) ErrorCode {
	var te *TrackerError
	if errors.As(err, &te) {
		return te.Code
	}
	return InternalError
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code ErrorCode) bool {
	var te *TrackerError
	return errors.As(err, &te) && te.Code == code
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	ConfigInvalid: {
		{
			Type:        EditFile,
			Path:        ".modtrack/config.json",
			Description: "Fix or remove the configuration file to fall back to defaults",
		},
	},
	RulesFileInvalid: {
		{
			Type:        EditFile,
			Path:        ".modtrack/rules.yaml",
			Description: "Fix the YAML rules file; its rules are skipped until it parses",
		},
	},
	DeclarationInvalid: {
		{
			Type:        EditFile,
			Path:        "MODULES.toml",
			Description: "Fix the module declarations; declared modules are skipped until it parses",
		},
	},
	HistoryCorrupt: {
		{
			Type:        RunCommand,
			Command:     "modtrack history",
			Safe:        true,
			Description: "Inspect stored snapshots; a corrupt store is treated as empty and rewritten on the next change",
		},
	},
	OutputUnwritable: {
		{
			Type:        RunCommand,
			Command:     "modtrack analyze --output <dir>",
			Safe:        true,
			Description: "Write the report to a directory you can write to",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
