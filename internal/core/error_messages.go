// Package core provides the session layer of the table viewer.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. Codes are grouped by category:
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds maximum size limit
//	          Action: Split the file into smaller chunks
//	          Patterns: "file too large", "request body too large"
//
//	FILE002 - Unsupported type: Only CSV, TSV, text and XLSX files can be loaded
//	          Action: Save the data as CSV or XLSX and try again
//	          Patterns: "unsupported file type"
//
//	FILE004 - No file: No file was selected
//	          Action: Drop a file on the page or choose one to load
//	          Patterns: "no file provided"
//
//	FILE005 - Empty input: There is no data to load
//	          Action: Paste or load data with at least a header row
//	          Patterns: "empty input"
//
//	FILE006 - Workbook: The workbook could not be read
//	          Action: Check the file opens in a spreadsheet program, or save it as CSV
//	          Patterns: "workbook could not be read"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Column out of range: The column does not exist
//	         Action: Pick a column from the table header
//	         Patterns: "column out of range", "invalid column"
//
//	VAL002 - Unknown aggregate: Only count and sum are available
//	         Action: Choose count or sum
//	         Patterns: "unknown aggregate"
//
// # Session Errors (SES001-SES099)
//
//	SES001 - No data: Nothing has been loaded yet
//	         Action: Load a file or paste data first
//	         Patterns: "no data loaded"
//
// # Import Source Errors (SRC001-SRC099)
//
//	SRC001 - Import disabled: No database is configured
//	         Action: Set DATABASE_URL to enable table import
//	         Patterns: "import source disabled"
//
//	SRC002 - Table not found: The database table does not exist
//	         Action: Check the table name and schema
//	         Patterns: "does not exist", "doesn't exist", "no such table"
//
//	SRC003 - Invalid table name: The table name is not usable
//	         Action: Enter a table name such as public.orders
//	         Patterns: "invalid table name"
//
// # Database Errors (DB004-DB006)
//
//	DB004 - Connection refused: Unable to connect to database
//	DB005 - Connection reset: Database connection was interrupted
//	DB006 - Timeout: Operation timed out
//
// # Load Errors (UPL001-UPL099)
//
//	UPL002 - System busy: Too many loads in progress
//	UPL004 - Request cancelled: Request was cancelled
//	UPL005 - Request timeout: Request timed out
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Rate limited: Too many requests
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Check the application logs for
// the original technical error.
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns are defined
// before general ones.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgFileTooLarge = UserMessage{
		Message: "File exceeds maximum size limit",
		Action:  "Split the file into smaller chunks",
		Code:    "FILE001",
	}
	msgNoTable = UserMessage{
		Message: "The database table does not exist",
		Action:  "Check the table name and schema",
		Code:    "SRC002",
	}
	msgColumn = UserMessage{
		Message: "The column does not exist",
		Action:  "Pick a column from the table header",
		Code:    "VAL001",
	}
)

// errorPatterns maps technical error patterns (case-insensitive) to user
// messages. The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// File Errors
	// =========================================================================
	{pattern: "file too large", msg: msgFileTooLarge},
	{pattern: "request body too large", msg: msgFileTooLarge},
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "Only CSV, TSV, text and XLSX files can be loaded",
			Action:  "Save the data as CSV or XLSX and try again",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Drop a file on the page or choose one to load",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty input",
		msg: UserMessage{
			Message: "There is no data to load",
			Action:  "Paste or load data with at least a header row",
			Code:    "FILE005",
		},
	},
	{
		pattern: "workbook could not be read",
		msg: UserMessage{
			Message: "The workbook could not be read",
			Action:  "Check the file opens in a spreadsheet program, or save it as CSV",
			Code:    "FILE006",
		},
	},

	// =========================================================================
	// Validation Errors
	// =========================================================================
	{pattern: "column out of range", msg: msgColumn},
	{pattern: "invalid column", msg: msgColumn},
	{
		pattern: "unknown aggregate",
		msg: UserMessage{
			Message: "Only count and sum are available",
			Action:  "Choose count or sum",
			Code:    "VAL002",
		},
	},

	// =========================================================================
	// Session Errors
	// =========================================================================
	{
		pattern: "no data loaded",
		msg: UserMessage{
			Message: "Nothing has been loaded yet",
			Action:  "Load a file or paste data first",
			Code:    "SES001",
		},
	},

	// =========================================================================
	// Import Source Errors
	// =========================================================================
	{
		pattern: "import source disabled",
		msg: UserMessage{
			Message: "No database is configured",
			Action:  "Set DATABASE_URL to enable table import",
			Code:    "SRC001",
		},
	},
	{
		pattern: "invalid table name",
		msg: UserMessage{
			Message: "The table name is not usable",
			Action:  "Enter a table name such as public.orders",
			Code:    "SRC003",
		},
	},
	{pattern: "does not exist", msg: msgNoTable},
	{pattern: "doesn't exist", msg: msgNoTable},
	{pattern: "no such table", msg: msgNoTable},

	// =========================================================================
	// Database Connection Errors
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller import or try again later",
			Code:    "DB006",
		},
	},

	// =========================================================================
	// Load Errors
	// =========================================================================
	{
		pattern: "too many concurrent",
		msg: UserMessage{
			Message: "Too many loads in progress",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL005",
		},
	},

	// =========================================================================
	// Rate Limiting
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first matching pattern, or the ERR000 fallback.
//
// Example:
//
//	msg := MapError(ErrUnsupportedType)
//	// msg.Code == "FILE002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
