package core

// error_messages.go maps technical errors to user-facing messages with
// support codes.
//
// # Schema Errors (SCH001-SCH099)
//
//	SCH001 - No time column: no column parses as periods above threshold
//	         Patterns: "no time column found"
//	SCH002 - No measures: no numeric column to analyse
//	         Patterns: "no measure columns found"
//	SCH003 - Invalid thresholds: detection settings out of range
//	         Patterns: "invalid thresholds"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large           Patterns: "file too large"
//	FILE002 - Invalid CSV              Patterns: "invalid csv"
//	FILE003 - Unsupported format       Patterns: "unsupported file format"
//	FILE004 - No file                  Patterns: "no file provided"
//	FILE005 - Empty file               Patterns: "empty file", "no data rows"
//	FILE006 - Bad header               Patterns: "duplicate column", "empty header", "has no columns"
//	FILE007 - Unreadable workbook      Patterns: "open workbook", "read sheet"
//	FILE008 - Bad upload form          Patterns: "invalid upload form"
//
// # Analysis Errors (ANL001-ANL099)
//
//	ANL001 - System busy               Patterns: "too many concurrent analyses"
//	ANL002 - Cancelled                 Patterns: "context canceled"
//	ANL003 - Timed out                 Patterns: "context deadline exceeded"
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - Run not found             Patterns: "run not found", "invalid run id"
//	RUN002 - Storage unavailable       Patterns: "connection refused", "connection reset", "save run",
//	                                   "ping run store"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the logs for the technical error.
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.

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

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgNoTime = UserMessage{
		Message: "No date or period column could be identified",
		Action:  "Include a column of dates or periods (for example 2024-01) covering at least two periods",
		Code:    "SCH001",
	}
	msgNoMeasures = UserMessage{
		Message: "No numeric columns were found to analyze",
		Action:  "Include at least one column of numbers, such as revenue or units",
		Code:    "SCH002",
	}
	msgEmptyFile = UserMessage{
		Message: "The uploaded file has no data",
		Action:  "Upload a file with a header row and at least one data row",
		Code:    "FILE005",
	}
	msgBadHeader = UserMessage{
		Message: "The header row has duplicate or empty column names",
		Action:  "Give every column a unique, non-empty name",
		Code:    "FILE006",
	}
	msgWorkbook = UserMessage{
		Message: "The Excel workbook could not be read",
		Action:  "Check the sheet name, or save the workbook again as .xlsx",
		Code:    "FILE007",
	}
	msgNotFound = UserMessage{
		Message: "Analysis run not found",
		Action:  "Check the run ID or start a new analysis",
		Code:    "RUN001",
	}
	msgStorage = UserMessage{
		Message: "Run storage is unavailable",
		Action:  "Please try again in a few moments",
		Code:    "RUN002",
	}
)

var errorPatterns = []errorPattern{
	// Schema
	{pattern: "no time column found", msg: msgNoTime},
	{pattern: "no measure columns found", msg: msgNoMeasures},
	{
		pattern: "invalid thresholds",
		msg: UserMessage{
			Message: "Detection settings are invalid",
			Action:  "Check the DETECT_* settings or the thresholds file",
			Code:    "SCH003",
		},
	},

	// File
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file or remove unused columns",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure the file is comma-separated with consistent quoting",
			Code:    "FILE002",
		},
	},
	{
		pattern: "unsupported file format",
		msg: UserMessage{
			Message: "File type is not supported",
			Action:  "Upload a .csv or .xlsx file",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a file to analyze",
			Code:    "FILE004",
		},
	},
	{pattern: "empty file", msg: msgEmptyFile},
	{pattern: "no data rows", msg: msgEmptyFile},
	{pattern: "duplicate column", msg: msgBadHeader},
	{pattern: "empty header", msg: msgBadHeader},
	{pattern: "has no columns", msg: msgBadHeader},
	{pattern: "open workbook", msg: msgWorkbook},
	{pattern: "read sheet", msg: msgWorkbook},
	{
		pattern: "invalid upload form",
		msg: UserMessage{
			Message: "The upload could not be read",
			Action:  "Send the file as multipart form data in a field named \"file\"",
			Code:    "FILE008",
		},
	},

	// Analysis
	{
		pattern: "too many concurrent analyses",
		msg: UserMessage{
			Message: "System is busy running other analyses",
			Action:  "Please wait a moment and try again",
			Code:    "ANL001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Analysis was cancelled",
			Action:  "Please try again",
			Code:    "ANL002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Analysis timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "ANL003",
		},
	},

	// Runs
	{pattern: "run not found", msg: msgNotFound},
	{pattern: "invalid run id", msg: msgNotFound},
	{pattern: "connection refused", msg: msgStorage},
	{pattern: "connection reset", msg: msgStorage},
	{pattern: "save run", msg: msgStorage},
	{pattern: "ping run store", msg: msgStorage},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. The first
// matching pattern wins; ERR000 is returned when none matches.
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

// FormatUserError renders "Message (Code: XXX). Action".
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
