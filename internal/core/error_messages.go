package core

// error_messages.go maps technical errors to user-facing messages with a
// support code.
//
//	REQ001  missing file or mapping          "missing file or mapping"
//	REQ002  malformed JSON body              "invalid json body"
//	REQ003  malformed multipart form         "invalid form"
//	MAP001  mapping is not a JSON object     "invalid mapping"
//	MAP002  phones is not a JSON array       "invalid phones"
//	FILE001 upload over the size limit       "file too large", "request body too large"
//	FILE003 undecodable text                 "encoding error"
//	FILE004 no file in the form              "no file provided"
//	FILE005 no header row                    "empty file"
//	FILE002 anything else from the loader    "unreadable spreadsheet"
//	PDF001  empty contact list               "no contact data provided"
//	PDF002  renderer failure                 "render pdf"
//	CONV001 conversion slots exhausted       "too many concurrent conversions"
//	CONV002 request deadline                 "context deadline exceeded"
//	CONV003 client went away                 "context canceled"
//	RATE001 per-client throttling            "rate limit"
//	ERR000  fallback
//
// Patterns are matched case-insensitively with strings.Contains; the first
// match wins, so specific patterns precede general ones.

import (
	"fmt"
	"strings"
)

// UserMessage is what a client is shown for an error.
type UserMessage struct {
	Message string
	Action  string
	Code    string
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Request input
	{"missing file or mapping", UserMessage{
		Message: "Missing file or mapping",
		Action:  "Upload a spreadsheet and map at least one field",
		Code:    "REQ001",
	}},
	{"invalid json body", UserMessage{
		Message: "Request body is not valid JSON",
		Action:  `Send {"contacts": [...]} as application/json`,
		Code:    "REQ002",
	}},
	{"invalid form", UserMessage{
		Message: "Request form could not be read",
		Action:  "Send the upload as multipart/form-data",
		Code:    "REQ003",
	}},
	{"invalid mapping", UserMessage{
		Message: "Field mapping is not valid",
		Action:  "Send mapping as a JSON object of field to column name",
		Code:    "MAP001",
	}},
	{"invalid phones", UserMessage{
		Message: "Phone list is not valid",
		Action:  `Send phones as a JSON array of {"column", "label"} objects`,
		Code:    "MAP002",
	}},

	// Files. Loader causes are matched before the generic wrapper.
	{"file too large", UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Split the spreadsheet into smaller files",
		Code:    "FILE001",
	}},
	{"request body too large", UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Split the spreadsheet into smaller files",
		Code:    "FILE001",
	}},
	{"encoding error", UserMessage{
		Message: "File contains characters that could not be decoded",
		Action:  "Save the file as UTF-8",
		Code:    "FILE003",
	}},
	{"no file provided", UserMessage{
		Message: "No file provided",
		Action:  "Select an .xlsx or .csv file to upload",
		Code:    "FILE004",
	}},
	{"empty file", UserMessage{
		Message: "The uploaded file has no header row",
		Action:  "Put column names in the first row",
		Code:    "FILE005",
	}},
	{"unreadable spreadsheet", UserMessage{
		Message: "The file could not be read as a spreadsheet",
		Action:  "Upload an .xlsx workbook or a CSV file",
		Code:    "FILE002",
	}},

	// Report
	{"no contact data provided", UserMessage{
		Message: "No contact data provided",
		Action:  "Send at least one contact",
		Code:    "PDF001",
	}},
	{"render pdf", UserMessage{
		Message: "The PDF report could not be generated",
		Action:  "Please try again or contact support",
		Code:    "PDF002",
	}},

	// Conversion lifecycle
	{"too many concurrent conversions", UserMessage{
		Message: "The service is busy with other conversions",
		Action:  "Please wait a moment and try again",
		Code:    "CONV001",
	}},
	{"context deadline exceeded", UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file",
		Code:    "CONV002",
	}},
	{"context canceled", UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "CONV003",
	}},
	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

// defaultMessage is the ERR000 fallback.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError returns the first matching user message, or ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	text := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(text, ep.pattern) {
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

// IsUserFacing reports whether err matched a known pattern.
func IsUserFacing(err error) bool {
	return err != nil && MapError(err).Code != defaultMessage.Code
}
