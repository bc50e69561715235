// Package language resolves the working language for a request.
//
// Resolution is pure and total: it never fails and never returns a code
// outside the supported table. Unknown input falls back to "en".
package language

import "strings"

// nameToCode maps supported language names to their canonical codes.
var nameToCode = map[string]string{
	"english":   "en",
	"hindi":     "hi",
	"kannada":   "kn",
	"tamil":     "ta",
	"telugu":    "te",
	"malayalam": "ml",
	"marathi":   "mr",
	"bengali":   "bn",
	"gujarati":  "gu",
	"punjabi":   "pa",
}

// directiveOrder fixes the scan order for in-text directives so the
// first match is deterministic.
var directiveOrder = []string{
	"english", "hindi", "kannada", "tamil", "telugu",
	"malayalam", "marathi", "bengali", "gujarati", "punjabi",
}

var codes = func() map[string]bool {
	set := make(map[string]bool, len(nameToCode))
	for _, code := range nameToCode {
		set[code] = true
	}
	return set
}()

// IsSupported reports whether code is a recognized canonical code.
func IsSupported(code string) bool {
	return codes[strings.ToLower(code)]
}

// Resolve maps a declared language (name like "Kannada" or code like
// "kn", any casing, surrounding whitespace tolerated) to a canonical
// code. Empty or unrecognized input resolves to "en".
func Resolve(declared string) string {
	sanitized := strings.ToLower(strings.TrimSpace(declared))
	if sanitized == "" {
		return "en"
	}
	if code, ok := nameToCode[sanitized]; ok {
		return code
	}
	if codes[sanitized] {
		return sanitized
	}
	return "en"
}

// Detect determines the working language for a query. An explicit
// in-text directive of the form "in <language-name>" wins over the
// declared profile language; otherwise the declared value is resolved.
func Detect(queryText, declared string) string {
	lower := strings.ToLower(queryText)
	for _, name := range directiveOrder {
		if strings.Contains(lower, "in "+name) {
			return nameToCode[name]
		}
	}
	return Resolve(declared)
}
