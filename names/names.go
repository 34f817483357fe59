// Package names turns raw download folder and file names into display names.
package names

import (
	"print-vault/fileclass"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	leadingNumberPattern   = regexp.MustCompile(`^\d+[\s.]+`)
	trailingParenPattern   = regexp.MustCompile(`\s*\([^()]*\)$`)
	trailingVersionPattern = regexp.MustCompile(`(?i)\s+v\d+(\.\d+)*$`)
	trailingMarkerPattern  = regexp.MustCompile(`(?i)\s+(copy|final|latest|new|old|backup)\s*\d*$`)
	whitespacePattern      = regexp.MustCompile(`\s+`)
)

// CleanupFolderName never returns an empty string; when nothing is left it returns raw.
func CleanupFolderName(raw string) string {
	name := stripKnownExtensions(raw)
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	name = whitespacePattern.ReplaceAllString(strings.TrimSpace(name), " ")
	name = leadingNumberPattern.ReplaceAllString(name, "")

	// Suffixes can stack, e.g. "Model v2 final (1)"
	for {
		before := name
		name = trailingParenPattern.ReplaceAllString(name, "")
		name = trailingVersionPattern.ReplaceAllString(name, "")
		name = trailingMarkerPattern.ReplaceAllString(name, "")
		name = strings.TrimSpace(name)

		if name == before {
			break
		}
	}

	name = titleCase(name)

	if name == "" {
		return raw
	}

	return name
}

func stripKnownExtensions(name string) string {
	for {
		lower := strings.ToLower(name)
		stripped := false

		for _, ext := range fileclass.KnownExtensions() {
			if strings.HasSuffix(lower, ext) && len(name) > len(ext) {
				name = name[:len(name)-len(ext)]
				stripped = true
				break
			}
		}

		if !stripped {
			return name
		}
	}
}

func titleCase(name string) string {
	words := strings.Fields(name)

	for i, word := range words {
		r, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(r)) + word[size:]
	}

	return strings.Join(words, " ")
}
