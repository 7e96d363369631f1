package service

import "strings"

// providerText normalizes names, titles and messages returned by Facebook.
// The text is stored as written; only surrounding whitespace and invalid
// UTF-8 sequences are removed.
func providerText(value string) string {
	return strings.TrimSpace(strings.ToValidUTF8(value, ""))
}
