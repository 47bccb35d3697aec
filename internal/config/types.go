package config

import "strings"

// SourceType selects the content source adapter.
type SourceType string

const (
	SourceFile     SourceType = "file"
	SourceMarkdown SourceType = "markdown"
	SourceHTTP     SourceType = "http"
	SourceGit      SourceType = "git"
)

// NormalizeSourceType returns the canonical source type for s, or "" when unknown.
func NormalizeSourceType(s string) SourceType {
	switch SourceType(strings.ToLower(strings.TrimSpace(s))) {
	case SourceFile, "json", "yaml":
		return SourceFile
	case SourceMarkdown, "md":
		return SourceMarkdown
	case SourceHTTP, "https":
		return SourceHTTP
	case SourceGit:
		return SourceGit
	}
	return ""
}
