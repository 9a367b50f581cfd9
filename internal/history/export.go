package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/diogo/helper/internal/models"
)

// ExportFormat represents the format for exporting conversations
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
)

// ParseExportFormat maps a user-supplied name to an ExportFormat
func ParseExportFormat(name string) (ExportFormat, error) {
	switch strings.ToLower(name) {
	case "markdown", "md":
		return ExportFormatMarkdown, nil
	case "json":
		return ExportFormatJSON, nil
	default:
		return "", fmt.Errorf("unknown export format '%s' (want markdown or json)", name)
	}
}

// ExportOptions configures how conversations are exported
type ExportOptions struct {
	Format        ExportFormat
	IncludeSystem bool // Include the leading system message
}

// DefaultExportOptions returns sensible defaults for export
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		Format:        ExportFormatMarkdown,
		IncludeSystem: true,
	}
}

// Export renders conv in the format selected by opts
func Export(conv *Conversation, opts ExportOptions) ([]byte, error) {
	switch opts.Format {
	case ExportFormatJSON:
		return ExportJSON(conv, opts)
	case ExportFormatMarkdown, "":
		return []byte(ExportMarkdown(conv, opts)), nil
	default:
		return nil, fmt.Errorf("unknown export format '%s'", opts.Format)
	}
}

// ExportMarkdown renders a conversation as Markdown
func ExportMarkdown(conv *Conversation, opts ExportOptions) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Conversation %d: %s\n\n", conv.ID, conv.Title()))
	sb.WriteString(fmt.Sprintf("**Messages:** %d\n\n---\n\n", len(conv.Messages)))

	msgs := exportedMessages(conv, opts)
	for i, msg := range msgs {
		sb.WriteString("## ")
		sb.WriteString(roleLabel(msg.Role))
		if msg.Name != "" {
			sb.WriteString(" (")
			sb.WriteString(msg.Name)
			sb.WriteString(")")
		}
		sb.WriteString("\n\n")

		sb.WriteString(msg.Content)
		if msg.FunctionCall != nil {
			sb.WriteString(fmt.Sprintf("\n\n`%s(%s)`", msg.FunctionCall.Name, msg.FunctionCall.Arguments))
		}
		sb.WriteString("\n")

		if i < len(msgs)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

// ExportJSON renders a conversation as indented JSON in the history schema
func ExportJSON(conv *Conversation, opts ExportOptions) ([]byte, error) {
	export := Conversation{
		ID:       conv.ID,
		Messages: exportedMessages(conv, opts),
	}
	return json.MarshalIndent(export, "", "  ")
}

func exportedMessages(conv *Conversation, opts ExportOptions) []models.Message {
	if opts.IncludeSystem || len(conv.Messages) == 0 || conv.Messages[0].Role != models.RoleSystem {
		return conv.Messages
	}
	return conv.Messages[1:]
}

func roleLabel(role models.Role) string {
	switch role {
	case models.RoleSystem:
		return "System"
	case models.RoleUser:
		return "User"
	case models.RoleAssistant:
		return "Assistant"
	case models.RoleFunction:
		return "Function"
	default:
		return string(role)
	}
}

// SearchResult represents a search match in conversations
type SearchResult struct {
	Conversation *Conversation
	MatchSnippet string // Snippet where the term was found
	MatchIndex   int    // Index of the matching message
}

// Search returns the first matching message of every conversation whose
// content contains query (case-insensitive), in ascending id order.
func (h *History) Search(query string) []*SearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	queryLower := strings.ToLower(query)
	var results []*SearchResult

	for _, conv := range h.List() {
		for i, msg := range conv.Messages {
			if strings.Contains(strings.ToLower(msg.Content), queryLower) {
				results = append(results, &SearchResult{
					Conversation: conv,
					MatchSnippet: extractSnippet(msg.Content, query, 100),
					MatchIndex:   i,
				})
				break // Only one match per conversation
			}
		}
	}

	return results
}

// extractSnippet extracts a snippet around the first occurrence of query
func extractSnippet(content, query string, maxLen int) string {
	content = strings.ReplaceAll(content, "\n", " ")
	runes := []rune(content)
	lower := []rune(strings.ToLower(content))
	q := []rune(strings.ToLower(query))

	idx := indexRunes(lower, q)
	if idx == -1 {
		return truncateRunes(content, maxLen)
	}

	half := maxLen / 2
	start := idx - half
	end := idx + len(q) + half

	if start < 0 {
		start = 0
		end = maxLen
	}
	if end > len(runes) {
		end = len(runes)
		start = end - maxLen
		if start < 0 {
			start = 0
		}
	}

	snippet := string(runes[start:end])
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(runes) {
		snippet = snippet + "..."
	}

	return snippet
}

func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 {
		return 0
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
