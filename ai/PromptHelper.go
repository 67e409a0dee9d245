package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"querydraft/models"
	"querydraft/session"
)

// Message is one chat message sent upstream.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	roleSystem    = "system"
	roleUser      = "user"
	roleAssistant = "assistant"
)

// ErrEmptyDraft is returned when the model reply holds no query.
var ErrEmptyDraft = errors.New("model returned an empty query")

// BuildSystemPrompt constructs the instructions for query generation, with
// reference SQL files as examples and guidelines.
func BuildSystemPrompt(dialect models.Dialect, sqlFiles []models.SQLFile) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("You are a %s expert assistant that turns natural-language requests into queries.\n", dialectLabel(dialect)))

	if len(sqlFiles) > 0 {
		b.WriteString("Below are reference SQL files that you should use as examples and guidelines:\n\n")
		for _, f := range sqlFiles {
			b.WriteString(fmt.Sprintf("--- SQL File: %s ---\n", f.Name))
			b.WriteString(f.Content)
			b.WriteString("\n\n")
		}
	}

	b.WriteString("Reply with a single JSON object and nothing else:\n")
	b.WriteString(`{"query": "<the query>", "explanation": "<two or three sentences on what it does>", `)
	b.WriteString(`"preview": {"title": "...", "before": {"headers": [...], "rows": [[...]]}, "after": {"headers": [...], "rows": [[...]]}}}`)
	b.WriteString("\nInclude \"preview\" only for statements that modify data, showing sample affected rows before and after.")
	b.WriteString(" Do not use markdown formatting.")
	return b.String()
}

func dialectLabel(d models.Dialect) string {
	switch d {
	case models.DialectMongoDB:
		return "MongoDB query language"
	case models.DialectPostgreSQL, models.DialectMySQL:
		return string(d) + " SQL"
	default:
		return "SQL"
	}
}

// BuildMessages turns a generation request into a chat transcript: system
// instructions, the prior conversation, then the request itself.
func BuildMessages(req session.GenerateRequest, sqlFiles []models.SQLFile) []Message {
	messages := []Message{{Role: roleSystem, Content: BuildSystemPrompt(req.Dialect, sqlFiles)}}
	for _, t := range req.Transcript {
		switch t.Role {
		case models.RoleRequest:
			messages = append(messages, Message{Role: roleUser, Content: t.Content})
		case models.RoleResponse:
			messages = append(messages, Message{Role: roleAssistant, Content: t.Content})
		}
	}

	user := req.Text
	if req.Regenerate {
		user += "\n\nThe previous answer was rejected. Provide a different query for the same request."
	}
	return append(messages, Message{Role: roleUser, Content: user})
}

type draftReply struct {
	Query       string          `json:"query"`
	Explanation string          `json:"explanation"`
	Preview     *models.Preview `json:"preview"`
}

// ParseDraft reads a model reply. JSON replies in the requested shape are
// decoded; anything else is taken as a bare query with no explanation.
func ParseDraft(reply string) (*models.Draft, error) {
	raw := stripFences(reply)

	var r draftReply
	if strings.HasPrefix(raw, "{") && json.Unmarshal([]byte(raw), &r) == nil && r.Query != "" {
		return &models.Draft{
			Content:     strings.TrimSpace(r.Query),
			Explanation: strings.TrimSpace(r.Explanation),
			Preview:     r.Preview,
		}, nil
	}

	if raw == "" {
		return nil, ErrEmptyDraft
	}
	return &models.Draft{Content: raw}, nil
}

// stripFences removes a surrounding markdown code block if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.ContainsAny(s[:i], " {") {
		s = s[i+1:] // language tag
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
