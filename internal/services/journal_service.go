package services

import (
	"context"
	"strings"
	"unicode/utf8"
)

// JournalModel writes a short reflection on a journal entry.
type JournalModel interface {
	JournalInsight(ctx context.Context, content string) (string, error)
}

// JournalService produces insights for journal entries. Entries themselves
// are stored by the client apps; only their content reaches this service.
type JournalService struct {
	Model JournalModel
	// MaxContentRunes caps entries; 0 disables the check.
	MaxContentRunes int
}

// Insight returns the model's reflection on content.
func (s *JournalService) Insight(ctx context.Context, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyMessage
	}
	if s.MaxContentRunes > 0 && utf8.RuneCountInString(content) > s.MaxContentRunes {
		return "", ErrTooLong
	}
	return s.Model.JournalInsight(ctx, content)
}
