package session

import (
	"time"

	"querydraft/models"
)

type HistoryEntry struct {
	TakenAt time.Time     `json:"taken_at"`
	Turns   []models.Turn `json:"turns"`
}

// HistoryStack is an append-only record of transcripts taken before each undo.
// Entries are never restored.
type HistoryStack struct {
	entries []HistoryEntry
}

func NewHistoryStack() *HistoryStack {
	return &HistoryStack{}
}

// Push stores turns, which must already be a private copy.
func (h *HistoryStack) Push(turns []models.Turn) {
	h.entries = append(h.entries, HistoryEntry{TakenAt: time.Now().UTC(), Turns: turns})
}

func (h *HistoryStack) Len() int {
	return len(h.entries)
}

func (h *HistoryStack) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	for i, e := range h.entries {
		turns := make([]models.Turn, len(e.Turns))
		for j, t := range e.Turns {
			turns[j] = t.Clone()
		}
		out[i] = HistoryEntry{TakenAt: e.TakenAt, Turns: turns}
	}
	return out
}
