package session

import (
	"time"

	"querydraft/models"
)

// TurnStore is the ordered transcript. Positions shift on truncation; turn ids
// never change and are never reused within a store. Callers serialize access.
type TurnStore struct {
	turns  []models.Turn
	nextID uint64
}

func NewTurnStore() *TurnStore {
	return &TurnStore{nextID: 1}
}

func (s *TurnStore) Len() int {
	return len(s.turns)
}

func (s *TurnStore) Append(role models.Role, d models.Draft) models.Turn {
	t := models.Turn{
		ID:          s.nextID,
		Role:        role,
		Content:     d.Content,
		Explanation: d.Explanation,
		Preview:     d.Preview.Clone(),
		CreatedAt:   time.Now().UTC(),
	}
	s.nextID++
	s.turns = append(s.turns, t)
	return t.Clone()
}

func (s *TurnStore) At(pos int) (models.Turn, error) {
	if pos < 0 || pos >= len(s.turns) {
		return models.Turn{}, ErrPositionOutOfRange
	}
	return s.turns[pos].Clone(), nil
}

// Response returns the turn at pos if it is a response turn.
func (s *TurnStore) Response(pos int) (models.Turn, error) {
	t, err := s.At(pos)
	if err != nil {
		return t, err
	}
	if t.Role != models.RoleResponse {
		return t, ErrNotResponse
	}
	return t, nil
}

// IndexOf returns the current position of the turn with the given id, or -1.
func (s *TurnStore) IndexOf(id uint64) int {
	for i := len(s.turns) - 1; i >= 0; i-- {
		if s.turns[i].ID == id {
			return i
		}
	}
	return -1
}

// Replace overwrites the response at pos in place. The previous preview is
// kept when d carries none.
func (s *TurnStore) Replace(pos int, d models.Draft) (models.Turn, error) {
	if _, err := s.Response(pos); err != nil {
		return models.Turn{}, err
	}
	t := &s.turns[pos]
	t.Content = d.Content
	t.Explanation = d.Explanation
	if d.Preview != nil {
		t.Preview = d.Preview.Clone()
	}
	t.Revision++
	return t.Clone(), nil
}

// Truncate drops the last n turns and returns them, oldest first.
func (s *TurnStore) Truncate(n int) []models.Turn {
	if n > len(s.turns) {
		n = len(s.turns)
	}
	if n <= 0 {
		return nil
	}
	cut := len(s.turns) - n
	removed := make([]models.Turn, n)
	copy(removed, s.turns[cut:])
	s.turns = s.turns[:cut:cut]
	return removed
}

// Turns returns a deep copy of the transcript.
func (s *TurnStore) Turns() []models.Turn {
	out := make([]models.Turn, len(s.turns))
	for i, t := range s.turns {
		out[i] = t.Clone()
	}
	return out
}
