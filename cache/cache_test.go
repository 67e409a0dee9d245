package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"querydraft/models"
)

func TestDraftKey_NormalizesPrompt(t *testing.T) {
	a := DraftKey("dashscope", models.DialectSQL, "  List Customers ")
	b := DraftKey("dashscope", models.DialectSQL, "list customers")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, DraftKey("dashscope", models.DialectMySQL, "list customers"))
	assert.NotEqual(t, a, DraftKey("openai", models.DialectSQL, "list customers"))
}

func TestDraftRoundTripIsCopied(t *testing.T) {
	c := New()
	key := DraftKey("stub", models.DialectSQL, "q")
	d := &models.Draft{Content: "SELECT 1;", Preview: &models.Preview{Title: "t"}}
	c.SetDraft(key, d)
	d.Preview.Title = "mutated"

	got, ok := c.GetDraft(key)
	require.True(t, ok)
	assert.Equal(t, "SELECT 1;", got.Content)
	assert.Equal(t, "t", got.Preview.Title)

	got.Preview.Title = "again"
	again, _ := c.GetDraft(key)
	assert.Equal(t, "t", again.Preview.Title)
	assert.Equal(t, 1, c.ItemCount())

	c.Delete(key)
	_, ok = c.GetDraft(key)
	assert.False(t, ok)
}

func TestGetDraft_WrongType(t *testing.T) {
	c := New()
	c.SetDefault("k", "not a draft")
	_, ok := c.GetDraft("k")
	assert.False(t, ok)
}

func TestExpiry(t *testing.T) {
	c := NewWithTTL(10*time.Millisecond, time.Minute)
	c.SetDefault("k", 1)
	time.Sleep(30 * time.Millisecond)
	_, ok := c.Get("k")
	assert.False(t, ok)

	c.SetDraft("d", nil)
	_, ok = c.GetDraft("d")
	assert.False(t, ok)
}
