package memory

import (
	"testing"
	"time"

	"presto-copilot-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepositorySaveGetDelete(t *testing.T) {
	repo := NewSessionRepository(time.Hour, 10*time.Minute)

	sess := store.NewSession("abc", store.Selection{StoreKey: "products"})
	repo.Save(sess)

	got, found := repo.Get("abc")
	require.True(t, found)
	assert.Same(t, sess, got)

	repo.Delete("abc")
	_, found = repo.Get("abc")
	assert.False(t, found)
}

func TestSessionRepositoryGetMissing(t *testing.T) {
	repo := NewSessionRepository(time.Hour, 10*time.Minute)

	_, found := repo.Get("nope")
	assert.False(t, found)
}

func TestSessionRepositoryExpiry(t *testing.T) {
	repo := NewSessionRepository(20*time.Millisecond, time.Minute)

	repo.Save(store.NewSession("short", store.Selection{}))
	time.Sleep(30 * time.Millisecond)

	_, found := repo.Get("short")
	assert.False(t, found)
}

func TestSessionRepositoryAll(t *testing.T) {
	repo := NewSessionRepository(time.Hour, 10*time.Minute)

	repo.Save(store.NewSession("a", store.Selection{}))
	repo.Save(store.NewSession("b", store.Selection{}))

	sessions := repo.All()
	assert.Len(t, sessions, 2)

	ids := map[string]bool{}
	for _, s := range sessions {
		ids[s.ID] = true
	}
	assert.True(t, ids["a"])
	assert.True(t, ids["b"])
}
