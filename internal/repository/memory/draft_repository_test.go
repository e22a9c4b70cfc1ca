package memory

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDraftTakeConsumes(t *testing.T) {
	repo := NewDraftRepository()
	sessionId := uuid.New()

	repo.Stage(sessionId, "What was Q1 revenue?")
	assert.True(t, repo.Peek(sessionId))

	text, found := repo.Take(sessionId)
	assert.True(t, found)
	assert.Equal(t, "What was Q1 revenue?", text)

	// Second take must come back empty; this is what keeps a page reload
	// from re-sending the opening prompt.
	_, found = repo.Take(sessionId)
	assert.False(t, found)
	assert.False(t, repo.Peek(sessionId))
}

func TestDraftIsScopedPerSession(t *testing.T) {
	repo := NewDraftRepository()
	a := uuid.New()
	b := uuid.New()

	repo.Stage(a, "draft for a")

	_, found := repo.Take(b)
	assert.False(t, found)

	text, found := repo.Take(a)
	assert.True(t, found)
	assert.Equal(t, "draft for a", text)
}

func TestDraftConcurrentTakeDeliversOnce(t *testing.T) {
	repo := NewDraftRepository()

	// Two tabs racing the same consume must never both get the draft.
	for i := 0; i < 1000; i++ {
		sessionId := uuid.New()
		repo.Stage(sessionId, "raced draft")

		var wins int64
		var wg sync.WaitGroup
		start := make(chan struct{})
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				if _, found := repo.Take(sessionId); found {
					atomic.AddInt64(&wins, 1)
				}
			}()
		}
		close(start)
		wg.Wait()

		assert.EqualValues(t, 1, wins)
	}
}
