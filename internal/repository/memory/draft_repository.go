package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// DraftRepository is the ephemeral staging slot that carries a freshly
// created session's opening prompt across the navigation boundary between
// "create session" and "open conversation view". A draft is read at most
// once: Take removes it, so a reload never re-sends.
type DraftRepository struct {
	cache *cache.Cache

	// The cache locks per call, so the get-then-delete pair in Take needs
	// its own lock to stay atomic against a concurrent Take.
	mu sync.Mutex
}

func NewDraftRepository() *DraftRepository {
	// Drafts that are never picked up expire on their own.
	c := cache.New(10*time.Minute, 5*time.Minute)
	return &DraftRepository{
		cache: c,
	}
}

func (r *DraftRepository) Stage(sessionId uuid.UUID, text string) {
	r.cache.Set(sessionId.String(), text, cache.DefaultExpiration)
}

// Take returns the staged draft and consumes it. At most one caller
// receives a given draft.
func (r *DraftRepository) Take(sessionId uuid.UUID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := sessionId.String()
	x, found := r.cache.Get(key)
	if !found {
		return "", false
	}
	r.cache.Delete(key)
	return x.(string), true
}

// Peek reports whether a draft is staged without consuming it.
func (r *DraftRepository) Peek(sessionId uuid.UUID) bool {
	_, found := r.cache.Get(sessionId.String())
	return found
}
