package gateway

import (
	"sync"
	"time"

	"github.com/pricehub/mirror-bot/internal/models"
	"github.com/pricehub/mirror-bot/internal/render"
)

// Artifact is the live state behind one mirrored message: the record, its
// presentation context, and the owner allowed to delete it. Interactions on
// one artifact serialize on its mutex; unrelated artifacts never share state.
type Artifact struct {
	mu sync.Mutex

	Record  *models.Record
	Ctx     render.Context
	Surface render.Surface

	ChannelID string
	MessageID string
	OwnerID   string

	CreatedAt time.Time
}

// Lock serializes interaction handling for this artifact.
func (a *Artifact) Lock() { a.mu.Lock() }

func (a *Artifact) Unlock() { a.mu.Unlock() }

// Registry is the bounded message-ID → artifact table. When full, the oldest
// artifact is evicted, so the map never grows without limit.
type Registry struct {
	mu        sync.Mutex
	max       int
	artifacts map[string]*Artifact
}

func NewRegistry(max int) *Registry {
	if max <= 0 {
		max = 1
	}
	return &Registry{
		max:       max,
		artifacts: make(map[string]*Artifact),
	}
}

func (r *Registry) Put(a *Artifact) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.artifacts[a.MessageID]; !exists && len(r.artifacts) >= r.max {
		var oldestID string
		var oldest time.Time
		for id, art := range r.artifacts {
			if oldestID == "" || art.CreatedAt.Before(oldest) {
				oldestID = id
				oldest = art.CreatedAt
			}
		}
		delete(r.artifacts, oldestID)
	}
	r.artifacts[a.MessageID] = a
}

func (r *Registry) Get(messageID string) (*Artifact, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.artifacts[messageID]
	return a, ok
}

func (r *Registry) Remove(messageID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.artifacts, messageID)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.artifacts)
}
