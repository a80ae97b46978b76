package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/slideshow/internal/export"
)

// DefaultLimit is how many artifacts a store keeps before evicting the
// oldest.
const DefaultLimit = 8

// Artifact is an exported document held in memory.
type Artifact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	Data      []byte    `json:"-"`
}

type ArtifactStore struct {
	artifacts map[string]*Artifact
	limit     int
	mu        sync.RWMutex
}

func New(limit int) *ArtifactStore {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &ArtifactStore{
		artifacts: make(map[string]*Artifact),
		limit:     limit,
	}
}

func (s *ArtifactStore) Get(id string) (*Artifact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	artifact, exists := s.artifacts[id]
	return artifact, exists
}

func (s *ArtifactStore) Set(artifact *Artifact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[artifact.ID] = artifact
	s.evict()
}

// GetAll returns the stored artifacts, newest first.
func (s *ArtifactStore) GetAll() []*Artifact {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Artifact, 0, len(s.artifacts))
	for _, v := range s.artifacts {
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func (s *ArtifactStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.artifacts, id)
}

// Save stores data as an artifact keyed by the export job ID, or a fresh ID
// when the context carries none. It returns the artifact ID.
func (s *ArtifactStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.New("refusing to store an empty document")
	}
	id, ok := export.JobIDFromContext(ctx)
	if !ok {
		id = uuid.NewString()
	}
	s.Set(&Artifact{
		ID:        id,
		Name:      name,
		Size:      len(data),
		CreatedAt: time.Now(),
		Data:      append([]byte(nil), data...),
	})
	return id, nil
}

// evict drops the oldest artifacts above the limit. Callers hold mu.
func (s *ArtifactStore) evict() {
	for len(s.artifacts) > s.limit {
		var oldest *Artifact
		for _, a := range s.artifacts {
			if oldest == nil || a.CreatedAt.Before(oldest.CreatedAt) {
				oldest = a
			}
		}
		delete(s.artifacts, oldest.ID)
	}
}
