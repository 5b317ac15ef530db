// Package media persists synthesized answer audio and makes it publicly
// fetchable. Artifacts are durable in the artifact repository and served by
// this process under /audio/; a Redis hot cache keeps the platform's
// immediate playback fetch off the database.
package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Artifact is one published audio payload.
//
// Path convention: calls/{call_sid}/{turn_id}.mp3, content type audio/mpeg,
// publicly readable. Owned by the publisher once persisted; turns reference
// it by URL only.
type Artifact struct {
	CallSid     string    `json:"call_sid" db:"call_sid"`
	TurnID      string    `json:"turn_id" db:"turn_id"`
	ContentType string    `json:"content_type" db:"content_type"`
	Data        []byte    `json:"-" db:"data"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Path returns the public object path for the artifact.
func (a Artifact) Path() string {
	return fmt.Sprintf("calls/%s/%s.mp3", a.CallSid, a.TurnID)
}

// Repository is the durable storage contract for artifacts. Writes must be
// safe under concurrent use; artifacts are never updated after Put.
type Repository interface {
	Put(ctx context.Context, a Artifact) error
	Get(ctx context.Context, callSid, turnID string) (Artifact, error)
}

// Cache is an optional hot cache in front of the repository. Failures are
// swallowed by the publisher; the repository stays authoritative.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte)
}

var ErrNotFound = errors.New("media: artifact not found")

// Publisher persists audio and returns a durable public URL.
type Publisher struct {
	repo    Repository
	cache   Cache
	baseURL string
	clock   func() time.Time
}

// NewPublisher constructs a Publisher. baseURL is the externally reachable
// base of this service (e.g. https://voice.example.com); cache may be nil.
func NewPublisher(repo Repository, cache Cache, baseURL string) (*Publisher, error) {
	if repo == nil {
		return nil, errors.New("media: repository is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("media: baseURL is required")
	}
	return &Publisher{
		repo:    repo,
		cache:   cache,
		baseURL: strings.TrimRight(baseURL, "/"),
		clock:   time.Now,
	}, nil
}

// Publish stores the audio bytes and returns the public URL.
func (p *Publisher) Publish(ctx context.Context, callSid, turnID string, audio []byte, contentType string) (string, error) {
	if callSid == "" || turnID == "" {
		return "", errors.New("media: call_sid and turn_id are required")
	}
	if len(audio) == 0 {
		return "", errors.New("media: audio payload is empty")
	}
	if contentType == "" {
		contentType = "audio/mpeg"
	}

	a := Artifact{
		CallSid:     callSid,
		TurnID:      turnID,
		ContentType: contentType,
		Data:        audio,
		CreatedAt:   p.clock().UTC(),
	}
	if err := p.repo.Put(ctx, a); err != nil {
		return "", fmt.Errorf("media: put artifact: %w", err)
	}
	if p.cache != nil {
		p.cache.Set(ctx, a.Path(), audio)
	}
	return p.baseURL + "/audio/" + a.Path(), nil
}

// Fetch resolves an artifact for serving, cache first.
func (p *Publisher) Fetch(ctx context.Context, callSid, turnID string) (Artifact, error) {
	path := Artifact{CallSid: callSid, TurnID: turnID}.Path()
	if p.cache != nil {
		if data, ok := p.cache.Get(ctx, path); ok {
			return Artifact{CallSid: callSid, TurnID: turnID, ContentType: "audio/mpeg", Data: data}, nil
		}
	}
	return p.repo.Get(ctx, callSid, turnID)
}

// MemoryRepository is an in-memory artifact repository for tests and local
// runs.
type MemoryRepository struct {
	mu        sync.Mutex
	artifacts map[string]Artifact // keyed by Path()
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{artifacts: map[string]Artifact{}}
}

func (r *MemoryRepository) Put(ctx context.Context, a Artifact) error {
	if a.CallSid == "" || a.TurnID == "" {
		return errors.New("media: invalid artifact")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.artifacts[a.Path()]; exists {
		// First write wins; artifacts are immutable.
		return nil
	}
	r.artifacts[a.Path()] = a
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, callSid, turnID string) (Artifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.artifacts[Artifact{CallSid: callSid, TurnID: turnID}.Path()]
	if !ok {
		return Artifact{}, ErrNotFound
	}
	return a, nil
}
