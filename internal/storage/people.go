package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mmynk/giftwiser/internal/models"
)

// DefaultKey is the key under which the people collection is stored.
const DefaultKey = "people"

// SchemaVersion is the version written by Encode.
// Version 0 is the original bare JSON array layout.
const SchemaVersion = 1

// ErrUnsupportedVersion is returned when stored data was written by a newer
// schema than this build understands.
var ErrUnsupportedVersion = errors.New("unsupported schema version")

type snapshot struct {
	Version int             `json:"version"`
	People  []models.Person `json:"people"`
}

// PeopleStore saves and loads the full people collection as a single value.
type PeopleStore struct {
	kv  KV
	key string
}

// NewPeopleStore binds kv to key. An empty key selects DefaultKey.
func NewPeopleStore(kv KV, key string) *PeopleStore {
	if key == "" {
		key = DefaultKey
	}
	return &PeopleStore{kv: kv, key: key}
}

// Key returns the key the collection is stored under.
func (s *PeopleStore) Key() string {
	return s.key
}

// Load reads the collection. A key that was never written yields an empty
// collection and no error.
func (s *PeopleStore) Load(ctx context.Context) ([]models.Person, error) {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return []models.Person{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", s.key, err)
	}

	people, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %q: %w", s.key, err)
	}
	return people, nil
}

// Save writes the complete collection, replacing whatever was stored.
func (s *PeopleStore) Save(ctx context.Context, people []models.Person) error {
	data, err := Encode(people)
	if err != nil {
		return fmt.Errorf("failed to encode people: %w", err)
	}
	if err := s.kv.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("failed to write %q: %w", s.key, err)
	}
	return nil
}

// Encode serializes people in the current schema version.
func Encode(people []models.Person) ([]byte, error) {
	return json.Marshal(snapshot{
		Version: SchemaVersion,
		People:  normalize(people),
	})
}

// Decode parses either the versioned layout or the original bare array.
func Decode(data []byte) ([]models.Person, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []models.Person{}, nil
	}

	if trimmed[0] == '[' {
		var people []models.Person
		if err := json.Unmarshal(trimmed, &people); err != nil {
			return nil, err
		}
		return normalize(people), nil
	}

	var snap snapshot
	if err := json.Unmarshal(trimmed, &snap); err != nil {
		return nil, err
	}
	if snap.Version != SchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, snap.Version)
	}
	return normalize(snap.People), nil
}

// normalize replaces nil slices with empty ones so they encode as [].
func normalize(people []models.Person) []models.Person {
	out := make([]models.Person, len(people))
	for i, p := range people {
		if p.Ideas == nil {
			p.Ideas = []models.Idea{}
		}
		out[i] = p
	}
	return out
}
