package repository

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/mmynk/giftwiser/internal/ids"
	"github.com/mmynk/giftwiser/internal/metrics"
	"github.com/mmynk/giftwiser/internal/models"
)

var (
	// ErrNotReady is returned by mutations before the collection is loaded.
	ErrNotReady = errors.New("repository not ready")

	// ErrClosed is returned by operations after Close.
	ErrClosed = errors.New("repository closed")

	// ErrAlreadyLoaded is returned when Load is called more than once.
	ErrAlreadyLoaded = errors.New("repository already loaded")
)

// Store is the durable side of the repository.
// storage.PeopleStore implements it.
type Store interface {
	Load(ctx context.Context) ([]models.Person, error)
	Save(ctx context.Context, people []models.Person) error
}

// State is the lifecycle state of a Repository.
type State int32

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Options configures a Repository. The zero value is usable.
type Options struct {
	// IDs generates person and idea identifiers. Defaults to ids.UUID.
	IDs ids.Generator

	// Logger defaults to slog.Default() tagged with component=repository.
	Logger *slog.Logger

	// Metrics may be nil.
	Metrics *metrics.Metrics

	// OnSaveError is called from the writer goroutine after a failed save.
	OnSaveError func(error)
}

// Repository is the in-memory authoritative people collection.
// It is safe for concurrent use.
type Repository struct {
	store       Store
	ids         ids.Generator
	logger      *slog.Logger
	metrics     *metrics.Metrics
	onSaveError func(error)

	mu     sync.RWMutex
	state  State
	loaded bool
	people []models.Person
	ready  chan struct{}

	dirty     chan struct{}
	flush     chan chan error
	quit      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	errMu   sync.Mutex
	lastErr error
}

// New creates a Repository backed by store and starts its writer goroutine.
// Call Load (or LoadAsync) before mutating, and Close when done.
func New(store Store, opts Options) *Repository {
	if opts.IDs == nil {
		opts.IDs = ids.UUID{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default().With("component", "repository")
	}

	r := &Repository{
		store:       store,
		ids:         opts.IDs,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		onSaveError: opts.OnSaveError,
		people:      []models.Person{},
		ready:       make(chan struct{}),
		dirty:       make(chan struct{}, 1),
		flush:       make(chan chan error),
		quit:        make(chan struct{}),
		stopped:     make(chan struct{}),
	}
	go r.writer()
	return r
}

// Load reads the whole collection from the store and marks the repository
// ready. A store failure is logged and the repository starts empty; it is
// not returned as an error.
func (r *Repository) Load(ctx context.Context) error {
	r.mu.Lock()
	switch r.state {
	case StateUninitialized:
	case StateClosed:
		r.mu.Unlock()
		return ErrClosed
	default:
		r.mu.Unlock()
		return ErrAlreadyLoaded
	}
	r.state = StateLoading
	r.mu.Unlock()

	people, err := r.store.Load(ctx)
	r.metrics.ObserveLoad(err)
	if err != nil {
		r.logger.Error("Failed to load people, starting empty", "error", err)
		people = nil
	}
	if people == nil {
		people = []models.Person{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateClosed {
		return ErrClosed
	}
	r.people = people
	r.loaded = true
	r.state = StateReady
	close(r.ready)

	ideas := models.IdeaCount(people)
	r.metrics.SetCollection(len(people), ideas)
	r.logger.Info("People loaded", "people", len(people), "ideas", ideas)
	return nil
}

// LoadAsync runs Load on a new goroutine. Use Ready or WaitReady to learn
// when it has finished.
func (r *Repository) LoadAsync(ctx context.Context) {
	go func() {
		if err := r.Load(ctx); err != nil {
			r.logger.Warn("Load skipped", "error", err)
		}
	}()
}

// Ready returns a channel that is closed once the collection is loaded.
func (r *Repository) Ready() <-chan struct{} {
	return r.ready
}

// WaitReady blocks until the collection is loaded, the repository is closed
// or ctx is done.
func (r *Repository) WaitReady(ctx context.Context) error {
	select {
	case <-r.ready:
		return nil
	default:
	}
	select {
	case <-r.ready:
		return nil
	case <-r.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the current lifecycle state.
func (r *Repository) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// People returns a copy of the collection in insertion order.
func (r *Repository) People() []models.Person {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Person, 0, len(r.people))
	if !r.loaded {
		return out
	}
	for _, p := range r.people {
		out = append(out, p.Clone())
	}
	return out
}

// Person returns a copy of the person with the given id.
func (r *Repository) Person(id string) (models.Person, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.loaded {
		return models.Person{}, false
	}
	if i := indexOf(r.people, id); i >= 0 {
		return r.people[i].Clone(), true
	}
	return models.Person{}, false
}

// GetIdeas returns a copy of the person's ideas, or an empty slice if the
// person does not exist.
func (r *Repository) GetIdeas(personID string) []models.Idea {
	p, ok := r.Person(personID)
	if !ok {
		return []models.Idea{}
	}
	return p.Ideas
}

// AddPerson appends a new person with no ideas.
// Names are not deduplicated.
func (r *Repository) AddPerson(name, dob string) (models.Person, error) {
	person := models.Person{
		ID:    r.ids.NewID(),
		Name:  name,
		DOB:   dob,
		Ideas: []models.Idea{},
	}

	err := r.mutate(func(people []models.Person) ([]models.Person, bool) {
		next := make([]models.Person, len(people), len(people)+1)
		copy(next, people)
		return append(next, person), true
	})
	if err != nil {
		return models.Person{}, err
	}

	r.logger.Debug("Person added", "person_id", person.ID)
	return person.Clone(), nil
}

// DeletePerson removes the person and all of their ideas.
// Deleting an unknown id does nothing.
func (r *Repository) DeletePerson(id string) error {
	return r.mutate(func(people []models.Person) ([]models.Person, bool) {
		i := indexOf(people, id)
		if i < 0 {
			r.logger.Debug("DeletePerson: person not found", "person_id", id)
			return people, false
		}
		return slices.Delete(slices.Clone(people), i, i+1), true
	})
}

// AddIdea appends a new idea to the person's list and returns it.
// If the person does not exist nothing changes and the zero Idea is returned.
func (r *Repository) AddIdea(personID, text, img string, width, height float64) (models.Idea, error) {
	var idea models.Idea

	err := r.mutate(func(people []models.Person) ([]models.Person, bool) {
		i := indexOf(people, personID)
		if i < 0 {
			r.logger.Debug("AddIdea: person not found", "person_id", personID)
			return people, false
		}

		idea = models.Idea{
			ID:     r.ids.NewID(),
			Text:   text,
			Img:    img,
			Width:  width,
			Height: height,
		}

		next := slices.Clone(people)
		p := next[i]
		// Clip forces append to allocate so the previous snapshot is untouched.
		p.Ideas = append(slices.Clip(p.Ideas), idea)
		next[i] = p
		return next, true
	})
	if err != nil {
		return models.Idea{}, err
	}
	return idea, nil
}

// DeleteIdea removes one idea from the given person.
// Unknown person or idea ids do nothing.
func (r *Repository) DeleteIdea(personID, ideaID string) error {
	return r.mutate(func(people []models.Person) ([]models.Person, bool) {
		i := indexOf(people, personID)
		if i < 0 {
			r.logger.Debug("DeleteIdea: person not found", "person_id", personID)
			return people, false
		}
		j := slices.IndexFunc(people[i].Ideas, func(idea models.Idea) bool {
			return idea.ID == ideaID
		})
		if j < 0 {
			r.logger.Debug("DeleteIdea: idea not found", "person_id", personID, "idea_id", ideaID)
			return people, false
		}

		next := slices.Clone(people)
		p := next[i]
		p.Ideas = slices.Delete(slices.Clone(p.Ideas), j, j+1)
		next[i] = p
		return next, true
	})
}

// mutate applies fn to the current collection under the write lock.
// fn must not modify its argument; it returns a new collection and whether
// anything changed. Changes are handed to the writer.
func (r *Repository) mutate(fn func([]models.Person) ([]models.Person, bool)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case StateReady:
	case StateClosed:
		return ErrClosed
	default:
		return ErrNotReady
	}

	next, changed := fn(r.people)
	if !changed {
		return nil
	}
	r.people = next
	r.metrics.SetCollection(len(next), models.IdeaCount(next))
	r.markDirty()
	return nil
}

func indexOf(people []models.Person, id string) int {
	return slices.IndexFunc(people, func(p models.Person) bool {
		return p.ID == id
	})
}
