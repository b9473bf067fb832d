// Package service holds the checks the presentation layer performs before
// calling the repository, and the projections it renders.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/mmynk/giftwiser/internal/models"
)

var (
	// ErrInvalidArgument wraps every input validation failure.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned when an idea is added for an unknown person.
	ErrNotFound = errors.New("not found")
)

// Image sizing used when a client does not send idea dimensions.
const (
	imageWidthRatio = 0.63
	imageAspect     = 2.0 / 3.0
)

var dobPattern = regexp.MustCompile(`^\d{4}/\d{2}/\d{2}$`)

// Repository is the subset of repository.Repository the service needs.
type Repository interface {
	People() []models.Person
	Person(id string) (models.Person, bool)
	GetIdeas(personID string) []models.Idea
	AddPerson(name, dob string) (models.Person, error)
	DeletePerson(id string) error
	AddIdea(personID, text, img string, width, height float64) (models.Idea, error)
	DeleteIdea(personID, ideaID string) error
}

// AddIdeaRequest carries a new idea. Width and Height may both be zero, in
// which case they are derived from the configured screen width.
type AddIdeaRequest struct {
	PersonID string
	Text     string
	Img      string
	Width    float64
	Height   float64
}

// PeopleService validates input and forwards it to the repository.
type PeopleService struct {
	repo        Repository
	screenWidth float64
}

// NewPeopleService creates a PeopleService. screenWidth is the reference
// display width used by ImageSize.
func NewPeopleService(repo Repository, screenWidth float64) *PeopleService {
	return &PeopleService{repo: repo, screenWidth: screenWidth}
}

// ImageSize returns the display size of a captured photo for a screen of the
// given width: 63% of the width, with a 3:2 width to height ratio.
func ImageSize(screenWidth float64) (width, height float64) {
	width = screenWidth * imageWidthRatio
	return width, width * imageAspect
}

// ListPeople returns everyone ordered by upcoming birthday (month, day).
func (s *PeopleService) ListPeople(ctx context.Context) []models.Person {
	return models.SortByBirthday(s.repo.People())
}

// GetPerson returns one person.
func (s *PeopleService) GetPerson(ctx context.Context, id string) (models.Person, error) {
	p, ok := s.repo.Person(id)
	if !ok {
		return models.Person{}, fmt.Errorf("person %s: %w", id, ErrNotFound)
	}
	return p, nil
}

// AddPerson checks that name and dob are present and dob is YYYY/MM/DD.
func (s *PeopleService) AddPerson(ctx context.Context, name, dob string) (models.Person, error) {
	slog.Info("AddPerson request received", "name", name, "dob", dob)

	if strings.TrimSpace(name) == "" || strings.TrimSpace(dob) == "" {
		return models.Person{}, fmt.Errorf("%w: name and date of birth are required", ErrInvalidArgument)
	}
	if !dobPattern.MatchString(dob) {
		return models.Person{}, fmt.Errorf("%w: date of birth must be YYYY/MM/DD (got %q)", ErrInvalidArgument, dob)
	}

	person, err := s.repo.AddPerson(name, dob)
	if err != nil {
		slog.Error("AddPerson failed", "error", err)
		return models.Person{}, err
	}

	slog.Info("Person added", "person_id", person.ID)
	return person, nil
}

// DeletePerson removes a person and their ideas. Unknown ids are ignored.
func (s *PeopleService) DeletePerson(ctx context.Context, id string) error {
	slog.Info("DeletePerson request received", "person_id", id)
	if err := s.repo.DeletePerson(id); err != nil {
		slog.Error("DeletePerson failed", "person_id", id, "error", err)
		return err
	}
	return nil
}

// ListIdeas returns a person's ideas in the order they were added.
func (s *PeopleService) ListIdeas(ctx context.Context, personID string) []models.Idea {
	return s.repo.GetIdeas(personID)
}

// AddIdea checks the idea has text and a photo, fills in missing dimensions
// and adds it. An unknown person yields ErrNotFound.
func (s *PeopleService) AddIdea(ctx context.Context, req AddIdeaRequest) (models.Idea, error) {
	slog.Info("AddIdea request received", "person_id", req.PersonID)

	if strings.TrimSpace(req.Text) == "" || req.Img == "" {
		return models.Idea{}, fmt.Errorf("%w: both a gift idea and a picture are required", ErrInvalidArgument)
	}

	width, height := req.Width, req.Height
	switch {
	case width == 0 && height == 0:
		width, height = ImageSize(s.screenWidth)
	case width <= 0 || height <= 0:
		return models.Idea{}, fmt.Errorf("%w: width and height must both be positive", ErrInvalidArgument)
	}

	idea, err := s.repo.AddIdea(req.PersonID, req.Text, req.Img, width, height)
	if err != nil {
		slog.Error("AddIdea failed", "person_id", req.PersonID, "error", err)
		return models.Idea{}, err
	}
	if idea.ID == "" {
		return models.Idea{}, fmt.Errorf("person %s: %w", req.PersonID, ErrNotFound)
	}

	slog.Info("Idea added", "person_id", req.PersonID, "idea_id", idea.ID)
	return idea, nil
}

// DeleteIdea removes one idea. Unknown ids are ignored.
func (s *PeopleService) DeleteIdea(ctx context.Context, personID, ideaID string) error {
	slog.Info("DeleteIdea request received", "person_id", personID, "idea_id", ideaID)
	if err := s.repo.DeleteIdea(personID, ideaID); err != nil {
		slog.Error("DeleteIdea failed", "person_id", personID, "idea_id", ideaID, "error", err)
		return err
	}
	return nil
}
