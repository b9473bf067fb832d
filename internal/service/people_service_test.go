package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/mmynk/giftwiser/internal/repository"
	"github.com/mmynk/giftwiser/internal/storage"
	"github.com/mmynk/giftwiser/internal/storage/memory"
)

// setupService creates a service over a loaded in-memory repository.
func setupService(t *testing.T) *PeopleService {
	t.Helper()

	repo := repository.New(storage.NewPeopleStore(memory.New(), ""), repository.Options{})
	t.Cleanup(func() { repo.Close(context.Background()) })
	if err := repo.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return NewPeopleService(repo, 400)
}

func TestAddPersonValidation(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		pname   string
		dob     string
		wantErr bool
	}{
		{"valid", "Alice", "1990/05/01", false},
		{"blank name", "   ", "1990/05/01", true},
		{"empty dob", "Alice", "", true},
		{"dashes", "Alice", "1990-05-01", true},
		{"short year", "Alice", "90/05/01", true},
		{"trailing text", "Alice", "1990/05/01x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddPerson(ctx, tt.pname, tt.dob)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}

	if got := len(svc.ListPeople(ctx)); got != 1 {
		t.Errorf("expected only the valid person to be stored, got %d", got)
	}
}

func TestListPeopleSortedByBirthday(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	for _, p := range []struct{ name, dob string }{
		{"First March", "1990/03/10"},
		{"January", "1985/01/20"},
		{"Second March", "2000/03/10"},
	} {
		if _, err := svc.AddPerson(ctx, p.name, p.dob); err != nil {
			t.Fatalf("AddPerson failed: %v", err)
		}
	}

	people := svc.ListPeople(ctx)
	want := []string{"January", "First March", "Second March"}
	for i, p := range people {
		if p.Name != want[i] {
			t.Errorf("position %d: got %s, want %s", i, p.Name, want[i])
		}
	}
}

func TestAddIdea(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	alice, err := svc.AddPerson(ctx, "Alice", "1990/05/01")
	if err != nil {
		t.Fatalf("AddPerson failed: %v", err)
	}

	t.Run("explicit dimensions", func(t *testing.T) {
		idea, err := svc.AddIdea(ctx, AddIdeaRequest{
			PersonID: alice.ID, Text: "Socks", Img: "file://img1.jpg", Width: 126, Height: 189,
		})
		if err != nil {
			t.Fatalf("AddIdea failed: %v", err)
		}
		if idea.Width != 126 || idea.Height != 189 {
			t.Errorf("dimensions = %vx%v, want 126x189", idea.Width, idea.Height)
		}
	})

	t.Run("derived dimensions", func(t *testing.T) {
		idea, err := svc.AddIdea(ctx, AddIdeaRequest{PersonID: alice.ID, Text: "Book", Img: "file://img2.jpg"})
		if err != nil {
			t.Fatalf("AddIdea failed: %v", err)
		}
		if math.Abs(idea.Width-252) > 1e-9 || math.Abs(idea.Height-168) > 1e-9 {
			t.Errorf("dimensions = %vx%v, want 252x168", idea.Width, idea.Height)
		}
	})

	t.Run("validation", func(t *testing.T) {
		bad := []AddIdeaRequest{
			{PersonID: alice.ID, Text: " ", Img: "file://x.jpg"},
			{PersonID: alice.ID, Text: "Hat", Img: ""},
			{PersonID: alice.ID, Text: "Hat", Img: "file://x.jpg", Width: 10},
			{PersonID: alice.ID, Text: "Hat", Img: "file://x.jpg", Width: -1, Height: 5},
		}
		for _, req := range bad {
			if _, err := svc.AddIdea(ctx, req); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("AddIdea(%+v): expected ErrInvalidArgument, got %v", req, err)
			}
		}
	})

	t.Run("unknown person", func(t *testing.T) {
		_, err := svc.AddIdea(ctx, AddIdeaRequest{PersonID: "nobody", Text: "Hat", Img: "file://x.jpg"})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	if got := len(svc.ListIdeas(ctx, alice.ID)); got != 2 {
		t.Errorf("expected 2 ideas, got %d", got)
	}
}

func TestDeleteIdeaAndPerson(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	alice, _ := svc.AddPerson(ctx, "Alice", "1990/05/01")
	idea, err := svc.AddIdea(ctx, AddIdeaRequest{PersonID: alice.ID, Text: "Socks", Img: "file://img1.jpg"})
	if err != nil {
		t.Fatalf("AddIdea failed: %v", err)
	}

	if err := svc.DeleteIdea(ctx, alice.ID, idea.ID); err != nil {
		t.Fatalf("DeleteIdea failed: %v", err)
	}
	if n := len(svc.ListIdeas(ctx, alice.ID)); n != 0 {
		t.Errorf("expected no ideas, got %d", n)
	}

	if err := svc.DeletePerson(ctx, alice.ID); err != nil {
		t.Fatalf("DeletePerson failed: %v", err)
	}
	if _, err := svc.GetPerson(ctx, alice.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Unknown ids are not errors.
	if err := svc.DeletePerson(ctx, alice.ID); err != nil {
		t.Errorf("second DeletePerson returned %v", err)
	}
}

func TestImageSize(t *testing.T) {
	w, h := ImageSize(390)
	if math.Abs(w-245.7) > 1e-9 {
		t.Errorf("width = %v, want 245.7", w)
	}
	if math.Abs(h-163.8) > 1e-9 {
		t.Errorf("height = %v, want 163.8", h)
	}
}
