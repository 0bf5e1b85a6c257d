package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/zlutov/notepad/models"
	"github.com/zlutov/notepad/store"
)

func (s *Service) CreateNote(ctx context.Context, userId, title, content string, tags []string) (models.Note, error) {
	if strings.TrimSpace(title) == "" {
		return models.Note{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(content) == "" {
		return models.Note{}, fmt.Errorf("%w: content is required", ErrValidation)
	}
	if tags == nil {
		tags = []string{}
	}

	// UUIDv7 note ids are time-ordered, so the sort key reflects creation order
	noteId, err := uuid.NewV7()
	if err != nil {
		return models.Note{}, err
	}

	now := s.Now().Unix()
	note := models.Note{
		Id:      noteId.String(),
		UserId:  userId,
		Title:   title,
		Content: content,
		Tags:    tags,
		Created: now,
		Updated: now,
	}

	created, err := s.Store.CreateNote(ctx, note)
	if err != nil {
		return models.Note{}, fmt.Errorf("create note failed: %w", err)
	}

	s.invalidateNoteList(ctx, userId)
	return created, nil
}

func (s *Service) UpdateNote(ctx context.Context, userId, noteId string, patch models.NotePatch) (models.Note, error) {
	if patch.IsEmpty() {
		return models.Note{}, fmt.Errorf("%w: no changes provided", ErrValidation)
	}

	note := models.Note{
		Id:      noteId,
		UserId:  userId,
		Updated: s.Now().Unix(),
	}
	fields := []string{"Updated"}

	if patch.Title != nil {
		note.Title = *patch.Title
		fields = append(fields, "Title")
	}
	if patch.Content != nil {
		note.Content = *patch.Content
		fields = append(fields, "Content")
	}
	if patch.Tags != nil {
		note.Tags = *patch.Tags
		if note.Tags == nil {
			note.Tags = []string{}
		}
		fields = append(fields, "Tags")
	}
	if patch.IsPinned != nil {
		note.IsPinned = *patch.IsPinned
		fields = append(fields, "IsPinned")
	}

	updated, err := s.Store.UpdateNote(ctx, note, fields)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			// A foreign note and a missing note are indistinguishable here
			return models.Note{}, ErrNoteNotFound
		}
		return models.Note{}, fmt.Errorf("update note failed: %w", err)
	}

	s.invalidateNoteList(ctx, userId)
	return updated, nil
}

func (s *Service) SetPinned(ctx context.Context, userId, noteId string, pinned bool) (models.Note, error) {
	return s.UpdateNote(ctx, userId, noteId, models.NotePatch{IsPinned: &pinned})
}

func (s *Service) DeleteNote(ctx context.Context, userId, noteId string) error {
	if err := s.Store.DeleteNote(ctx, userId, noteId); err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return ErrNoteNotFound
		}
		return fmt.Errorf("delete note failed: %w", err)
	}

	s.invalidateNoteList(ctx, userId)
	return nil
}

// ListNotes returns the user's notes, pinned first, most recently updated
// first within each group. The sorted list is cached; any cache failure
// falls through to the store.
func (s *Service) ListNotes(ctx context.Context, userId string) ([]models.Note, error) {
	if data, err := s.Cache.GetNoteList(ctx, userId); err == nil {
		var notes []models.Note
		if err := json.Unmarshal(data, &notes); err == nil {
			return notes, nil
		}
	}

	notes, err := s.Store.ListNotes(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("list notes failed: %w", err)
	}

	sortNotes(notes)

	if data, err := json.Marshal(notes); err == nil {
		if err := s.Cache.SetNoteList(ctx, userId, data); err != nil {
			log.Printf("Failed to cache note list for user %s: %v", userId, err)
		}
	}

	return notes, nil
}

func (s *Service) SearchNotes(ctx context.Context, userId, query string) ([]models.Note, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query is required", ErrValidation)
	}

	// QuoteMeta keeps user input inert: "a.*b(" matches those characters
	// literally instead of acting as a pattern
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(query))
	if err != nil {
		return nil, fmt.Errorf("%w: bad search query", ErrValidation)
	}

	notes, err := s.ListNotes(ctx, userId)
	if err != nil {
		return nil, err
	}

	matches := make([]models.Note, 0, len(notes))
	for _, note := range notes {
		if noteMatches(note, re) {
			matches = append(matches, note)
		}
	}

	return matches, nil
}

func noteMatches(note models.Note, re *regexp.Regexp) bool {
	if re.MatchString(note.Title) || re.MatchString(note.Content) {
		return true
	}
	for _, tag := range note.Tags {
		if re.MatchString(tag) {
			return true
		}
	}
	return false
}

// Stable sort keeps equal elements in store order, so identical inputs
// always produce identical output
func sortNotes(notes []models.Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].IsPinned != notes[j].IsPinned {
			return notes[i].IsPinned
		}
		return notes[i].Updated > notes[j].Updated
	})
}

func (s *Service) invalidateNoteList(ctx context.Context, userId string) {
	if err := s.Cache.InvalidateNoteList(ctx, userId); err != nil {
		log.Printf("Failed to invalidate note list for user %s: %v", userId, err)
	}
}
