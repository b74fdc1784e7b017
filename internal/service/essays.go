package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/inkwell/backend/internal/config"
	"github.com/inkwell/backend/internal/db"
	"github.com/inkwell/backend/internal/model"
)

const (
	essayIDLength = 8
	maxIDAttempts = 5

	essayIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

var (
	ErrNotFound       = errors.New("essay not found")
	ErrForbidden      = errors.New("forbidden")
	ErrEmptyTitle     = errors.New("title must not be empty")
	ErrTitleTooLong   = errors.New("title too long")
	ErrContentTooLong = errors.New("content too long")
	ErrIDExhausted    = errors.New("could not allocate a unique essay id")
)

// EssayStore is the slice of the database the essay service needs. The
// owner-scoped mutations carry the ownership predicate into the store so a
// race between two accounts can never produce a cross-account write.
type EssayStore interface {
	CreateEssay(ctx context.Context, id string, ownerID int64, title, content string) (*model.Essay, error)
	GetEssayByID(ctx context.Context, id string) (*model.Essay, error)
	EssayExists(ctx context.Context, id string) (bool, error)
	ListEssaysByOwner(ctx context.Context, ownerID int64) ([]model.EssayListItem, error)
	ListPublishedEssays(ctx context.Context) ([]model.EssayListItem, error)
	UpdateEssayOwned(ctx context.Context, id string, ownerID int64, title, content *string) (*model.Essay, error)
	SetEssayStatusOwned(ctx context.Context, id string, ownerID int64, status string) (*model.Essay, error)
	DeleteEssayOwned(ctx context.Context, id string, ownerID int64) (int64, error)
}

type EssayService struct {
	store            EssayStore
	maxContentLength int
	maxTitleLength   int
}

func NewEssayService(store EssayStore, cfg config.EssayConfig) (*EssayService, error) {
	maxContent, err := strconv.Atoi(cfg.MaxContentLength)
	if err != nil || maxContent <= 0 {
		return nil, fmt.Errorf("invalid MAX_CONTENT_LENGTH: %q", cfg.MaxContentLength)
	}
	maxTitle, err := strconv.Atoi(cfg.MaxTitleLength)
	if err != nil || maxTitle <= 0 {
		return nil, fmt.Errorf("invalid MAX_TITLE_LENGTH: %q", cfg.MaxTitleLength)
	}

	return &EssayService{
		store:            store,
		maxContentLength: maxContent,
		maxTitleLength:   maxTitle,
	}, nil
}

// Create stores a new draft owned by the caller. Identifier collisions are
// retried up to maxIDAttempts; running out means the generator or the id
// space is misconfigured, so it fails loudly instead of looping forever.
func (s *EssayService) Create(ctx context.Context, ownerID int64, title, content string) (*model.Essay, error) {
	title = strings.TrimSpace(title)
	if err := s.validateTitle(title); err != nil {
		return nil, err
	}
	if err := s.validateContent(content); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := newEssayID()
		if err != nil {
			return nil, err
		}

		exists, err := s.store.EssayExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		essay, err := s.store.CreateEssay(ctx, id, ownerID, title, content)
		if err != nil {
			// A concurrent insert can still win the id between the
			// existence probe and the insert; treat it as a collision.
			if isUniqueViolation(err) {
				continue
			}
			return nil, err
		}
		return essay, nil
	}

	return nil, ErrIDExhausted
}

// Get applies the visibility rule: published essays are public, drafts exist
// only for their owner. A hidden draft answers ErrNotFound, never
// ErrForbidden, so existence does not leak.
func (s *EssayService) Get(ctx context.Context, id string, viewer *model.AuthUser) (*model.Essay, error) {
	essay, err := s.store.GetEssayByID(ctx, id)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if essay.Status != model.StatusPublished {
		if viewer == nil || viewer.ID != essay.OwnerID {
			return nil, ErrNotFound
		}
	}
	return essay, nil
}

func (s *EssayService) ListMine(ctx context.Context, ownerID int64) ([]model.EssayListItem, error) {
	return s.store.ListEssaysByOwner(ctx, ownerID)
}

func (s *EssayService) ListPublic(ctx context.Context) ([]model.EssayListItem, error) {
	return s.store.ListPublishedEssays(ctx)
}

// Update edits title and/or content, owner-only.
func (s *EssayService) Update(ctx context.Context, id string, ownerID int64, req model.UpdateEssayRequest) (*model.Essay, error) {
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		if err := s.validateTitle(trimmed); err != nil {
			return nil, err
		}
		req.Title = &trimmed
	}
	if req.Content != nil {
		if err := s.validateContent(*req.Content); err != nil {
			return nil, err
		}
	}

	essay, err := s.store.UpdateEssayOwned(ctx, id, ownerID, req.Title, req.Content)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, s.writeMiss(ctx, id)
		}
		return nil, err
	}
	return essay, nil
}

// Publish makes the essay publicly visible. Publishing an already-published
// essay succeeds and leaves it published.
func (s *EssayService) Publish(ctx context.Context, id string, ownerID int64) (*model.Essay, error) {
	return s.setStatus(ctx, id, ownerID, model.StatusPublished)
}

// Unpublish returns the essay to draft. Idempotent like Publish.
func (s *EssayService) Unpublish(ctx context.Context, id string, ownerID int64) (*model.Essay, error) {
	return s.setStatus(ctx, id, ownerID, model.StatusDraft)
}

func (s *EssayService) Delete(ctx context.Context, id string, ownerID int64) error {
	affected, err := s.store.DeleteEssayOwned(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return s.writeMiss(ctx, id)
	}
	return nil
}

func (s *EssayService) setStatus(ctx context.Context, id string, ownerID int64, status string) (*model.Essay, error) {
	essay, err := s.store.SetEssayStatusOwned(ctx, id, ownerID, status)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, s.writeMiss(ctx, id)
		}
		return nil, err
	}
	return essay, nil
}

// writeMiss resolves a zero-row owner-scoped mutation: the essay either does
// not exist (404) or belongs to someone else (403). Write attempts keep the
// 403/404 split; only draft reads hide existence.
func (s *EssayService) writeMiss(ctx context.Context, id string) error {
	exists, err := s.store.EssayExists(ctx, id)
	if err != nil {
		return err
	}
	if exists {
		return ErrForbidden
	}
	return ErrNotFound
}

func (s *EssayService) validateTitle(title string) error {
	if title == "" {
		return ErrEmptyTitle
	}
	if len(title) > s.maxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

func (s *EssayService) validateContent(content string) error {
	if len(content) > s.maxContentLength {
		return ErrContentTooLong
	}
	return nil
}

func newEssayID() (string, error) {
	buf := make([]byte, essayIDLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = essayIDAlphabet[int(b)%len(essayIDAlphabet)]
	}
	return string(buf), nil
}
