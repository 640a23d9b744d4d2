// Package tags manages tags and their assignment to transactions.
package tags

import (
	"context"
	"errors"
	"strings"

	"github.com/feinhq/fein/internal/app/domain/tag"
	"github.com/feinhq/fein/internal/app/storage"
	apperrors "github.com/feinhq/fein/internal/errors"
	"github.com/feinhq/fein/internal/logging"
)

// Service manages the shared tag vocabulary and per-transaction assignments.
type Service struct {
	store        storage.TagStore
	transactions storage.TransactionStore
	log          *logging.Logger
}

// New constructs a tag service.
func New(store storage.TagStore, transactions storage.TransactionStore, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("tags")
	}
	return &Service{store: store, transactions: transactions, log: log}
}

// Create adds a tag to the vocabulary.
func (s *Service) Create(ctx context.Context, name string) (tag.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return tag.Tag{}, apperrors.Validation("tag_name is required")
	}

	created, err := s.store.CreateTag(ctx, tag.Tag{Name: name})
	if err != nil {
		return tag.Tag{}, err
	}
	s.log.WithContext(ctx).WithField("tag_id", created.ID).Info("tag created")
	return created, nil
}

// Get resolves a tag by id.
func (s *Service) Get(ctx context.Context, id string) (tag.Tag, error) {
	t, err := s.store.GetTag(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return tag.Tag{}, apperrors.NotFound("tag not found")
	}
	return t, err
}

// List returns all tags.
func (s *Service) List(ctx context.Context) ([]tag.Tag, error) {
	return s.store.ListTags(ctx)
}

// Assign attaches a tag to a transaction visible to userID.
func (s *Service) Assign(ctx context.Context, userID, transactionID, tagID string) (tag.Assignment, error) {
	if transactionID == "" {
		return tag.Assignment{}, apperrors.Validation("transaction_id is required")
	}
	if tagID == "" {
		return tag.Assignment{}, apperrors.Validation("tag_id is required")
	}

	if err := s.checkVisible(ctx, userID, transactionID); err != nil {
		return tag.Assignment{}, err
	}
	if _, err := s.store.GetTag(ctx, tagID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return tag.Assignment{}, apperrors.NotFound("tag not found")
		}
		return tag.Assignment{}, err
	}

	created, err := s.store.CreateAssignment(ctx, tag.Assignment{
		TransactionID: transactionID,
		TagID:         tagID,
	})
	if err != nil {
		return tag.Assignment{}, err
	}
	s.log.WithContext(ctx).WithFields(map[string]interface{}{
		"transaction_id": transactionID,
		"tag_id":         tagID,
	}).Info("tag assigned")
	return created, nil
}

// ListForTransaction returns the tags attached to a transaction visible to
// userID.
func (s *Service) ListForTransaction(ctx context.Context, userID, transactionID string) ([]tag.Tag, error) {
	if err := s.checkVisible(ctx, userID, transactionID); err != nil {
		return nil, err
	}
	return s.store.ListTagsForTransaction(ctx, transactionID)
}

func (s *Service) checkVisible(ctx context.Context, userID, transactionID string) error {
	var err error
	if userID == "" {
		_, err = s.transactions.GetTransaction(ctx, transactionID)
	} else {
		_, err = s.transactions.GetTransactionForUser(ctx, transactionID, userID)
	}
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.NotFound("transaction not found")
	}
	return err
}
