package social

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

const (
	MinRate = 1
	MaxRate = 10
)

var ErrInvalidRate = errors.New("rate out of range")

type Service interface {
	CommentProduct(ctx context.Context, userID, productID uuid.UUID, text string) (*Comment, error)
	RateProduct(ctx context.Context, userID, productID uuid.UUID, rate int) (*ProductRate, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CommentProduct(ctx context.Context, userID, productID uuid.UUID, text string) (*Comment, error) {
	exists, err := s.repo.ProductExists(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to check product: %w", err)
	}
	if !exists {
		log.Warn().Stringer("product_id", productID).Msg("service: comment on unknown product")
		return nil, ErrProductNotFound
	}

	comment := &Comment{
		UserID:    userID,
		ProductID: productID,
		Comment:   text,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		log.Error().Err(err).Stringer("product_id", productID).Msg("service: failed to create comment")
		return nil, fmt.Errorf("service: failed to create comment: %w", err)
	}

	return comment, nil
}

func (s *service) RateProduct(ctx context.Context, userID, productID uuid.UUID, rate int) (*ProductRate, error) {
	if rate < MinRate || rate > MaxRate {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRate, rate)
	}

	exists, err := s.repo.ProductExists(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to check product: %w", err)
	}
	if !exists {
		log.Warn().Stringer("product_id", productID).Msg("service: rate on unknown product")
		return nil, ErrProductNotFound
	}

	productRate := &ProductRate{
		UserID:    userID,
		ProductID: productID,
		Rate:      rate,
	}
	if err := s.repo.ReplaceRate(ctx, productRate); err != nil {
		log.Error().Err(err).Stringer("product_id", productID).Msg("service: failed to rate product")
		return nil, fmt.Errorf("service: failed to rate product: %w", err)
	}

	return productRate, nil
}
