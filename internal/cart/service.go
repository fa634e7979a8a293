package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type Service interface {
	AddItemsToCart(ctx context.Context, userID uuid.UUID, items []ItemInput) (*Cart, []CartItem, error)
	DeleteCart(ctx context.Context, userID, cartID uuid.UUID) (*Cart, error)
	ListUserCarts(ctx context.Context, userID uuid.UUID, status *CartStatus) ([]Cart, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) AddItemsToCart(ctx context.Context, userID uuid.UUID, items []ItemInput) (*Cart, []CartItem, error) {
	if len(items) == 0 {
		return nil, nil, errors.New("service: at least one item is required")
	}
	for _, item := range items {
		if item.ProductID == uuid.Nil {
			return nil, nil, errors.New("service: product id cannot be nil")
		}
		if item.Quantity < 1 {
			return nil, nil, fmt.Errorf("service: quantity for product %s must be at least 1", item.ProductID)
		}
	}

	cart, cartItems, err := s.repo.AddItemsToCart(ctx, userID, items)
	if err != nil {
		switch {
		case errors.Is(err, ErrTooManyItems):
			log.Warn().Stringer("user_id", userID).Int("requested", len(items)).Msg("service: cart capacity exceeded")
			return nil, nil, ErrTooManyItems
		case errors.Is(err, ErrProductNotFound):
			log.Warn().Err(err).Stringer("user_id", userID).Msg("service: unknown product in add-items batch")
			return nil, nil, err
		}
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to add items to cart")
		return nil, nil, fmt.Errorf("service: failed to add items to cart: %w", err)
	}

	log.Info().Stringer("cart_id", cart.ID).Stringer("user_id", userID).Int("items", len(cartItems)).Msg("service: items added to cart")
	return cart, cartItems, nil
}

func (s *service) DeleteCart(ctx context.Context, userID, cartID uuid.UUID) (*Cart, error) {
	cart, err := s.repo.DeactivateCart(ctx, userID, cartID)
	if err != nil {
		if errors.Is(err, ErrCartNotFound) {
			log.Warn().Stringer("cart_id", cartID).Stringer("user_id", userID).Msg("service: cart not found for delete")
			return nil, ErrCartNotFound
		}
		log.Error().Err(err).Stringer("cart_id", cartID).Msg("service: failed to delete cart")
		return nil, fmt.Errorf("service: failed to delete cart: %w", err)
	}

	log.Info().Stringer("cart_id", cart.ID).Stringer("user_id", userID).Msg("service: cart deactivated")
	return cart, nil
}

func (s *service) ListUserCarts(ctx context.Context, userID uuid.UUID, status *CartStatus) ([]Cart, error) {
	carts, err := s.repo.ListUserCarts(ctx, userID, status)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to list user carts")
		return nil, fmt.Errorf("service: failed to list user carts: %w", err)
	}
	return carts, nil
}
