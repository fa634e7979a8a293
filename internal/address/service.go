package address

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type Service interface {
	CreateAddress(ctx context.Context, userID uuid.UUID, cityName, addressText string) (*Address, error)
	UpdateAddress(ctx context.Context, userID uuid.UUID, input UpdateInput) (*Address, error)
	DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) (*Address, error)
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]Address, error)
	GetActiveAddress(ctx context.Context, userID, addressID uuid.UUID) (*Address, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateAddress(ctx context.Context, userID uuid.UUID, cityName, addressText string) (*Address, error) {
	cityID, err := s.repo.GetCityIDByName(ctx, cityName)
	if err != nil {
		if errors.Is(err, ErrCityNotFound) {
			log.Warn().Str("city", cityName).Stringer("user_id", userID).Msg("service: unknown city for address")
			return nil, ErrCityNotFound
		}
		return nil, fmt.Errorf("service: failed to resolve city: %w", err)
	}

	addr := &Address{
		UserID:   userID,
		CityID:   cityID,
		CityName: cityName,
		Address:  addressText,
	}
	if err := s.repo.Create(ctx, addr); err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to create address")
		return nil, fmt.Errorf("service: failed to create address: %w", err)
	}

	log.Info().Stringer("address_id", addr.ID).Stringer("user_id", userID).Msg("service: address created")
	return addr, nil
}

func (s *service) UpdateAddress(ctx context.Context, userID uuid.UUID, input UpdateInput) (*Address, error) {
	addr, err := s.repo.Update(ctx, userID, input)
	if err != nil {
		if errors.Is(err, ErrAddressNotFound) || errors.Is(err, ErrCityNotFound) {
			return nil, err
		}
		log.Error().Err(err).Stringer("address_id", input.AddressID).Msg("service: failed to update address")
		return nil, fmt.Errorf("service: failed to update address: %w", err)
	}
	return addr, nil
}

func (s *service) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) (*Address, error) {
	addr, err := s.repo.Deactivate(ctx, userID, addressID)
	if err != nil {
		if errors.Is(err, ErrAddressNotFound) {
			return nil, ErrAddressNotFound
		}
		log.Error().Err(err).Stringer("address_id", addressID).Msg("service: failed to delete address")
		return nil, fmt.Errorf("service: failed to delete address: %w", err)
	}

	log.Info().Stringer("address_id", addressID).Stringer("user_id", userID).Msg("service: address deactivated")
	return addr, nil
}

func (s *service) ListAddresses(ctx context.Context, userID uuid.UUID) ([]Address, error) {
	addresses, err := s.repo.ListActive(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to list addresses")
		return nil, fmt.Errorf("service: failed to list addresses: %w", err)
	}
	return addresses, nil
}

func (s *service) GetActiveAddress(ctx context.Context, userID, addressID uuid.UUID) (*Address, error) {
	addr, err := s.repo.GetActiveAddress(ctx, userID, addressID)
	if err != nil {
		if errors.Is(err, ErrAddressNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("service: failed to get address: %w", err)
	}
	return addr, nil
}
