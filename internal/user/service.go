package user

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/M0h4mmadH/ex-online-shop/pkg/kvcache"
)

const otpTTL = 10 * time.Minute

var ErrInvalidOTP = errors.New("invalid otp")

// Notifier delivers an OTP code to the user. Actual delivery channels live
// outside this service.
type Notifier interface {
	SendOTP(ctx context.Context, destination, code string) error
}

// LogNotifier only logs the code. Stands in until a real SMS/email channel
// is plugged.
type LogNotifier struct{}

func (LogNotifier) SendOTP(_ context.Context, destination, code string) error {
	log.Info().Str("destination", destination).Str("otp", code).Msg("notifier: OTP issued")
	return nil
}

type Service interface {
	Register(ctx context.Context, reg Registration) error
	VerifyOTP(ctx context.Context, login, code string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}

type service struct {
	repo     Repository
	cache    *kvcache.Cache
	notifier Notifier
}

func NewService(repo Repository, cache *kvcache.Cache, notifier Notifier) Service {
	return &service{repo: repo, cache: cache, notifier: notifier}
}

// Register stores the pending sign-up keyed by a fresh OTP and hands the
// code to the notifier. No user row is written until the OTP is verified.
func (s *service) Register(ctx context.Context, reg Registration) error {
	login := reg.Email
	if login == "" {
		login = reg.PhoneNumber
	}
	if login == "" {
		return errors.New("service: email or phone number is required")
	}

	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("service: failed to generate otp: %w", err)
	}

	s.cache.Set("otp:"+login, code, otpTTL)
	s.cache.Set("registration:"+code, reg, otpTTL)

	if err := s.notifier.SendOTP(ctx, login, code); err != nil {
		log.Error().Err(err).Str("login", login).Msg("service: failed to send otp")
		return fmt.Errorf("service: failed to send otp: %w", err)
	}

	return nil
}

func (s *service) VerifyOTP(ctx context.Context, login, code string) (*User, error) {
	stored, ok := s.cache.Get("otp:" + login)
	if !ok || stored != code {
		log.Warn().Str("login", login).Msg("service: otp verification failed")
		return nil, ErrInvalidOTP
	}

	pending, ok := s.cache.Get("registration:" + code)
	if !ok {
		return nil, ErrInvalidOTP
	}
	reg, ok := pending.(Registration)
	if !ok {
		return nil, ErrInvalidOTP
	}
	s.cache.Delete("otp:" + login)
	s.cache.Delete("registration:" + code)

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to hash password")
		return nil, fmt.Errorf("service: failed to hash password: %w", err)
	}

	u := &User{
		Email:        reg.Email,
		PhoneNumber:  reg.PhoneNumber,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, ErrAlreadyExists
		}
		log.Error().Err(err).Str("login", login).Msg("service: failed to create user")
		return nil, fmt.Errorf("service: failed to create user: %w", err)
	}

	log.Info().Stringer("user_id", u.ID).Msg("service: user registered")
	return u, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to get user by id: %w", err)
	}
	return u, nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
