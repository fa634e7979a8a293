package user

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/M0h4mmadH/ex-online-shop/pkg/kvcache"
)

type mockRepository struct {
	CreateFunc     func(ctx context.Context, u *User) error
	GetByIDFunc    func(ctx context.Context, id uuid.UUID) (*User, error)
	GetByLoginFunc func(ctx context.Context, login string) (*User, error)
}

func (m *mockRepository) Create(ctx context.Context, u *User) error {
	return m.CreateFunc(ctx, u)
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockRepository) GetByLogin(ctx context.Context, login string) (*User, error) {
	return m.GetByLoginFunc(ctx, login)
}

type capturingNotifier struct {
	destination string
	code        string
}

func (n *capturingNotifier) SendOTP(_ context.Context, destination, code string) error {
	n.destination = destination
	n.code = code
	return nil
}

func TestService_RegisterAndVerifyOTP(t *testing.T) {
	cache := kvcache.New()
	defer cache.Close()

	var created *User
	repo := &mockRepository{
		CreateFunc: func(_ context.Context, u *User) error {
			u.ID = uuid.Must(uuid.NewV4())
			u.CreatedAt = time.Now().UTC()
			created = u
			return nil
		},
	}
	notifier := &capturingNotifier{}
	svc := NewService(repo, cache, notifier)

	reg := Registration{Email: "buyer@example.com", Password: "s3cret-pass"}
	require.NoError(t, svc.Register(context.Background(), reg))

	assert.Equal(t, "buyer@example.com", notifier.destination)
	require.Len(t, notifier.code, 6)

	u, err := svc.VerifyOTP(context.Background(), "buyer@example.com", notifier.code)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, created.ID, u.ID)
	assert.Equal(t, "buyer@example.com", u.Email)

	// The stored credential is a bcrypt hash, never the raw password.
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret-pass")))

	// The OTP is single-use.
	_, err = svc.VerifyOTP(context.Background(), "buyer@example.com", notifier.code)
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestService_VerifyOTP_WrongCode(t *testing.T) {
	cache := kvcache.New()
	defer cache.Close()

	repo := &mockRepository{
		CreateFunc: func(_ context.Context, _ *User) error {
			t.Fatal("no user may be created on a failed verification")
			return nil
		},
	}
	svc := NewService(repo, cache, &capturingNotifier{})

	require.NoError(t, svc.Register(context.Background(), Registration{Email: "buyer@example.com", Password: "s3cret-pass"}))

	_, err := svc.VerifyOTP(context.Background(), "buyer@example.com", "not-the-code")
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestService_Register_RequiresLogin(t *testing.T) {
	cache := kvcache.New()
	defer cache.Close()

	svc := NewService(&mockRepository{}, cache, &capturingNotifier{})

	err := svc.Register(context.Background(), Registration{Password: "s3cret-pass"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email or phone number is required")
}

func TestService_Register_PhoneAsLogin(t *testing.T) {
	cache := kvcache.New()
	defer cache.Close()

	notifier := &capturingNotifier{}
	svc := NewService(&mockRepository{}, cache, notifier)

	require.NoError(t, svc.Register(context.Background(), Registration{PhoneNumber: "09120000000", Password: "s3cret-pass"}))
	assert.Equal(t, "09120000000", notifier.destination)
}

func TestService_VerifyOTP_DuplicateUser(t *testing.T) {
	cache := kvcache.New()
	defer cache.Close()

	repo := &mockRepository{
		CreateFunc: func(_ context.Context, _ *User) error {
			return ErrAlreadyExists
		},
	}
	notifier := &capturingNotifier{}
	svc := NewService(repo, cache, notifier)

	require.NoError(t, svc.Register(context.Background(), Registration{Email: "buyer@example.com", Password: "s3cret-pass"}))

	_, err := svc.VerifyOTP(context.Background(), "buyer@example.com", notifier.code)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := generateOTP()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
}
