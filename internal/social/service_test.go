package social

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	CreateCommentFunc func(ctx context.Context, comment *Comment) error
	ReplaceRateFunc   func(ctx context.Context, rate *ProductRate) error
	ProductExistsFunc func(ctx context.Context, productID uuid.UUID) (bool, error)
}

func (m *mockRepository) CreateComment(ctx context.Context, comment *Comment) error {
	return m.CreateCommentFunc(ctx, comment)
}

func (m *mockRepository) ReplaceRate(ctx context.Context, rate *ProductRate) error {
	return m.ReplaceRateFunc(ctx, rate)
}

func (m *mockRepository) ProductExists(ctx context.Context, productID uuid.UUID) (bool, error) {
	return m.ProductExistsFunc(ctx, productID)
}

func TestService_CommentProduct(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())
	productID := uuid.Must(uuid.NewV4())

	t.Run("comment created", func(t *testing.T) {
		repo := &mockRepository{
			ProductExistsFunc: func(_ context.Context, _ uuid.UUID) (bool, error) {
				return true, nil
			},
			CreateCommentFunc: func(_ context.Context, comment *Comment) error {
				comment.ID = uuid.Must(uuid.NewV4())
				return nil
			},
		}

		comment, err := NewService(repo).CommentProduct(context.Background(), userID, productID, "solid build")
		require.NoError(t, err)
		assert.Equal(t, "solid build", comment.Comment)
		assert.Equal(t, productID, comment.ProductID)
	})

	t.Run("unknown product", func(t *testing.T) {
		repo := &mockRepository{
			ProductExistsFunc: func(_ context.Context, _ uuid.UUID) (bool, error) {
				return false, nil
			},
		}

		_, err := NewService(repo).CommentProduct(context.Background(), userID, productID, "solid build")
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestService_RateProduct(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())
	productID := uuid.Must(uuid.NewV4())

	testCases := []struct {
		name    string
		rate    int
		exists  bool
		wantErr error
	}{
		{name: "lowest rate accepted", rate: 1, exists: true},
		{name: "highest rate accepted", rate: 10, exists: true},
		{name: "zero rate rejected", rate: 0, exists: true, wantErr: ErrInvalidRate},
		{name: "rate above range rejected", rate: 11, exists: true, wantErr: ErrInvalidRate},
		{name: "unknown product", rate: 5, exists: false, wantErr: ErrProductNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockRepository{
				ProductExistsFunc: func(_ context.Context, _ uuid.UUID) (bool, error) {
					return tc.exists, nil
				},
				ReplaceRateFunc: func(_ context.Context, rate *ProductRate) error {
					rate.ID = uuid.Must(uuid.NewV4())
					return nil
				},
			}

			rate, err := NewService(repo).RateProduct(context.Background(), userID, productID, tc.rate)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.rate, rate.Rate)
		})
	}
}
