package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/M0h4mmadH/ex-online-shop/internal/address"
	"github.com/M0h4mmadH/ex-online-shop/internal/cart"
	"github.com/M0h4mmadH/ex-online-shop/internal/catalog"
	"github.com/M0h4mmadH/ex-online-shop/internal/receipt"
)

var (
	ErrAddressNotFound = errors.New("address not found")
	ErrCartNotFound    = errors.New("cart not found")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrCartConflict    = errors.New("cart was modified concurrently")
	ErrPaymentFailed   = errors.New("payment failed")
)

// CityMismatchError reports the first cart product whose city restriction
// does not match the chosen delivery address.
type CityMismatchError struct {
	ProductID uuid.UUID
}

func (e *CityMismatchError) Error() string {
	return fmt.Sprintf("product %s city does not match address city", e.ProductID)
}

// CartStore is the slice of the cart repository checkout needs.
type CartStore interface {
	GetActiveCart(ctx context.Context, userID, cartID uuid.UUID) (*cart.Cart, error)
	GetCartItems(ctx context.Context, cartID uuid.UUID) ([]cart.CartItem, error)
	MarkCartPaid(ctx context.Context, userID, cartID uuid.UUID) error
}

type ProductStore interface {
	GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error)
}

type AddressStore interface {
	GetActiveAddress(ctx context.Context, userID, addressID uuid.UUID) (*address.Address, error)
}

type ReceiptStore interface {
	Create(ctx context.Context, rcpt *receipt.Receipt) error
}

// PaymentGateway charges the caller for amount and returns a tracking code.
// The call is synchronous and is not retried here.
type PaymentGateway interface {
	Charge(ctx context.Context, amount int64) (string, error)
}

// Result is the transient outcome of a successful purchase.
type Result struct {
	Cart         *cart.Cart `json:"cart"`
	TotalPrice   int64      `json:"total_price"`
	TrackingCode string     `json:"tracking_code"`
}

type Service interface {
	Purchase(ctx context.Context, userID, cartID, addressID uuid.UUID) (*Result, error)
}

type service struct {
	carts     CartStore
	products  ProductStore
	addresses AddressStore
	receipts  ReceiptStore
	gateway   PaymentGateway
}

func NewService(carts CartStore, products ProductStore, addresses AddressStore, receipts ReceiptStore, gateway PaymentGateway) Service {
	return &service{
		carts:     carts,
		products:  products,
		addresses: addresses,
		receipts:  receipts,
		gateway:   gateway,
	}
}

// Purchase validates the cart against the chosen address, charges the total
// through the payment gateway and flips the cart to PAID. Every check runs
// before the gateway is touched, so a rejected purchase never charges anyone
// and leaves the cart OPEN.
//
// The total sums each line's product price once; line quantity does not
// factor in.
func (s *service) Purchase(ctx context.Context, userID, cartID, addressID uuid.UUID) (*Result, error) {
	addr, err := s.addresses.GetActiveAddress(ctx, userID, addressID)
	if err != nil {
		if errors.Is(err, address.ErrAddressNotFound) {
			log.Warn().Stringer("address_id", addressID).Stringer("user_id", userID).Msg("service: address not found for purchase")
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("service: failed to get address: %w", err)
	}

	userCart, err := s.carts.GetActiveCart(ctx, userID, cartID)
	if err != nil {
		if errors.Is(err, cart.ErrCartNotFound) {
			log.Warn().Stringer("cart_id", cartID).Stringer("user_id", userID).Msg("service: cart not found for purchase")
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("service: failed to get cart: %w", err)
	}

	items, err := s.carts.GetCartItems(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get cart items: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	productIDs := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}

	products, err := s.products.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get cart products: %w", err)
	}
	productByID := make(map[uuid.UUID]catalog.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}

	var totalPrice int64
	for _, item := range items {
		product, ok := productByID[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("service: cart references missing product %s", item.ProductID)
		}
		if product.CityID.Valid && product.CityID.UUID != addr.CityID {
			log.Warn().
				Stringer("cart_id", cartID).
				Stringer("product_id", product.ID).
				Msg("service: product city restriction does not match address")
			return nil, &CityMismatchError{ProductID: product.ID}
		}
		totalPrice += product.Price
	}

	trackingCode, err := s.gateway.Charge(ctx, totalPrice)
	if err != nil {
		log.Error().Err(err).Stringer("cart_id", cartID).Int64("amount", totalPrice).Msg("service: payment gateway charge failed")
		return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	if err := s.carts.MarkCartPaid(ctx, userID, cartID); err != nil {
		if errors.Is(err, cart.ErrCartConflict) {
			log.Warn().Stringer("cart_id", cartID).Msg("service: cart changed during purchase")
			return nil, ErrCartConflict
		}
		return nil, fmt.Errorf("service: failed to mark cart paid: %w", err)
	}
	userCart.Status = cart.StatusPaid

	rcpt := &receipt.Receipt{
		UserID:       userID,
		CartID:       cartID,
		Price:        totalPrice,
		TrackingCode: trackingCode,
	}
	if err := s.receipts.Create(ctx, rcpt); err != nil {
		// The purchase is already settled; a lost receipt is recoverable
		// from the gateway's records.
		log.Error().Err(err).Stringer("cart_id", cartID).Str("tracking_code", trackingCode).Msg("service: failed to record receipt")
	}

	log.Info().
		Stringer("cart_id", cartID).
		Stringer("user_id", userID).
		Int64("total_price", totalPrice).
		Str("tracking_code", trackingCode).
		Msg("service: purchase completed")

	return &Result{Cart: userCart, TotalPrice: totalPrice, TrackingCode: trackingCode}, nil
}
