package domain

import "errors"

var (
	ErrNetwork             = errors.New("request could not complete")
	ErrNoSession           = errors.New("no active session")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBonusInvalid        = errors.New("bonus amount must be a whole number between 1 and 999")
	ErrBonusRejected       = errors.New("bonus was rejected")
	ErrCatalogUnavailable  = errors.New("catalog unavailable")
	ErrLineNotFound        = errors.New("cart line not found")
	ErrCartEmpty           = errors.New("cart is empty")
	ErrCheckoutInFlight    = errors.New("checkout already in flight")
	ErrCheckoutRejected    = errors.New("checkout was rejected")
)

type Product struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	UnitPrice int    `json:"price"`
	ImageRef  string `json:"image"`
}

// CartLine is one product's accumulated quantity in the cart. A line with
// Quantity 0 must not exist: decrementing to zero removes the line instead.
type CartLine struct {
	ProductID int    `json:"id"`
	Name      string `json:"name"`
	UnitPrice int    `json:"price"`
	Quantity  int    `json:"quantity"`
}

// SessionState is the server-owned balance/bonus record. The client only
// ever holds a cached copy of it.
type SessionState struct {
	Balance       int  `json:"balance"`
	BonusReceived bool `json:"bonus_received"`
}

type OrderItem struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

// CheckoutReceipt is what a settled checkout leaves behind: the new
// server-side balance and, for some orders, a reward token.
type CheckoutReceipt struct {
	Balance     int
	RewardToken string
}
