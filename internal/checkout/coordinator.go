package checkout

import (
	"context"
	"log"
	"sync"

	"github.com/waveshop/shopclient/internal/domain"
)

// Cart is the slice of the cart store the coordinator needs.
type Cart interface {
	Count() int
	Total() int
	Snapshot() []domain.OrderItem
	Clear(ctx context.Context) error
}

// Session exposes the cached server-side balance state.
type Session interface {
	CachedState() (domain.SessionState, bool)
	ReconcileBalance(balance int)
}

// Gateway submits a checkout request to the server.
type Gateway interface {
	SubmitCheckout(ctx context.Context, items []domain.OrderItem) (domain.CheckoutReceipt, error)
}

// Coordinator drives the checkout transaction. At most one submission is
// in flight at a time; a second trigger while one is outstanding is
// refused outright rather than queued.
type Coordinator struct {
	cart    Cart
	session Session
	gateway Gateway

	mu         sync.Mutex
	submitting bool
}

func NewCoordinator(cart Cart, session Session, gateway Gateway) *Coordinator {
	return &Coordinator{
		cart:    cart,
		session: session,
		gateway: gateway,
	}
}

// Eligible reports whether a checkout would pass the local precondition
// right now. The UI renders the checkout affordance disabled when false.
func (c *Coordinator) Eligible() bool {
	state, ok := c.session.CachedState()
	return ok && c.cart.Count() > 0 && state.Balance >= c.cart.Total()
}

// InFlight reports whether a submission is currently outstanding.
func (c *Coordinator) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// Checkout runs the full transaction: local eligibility gate, snapshot,
// submission, reconciliation. The precondition reads the live cart total
// at the moment of the check, before any network I/O; a violated
// precondition refuses the checkout without sending a request. On a
// settled checkout the cached balance is updated from the server's answer
// and the cart is cleared, memory and persisted copy both. On a rejected
// checkout the cart is left exactly as it was, and a retry is allowed.
func (c *Coordinator) Checkout(ctx context.Context) (domain.CheckoutReceipt, error) {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return domain.CheckoutReceipt{}, domain.ErrCheckoutInFlight
	}
	c.submitting = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()

	if c.cart.Count() == 0 {
		return domain.CheckoutReceipt{}, domain.ErrCartEmpty
	}
	state, ok := c.session.CachedState()
	if !ok {
		return domain.CheckoutReceipt{}, domain.ErrNoSession
	}
	if state.Balance < c.cart.Total() {
		return domain.CheckoutReceipt{}, domain.ErrInsufficientBalance
	}

	// Snapshot now: cart mutations racing the in-flight request cannot
	// change what gets submitted.
	items := c.cart.Snapshot()

	receipt, err := c.gateway.SubmitCheckout(ctx, items)
	if err != nil {
		return domain.CheckoutReceipt{}, err
	}

	c.session.ReconcileBalance(receipt.Balance)
	if err := c.cart.Clear(ctx); err != nil {
		// The server already settled; the stale persisted cart will be
		// overwritten by the next mutation.
		log.Printf("Clearing cart after settled checkout failed: %v", err)
	}
	return receipt, nil
}
