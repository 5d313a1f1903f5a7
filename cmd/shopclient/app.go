package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/waveshop/shopclient/internal/api"
	"github.com/waveshop/shopclient/internal/cart"
	"github.com/waveshop/shopclient/internal/checkout"
	"github.com/waveshop/shopclient/internal/domain"
)

// app is the terminal binding layer: it turns typed commands into calls
// on the core components and renders their data as text. The core never
// depends on it.
type app struct {
	catalog     *api.CatalogClient
	session     *api.SessionClient
	cart        *cart.Store
	coordinator *checkout.Coordinator
	out         io.Writer

	products []domain.Product
}

func (a *app) run(ctx context.Context, in io.Reader) error {
	a.refresh(ctx)

	if suffix := a.session.SessionSuffix(); suffix != "" {
		fmt.Fprintf(a.out, "Session ...%s\n", suffix)
	}
	if state, ok := a.session.CachedState(); ok && !state.BonusReceived {
		fmt.Fprintln(a.out, "A one-time bonus is available: use 'bonus <amount>' to claim it.")
	}
	fmt.Fprintln(a.out, "Type 'help' for commands.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(a.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if quit := a.dispatch(ctx, fields[0], fields[1:]); quit {
			return nil
		}
	}
}

func (a *app) dispatch(ctx context.Context, command string, args []string) bool {
	switch command {
	case "products":
		a.renderProducts()
	case "cart":
		a.renderCart()
	case "add":
		a.addToCart(ctx, args)
	case "inc":
		a.mutateLine(ctx, args, a.cart.Increment)
	case "dec":
		a.mutateLine(ctx, args, a.cart.Decrement)
	case "rm":
		a.mutateLine(ctx, args, a.cart.Remove)
	case "bonus":
		a.applyBonus(ctx, args)
	case "checkout":
		a.checkout(ctx)
	case "session":
		a.renderSession()
	case "logout":
		a.logout(ctx)
	case "help":
		a.renderHelp()
	case "quit", "exit":
		return true
	default:
		fmt.Fprintf(a.out, "Unknown command %q. Type 'help' for commands.\n", command)
	}
	return false
}

// refresh pulls catalog and session state fresh from the server. It is
// the terminal analog of a page load.
func (a *app) refresh(ctx context.Context) {
	a.products = a.catalog.FetchProducts(ctx)
	a.renderProducts()

	state, err := a.session.FetchSession(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Session check failed: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "Balance: %d\n", state.Balance)

	if err := a.cart.Load(ctx); err != nil {
		fmt.Fprintf(a.out, "Cart could not be restored: %v\n", err)
	}
}

func (a *app) addToCart(ctx context.Context, args []string) {
	id, ok := a.parseID(args)
	if !ok {
		return
	}
	for _, p := range a.products {
		if p.ID == id {
			if err := a.cart.AddOrIncrement(ctx, p); err != nil {
				fmt.Fprintf(a.out, "Could not save cart: %v\n", err)
				return
			}
			fmt.Fprintf(a.out, "Added %s. Cart has %d item(s).\n", p.Name, a.cart.Count())
			return
		}
	}
	fmt.Fprintf(a.out, "No product with id %d in the catalog.\n", id)
}

func (a *app) mutateLine(ctx context.Context, args []string, op func(context.Context, int) error) {
	id, ok := a.parseID(args)
	if !ok {
		return
	}
	if err := op(ctx, id); err != nil {
		if errors.Is(err, domain.ErrLineNotFound) {
			fmt.Fprintf(a.out, "No cart line for product %d.\n", id)
			return
		}
		fmt.Fprintf(a.out, "Could not save cart: %v\n", err)
		return
	}
	a.renderCart()
}

func (a *app) applyBonus(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: bonus <amount>")
		return
	}
	state, err := a.session.ApplyBonus(ctx, args[0])
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBonusInvalid):
			fmt.Fprintln(a.out, "Please enter a valid bonus amount between 1 and 999.")
		case errors.Is(err, domain.ErrBonusRejected):
			fmt.Fprintln(a.out, "Error applying bonus. Please try again.")
		default:
			fmt.Fprintf(a.out, "An error occurred: %v\n", err)
		}
		return
	}
	fmt.Fprintf(a.out, "Bonus applied. Balance: %d\n", state.Balance)
}

func (a *app) checkout(ctx context.Context) {
	receipt, err := a.coordinator.Checkout(ctx)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCartEmpty):
			fmt.Fprintln(a.out, "Your cargo hold is empty.")
		case errors.Is(err, domain.ErrInsufficientBalance):
			fmt.Fprintln(a.out, "Insufficient balance. Please add more funds.")
		case errors.Is(err, domain.ErrCheckoutInFlight):
			fmt.Fprintln(a.out, "A checkout is already in progress.")
		case errors.Is(err, domain.ErrNoSession):
			// local session assumptions no longer hold; do a full refresh
			fmt.Fprintln(a.out, "Your session has expired. Refreshing.")
			a.refresh(ctx)
		default:
			fmt.Fprintf(a.out, "Checkout failed: %v\n", err)
		}
		return
	}

	fmt.Fprintln(a.out, "Voyage provisioned! Your seafaring supplies are ready.")
	fmt.Fprintf(a.out, "Balance: %d\n", receipt.Balance)
	if receipt.RewardToken != "" {
		fmt.Fprintf(a.out, "Reward: %s\n", receipt.RewardToken)
	}
}

func (a *app) logout(ctx context.Context) {
	if err := a.session.Logout(ctx); err != nil {
		fmt.Fprintf(a.out, "Logout failed: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "Logged out.")
}

func (a *app) renderProducts() {
	if len(a.products) == 0 {
		fmt.Fprintln(a.out, "No products available.")
		return
	}
	for _, p := range a.products {
		fmt.Fprintf(a.out, "%3d  %-30s $%d\n", p.ID, p.Name, p.UnitPrice)
	}
}

func (a *app) renderCart() {
	lines := a.cart.Lines()
	if len(lines) == 0 {
		fmt.Fprintln(a.out, "Your cargo hold is empty.")
		return
	}
	for _, line := range lines {
		fmt.Fprintf(a.out, "%3d  %-30s $%d x %d\n", line.ProductID, line.Name, line.UnitPrice, line.Quantity)
	}
	fmt.Fprintf(a.out, "Total: $%d\n", a.cart.Total())
	if !a.coordinator.Eligible() {
		fmt.Fprintln(a.out, "(checkout unavailable: empty cart or insufficient balance)")
	}
}

func (a *app) renderSession() {
	state, ok := a.session.CachedState()
	if !ok {
		fmt.Fprintln(a.out, "No session state cached yet.")
		return
	}
	fmt.Fprintf(a.out, "Balance: %d, bonus received: %t\n", state.Balance, state.BonusReceived)
}

func (a *app) renderHelp() {
	fmt.Fprintln(a.out, `Commands:
  products        list the catalog
  cart            show the cart
  add <id>        add a product to the cart
  inc <id>        increase a line's quantity
  dec <id>        decrease a line's quantity (removes at zero)
  rm <id>         remove a line
  bonus <amount>  claim the one-time bonus
  checkout        submit the cart
  session         show cached session state
  logout          end the session
  quit            exit`)
}

func (a *app) parseID(args []string) (int, bool) {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Expected a product id.")
		return 0, false
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(a.out, "%q is not a product id.\n", args[0])
		return 0, false
	}
	return id, true
}
