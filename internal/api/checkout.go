package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/waveshop/shopclient/internal/domain"
)

// CheckoutClient submits checkout requests and classifies the server's
// answer into the client error taxonomy.
type CheckoutClient struct {
	api *Client
}

func NewCheckoutClient(api *Client) *CheckoutClient {
	return &CheckoutClient{api: api}
}

func (c *CheckoutClient) SubmitCheckout(ctx context.Context, items []domain.OrderItem) (domain.CheckoutReceipt, error) {
	resp, err := c.api.do(ctx, http.MethodPost, "/api/checkout", map[string][]domain.OrderItem{"items": items})
	if err != nil {
		return domain.CheckoutReceipt{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return domain.CheckoutReceipt{}, classifyCheckoutFailure(resp)
	}

	var payload struct {
		Success bool   `json:"success"`
		Balance int    `json:"balance"`
		Flag    string `json:"flag"`
	}
	if err := decodeBody(resp, &payload); err != nil {
		return domain.CheckoutReceipt{}, err
	}
	if !payload.Success {
		return domain.CheckoutReceipt{}, domain.ErrCheckoutRejected
	}

	return domain.CheckoutReceipt{Balance: payload.Balance, RewardToken: payload.Flag}, nil
}

func classifyCheckoutFailure(resp *http.Response) error {
	detail := errorDetail(resp)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if detail != "" {
			return fmt.Errorf("%w: %s", domain.ErrNoSession, detail)
		}
		return domain.ErrNoSession
	case strings.EqualFold(detail, "insufficient balance"):
		return domain.ErrInsufficientBalance
	case detail != "":
		return fmt.Errorf("%w: %s", domain.ErrCheckoutRejected, detail)
	default:
		return fmt.Errorf("%w: status %d", domain.ErrCheckoutRejected, resp.StatusCode)
	}
}
