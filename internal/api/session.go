package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/waveshop/shopclient/internal/domain"
	"golang.org/x/sync/singleflight"
)

const (
	bonusMin = 1
	bonusMax = 999
)

// SessionClient owns the cached copy of the server's balance/bonus state.
// The cache is the sole source of truth for eligibility checks until the
// next successful server interaction replaces it.
type SessionClient struct {
	api *Client

	mu     sync.Mutex
	state  domain.SessionState
	cached bool

	sfg singleflight.Group
}

func NewSessionClient(api *Client) *SessionClient {
	return &SessionClient{api: api}
}

// FetchSession retrieves balance/bonus state from the server and refreshes
// the cache. Concurrent callers share a single request.
func (s *SessionClient) FetchSession(ctx context.Context) (domain.SessionState, error) {
	v, err, _ := s.sfg.Do("session", func() (interface{}, error) {
		resp, err := s.api.do(ctx, http.MethodGet, "/api/session", nil)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, sessionFailure(resp)
		}

		var state domain.SessionState
		if err := decodeBody(resp, &state); err != nil {
			return nil, err
		}

		s.setState(state)
		return state, nil
	})
	if err != nil {
		return domain.SessionState{}, err
	}
	return v.(domain.SessionState), nil
}

// ApplyBonus validates the raw amount locally before spending a network
// round-trip on it. On success the cached balance is replaced and the
// bonus marked consumed; on any failure the cache is left untouched.
func (s *SessionClient) ApplyBonus(ctx context.Context, raw string) (domain.SessionState, error) {
	amount, err := parseBonusAmount(raw)
	if err != nil {
		return domain.SessionState{}, err
	}

	resp, err := s.api.do(ctx, http.MethodPost, "/api/apply-bonus", map[string]int{"bonus_amount": amount})
	if err != nil {
		return domain.SessionState{}, err
	}
	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusUnauthorized {
			return domain.SessionState{}, sessionFailure(resp)
		}
		if detail := errorDetail(resp); detail != "" {
			return domain.SessionState{}, fmt.Errorf("%w: %s", domain.ErrBonusRejected, detail)
		}
		return domain.SessionState{}, domain.ErrBonusRejected
	}

	var payload struct {
		Success bool `json:"success"`
		Balance int  `json:"balance"`
	}
	if err := decodeBody(resp, &payload); err != nil {
		return domain.SessionState{}, err
	}
	if !payload.Success {
		return domain.SessionState{}, domain.ErrBonusRejected
	}

	state := domain.SessionState{Balance: payload.Balance, BonusReceived: true}
	s.setState(state)
	return state, nil
}

// Logout ends the server session and drops the cached state.
func (s *SessionClient) Logout(ctx context.Context) error {
	resp, err := s.api.do(ctx, http.MethodPost, "/api/logout", nil)
	if err != nil {
		return err
	}

	var payload struct {
		Success bool `json:"success"`
	}
	if err := decodeBody(resp, &payload); err != nil {
		return err
	}
	if !payload.Success {
		return fmt.Errorf("logout refused by server")
	}

	s.mu.Lock()
	s.state = domain.SessionState{}
	s.cached = false
	s.mu.Unlock()
	return nil
}

// CachedState returns the last state any server interaction reported, and
// whether one has been cached at all.
func (s *SessionClient) CachedState() (domain.SessionState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.cached
}

// ReconcileBalance replaces the cached balance with a server-reported one,
// such as the balance returned by a settled checkout.
func (s *SessionClient) ReconcileBalance(balance int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Balance = balance
	s.cached = true
}

// SessionSuffix returns the tail of the opaque session cookie for display.
func (s *SessionClient) SessionSuffix() string {
	value := s.api.SessionCookie()
	if len(value) > 8 {
		return value[len(value)-8:]
	}
	return value
}

func (s *SessionClient) setState(state domain.SessionState) {
	s.mu.Lock()
	s.state = state
	s.cached = true
	s.mu.Unlock()
}

func parseBonusAmount(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, domain.ErrBonusInvalid
	}
	amount, err := strconv.Atoi(trimmed)
	if err != nil || amount < bonusMin || amount > bonusMax {
		return 0, domain.ErrBonusInvalid
	}
	return amount, nil
}

func sessionFailure(resp *http.Response) error {
	if detail := errorDetail(resp); detail != "" {
		return fmt.Errorf("%w: %s", domain.ErrNoSession, detail)
	}
	return domain.ErrNoSession
}
