// Package shoptest provides an in-process stand-in for the shop server,
// implementing the same API contract the real backend serves. It exists
// for tests and local development only.
package shoptest

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/waveshop/shopclient/internal/domain"
)

const sessionCookie = "session_id"

type sessionRecord struct {
	Balance       int
	BonusReceived bool
}

// Server holds seedable server-side state plus per-endpoint failure
// toggles so tests can exercise the client's degradation paths.
type Server struct {
	mu       sync.Mutex
	products []domain.Product
	sessions map[string]*sessionRecord

	flagProductID int
	flag          string

	failProducts bool
	failCheckout bool

	checkoutCalls int
	bonusCalls    int
}

func NewServer(products []domain.Product) *Server {
	return &Server{
		products: products,
		sessions: make(map[string]*sessionRecord),
	}
}

// SeedSession creates a session with the given balance and returns its id.
func (s *Server) SeedSession(balance int, bonusReceived bool) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.sessions[id] = &sessionRecord{Balance: balance, BonusReceived: bonusReceived}
	return id
}

// SetFailProducts makes the catalog endpoint serve errors. Safe to flip
// while the server is handling requests.
func (s *Server) SetFailProducts(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failProducts = fail
}

// SetFailCheckout makes the checkout endpoint answer {"success":false}.
func (s *Server) SetFailCheckout(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCheckout = fail
}

// SetFlag configures the product whose purchase earns the reward token.
func (s *Server) SetFlag(productID int, flag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flagProductID = productID
	s.flag = flag
}

// BonusCallCount reports how many apply-bonus requests reached the server.
func (s *Server) BonusCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bonusCalls
}

// CheckoutCallCount reports how many checkout requests reached the server.
func (s *Server) CheckoutCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkoutCalls
}

// CreditAll adds amount to every live session's balance, bypassing the
// bonus flow. Test convenience for reaching totals above the bonus cap.
func (s *Server) CreditAll(amount int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.sessions {
		record.Balance += amount
	}
}

// ExpireAll drops every live session, as if they all timed out.
func (s *Server) ExpireAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = make(map[string]*sessionRecord)
}

// SessionBalance reports the current balance of a seeded session.
func (s *Server) SessionBalance(id string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.sessions[id]
	if !ok {
		return 0, false
	}
	return record.Balance, true
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/products", s.GetProducts)
		r.Get("/session", s.GetSession)
		r.Post("/apply-bonus", s.ApplyBonus)
		r.Post("/checkout", s.Checkout)
		r.Post("/logout", s.Logout)
	})
	return r
}

func (s *Server) GetProducts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failProducts {
		http.Error(w, "catalog is down", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s.products)
}

func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, record := s.currentSession(r)
	if record == nil {
		// get-or-create, like the real backend
		id := uuid.NewString()
		record = &sessionRecord{}
		s.sessions[id] = record
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: id, Path: "/"})
	}

	writeJSON(w, http.StatusOK, domain.SessionState{
		Balance:       record.Balance,
		BonusReceived: record.BonusReceived,
	})
}

func (s *Server) ApplyBonus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bonusCalls++

	_, record := s.currentSession(r)
	if record == nil {
		writeDetail(w, http.StatusUnauthorized, "No active session")
		return
	}
	if record.BonusReceived {
		writeDetail(w, http.StatusBadRequest, "Bonus already applied")
		return
	}

	var req struct {
		BonusAmount int `json:"bonus_amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid bonus amount")
		return
	}
	if req.BonusAmount < 1 || req.BonusAmount > 999 {
		writeDetail(w, http.StatusBadRequest, "Bonus amount must be between 1 and 999")
		return
	}

	record.Balance += req.BonusAmount
	record.BonusReceived = true
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "balance": record.Balance})
}

func (s *Server) Checkout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkoutCalls++

	_, record := s.currentSession(r)
	if record == nil {
		writeDetail(w, http.StatusUnauthorized, "No active session")
		return
	}
	if s.failCheckout {
		writeJSON(w, http.StatusOK, map[string]any{"success": false})
		return
	}

	var req struct {
		Items []domain.OrderItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid order")
		return
	}

	total := 0
	flagPurchased := false
	for _, item := range req.Items {
		product, ok := s.findProduct(item.ProductID)
		if !ok {
			writeDetail(w, http.StatusBadRequest, "Product not found")
			return
		}
		if item.Quantity <= 0 {
			writeDetail(w, http.StatusBadRequest, "Quantity of product must be positive")
			return
		}
		total += product.UnitPrice * item.Quantity
		if item.ProductID == s.flagProductID && s.flagProductID != 0 {
			flagPurchased = true
		}
	}

	if record.Balance < total {
		writeDetail(w, http.StatusBadRequest, "Insufficient balance")
		return
	}

	record.Balance -= total
	resp := map[string]any{"success": true, "balance": record.Balance, "total": total}
	if flagPurchased {
		resp["flag"] = s.flag
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, record := s.currentSession(r); record != nil {
		delete(s.sessions, id)
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) currentSession(r *http.Request) (string, *sessionRecord) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return "", nil
	}
	record, ok := s.sessions[cookie.Value]
	if !ok {
		return "", nil
	}
	return cookie.Value, record
}

func (s *Server) findProduct(id int) (domain.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
