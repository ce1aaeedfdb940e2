package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goliatone/go-orderform/pkg/order"
)

// OrderService is an in-process stand-in for the remote order endpoint. It
// records every decoded order and answers with the configured status and
// message.
type OrderService struct {
	URL string

	mu       sync.Mutex
	status   int
	message  string
	raw      []byte
	received []order.Values
	headers  []http.Header
}

// NewOrderService starts a stub that accepts orders with 201 and
// {"message":"Order received"}. It is closed when the test ends.
func NewOrderService(t *testing.T) *OrderService {
	t.Helper()

	svc := &OrderService{status: http.StatusCreated, message: "Order received"}
	server := httptest.NewServer(http.HandlerFunc(svc.serve))
	t.Cleanup(server.Close)
	svc.URL = server.URL
	return svc
}

// Respond sets the status and message returned for later orders.
func (s *OrderService) Respond(status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status, s.message, s.raw = status, message, nil
}

// RespondRaw sets a verbatim response body for later orders.
func (s *OrderService) RespondRaw(status int, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status, s.raw = status, append([]byte(nil), body...)
}

// Received returns the orders decoded so far.
func (s *OrderService) Received() []order.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]order.Values(nil), s.received...)
}

// Headers returns the request headers seen so far.
func (s *OrderService) Headers() []http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]http.Header(nil), s.headers...)
}

func (s *OrderService) serve(w http.ResponseWriter, r *http.Request) {
	var values order.Values
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		http.Error(w, "malformed order", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.received = append(s.received, values)
	s.headers = append(s.headers, r.Header.Clone())
	status, message, raw := s.status, s.message, s.raw
	s.mu.Unlock()

	if raw != nil {
		w.WriteHeader(status)
		_, _ = w.Write(raw)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
