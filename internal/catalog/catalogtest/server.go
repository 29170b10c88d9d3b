// Package catalogtest provides an in-process fake of the admin GraphQL API.
package catalogtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/fairyhunter13/product-description-generator/internal/model"
)

// Update is a recorded productUpdate call.
type Update struct {
	ID              string
	DescriptionHTML *string
	RawInput        json.RawMessage
}

// Server is a fake shop. Fields may be changed before requests are made.
type Server struct {
	*httptest.Server

	Token    string
	Products []model.Product
	// UserErrors maps product ID to the user error message returned for it.
	UserErrors map[string]string
	// Delays maps product ID to the time the mutation takes.
	Delays map[string]time.Duration
	// FailQuery makes the products query answer with HTTP 500.
	FailQuery bool

	mu      sync.Mutex
	updates []Update
	firsts  []int
}

// NewServer starts a fake shop serving products.
func NewServer(products ...model.Product) *Server {
	s := &Server{
		Token:      "shpat_test",
		Products:   products,
		UserErrors: map[string]string{},
		Delays:     map[string]time.Duration{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Firsts returns the "first" variable of every products query in arrival
// order.
func (s *Server) Firsts() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.firsts))
	copy(out, s.firsts)
	return out
}

// Updates returns the recorded mutations in arrival order.
func (s *Server) Updates() []Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Update, len(s.updates))
	copy(out, s.updates)
	return out
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/graphql.json") {
		http.NotFound(w, r)
		return
	}
	if r.Header.Get("X-Shopify-Access-Token") != s.Token {
		http.Error(w, `{"errors":"[API] Invalid API key or access token"}`, http.StatusUnauthorized)
		return
	}
	var req struct {
		Query     string                     `json:"query"`
		Variables map[string]json.RawMessage `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.Contains(req.Query, "productUpdate") {
		s.handleUpdate(w, r, req.Variables["input"])
		return
	}
	if s.FailQuery {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	var first int
	if err := json.Unmarshal(req.Variables["first"], &first); err != nil {
		http.Error(w, `{"errors":[{"message":"Variable $first of type Int! was provided invalid value"}]}`, http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.firsts = append(s.firsts, first)
	s.mu.Unlock()
	s.handleProducts(w, first)
}

// handleProducts answers with at most first products, each with at most
// first variants, like products(first:) and variants(first:).
func (s *Server) handleProducts(w http.ResponseWriter, first int) {
	products := s.Products
	if len(products) > first {
		products = products[:first]
	}
	edges := make([]map[string]any, 0, len(products))
	for _, p := range products {
		pv := p.Variants
		if len(pv) > first {
			pv = pv[:first]
		}
		variants := make([]map[string]any, 0, len(pv))
		for _, v := range pv {
			variants = append(variants, map[string]any{"node": map[string]any{
				"id":        v.ID,
				"price":     v.Price.StringFixed(2),
				"barcode":   v.Barcode,
				"createdAt": v.CreatedAt.UTC().Format(time.RFC3339),
			}})
		}
		edges = append(edges, map[string]any{"node": map[string]any{
			"id":          p.ID,
			"title":       p.Title,
			"description": p.Description,
			"status":      p.Status,
			"variants":    map[string]any{"edges": variants},
		}})
	}
	writeJSON(w, map[string]any{"data": map[string]any{"products": map[string]any{"edges": edges}}})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request, raw json.RawMessage) {
	var input struct {
		ID              string  `json:"id"`
		DescriptionHTML *string `json:"descriptionHtml"`
	}
	if err := json.Unmarshal(raw, &input); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if d := s.Delays[input.ID]; d > 0 {
		select {
		case <-time.After(d):
		case <-r.Context().Done():
			return
		}
	}
	s.mu.Lock()
	s.updates = append(s.updates, Update{ID: input.ID, DescriptionHTML: input.DescriptionHTML, RawInput: raw})
	s.mu.Unlock()

	payload := map[string]any{"product": nil, "userErrors": []any{}}
	if msg, ok := s.UserErrors[input.ID]; ok {
		payload["userErrors"] = []map[string]any{{"field": []string{"title"}, "message": msg}}
	} else {
		desc := ""
		if input.DescriptionHTML != nil {
			desc = *input.DescriptionHTML
		}
		payload["product"] = map[string]any{"id": input.ID, "description": desc}
	}
	writeJSON(w, map[string]any{"data": map[string]any{"productUpdate": payload}})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
