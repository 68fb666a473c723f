package rest

import (
	"encoding/json"
	"net/http"
	"slices"
	"sync"

	"limitbook/internal/orderbook"
)

// Store holds the latest Book per product. Books are replaced whole and never
// mutated after Put, so readers may use them without further locking.
type Store struct {
	mu    sync.RWMutex
	books map[string]*orderbook.Book
}

func NewStore() *Store { return &Store{books: map[string]*orderbook.Book{}} }

func (s *Store) Put(b *orderbook.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books[b.Product] = b
}

func (s *Store) Get(product string) (*orderbook.Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.books[product]
	return b, ok
}

// HasAll reports whether a book is stored for every product in products.
func (s *Store) HasAll(products []string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range products {
		if _, ok := s.books[p]; !ok {
			return false
		}
	}
	return true
}

func (s *Store) Products() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.books))
	for p := range s.books {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

type Server struct {
	mux   *http.ServeMux
	store *Store
}

func New(store *Store) *Server {
	s := &Server{mux: http.NewServeMux(), store: store}
	s.mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.HandleFunc("/products", s.products)
	s.mux.HandleFunc("/book", s.book)
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

// products lists the summary of every loaded book.
func (s *Server) products(w http.ResponseWriter, r *http.Request) {
	out := []orderbook.Summary{}
	for _, p := range s.store.Products() {
		if b, ok := s.store.Get(p); ok {
			out = append(out, b.Summary())
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// book writes the text dump of one product's book.
func (s *Server) book(w http.ResponseWriter, r *http.Request) {
	product := r.URL.Query().Get("product")
	if product == "" {
		http.Error(w, "missing product", http.StatusBadRequest)
		return
	}
	b, ok := s.store.Get(product)
	if !ok {
		http.Error(w, "unknown product", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_ = b.Dump(w)
}
