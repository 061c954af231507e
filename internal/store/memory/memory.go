// Package memory is a mutex-guarded in-memory store. It backs the tests and
// the "memory" driver for local runs; no call ever fails unless a failure is
// injected.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/matheusmosca/workout-gear-server/internal/domain"
)

type Store struct {
	mu       sync.RWMutex
	products map[string]domain.Product
	// insertion order of product ids, so repeated queries are stable
	index  []string
	carts  map[string]map[string]domain.CartLine
	orders map[string]domain.Order

	// BeforeDecrement, when set, runs at the start of every
	// CompareAndDecrementStock call. Tests use it to interleave a competing
	// write between a caller's read and its conditional update.
	BeforeDecrement func()

	failWith error
}

func New() *Store {
	return &Store{
		products: make(map[string]domain.Product),
		carts:    make(map[string]map[string]domain.CartLine),
		orders:   make(map[string]domain.Order),
	}
}

// FailWith makes every subsequent call return err. Pass nil to heal.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *Store) failed() error {
	return s.failWith
}

func (s *Store) CreateProduct(_ context.Context, p domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed(); err != nil {
		return err
	}
	if _, ok := s.products[p.ID]; !ok {
		s.index = append(s.index, p.ID)
	}
	s.products[p.ID] = cloneProduct(p)
	return nil
}

func (s *Store) GetProduct(_ context.Context, id string) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failed(); err != nil {
		return domain.Product{}, err
	}
	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return cloneProduct(p), nil
}

func (s *Store) ListProducts(_ context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failed(); err != nil {
		return nil, err
	}

	out := make([]domain.Product, 0)
	for _, id := range s.index {
		p, ok := s.products[id]
		if !ok {
			continue
		}
		if matches(p, f) {
			out = append(out, cloneProduct(p))
		}
	}

	switch f.Sort {
	case domain.SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	case domain.SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.GreaterThan(out[j].Price) })
	}
	return out, nil
}

func matches(p domain.Product, f domain.ProductFilter) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
		return false
	}
	if len(f.Categories) > 0 {
		found := false
		for _, c := range f.Categories {
			if p.Category == c {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}

func (s *Store) UpdateProduct(_ context.Context, id string, patch domain.ProductPatch) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed(); err != nil {
		return domain.Product{}, err
	}
	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Images != nil {
		p.Images = append([]string(nil), (*patch.Images)...)
	}
	p.UpdatedAt = time.Now().UTC()
	s.products[id] = p
	return cloneProduct(p), nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed(); err != nil {
		return domain.Product{}, err
	}
	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	delete(s.products, id)
	for i, pid := range s.index {
		if pid == id {
			s.index = append(s.index[:i], s.index[i+1:]...)
			break
		}
	}
	return cloneProduct(p), nil
}

func (s *Store) CompareAndDecrementStock(_ context.Context, id string, observed, qty int) (bool, error) {
	if s.BeforeDecrement != nil {
		s.BeforeDecrement()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed(); err != nil {
		return false, err
	}
	p, ok := s.products[id]
	if !ok {
		return false, nil
	}
	if p.Stock != observed || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	p.UpdatedAt = time.Now().UTC()
	s.products[id] = p
	return true, nil
}

func (s *Store) GetCart(_ context.Context, cartID string) ([]domain.CartLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failed(); err != nil {
		return nil, err
	}
	lines := make([]domain.CartLine, 0, len(s.carts[cartID]))
	for _, l := range s.carts[cartID] {
		lines = append(lines, l)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines, nil
}

func (s *Store) UpsertCartLine(_ context.Context, cartID string, line domain.CartLine) (domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed(); err != nil {
		return domain.CartLine{}, err
	}
	cart, ok := s.carts[cartID]
	if !ok {
		cart = make(map[string]domain.CartLine)
		s.carts[cartID] = cart
	}
	merged := line
	if existing, ok := cart[line.ProductID]; ok {
		merged.Quantity += existing.Quantity
	}
	merged.UpdatedAt = time.Now().UTC()
	cart[line.ProductID] = merged
	return merged, nil
}

func (s *Store) CreateOrder(_ context.Context, o domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed(); err != nil {
		return err
	}
	s.orders[o.ID] = o
	return nil
}

func (s *Store) GetOrder(_ context.Context, id string) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failed(); err != nil {
		return domain.Order{}, err
	}
	o, ok := s.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return o, nil
}

func cloneProduct(p domain.Product) domain.Product {
	p.Images = append([]string(nil), p.Images...)
	return p
}
