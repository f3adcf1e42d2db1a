package service

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Evgen-Mutagen/atm-inventory/internal/model"
	"github.com/Evgen-Mutagen/atm-inventory/internal/repository"
)

type stubUserRepo struct {
	users     map[string]*model.User
	nextID    int64
	createErr error
	// hideOnLookup makes GetByUsername miss so Create hits the unique index.
	hideOnLookup bool
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, user *model.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, exists := r.users[user.Username]; exists {
		return repository.ErrUniqueViolation
	}
	r.nextID++
	user.ID = r.nextID
	clone := *user
	r.users[user.Username] = &clone
	return nil
}

func (r *stubUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if r.hideOnLookup {
		return nil, nil
	}
	u, ok := r.users[username]
	if !ok {
		return nil, nil
	}
	clone := *u
	return &clone, nil
}

// stubStore backs both the product and sale repositories, mirroring the
// single-transaction behaviour of the real sale repository.
type stubStore struct {
	mu       sync.Mutex
	products map[int64]*model.Product
	sales    []*model.Sale
	nextID   int64
	err      error
}

func newStubStore() *stubStore {
	return &stubStore{products: make(map[int64]*model.Product)}
}

func (s *stubStore) seed(name string, qty int, price string) *model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p := &model.Product{ID: s.nextID, Name: name, Quantity: qty, Price: decimal.RequireFromString(price)}
	s.products[p.ID] = p
	clone := *p
	return &clone
}

func (s *stubStore) Create(_ context.Context, product *model.Product) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	product.ID = s.nextID
	clone := *product
	s.products[product.ID] = &clone
	return nil
}

func (s *stubStore) List(_ context.Context) ([]*model.Product, error) {
	return s.filter(func(*model.Product) bool { return true })
}

func (s *stubStore) GetByID(_ context.Context, id int64) (*model.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (s *stubStore) Update(_ context.Context, product *model.Product) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[product.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *product
	s.products[product.ID] = &clone
	return nil
}

func (s *stubStore) Delete(_ context.Context, id int64) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *stubStore) ListBelow(_ context.Context, threshold int) ([]*model.Product, error) {
	return s.filter(func(p *model.Product) bool { return p.Quantity < threshold })
}

func (s *stubStore) filter(keep func(*model.Product) bool) ([]*model.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Product
	for _, p := range s.products {
		if keep(p) {
			clone := *p
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubStore) RecordSale(_ context.Context, sale *model.Sale, allowNegative bool) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[sale.ProductID]
	if !ok {
		return repository.ErrNotFound
	}
	if !allowNegative && p.Quantity < sale.QuantitySold {
		return repository.ErrInsufficientStock
	}
	p.Quantity -= sale.QuantitySold
	s.nextID++
	sale.ID = s.nextID
	clone := *sale
	s.sales = append(s.sales, &clone)
	return nil
}

func (s *stubStore) Summary(_ context.Context) ([]*model.SalesSummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	byProduct := make(map[int64]*model.SalesSummary)
	var order []int64
	for _, sale := range s.sales {
		p, ok := s.products[sale.ProductID]
		if !ok {
			continue
		}
		row, ok := byProduct[p.ID]
		if !ok {
			row = &model.SalesSummary{ProductID: p.ID, Name: p.Name, Revenue: decimal.Zero}
			byProduct[p.ID] = row
			order = append(order, p.ID)
		}
		row.TotalSold += int64(sale.QuantitySold)
		row.Revenue = row.Revenue.Add(p.Price.Mul(decimal.NewFromInt(int64(sale.QuantitySold))))
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	out := make([]*model.SalesSummary, 0, len(order))
	for _, id := range order {
		out = append(out, byProduct[id])
	}
	return out, nil
}
