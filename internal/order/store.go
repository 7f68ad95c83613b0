package order

import (
	"context"
	"errors"
	"time"

	"PosBoard/internal/storage"
)

const RecordName = "orders"

var ErrNotFound = errors.New("order not found")

type LineItem struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Price float64 `json:"price"`
}

type Order struct {
	ID    string     `json:"id"`
	Items []LineItem `json:"items"`
	Total float64    `json:"total"`
}

type NewOrder struct {
	Items []LineItem `json:"items"`
	Total float64    `json:"total"`
}

// Patch fields left nil keep the stored value.
type Patch struct {
	Items *[]LineItem `json:"items,omitempty"`
	Total *float64    `json:"total,omitempty"`
}

// Store keeps the whole order collection as one record. Every mutation
// reads the collection, changes it in memory and writes it back, so
// callers must serialize mutations themselves.
type Store struct {
	rec *storage.Record[[]Order]
	Now func() time.Time
}

func NewStore(docs storage.Documents) *Store {
	return &Store{
		rec: storage.NewRecord[[]Order](docs, RecordName),
		Now: time.Now,
	}
}

// Init writes an empty collection when none exists yet.
func (s *Store) Init(ctx context.Context) (bool, error) {
	_, found, err := s.rec.Read(ctx)
	if err != nil {
		return false, err
	}
	if found {
		return false, nil
	}
	return true, s.rec.Write(ctx, []Order{})
}

func (s *Store) List(ctx context.Context) ([]Order, error) {
	orders, _, err := s.rec.Read(ctx)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, nil
}

func (s *Store) Append(ctx context.Context, in NewOrder) (Order, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return Order{}, err
	}

	o := Order{
		ID:    nextID(s.Now(), orders),
		Items: cloneItems(in.Items),
		Total: in.Total,
	}

	if err := s.rec.Write(ctx, append(orders, o)); err != nil {
		return Order{}, err
	}
	return o, nil
}

// Update returns the order as it was before and after the patch.
func (s *Store) Update(ctx context.Context, id string, p Patch) (before, after Order, err error) {
	orders, err := s.List(ctx)
	if err != nil {
		return Order{}, Order{}, err
	}

	i := indexOf(orders, id)
	if i < 0 {
		return Order{}, Order{}, ErrNotFound
	}

	before = orders[i]
	after = p.Apply(before)
	orders[i] = after

	if err := s.rec.Write(ctx, orders); err != nil {
		return Order{}, Order{}, err
	}
	return before, after, nil
}

func (s *Store) Delete(ctx context.Context, id string) (Order, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return Order{}, err
	}

	i := indexOf(orders, id)
	if i < 0 {
		return Order{}, ErrNotFound
	}

	removed := orders[i]
	rest := append(orders[:i:i], orders[i+1:]...)

	if err := s.rec.Write(ctx, rest); err != nil {
		return Order{}, err
	}
	return removed, nil
}

// Apply merges the patch over o. The id is never changed.
func (p Patch) Apply(o Order) Order {
	out := Order{ID: o.ID, Items: cloneItems(o.Items), Total: o.Total}
	if p.Items != nil {
		out.Items = cloneItems(*p.Items)
	}
	if p.Total != nil {
		out.Total = *p.Total
	}
	return out
}

func indexOf(orders []Order, id string) int {
	for i := range orders {
		if orders[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
