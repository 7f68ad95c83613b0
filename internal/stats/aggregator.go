package stats

import (
	"context"

	"PosBoard/internal/order"
	"PosBoard/internal/storage"
)

const RecordName = "stats"

// Aggregator persists Stats as one record and applies order changes to it.
// Like order.Store it does not lock; the caller serializes writes.
type Aggregator struct {
	rec *storage.Record[Stats]
}

func NewAggregator(docs storage.Documents) *Aggregator {
	return &Aggregator{rec: storage.NewRecord[Stats](docs, RecordName)}
}

func (a *Aggregator) Exists(ctx context.Context) (bool, error) {
	_, found, err := a.rec.Read(ctx)
	return found, err
}

// Get returns the persisted stats, or empty stats when none are stored.
func (a *Aggregator) Get(ctx context.Context) (Stats, error) {
	s, found, err := a.rec.Read(ctx)
	if err != nil {
		return Stats{}, err
	}
	if !found || s.Items == nil {
		s.Items = map[string]ItemStats{}
	}
	return s, nil
}

func (a *Aggregator) RebuildFromOrders(ctx context.Context, orders []order.Order) (Stats, error) {
	return a.put(ctx, Rebuild(orders))
}

func (a *Aggregator) ApplyOrderAdded(ctx context.Context, o order.Order) (Stats, error) {
	cur, err := a.Get(ctx)
	if err != nil {
		return Stats{}, err
	}
	return a.put(ctx, Add(cur, o))
}

func (a *Aggregator) ApplyOrderRemoved(ctx context.Context, o order.Order) (Stats, error) {
	cur, err := a.Get(ctx)
	if err != nil {
		return Stats{}, err
	}
	return a.put(ctx, Remove(cur, o))
}

func (a *Aggregator) Reset(ctx context.Context) (Stats, error) {
	return a.put(ctx, Empty())
}

func (a *Aggregator) put(ctx context.Context, s Stats) (Stats, error) {
	if err := a.rec.Write(ctx, s); err != nil {
		return Stats{}, err
	}
	return s, nil
}
