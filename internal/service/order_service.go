// Package service is the only write entry point for orders and stats.
//
// Each operation runs the store mutation, the matching stats update and the
// change broadcast in a fixed order under one lock. A failing step stops
// the sequence; completed steps are not rolled back, and RebuildStats or
// ResetStats is the recovery path for stats that drifted as a result.
package service

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"PosBoard/internal/order"
	"PosBoard/internal/stats"
)

type Broadcaster interface {
	Broadcast()
}

type OrderService struct {
	mu       sync.Mutex
	orders   *order.Store
	stats    *stats.Aggregator
	notifier Broadcaster
	log      *zap.Logger
}

func NewOrderService(orders *order.Store, agg *stats.Aggregator, notifier Broadcaster, log *zap.Logger) *OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderService{
		orders:   orders,
		stats:    agg,
		notifier: notifier,
		log:      log,
	}
}

// Init creates the order collection if missing and, when no stats record
// exists yet, builds one from whatever orders are present.
func (s *OrderService) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := s.orders.Init(ctx)
	if err != nil {
		return err
	}
	if created {
		s.log.Info("initialized empty order collection")
	}

	exists, err := s.stats.Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	all, err := s.orders.List(ctx)
	if err != nil {
		return err
	}
	st, err := s.stats.RebuildFromOrders(ctx, all)
	if err != nil {
		return err
	}
	s.log.Info("built stats from order log",
		zap.Int("orders", len(all)), zap.Float64("total_revenue", st.TotalRevenue))
	return nil
}

// ListOrders returns every order, newest id first.
func (s *OrderService) ListOrders(ctx context.Context) ([]order.Order, error) {
	s.mu.Lock()
	all, err := s.orders.List(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(all, func(i, j int) bool { return order.Less(all[j].ID, all[i].ID) })
	return all, nil
}

func (s *OrderService) Stats(ctx context.Context) (stats.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats.Get(ctx)
}

func (s *OrderService) Create(ctx context.Context, in order.NewOrder) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.orders.Append(ctx, in)
	if err != nil {
		return order.Order{}, err
	}
	if _, err := s.stats.ApplyOrderAdded(ctx, o); err != nil {
		s.log.Error("stats not updated after create", zap.String("order_id", o.ID), zap.Error(err))
		return order.Order{}, err
	}

	s.notifier.Broadcast()
	s.log.Info("order created", zap.String("order_id", o.ID), zap.Float64("total", o.Total))
	return o, nil
}

func (s *OrderService) Update(ctx context.Context, id string, p order.Patch) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, after, err := s.orders.Update(ctx, id, p)
	if err != nil {
		return order.Order{}, err
	}
	if _, err := s.stats.ApplyOrderRemoved(ctx, before); err != nil {
		s.log.Error("stats not updated after update", zap.String("order_id", id), zap.Error(err))
		return order.Order{}, err
	}
	if _, err := s.stats.ApplyOrderAdded(ctx, after); err != nil {
		s.log.Error("stats partially updated after update", zap.String("order_id", id), zap.Error(err))
		return order.Order{}, err
	}

	s.notifier.Broadcast()
	s.log.Info("order updated", zap.String("order_id", id), zap.Float64("total", after.Total))
	return after, nil
}

// Delete removes the order but keeps its contribution in the stats.
func (s *OrderService) Delete(ctx context.Context, id string) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.orders.Delete(ctx, id)
	if err != nil {
		return order.Order{}, err
	}

	s.notifier.Broadcast()
	s.log.Info("order deleted", zap.String("order_id", id))
	return removed, nil
}

func (s *OrderService) ResetStats(ctx context.Context) (stats.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.stats.Reset(ctx)
	if err != nil {
		return stats.Stats{}, err
	}

	s.notifier.Broadcast()
	s.log.Info("stats reset")
	return st, nil
}

// RebuildStats replaces the stats with a full recompute over the orders
// currently stored. Contributions of deleted orders are lost.
func (s *OrderService) RebuildStats(ctx context.Context) (stats.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.orders.List(ctx)
	if err != nil {
		return stats.Stats{}, err
	}
	st, err := s.stats.RebuildFromOrders(ctx, all)
	if err != nil {
		return stats.Stats{}, err
	}

	s.notifier.Broadcast()
	s.log.Info("stats rebuilt", zap.Int("orders", len(all)), zap.Float64("total_revenue", st.TotalRevenue))
	return st, nil
}
