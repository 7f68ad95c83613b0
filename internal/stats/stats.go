// Package stats maintains cumulative sales figures alongside the order log.
//
// Stats are updated incrementally as orders are created and edited. Deleting
// an order leaves its contribution in place; only Reset or a full rebuild
// brings the figures back in line with the current order log.
package stats

import "PosBoard/internal/order"

type ItemStats struct {
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

type Stats struct {
	Items        map[string]ItemStats `json:"items"`
	TotalRevenue float64              `json:"totalRevenue"`
}

func Empty() Stats {
	return Stats{Items: map[string]ItemStats{}}
}

func (s Stats) clone() Stats {
	out := Stats{Items: make(map[string]ItemStats, len(s.Items)), TotalRevenue: s.TotalRevenue}
	for k, v := range s.Items {
		out.Items[k] = v
	}
	return out
}

// Rebuild recomputes stats from scratch. Revenue comes from line sums, not
// from the caller-supplied order totals.
func Rebuild(orders []order.Order) Stats {
	s := Empty()
	for _, o := range orders {
		for _, it := range o.Items {
			line := float64(it.Count) * it.Price

			e := s.Items[it.Name]
			e.Count += it.Count
			e.Revenue += line
			s.Items[it.Name] = e

			s.TotalRevenue += line
		}
	}
	return s
}

func Add(s Stats, o order.Order) Stats {
	out := s.clone()
	out.TotalRevenue += o.Total

	for _, it := range o.Items {
		e := out.Items[it.Name]
		e.Count += it.Count
		e.Revenue += float64(it.Count) * it.Price
		out.Items[it.Name] = e
	}
	return out
}

// Remove retracts o. An item entry is dropped as soon as its count falls
// to zero or below, whatever revenue is left on it.
func Remove(s Stats, o order.Order) Stats {
	out := s.clone()

	out.TotalRevenue -= o.Total
	if out.TotalRevenue < 0 {
		out.TotalRevenue = 0
	}

	for _, it := range o.Items {
		e, ok := out.Items[it.Name]
		if !ok {
			continue
		}
		e.Count -= it.Count
		e.Revenue -= float64(it.Count) * it.Price

		if e.Count <= 0 {
			delete(out.Items, it.Name)
			continue
		}
		out.Items[it.Name] = e
	}
	return out
}
