package storage

import (
	"context"
	"sort"
	"time"
)

// BerryVolume is total kilograms sold of one berry.
type BerryVolume struct {
	Berry string
	Kg    float64
}

// Stats aggregates paid orders only.
type Stats struct {
	PaidOrders int
	Revenue    float64
	TopBerries []BerryVolume
}

// Stats computes sales statistics over paid orders: count, revenue and
// the top berries by volume.
func (s *OrderStore) Stats(ctx context.Context, topN int) (Stats, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	volumes := make(map[string]float64)
	for _, order := range orders {
		if order.Status != StatusPaid {
			continue
		}
		stats.PaidOrders++
		stats.Revenue = round2(stats.Revenue + order.Total())
		for _, item := range order.Cart {
			volumes[item.Berry] += item.Kg
		}
	}

	top := make([]BerryVolume, 0, len(volumes))
	for berry, kg := range volumes {
		top = append(top, BerryVolume{Berry: berry, Kg: kg})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Kg != top[j].Kg {
			return top[i].Kg > top[j].Kg
		}
		return top[i].Berry < top[j].Berry
	})
	if len(top) > topN {
		top = top[:topN]
	}
	stats.TopBerries = top
	return stats, nil
}

// DaySlots lists the delivery times already taken on one date.
type DaySlots struct {
	Date  string
	Times []string
}

// Slots groups non-cancelled orders by delivery date, chronologically,
// with the times of each day sorted.
func (s *OrderStore) Slots(ctx context.Context) ([]DaySlots, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string][]string)
	for _, order := range orders {
		if order.Status == StatusCancelled {
			continue
		}
		byDate[order.Date] = append(byDate[order.Date], order.Time)
	}

	slots := make([]DaySlots, 0, len(byDate))
	for date, times := range byDate {
		sort.Strings(times)
		slots = append(slots, DaySlots{Date: date, Times: times})
	}
	sort.Slice(slots, func(i, j int) bool {
		di, erri := time.Parse(DateLayout, slots[i].Date)
		dj, errj := time.Parse(DateLayout, slots[j].Date)
		if erri != nil || errj != nil {
			return slots[i].Date < slots[j].Date
		}
		return di.Before(dj)
	})
	return slots, nil
}
