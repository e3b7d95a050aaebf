package service

import (
	"sort"
	"strings"

	"github.com/mediguide-api/internal/models"
)

// ParseOrder maps the order query parameter onto a ListOrder; empty means default
func ParseOrder(raw string) (models.ListOrder, error) {
	order := models.ListOrder(strings.ToLower(strings.TrimSpace(raw)))
	if order == "" {
		return models.OrderDefault, nil
	}
	if !models.ValidOrders[order] {
		return "", ErrInvalidOrder
	}
	return order, nil
}

// HelpfulRatio is the percentage of helpful reactions, or nil when there are none
func HelpfulRatio(helpful, unhelpful int64) *float64 {
	total := helpful + unhelpful
	if total == 0 {
		return nil
	}
	ratio := 100 * float64(helpful) / float64(total)
	return &ratio
}

// Rank fills in helpful ratios and sorts stats in place.
// Drugs without a value for the sort key go last; ties are newest first.
func Rank(stats []*models.DrugStats, order models.ListOrder) {
	for _, s := range stats {
		s.HelpfulRatio = HelpfulRatio(s.HelpfulCount, s.UnhelpfulCount)
	}

	var key func(*models.DrugStats) *float64
	switch order {
	case models.OrderHelpful:
		key = func(s *models.DrugStats) *float64 { return s.HelpfulRatio }
	case models.OrderRating:
		key = func(s *models.DrugStats) *float64 { return s.AvgRating }
	}

	sort.SliceStable(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		if key != nil {
			ka, kb := key(a), key(b)
			switch {
			case ka != nil && kb == nil:
				return true
			case ka == nil && kb != nil:
				return false
			case ka != nil && kb != nil && *ka != *kb:
				return *ka > *kb
			}
		}
		return a.ID > b.ID
	})
}
