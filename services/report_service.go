package services

import (
	"sort"
	"time"

	"github.com/momandme/tailorshop-api/models"
)

// The aggregation layer is a set of pure functions over order/expense
// snapshots that have already been fetched. No store round-trips happen
// mid-computation, so every figure on a dashboard is consistent with one
// point-in-time read.

// PeriodStats are the income/expense figures for one time partition.
type PeriodStats struct {
	Income      float64 `json:"income"`
	Expenses    float64 `json:"expenses"`
	Profit      float64 `json:"profit"`
	OrdersCount int     `json:"ordersCount"`

	Advance       float64 `json:"advance"`
	BalanceRecd   float64 `json:"balanceRecd"`
	PendingAmount float64 `json:"pendingAmount"`
}

// StatusCount is one slice of the per-status breakdown.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// GroupStats is one row of a grouped report.
type GroupStats struct {
	Key                  string  `json:"key"`
	Count                int     `json:"count"`
	TotalRevenue         float64 `json:"totalRevenue"`
	TotalAdvance         float64 `json:"totalAdvance"`
	TotalBalanceReceived float64 `json:"totalBalanceReceived"`
	TotalPending         float64 `json:"totalPending"`
}

// CustomStats is the explicit-range block of the dashboard.
type CustomStats struct {
	Income        float64 `json:"income"`
	Advance       float64 `json:"advance"`
	BalanceRecd   float64 `json:"balanceRecd"`
	PendingAmount float64 `json:"pendingAmount"`
	Expenses      float64 `json:"expenses"`
	Profit        float64 `json:"profit"`
	OrdersCount   int     `json:"ordersCount"`
	Pending       int     `json:"pending"`
	InProgress    int     `json:"inProgress"`
	ReadyForTrial int     `json:"readyForTrial"`
	Completed     int     `json:"completed"`
}

// DashboardData is the full dashboard payload.
type DashboardData struct {
	Custom             *CustomStats   `json:"custom,omitempty"`
	Today              PeriodStats    `json:"today"`
	ThisMonth          PeriodStats    `json:"thisMonth"`
	AllTime            PeriodStats    `json:"allTime"`
	PendingOrdersCount int            `json:"pendingOrdersCount"`
	UpcomingTrials     []models.Order `json:"upcomingTrials"`
	UpcomingDeliveries []models.Order `json:"upcomingDeliveries"`
	RecentOrders       []models.Order `json:"recentOrders"`
	StatusBreakdown    []StatusCount  `json:"statusBreakdown"`
}

// DashboardSnapshot computes the dashboard from order/expense snapshots.
// Partitions: today (orderDate/date >= start of today), this month
// (>= start of the calendar month), and all time.
func DashboardSnapshot(orders []models.Order, expenses []models.Expense, now time.Time) DashboardData {
	today := startOfDay(now)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	weekAhead := today.AddDate(0, 0, 7)

	data := DashboardData{
		Today:     periodStats(orders, expenses, &today, false),
		ThisMonth: periodStats(orders, expenses, &monthStart, true),
		AllTime:   periodStats(orders, expenses, nil, true),
	}

	for _, o := range orders {
		if o.Status != models.StatusCompleted {
			data.PendingOrdersCount++
		}
	}

	data.UpcomingTrials = upcomingByDate(orders, today, weekAhead, func(o models.Order) *time.Time { return o.TrialDate })
	data.UpcomingDeliveries = upcomingByDate(orders, today, weekAhead, func(o models.Order) *time.Time { return o.DeliveryDate })
	data.RecentOrders = recentOrders(orders, 5)
	data.StatusBreakdown = statusBreakdown(orders)

	return data
}

// CustomRangeSnapshot computes the custom block for a closed date interval.
// Orders are included by orderDate, expenses by date.
func CustomRangeSnapshot(orders []models.Order, expenses []models.Expense, start, end *time.Time) CustomStats {
	stats := CustomStats{}

	for _, o := range orders {
		if !inRange(o.OrderDate, start, end) {
			continue
		}
		stats.Income += o.TotalAmount
		stats.Advance += o.AdvanceAmountPaid
		stats.BalanceRecd += o.BalanceAmountReceived
		stats.PendingAmount += o.Balance
		stats.OrdersCount++
		switch o.Status {
		case models.StatusPending:
			stats.Pending++
		case models.StatusInProgress:
			stats.InProgress++
		case models.StatusReadyForTrial:
			stats.ReadyForTrial++
		case models.StatusCompleted:
			stats.Completed++
		}
	}

	for _, e := range expenses {
		if !inRange(e.Date, start, end) {
			continue
		}
		stats.Expenses += e.Amount
	}

	stats.Profit = stats.Income - stats.Expenses
	return stats
}

// GroupByCategory groups the orders by garment category, sorted descending
// by total revenue.
func GroupByCategory(orders []models.Order) []GroupStats {
	return groupOrders(orders, func(o models.Order) string { return o.Category })
}

// GroupByStatus groups the orders by status, sorted descending by total
// revenue.
func GroupByStatus(orders []models.Order) []GroupStats {
	return groupOrders(orders, func(o models.Order) string { return o.Status })
}

// GroupByDay groups the orders by order date (YYYY-MM-DD), newest first.
func GroupByDay(orders []models.Order) []GroupStats {
	groups := groupOrders(orders, func(o models.Order) string { return o.OrderDate.Format("2006-01-02") })
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key > groups[j].Key })
	return groups
}

func groupOrders(orders []models.Order, keyOf func(models.Order) string) []GroupStats {
	byKey := make(map[string]*GroupStats)
	for _, o := range orders {
		key := keyOf(o)
		g, ok := byKey[key]
		if !ok {
			g = &GroupStats{Key: key}
			byKey[key] = g
		}
		g.Count++
		g.TotalRevenue += o.TotalAmount
		g.TotalAdvance += o.AdvanceAmountPaid
		g.TotalBalanceReceived += o.BalanceAmountReceived
		g.TotalPending += o.Balance
	}

	groups := make([]GroupStats, 0, len(byKey))
	for _, g := range byKey {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].TotalRevenue != groups[j].TotalRevenue {
			return groups[i].TotalRevenue > groups[j].TotalRevenue
		}
		return groups[i].Key < groups[j].Key
	})
	return groups
}

// periodStats sums one partition. since == nil means all time; withAmounts
// adds the advance/balance/pending figures the month and all-time views show.
func periodStats(orders []models.Order, expenses []models.Expense, since *time.Time, withAmounts bool) PeriodStats {
	stats := PeriodStats{}

	for _, o := range orders {
		if since != nil && o.OrderDate.Before(*since) {
			continue
		}
		stats.Income += o.TotalAmount
		stats.OrdersCount++
		if withAmounts {
			stats.Advance += o.AdvanceAmountPaid
			stats.BalanceRecd += o.BalanceAmountReceived
			stats.PendingAmount += o.Balance
		}
	}

	for _, e := range expenses {
		if since != nil && e.Date.Before(*since) {
			continue
		}
		stats.Expenses += e.Amount
	}

	stats.Profit = stats.Income - stats.Expenses
	return stats
}

// upcomingByDate returns up to 5 non-completed orders whose relevant date
// falls within [from, to], ascending by that date.
func upcomingByDate(orders []models.Order, from, to time.Time, dateOf func(models.Order) *time.Time) []models.Order {
	matched := make([]models.Order, 0)
	for _, o := range orders {
		d := dateOf(o)
		if d == nil || o.Status == models.StatusCompleted {
			continue
		}
		if d.Before(from) || d.After(to) {
			continue
		}
		matched = append(matched, o)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return dateOf(matched[i]).Before(*dateOf(matched[j]))
	})

	if len(matched) > 5 {
		matched = matched[:5]
	}
	return matched
}

// recentOrders returns up to limit orders, most recently created first.
func recentOrders(orders []models.Order, limit int) []models.Order {
	sorted := make([]models.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func statusBreakdown(orders []models.Order) []StatusCount {
	counts := make(map[string]int)
	for _, o := range orders {
		counts[o.Status]++
	}

	breakdown := make([]StatusCount, 0, len(models.OrderStatuses))
	for _, status := range models.OrderStatuses {
		if counts[status] > 0 {
			breakdown = append(breakdown, StatusCount{Status: status, Count: counts[status]})
		}
	}
	return breakdown
}

// inRange reports whether t is inside the closed interval [start, end];
// a nil bound is open.
func inRange(t time.Time, start, end *time.Time) bool {
	if start != nil && t.Before(*start) {
		return false
	}
	if end != nil && t.After(*end) {
		return false
	}
	return true
}
