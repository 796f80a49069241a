package analytics

import (
	"sort"
)

// Summary is the headline KPI band shown at the top of the dashboard.
type Summary struct {
	TotalOrders        int     `json:"total_orders"`
	TotalRevenue       float64 `json:"total_revenue"`
	AverageOrderValue  float64 `json:"average_order_value"`
	RepeatPurchaseRate float64 `json:"repeat_purchase_rate"` // fraction 0..1
	UniqueCustomers    int     `json:"unique_customers"`
	UniqueProducts     int     `json:"unique_products"`
}

// Summarize computes the headline KPIs for a batch. AOV is total revenue
// divided by distinct order count; the repeat purchase rate is the fraction
// of customers with more than one distinct order.
func Summarize(txs []Transaction) Summary {
	var s Summary
	if len(txs) == 0 {
		return s
	}

	orders := make(map[string]struct{})
	ordersByCustomer := make(map[string]map[string]struct{})
	products := make(map[string]struct{})

	for _, tx := range txs {
		s.TotalRevenue += tx.TotalPrice
		if tx.OrderID != "" {
			orders[tx.OrderID] = struct{}{}
		}
		if tx.CustomerID != "" {
			if ordersByCustomer[tx.CustomerID] == nil {
				ordersByCustomer[tx.CustomerID] = make(map[string]struct{})
			}
			ordersByCustomer[tx.CustomerID][tx.OrderID] = struct{}{}
		}
		if tx.ProductName != "" {
			products[tx.ProductName] = struct{}{}
		}
	}

	s.TotalOrders = len(orders)
	s.UniqueCustomers = len(ordersByCustomer)
	s.UniqueProducts = len(products)
	if s.TotalOrders > 0 {
		s.AverageOrderValue = s.TotalRevenue / float64(s.TotalOrders)
	}

	repeat := 0
	for _, set := range ordersByCustomer {
		if len(set) > 1 {
			repeat++
		}
	}
	if s.UniqueCustomers > 0 {
		s.RepeatPurchaseRate = float64(repeat) / float64(s.UniqueCustomers)
	}
	return s
}

// DailyOrdersPoint is one day of the orders-over-time series.
type DailyOrdersPoint struct {
	Date    string  `json:"date"` // "2006-01-02"
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// DailyOrders resamples the batch into a per-day series of distinct order
// counts and revenue, sorted by date.
func DailyOrders(txs []Transaction) []DailyOrdersPoint {
	type day struct {
		orders  map[string]struct{}
		revenue float64
	}
	byDay := make(map[string]*day)
	for _, tx := range txs {
		key := tx.OrderDate.Format("2006-01-02")
		d, ok := byDay[key]
		if !ok {
			d = &day{orders: make(map[string]struct{})}
			byDay[key] = d
		}
		d.orders[tx.OrderID] = struct{}{}
		d.revenue += tx.TotalPrice
	}

	keys := sortedKeys(byDay)
	out := make([]DailyOrdersPoint, 0, len(keys))
	for _, k := range keys {
		out = append(out, DailyOrdersPoint{Date: k, Orders: len(byDay[k].orders), Revenue: byDay[k].revenue})
	}
	return out
}

// MonthlyAOVPoint is one month of the AOV trend.
type MonthlyAOVPoint struct {
	Month string  `json:"month"` // "2006-01"
	AOV   float64 `json:"aov"`
	Orders int    `json:"orders"`
}

// MonthlyAOV computes the average order value per calendar month: order
// lines are rolled up into order totals first, then averaged within each
// month of the order date.
func MonthlyAOV(txs []Transaction) []MonthlyAOVPoint {
	type orderKey struct {
		id    string
		month string
	}
	orderTotals := make(map[orderKey]float64)
	for _, tx := range txs {
		k := orderKey{id: tx.OrderID, month: tx.OrderDate.Format(CohortMonthLayout)}
		orderTotals[k] += tx.TotalPrice
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for k, total := range orderTotals {
		sums[k.month] += total
		counts[k.month]++
	}

	months := sortedKeys(sums)
	out := make([]MonthlyAOVPoint, 0, len(months))
	for _, m := range months {
		out = append(out, MonthlyAOVPoint{Month: m, AOV: sums[m] / float64(counts[m]), Orders: counts[m]})
	}
	return out
}

// ProductCount is one row of the top-products ranking.
type ProductCount struct {
	ProductName string  `json:"product_name"`
	Units       int     `json:"units"`
	Revenue     float64 `json:"revenue"`
}

// TopProducts ranks products by units sold, descending, ties broken by
// name for a stable ordering. n <= 0 returns the full ranking.
func TopProducts(txs []Transaction, n int) []ProductCount {
	units := make(map[string]int)
	revenue := make(map[string]float64)
	for _, tx := range txs {
		if tx.ProductName == "" {
			continue
		}
		units[tx.ProductName] += tx.Quantity
		revenue[tx.ProductName] += tx.TotalPrice
	}

	out := make([]ProductCount, 0, len(units))
	for name, u := range units {
		out = append(out, ProductCount{ProductName: name, Units: u, Revenue: revenue[name]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Units != out[j].Units {
			return out[i].Units > out[j].Units
		}
		return out[i].ProductName < out[j].ProductName
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// DemographicCount is one value of a demographic dimension with its distinct
// customer count.
type DemographicCount struct {
	Value     string `json:"value"`
	Customers int    `json:"customers"`
}

// Demographics groups distinct customers by gender, age group and state.
type Demographics struct {
	ByGender   []DemographicCount `json:"by_gender"`
	ByAgeGroup []DemographicCount `json:"by_age_group"`
	ByState    []DemographicCount `json:"by_state"`
}

// CustomerDemographics counts distinct customers per demographic value,
// each dimension sorted by descending customer count.
func CustomerDemographics(txs []Transaction) Demographics {
	return Demographics{
		ByGender:   countDistinctBy(txs, func(tx Transaction) string { return tx.Gender }),
		ByAgeGroup: countDistinctBy(txs, func(tx Transaction) string { return tx.AgeGroup }),
		ByState:    countDistinctBy(txs, func(tx Transaction) string { return tx.State }),
	}
}

func countDistinctBy(txs []Transaction, key func(Transaction) string) []DemographicCount {
	customers := make(map[string]map[string]struct{})
	for _, tx := range txs {
		k := key(tx)
		if k == "" {
			continue
		}
		if customers[k] == nil {
			customers[k] = make(map[string]struct{})
		}
		customers[k][tx.CustomerID] = struct{}{}
	}

	out := make([]DemographicCount, 0, len(customers))
	for k, set := range customers {
		out = append(out, DemographicCount{Value: k, Customers: len(set)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Customers != out[j].Customers {
			return out[i].Customers > out[j].Customers
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// DeliveryStats summarizes order-to-delivery lead times over the rows that
// carry a delivery date.
type DeliveryStats struct {
	Orders     int     `json:"orders"`
	MeanDays   float64 `json:"mean_days"`
	MedianDays float64 `json:"median_days"`
	MaxDays    int     `json:"max_days"`
}

// DeliveryTimes computes delivery lead-time statistics. Rows without a
// usable delivery date are ignored.
func DeliveryTimes(txs []Transaction) DeliveryStats {
	var days []int
	for _, tx := range txs {
		if d := tx.DeliveryDays(); d >= 0 {
			days = append(days, d)
		}
	}
	if len(days) == 0 {
		return DeliveryStats{}
	}
	sort.Ints(days)

	total := 0
	for _, d := range days {
		total += d
	}
	stats := DeliveryStats{
		Orders:   len(days),
		MeanDays: float64(total) / float64(len(days)),
		MaxDays:  days[len(days)-1],
	}
	mid := len(days) / 2
	if len(days)%2 == 1 {
		stats.MedianDays = float64(days[mid])
	} else {
		stats.MedianDays = float64(days[mid-1]+days[mid]) / 2
	}
	return stats
}

// TopCustomers ranks customers by monetary total (the dashboard's CLTV
// proxy), descending, ties broken by customer id.
func TopCustomers(metrics []CustomerMetrics, n int) []CustomerMetrics {
	out := make([]CustomerMetrics, len(metrics))
	copy(out, metrics)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Monetary != out[j].Monetary {
			return out[i].Monetary > out[j].Monetary
		}
		return out[i].CustomerID < out[j].CustomerID
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// SegmentRevenue is one segment with its customer count and revenue share.
type SegmentRevenue struct {
	Segment   string  `json:"segment"`
	Customers int     `json:"customers"`
	Revenue   float64 `json:"revenue"`
}

// RevenueBySegment attributes each customer's total spend to their RFM
// segment, sorted by descending revenue.
func RevenueBySegment(txs []Transaction, scores []RFMScore) []SegmentRevenue {
	segment := make(map[string]string, len(scores))
	for _, s := range scores {
		segment[s.CustomerID] = s.Segment
	}

	revenue := make(map[string]float64)
	customers := make(map[string]map[string]struct{})
	for _, tx := range txs {
		seg, ok := segment[tx.CustomerID]
		if !ok {
			continue
		}
		revenue[seg] += tx.TotalPrice
		if customers[seg] == nil {
			customers[seg] = make(map[string]struct{})
		}
		customers[seg][tx.CustomerID] = struct{}{}
	}

	out := make([]SegmentRevenue, 0, len(revenue))
	for seg, rev := range revenue {
		out = append(out, SegmentRevenue{Segment: seg, Customers: len(customers[seg]), Revenue: rev})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Segment < out[j].Segment
	})
	return out
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
