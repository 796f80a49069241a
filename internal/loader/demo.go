package loader

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"trendtracker/internal/analytics"
)

// DemoConfig controls the synthetic dataset generator.
type DemoConfig struct {
	Rows      int
	Customers int
	Products  int
	Seed      uint64
	Start     time.Time
	End       time.Time
}

// DefaultDemoConfig returns a dataset shape that exercises every dashboard
// view: enough customers for meaningful quintiles and roughly a year of
// order history for cohorts.
func DefaultDemoConfig() DemoConfig {
	return DemoConfig{
		Rows:      5000,
		Customers: 400,
		Products:  60,
		Seed:      1,
		Start:     time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
	}
}

var demoAgeGroups = []string{"Youth", "Adults", "Seniors"}

var demoStates = []string{"NSW", "VIC", "QLD", "WA", "SA", "TAS", "ACT", "NT"}

// GenerateDemo produces a deterministic synthetic batch of retail
// transactions. The same seed always yields the same dataset.
func GenerateDemo(cfg DemoConfig) []analytics.Transaction {
	faker := gofakeit.New(cfg.Seed)

	type customer struct {
		id       string
		gender   string
		ageGroup string
		state    string
	}
	customers := make([]customer, cfg.Customers)
	for i := range customers {
		customers[i] = customer{
			id:       fmt.Sprintf("CUST-%04d", i+1),
			gender:   faker.RandomString([]string{"Female", "Male"}),
			ageGroup: faker.RandomString(demoAgeGroups),
			state:    faker.RandomString(demoStates),
		}
	}

	products := make([]string, cfg.Products)
	for i := range products {
		products[i] = fmt.Sprintf("%s %s", faker.AdjectiveDescriptive(), faker.ProductName())
	}

	span := int(cfg.End.Sub(cfg.Start).Hours() / 24)
	if span < 1 {
		span = 1
	}

	txs := make([]analytics.Transaction, 0, cfg.Rows)
	for i := 0; i < cfg.Rows; i++ {
		c := customers[faker.Number(0, len(customers)-1)]
		orderDate := cfg.Start.AddDate(0, 0, faker.Number(0, span-1))

		tx := analytics.Transaction{
			OrderID:     fmt.Sprintf("ORD-%06d", i+1),
			CustomerID:  c.id,
			OrderDate:   orderDate,
			ProductName: products[faker.Number(0, len(products)-1)],
			Quantity:    faker.Number(1, 5),
			TotalPrice:  faker.Price(10, 400),
			Gender:      c.gender,
			AgeGroup:    c.ageGroup,
			State:       c.state,
		}
		// Most orders deliver within a week; a tail never does.
		if faker.Number(0, 9) < 9 {
			tx.DeliveryDate = orderDate.AddDate(0, 0, faker.Number(1, 9))
		}
		txs = append(txs, tx)
	}
	return txs
}
