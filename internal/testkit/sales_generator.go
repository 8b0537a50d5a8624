package testkit

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// SalesGeneratorConfig configures the sales data generator
type SalesGeneratorConfig struct {
	OrderCount   int       `json:"order_count"`
	ProductCount int       `json:"product_count"`
	MissingRate  float64   `json:"missing_rate"`
	ReturnRate   float64   `json:"return_rate"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Seed         int64     `json:"seed"`
}

// DefaultSalesConfig returns sensible defaults for sales data generation
func DefaultSalesConfig() SalesGeneratorConfig {
	return SalesGeneratorConfig{
		OrderCount:   500,
		ProductCount: 20,
		MissingRate:  0.02,
		ReturnRate:   0.08,
		StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC),
		Seed:         42,
	}
}

// SalesHeader is the column layout written by the generator.
var SalesHeader = []string{"order_date", "region", "product", "units", "unit_price", "revenue", "returned"}

var salesRegions = []string{"North", "South", "East", "West"}

// SalesDataGenerator generates order-level sales data with regional and
// weekday effects, suitable for exercising charts and aggregations.
type SalesDataGenerator struct {
	config SalesGeneratorConfig
	rng    *rand.Rand
	prices []float64
}

// NewSalesDataGenerator creates a new sales data generator
func NewSalesDataGenerator(config SalesGeneratorConfig) *SalesDataGenerator {
	g := &SalesDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
	g.prices = make([]float64, config.ProductCount)
	for i := range g.prices {
		g.prices[i] = math.Round((5+g.rng.Float64()*95)*100) / 100
	}
	return g
}

// GenerateRows returns the generated orders as string records without header.
// Missing cells are empty strings.
func (g *SalesDataGenerator) GenerateRows() [][]string {
	rows := make([][]string, 0, g.config.OrderCount)
	for i := 0; i < g.config.OrderCount; i++ {
		rows = append(rows, g.order())
	}
	return rows
}

// GenerateCSV returns header and rows as CSV bytes.
func (g *SalesDataGenerator) GenerateCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(SalesHeader); err != nil {
		return nil, err
	}
	if err := w.WriteAll(g.GenerateRows()); err != nil {
		return nil, fmt.Errorf("failed to write sales csv: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *SalesDataGenerator) order() []string {
	date := g.randomTimeInRange(g.config.StartDate, g.config.EndDate)
	region := salesRegions[g.rng.Intn(len(salesRegions))]
	product := 0
	if len(g.prices) > 0 {
		product = g.rng.Intn(len(g.prices))
	}

	// Weekend orders are larger; the West region skews higher
	units := 1 + g.rng.Intn(5)
	if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
		units += 2
	}
	if region == "West" {
		units++
	}

	price := 10.0
	if len(g.prices) > 0 {
		price = g.prices[product]
	}
	revenue := math.Round(float64(units)*price*100) / 100

	returned := "no"
	if g.rng.Float64() < g.config.ReturnRate {
		returned = "yes"
	}

	row := []string{
		date.Format("2006-01-02"),
		region,
		fmt.Sprintf("P%03d", product+1),
		fmt.Sprintf("%d", units),
		fmt.Sprintf("%.2f", price),
		fmt.Sprintf("%.2f", revenue),
		returned,
	}

	// Blank out numeric cells occasionally so inference sees gaps
	for _, c := range []int{3, 5} {
		if g.rng.Float64() < g.config.MissingRate {
			row[c] = ""
		}
	}
	return row
}

func (g *SalesDataGenerator) randomTimeInRange(start, end time.Time) time.Time {
	if start.After(end) {
		start, end = end, start
	}
	duration := end.Sub(start)
	if duration <= 0 {
		return start
	}
	return start.Add(time.Duration(g.rng.Int63n(int64(duration))))
}
