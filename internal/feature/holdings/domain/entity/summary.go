package entity

// PortfolioSummary aggregates the value of all holdings.
type PortfolioSummary struct {
	TotalHoldings int     // Number of stored holdings
	TotalValue    float64 // Sum of quantity * current price
	TotalCost     float64 // Sum of quantity * buy price
	AverageReturn float64 // Mean percentage return over holdings with a non-zero buy price
}
