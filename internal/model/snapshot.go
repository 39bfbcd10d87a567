package model

// SeriesPoint is one entry of a price-sorted liquidity series.
type SeriesPoint struct {
	Tick      int32   `json:"tick"`
	Price     float64 `json:"price"`
	Liquidity float64 `json:"liquidity"`
}

// LiquidityBin is an aggregated price bucket for display. Bins are derived
// per request and never persisted by the engine itself.
type LiquidityBin struct {
	Label     string  `json:"label"`
	Price     float64 `json:"price"`
	Liquidity float64 `json:"liquidity"`
}

// DistributionSnapshot bundles the display-ready views computed for one pool:
// the base series, the top-N concentrations, and the histogram.
type DistributionSnapshot struct {
	ChainID        uint64         `json:"chain_id"`
	PoolAddress    string         `json:"pool_address"`
	PriceField     string         `json:"price_field"`
	GeneratedAt    string         `json:"generated_at"`
	Series         []SeriesPoint  `json:"series"`
	Top            []SeriesPoint  `json:"top"`
	Bins           []LiquidityBin `json:"bins"`
	TotalLiquidity float64        `json:"total_liquidity"`
	DroppedSamples int            `json:"dropped_samples"`
}
