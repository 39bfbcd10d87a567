package model

// Pool is a pool registry record for storage.
type Pool struct {
	ChainID        uint64 `json:"chain_id"`
	Address        string `json:"address"`
	Token0Decimals int32  `json:"token0_decimals"`
	Token1Decimals int32  `json:"token1_decimals"`
	FeePPM         uint32 `json:"fee_ppm"`
	TickSpacing    int32  `json:"tick_spacing"`
}
