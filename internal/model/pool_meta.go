package model

// PoolMeta carries the pool attributes the engine needs: token decimal
// precision and the fee tier in parts per million (500 = 0.05%).
type PoolMeta struct {
	Token0Decimals int32  `json:"token0_decimals"`
	Token1Decimals int32  `json:"token1_decimals"`
	FeePPM         uint32 `json:"fee_ppm"`
	TickSpacing    int32  `json:"tick_spacing,omitempty"`
}
