package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Numeric accepts a JSON number or a numeric string and keeps its textual form.
// Indexer feeds are inconsistent about quoting large integers, so both shapes
// must parse.
type Numeric string

func (n *Numeric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty numeric value")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Numeric(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*n = Numeric(num.String())
	return nil
}

func (n Numeric) String() string {
	return string(n)
}

// RawSample is an unvalidated per-tick liquidity observation as delivered by
// an external indexer. Parsing and filtering happen downstream; a RawSample
// may hold garbage.
type RawSample struct {
	TickIndex         Numeric `json:"tick_index"`
	NetLiquidityDelta Numeric `json:"net_liquidity_delta"`
}

// LiquiditySample is a parsed observation: a tick index and the signed net
// liquidity delta recorded at it.
type LiquiditySample struct {
	Tick         int32
	NetLiquidity float64
}

// SampleRecord is the JSONL form of a liquidity sample tied to its pool.
type SampleRecord struct {
	ChainID     uint64    `json:"chain_id"`
	PoolAddress string    `json:"pool_address"`
	Sample      RawSample `json:"sample"`
	PoolMeta    PoolMeta  `json:"pool_meta"`
}
