package model

import (
	"encoding/json"
	"testing"
)

func TestRawSampleQuotedValues(t *testing.T) {
	var sample RawSample
	if err := json.Unmarshal([]byte(`{"tick_index":"100","net_liquidity_delta":"-5000000000000000000"}`), &sample); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if sample.TickIndex.String() != "100" {
		t.Fatalf("tick mismatch: %s", sample.TickIndex)
	}
	if sample.NetLiquidityDelta.String() != "-5000000000000000000" {
		t.Fatalf("delta mismatch: %s", sample.NetLiquidityDelta)
	}
}

func TestRawSampleBareNumbers(t *testing.T) {
	var sample RawSample
	if err := json.Unmarshal([]byte(`{"tick_index":-887220,"net_liquidity_delta":42.5}`), &sample); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if sample.TickIndex.String() != "-887220" {
		t.Fatalf("tick mismatch: %s", sample.TickIndex)
	}
	if sample.NetLiquidityDelta.String() != "42.5" {
		t.Fatalf("delta mismatch: %s", sample.NetLiquidityDelta)
	}
}

func TestNumericRejectsNonNumericJSON(t *testing.T) {
	var sample RawSample
	if err := json.Unmarshal([]byte(`{"tick_index":{"nested":1},"net_liquidity_delta":"1"}`), &sample); err == nil {
		t.Fatalf("expected error for object tick index")
	}
}
