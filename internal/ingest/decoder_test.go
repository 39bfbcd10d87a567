package ingest

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"liquidityRange/internal/model"
)

func buildLogRecord(pool common.Address, topic0 common.Hash, data []byte, indexed []common.Hash) model.LogRecord {
	topics := []string{topic0.Hex()}
	for _, topic := range indexed {
		topics = append(topics, topic.Hex())
	}
	return model.LogRecord{
		ChainID:     56,
		BlockNumber: 1000,
		TxHash:      "0x1122",
		LogIndex:    3,
		Address:     pool.Hex(),
		Topics:      topics,
		Data:        hexutil.Encode(data),
	}
}

func topicFromAddress(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

func topicFromTick(tick int64) common.Hash {
	value := big.NewInt(tick)
	if tick < 0 {
		// Two's complement over 256 bits, as topics encode signed ints.
		value = new(big.Int).Add(new(big.Int).Lsh(big.NewInt(1), 256), value)
	}
	return common.BigToHash(value)
}

func TestDecodeMint(t *testing.T) {
	poolABI, err := PoolABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}

	decoder, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	pool := common.HexToAddress("0x1111111111111111111111111111111111111111")
	sender := common.HexToAddress("0x2222222222222222222222222222222222222222")
	owner := common.HexToAddress("0x3333333333333333333333333333333333333333")

	data, err := poolABI.Events["Mint"].Inputs.NonIndexed().Pack(
		sender,
		big.NewInt(5000),
		big.NewInt(100),
		big.NewInt(200),
	)
	if err != nil {
		t.Fatalf("pack mint: %v", err)
	}

	record := buildLogRecord(pool, poolABI.Events["Mint"].ID, data, []common.Hash{
		topicFromAddress(owner),
		topicFromTick(-120),
		topicFromTick(180),
	})

	event, err := decoder.Decode(record)
	if err != nil {
		t.Fatalf("decode mint: %v", err)
	}

	if event.TickLower != -120 || event.TickUpper != 180 {
		t.Fatalf("tick interval mismatch: [%d, %d)", event.TickLower, event.TickUpper)
	}
	if event.Amount.Cmp(big.NewInt(5000)) != 0 {
		t.Fatalf("amount mismatch: %s", event.Amount)
	}
	if event.Removed {
		t.Fatalf("mint must not be removed")
	}
	if event.PoolAddress != pool.Hex() {
		t.Fatalf("pool mismatch: %s", event.PoolAddress)
	}
}

func TestDecodeBurn(t *testing.T) {
	poolABI, err := PoolABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}

	decoder, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	pool := common.HexToAddress("0x9999999999999999999999999999999999999999")
	owner := common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")

	data, err := poolABI.Events["Burn"].Inputs.NonIndexed().Pack(
		big.NewInt(700),
		big.NewInt(10),
		big.NewInt(20),
	)
	if err != nil {
		t.Fatalf("pack burn: %v", err)
	}

	record := buildLogRecord(pool, poolABI.Events["Burn"].ID, data, []common.Hash{
		topicFromAddress(owner),
		topicFromTick(60),
		topicFromTick(120),
	})

	event, err := decoder.Decode(record)
	if err != nil {
		t.Fatalf("decode burn: %v", err)
	}

	if !event.Removed {
		t.Fatalf("burn must be removed")
	}
	if event.Amount.Cmp(big.NewInt(700)) != 0 {
		t.Fatalf("amount mismatch: %s", event.Amount)
	}
}

func TestDecodeRejectsUnknownTopic(t *testing.T) {
	decoder, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	record := model.LogRecord{
		Address: "0x1111111111111111111111111111111111111111",
		Topics:  []string{"0xdeadbeef"},
	}
	if decoder.CanDecode(record.Topics[0]) {
		t.Fatalf("unexpected decodable topic")
	}
	if _, err := decoder.Decode(record); err == nil {
		t.Fatalf("expected error for unknown topic")
	}
}

func TestAccumulatorNetDeltas(t *testing.T) {
	acc := NewAccumulator()

	pool := "0x1111111111111111111111111111111111111111"
	acc.Apply(&PositionEvent{PoolAddress: pool, TickLower: 100, TickUpper: 200, Amount: big.NewInt(50)})
	acc.Apply(&PositionEvent{PoolAddress: pool, TickLower: 100, TickUpper: 300, Amount: big.NewInt(30)})
	acc.Apply(&PositionEvent{PoolAddress: pool, TickLower: 100, TickUpper: 200, Amount: big.NewInt(20), Removed: true})

	meta := map[string]model.PoolMeta{
		pool: {Token0Decimals: 18, Token1Decimals: 6, FeePPM: 3000},
	}
	records, missing := acc.Records(56, meta)
	if len(missing) != 0 {
		t.Fatalf("unexpected missing pools: %v", missing)
	}

	// Net deltas: +50+30-20=+60 at 100, -50+20=-30 at 200, -30 at 300.
	want := map[string]string{
		"100": "60",
		"200": "-30",
		"300": "-30",
	}
	if len(records) != len(want) {
		t.Fatalf("record count mismatch: %d", len(records))
	}
	for _, record := range records {
		if got := record.Sample.NetLiquidityDelta.String(); got != want[record.Sample.TickIndex.String()] {
			t.Fatalf("delta mismatch at tick %s: %s", record.Sample.TickIndex, got)
		}
		if record.PoolMeta.FeePPM != 3000 {
			t.Fatalf("pool meta missing")
		}
		if record.ChainID != 56 {
			t.Fatalf("chain id mismatch")
		}
	}
}

func TestAccumulatorCancellation(t *testing.T) {
	acc := NewAccumulator()
	pool := "0x2222222222222222222222222222222222222222"

	acc.Apply(&PositionEvent{PoolAddress: pool, TickLower: -60, TickUpper: 60, Amount: big.NewInt(40)})
	acc.Apply(&PositionEvent{PoolAddress: pool, TickLower: -60, TickUpper: 60, Amount: big.NewInt(40), Removed: true})

	records, _ := acc.Records(1, map[string]model.PoolMeta{pool: {}})
	if len(records) != 0 {
		t.Fatalf("fully burned position must leave no samples, got %d", len(records))
	}
}

func TestAccumulatorMissingMeta(t *testing.T) {
	acc := NewAccumulator()
	acc.Apply(&PositionEvent{PoolAddress: "0x3333333333333333333333333333333333333333", TickLower: 0, TickUpper: 60, Amount: big.NewInt(1)})

	records, missing := acc.Records(1, nil)
	if len(records) != 0 {
		t.Fatalf("expected no records without metadata")
	}
	if len(missing) != 1 {
		t.Fatalf("expected one missing pool, got %d", len(missing))
	}
}
