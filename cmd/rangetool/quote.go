package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"liquidityRange/internal/engine"
	"liquidityRange/internal/liquidity"
)

type quoteOutput struct {
	Amount0     string `json:"amount0"`
	Amount1     string `json:"amount1"`
	Amount0Base string `json:"amount0_base"`
	Amount1Base string `json:"amount1_base"`
}

func runQuote(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	amount, _ := flags.GetFloat64("amount")
	token, _ := flags.GetString("token")
	price, _ := flags.GetFloat64("price")
	full, _ := flags.GetBool("full-range")
	lower, _ := flags.GetFloat64("lower")
	upper, _ := flags.GetFloat64("upper")
	decimals0, _ := flags.GetInt32("token0-decimals")
	decimals1, _ := flags.GetInt32("token1-decimals")

	var input liquidity.DepositInput
	switch token {
	case "token0":
		input = liquidity.Token0Input(amount)
	case "token1":
		input = liquidity.Token1Input(amount)
	default:
		return fmt.Errorf("unknown token %q, want token0 or token1", token)
	}

	r, err := parseRange(full, lower, upper)
	if err != nil {
		return err
	}

	result, err := engine.New(nil).ComputeCounterpartAmount(input, price, r, decimals0, decimals1)
	if err != nil {
		return err
	}

	return printJSON(cmd, quoteOutput{
		Amount0:     result.Amount0.String(),
		Amount1:     result.Amount1.String(),
		Amount0Base: result.Amount0Base.String(),
		Amount1Base: result.Amount1Base.String(),
	})
}
