package main

import (
	"github.com/spf13/cobra"

	"liquidityRange/internal/engine"
	"liquidityRange/internal/liquidity"
	"liquidityRange/internal/tickmath"
)

type rangeOutput struct {
	TickLower   int32 `json:"tick_lower"`
	TickUpper   int32 `json:"tick_upper"`
	TickSpacing int32 `json:"tick_spacing"`
	FullRange   bool  `json:"full_range"`
}

func runRange(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	full, _ := flags.GetBool("full-range")
	lower, _ := flags.GetFloat64("lower")
	upper, _ := flags.GetFloat64("upper")
	fee, _ := flags.GetFloat64("fee")
	decimals0, _ := flags.GetInt32("token0-decimals")
	decimals1, _ := flags.GetInt32("token1-decimals")

	r, err := parseRange(full, lower, upper)
	if err != nil {
		return err
	}

	aligned, err := engine.New(nil).ComputeAlignedRange(r, fee, decimals0, decimals1)
	if err != nil {
		return err
	}

	return printJSON(cmd, rangeOutput{
		TickLower:   aligned.TickLower,
		TickUpper:   aligned.TickUpper,
		TickSpacing: tickmath.SpacingForFee(fee),
		FullRange:   full,
	})
}

func parseRange(full bool, lower, upper float64) (liquidity.Range, error) {
	if full {
		return liquidity.FullRange(), nil
	}
	return liquidity.NewRange(lower, upper)
}
