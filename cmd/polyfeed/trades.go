package main

import (
	"encoding/json"
	"fmt"
	"os"

	"polyfeed/internal/data"

	"github.com/spf13/cobra"
)

var (
	tradesAddress   string
	tradesMarket    string
	tradesSide      string
	tradesLimit     int
	tradesTakerOnly bool
)

var tradesCmd = &cobra.Command{
	Use:   "trades",
	Short: "List trades as JSON lines, deduplicated across pages",
	RunE:  runTrades,
}

func init() {
	tradesCmd.Flags().StringVar(&tradesAddress, "address", "", "proxy wallet address")
	tradesCmd.Flags().StringVar(&tradesMarket, "market", "", "condition id")
	tradesCmd.Flags().StringVar(&tradesSide, "side", "", "BUY or SELL")
	tradesCmd.Flags().IntVar(&tradesLimit, "limit", 0, "maximum trades to emit (0 = no cap)")
	tradesCmd.Flags().BoolVar(&tradesTakerOnly, "taker-only", true, "only taker fills")
}

func runTrades(cmd *cobra.Command, _ []string) error {
	if tradesAddress == "" && tradesMarket == "" {
		return fmt.Errorf("either --address or --market is required")
	}

	params := data.TradesParams{
		Address:   tradesAddress,
		TakerOnly: tradesTakerOnly,
		Side:      tradesSide,
		Limit:     tradesLimit,
	}
	if tradesMarket != "" {
		params.ConditionIDs = []string{tradesMarket}
	}

	client := data.New("")
	enc := json.NewEncoder(os.Stdout)
	for trade, err := range client.Trades(cmd.Context(), params) {
		if err != nil {
			return fmt.Errorf("couldn't list trades: %w", err)
		}
		if err := enc.Encode(trade); err != nil {
			return err
		}
	}
	return nil
}
