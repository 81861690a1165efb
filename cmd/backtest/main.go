package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"rebalance_bot/internal/backtest"
	"rebalance_bot/internal/marketdata"
	"rebalance_bot/internal/universe"
)

func loadScenario() {
	viper.SetConfigName("backtest")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("configs")

	viper.SetDefault("days", 10)
	viper.SetDefault("cash", 500.0)
	viper.SetDefault("position_size", 100.0)
	viper.SetDefault("max_positions", 5)
	viper.SetDefault("score_window", 10)
	viper.SetDefault("lookback_days", 50)
	viper.SetDefault("benchmark", "SPY")
	viper.SetDefault("data.base_url", "https://data.alpaca.markets")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic(errors.Wrap(err, "read backtest scenario"))
		}
		// no scenario file: defaults only
	}
}

func run() error {
	loadScenario()
	ctx := context.Background()

	symbols := viper.GetStringSlice("universe")
	if len(symbols) == 0 {
		symbols = universe.Default
	}
	bench := viper.GetString("benchmark")
	if bench != "" {
		symbols = append(symbols, bench)
	}

	data := marketdata.NewClient(
		viper.GetString("data.base_url"),
		os.Getenv("BROKER_API_KEY"),
		os.Getenv("BROKER_API_SECRET"),
	)
	prices, failed := data.History(ctx, symbols, viper.GetInt("lookback_days"), time.Now())
	if len(failed) > 0 {
		log.Printf("no history for %d symbols: %v", len(failed), failed)
	}

	sim := backtest.New(backtest.Params{
		Days:         viper.GetInt("days"),
		Cash:         viper.GetFloat64("cash"),
		PositionSize: viper.GetFloat64("position_size"),
		MaxPositions: viper.GetInt("max_positions"),
		ScoreWindow:  viper.GetInt("score_window"),
		Benchmark:    bench,
	}, prices)

	acct, err := sim.Run(ctx)
	if err != nil {
		return errors.Wrap(err, "simulate")
	}

	table := acct.Performance()
	fmt.Print(table.String())

	trades := acct.Trades()
	fmt.Printf("\nclosed trades: %d\n", len(trades))
	for _, tr := range trades {
		fmt.Printf("- %s %v sh: %.2f -> %.2f (%+.2f%%)\n",
			tr.Symbol, tr.Shares, tr.EntryPrice, tr.ExitPrice, tr.ProfitPct)
	}

	if out := viper.GetString("output"); out != "" {
		f, err := os.Create(out)
		if err != nil {
			return errors.Wrap(err, "create output file")
		}
		defer f.Close()
		if err := table.WriteCSV(f); err != nil {
			return errors.Wrap(err, "write csv")
		}
		fmt.Printf("\nwrote %s\n", out)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
