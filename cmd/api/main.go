package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bimakw/dex-router/internal/config"
)

const version = "0.3.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "dex-router",
		Short:        "Uniswap V3 routing and swap building",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("rpc", "", "JSON-RPC endpoint URL")
	root.PersistentFlags().Uint64("chain-id", 1, fmt.Sprintf("chain id, one of %v", config.SupportedChainIDs()))
	root.PersistentFlags().String("tokens-file", "", `extra token list file ({"tokens":[{"address":"0x...","symbol":"...","decimals":18}]})`)
	root.PersistentFlags().String("redis-addr", "", "redis address, empty for in-memory cache")
	root.PersistentFlags().String("redis-password", "", "redis password")
	root.PersistentFlags().Int("redis-db", 0, "redis database")
	root.PersistentFlags().Duration("cache-ttl", 300*time.Second, "pool and path cache TTL")
	root.PersistentFlags().Duration("call-timeout", 5*time.Second, "timeout per RPC call")
	root.PersistentFlags().Int("max-concurrency", 10, "max in-flight RPC calls per fan-out")
	root.PersistentFlags().Int("max-hops", 2, "default max hops for discovery (1-3)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE:  runServe,
	}
	serveCmd.Flags().String("port", "8080", "HTTP listen port")
	serveCmd.Flags().String("slippage", "0.005", "default slippage fraction")
	serveCmd.Flags().Duration("deadline-offset", 1800*time.Second, "swap deadline offset")
	root.AddCommand(serveCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote the best route for an exact-input swap",
		RunE:  runQuote,
	}
	addQuoteFlags(quoteCmd)
	root.AddCommand(quoteCmd)

	swapCmd := &cobra.Command{
		Use:   "swap",
		Short: "Build, and optionally sign and send, a swap transaction",
		RunE:  runSwap,
	}
	addQuoteFlags(swapCmd)
	swapCmd.Flags().String("slippage", "0.005", "slippage fraction")
	swapCmd.Flags().Duration("deadline-offset", 1800*time.Second, "swap deadline offset")
	swapCmd.Flags().String("from", "", "sender address, defaults to the private key address")
	swapCmd.Flags().String("recipient", "", "output recipient, defaults to sender")
	swapCmd.Flags().String("private-key", "", "hex private key, required with --send")
	swapCmd.Flags().Bool("send", false, "sign and broadcast the transaction")
	root.AddCommand(swapCmd)

	approveCmd := &cobra.Command{
		Use:   "approve",
		Short: "Build, and optionally send, a router approval when needed",
		RunE:  runApprove,
	}
	approveCmd.Flags().String("token", "", "token address or symbol")
	approveCmd.Flags().String("amount", "", "amount in human units")
	approveCmd.Flags().String("amount-in", "", "amount in base units")
	approveCmd.Flags().Bool("infinite", false, "approve the maximum uint256")
	approveCmd.Flags().String("from", "", "owner address, defaults to the private key address")
	approveCmd.Flags().String("private-key", "", "hex private key, required with --send")
	approveCmd.Flags().Bool("send", false, "sign and broadcast the transaction")
	root.AddCommand(approveCmd)

	poolCmd := &cobra.Command{
		Use:   "pool",
		Short: "Find the first existing pool for a pair",
		RunE:  runPool,
	}
	poolCmd.Flags().String("token-a", "", "first token address or symbol")
	poolCmd.Flags().String("token-b", "", "second token address or symbol")
	root.AddCommand(poolCmd)

	return root
}

func addQuoteFlags(cmd *cobra.Command) {
	cmd.Flags().String("token-in", "", "input token address or symbol")
	cmd.Flags().String("token-out", "", "output token address or symbol")
	cmd.Flags().String("amount", "", "input amount in human units")
	cmd.Flags().String("amount-in", "", "input amount in base units")
	cmd.Flags().Uint64("fee", 0, "pin a single-hop fee tier (100, 500, 3000, 10000)")
	cmd.Flags().String("path-id", "", "pin a previously quoted path")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
