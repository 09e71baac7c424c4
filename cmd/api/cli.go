package main

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bimakw/dex-router/internal/domain/entities"
	"github.com/bimakw/dex-router/internal/domain/services"
	"github.com/bimakw/dex-router/internal/infrastructure/ethereum"
)

func runQuote(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	req, err := quoteRequestFromFlags(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resp, err := a.router.GetQuote(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(cmd, resp)
}

func runSwap(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	req, err := quoteRequestFromFlags(cmd)
	if err != nil {
		return err
	}
	send, _ := cmd.Flags().GetBool("send")
	recipient, _ := cmd.Flags().GetString("recipient")
	slippage, _ := cmd.Flags().GetString("slippage")

	key, from, err := senderFromConfig(a, send)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tx, err := a.router.PrepareSwap(ctx, services.SwapParams{
		QuoteRequest:   req,
		Slippage:       slippage,
		From:           from,
		Recipient:      recipient,
		DeadlineOffset: a.cfg.DeadlineOffset,
	})
	if err != nil {
		return err
	}

	if !send {
		return printJSON(cmd, tx)
	}
	return sendTx(ctx, cmd, a, tx, key)
}

func runApprove(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	send, _ := cmd.Flags().GetBool("send")
	token, _ := cmd.Flags().GetString("token")
	amount, _ := cmd.Flags().GetString("amount")
	amountIn, _ := cmd.Flags().GetString("amount-in")
	infinite, _ := cmd.Flags().GetBool("infinite")

	key, owner, err := senderFromConfig(a, send)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tx, err := a.router.PrepareApproval(ctx, services.ApprovalParams{
		Token:    token,
		Owner:    owner,
		AmountIn: amountIn,
		Amount:   amount,
		Infinite: infinite,
	})
	if err != nil {
		return err
	}
	if tx == nil {
		a.logger.Info("allowance sufficient, no approval needed", zap.String("token", token))
		return printJSON(cmd, map[string]bool{"required": false})
	}

	if !send {
		return printJSON(cmd, tx)
	}
	return sendTx(ctx, cmd, a, tx, key)
}

func runPool(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	rawA, _ := cmd.Flags().GetString("token-a")
	rawB, _ := cmd.Flags().GetString("token-b")
	tokenA, err := a.registry.Resolve("token-a", rawA)
	if err != nil {
		return err
	}
	tokenB, err := a.registry.Resolve("token-b", rawB)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := a.locator.FindBestPool(ctx, tokenA, tokenB)
	if err != nil {
		return err
	}
	return printJSON(cmd, pool)
}

func quoteRequestFromFlags(cmd *cobra.Command) (services.QuoteRequest, error) {
	var req services.QuoteRequest
	req.TokenIn, _ = cmd.Flags().GetString("token-in")
	req.TokenOut, _ = cmd.Flags().GetString("token-out")
	req.Amount, _ = cmd.Flags().GetString("amount")
	req.AmountIn, _ = cmd.Flags().GetString("amount-in")
	req.Fee, _ = cmd.Flags().GetUint64("fee")
	req.PathID, _ = cmd.Flags().GetString("path-id")

	if req.TokenIn == "" || req.TokenOut == "" {
		return req, fmt.Errorf("--token-in and --token-out are required")
	}
	if req.Amount == "" && req.AmountIn == "" {
		return req, fmt.Errorf("--amount or --amount-in is required")
	}
	return req, nil
}

// senderFromConfig resolves the sender address, and the key when sending.
// Without --send only an address is needed.
func senderFromConfig(a *app, send bool) (*ecdsa.PrivateKey, string, error) {
	var key *ecdsa.PrivateKey
	if a.cfg.PrivateKey != "" {
		var err error
		if key, err = ethereum.ParsePrivateKey(a.cfg.PrivateKey); err != nil {
			return nil, "", err
		}
	}
	if send && key == nil {
		return nil, "", fmt.Errorf("--private-key is required with --send")
	}

	from := a.cfg.From
	if from == "" && key != nil {
		from = crypto.PubkeyToAddress(key.PublicKey).Hex()
	}
	if from == "" {
		return nil, "", fmt.Errorf("--from or --private-key is required")
	}
	return key, from, nil
}

func sendTx(ctx context.Context, cmd *cobra.Command, a *app, tx *entities.TransactionRequest, key *ecdsa.PrivateKey) error {
	hash, err := ethereum.NewSigner(a.client).Send(ctx, tx, key)
	if err != nil {
		return err
	}
	a.logger.Info("transaction sent", zap.String("hash", hash.Hex()), zap.Uint64("nonce", tx.Nonce))
	return printJSON(cmd, map[string]string{"hash": hash.Hex()})
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
