// ==================================
// File: internal/relay/jito.go
// ==================================
package relay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/deadraid/meteora-sniper/internal/config"
	"github.com/deadraid/meteora-sniper/internal/meteora"
	"github.com/deadraid/meteora-sniper/internal/transaction"
)

// JitoSender submits the transaction as a single-transaction bundle to a
// Jito block engine. The transaction it builds carries the tip transfer;
// the engine drops tipless bundles.
type JitoSender struct {
	name    string
	url     string
	auth    string
	txCfg   transaction.Config
	client  *http.Client
	heights *rpc.Client
}

func NewJitoSender(name, url, auth string, txCfg transaction.Config, client *http.Client, heights *rpc.Client) *JitoSender {
	return &JitoSender{
		name:    name,
		url:     url,
		auth:    auth,
		txCfg:   txCfg,
		client:  client,
		heights: heights,
	}
}

func (s *JitoSender) Name() string { return s.name }

func (s *JitoSender) SendSwap(
	ctx context.Context,
	recentBlockhash solana.Hash,
	params *meteora.SwapParams,
) (Result, error) {
	tx, err := transaction.BuildSwapTx(s.txCfg, config.RelayJito, recentBlockhash, params)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", s.name, err)
	}
	raw, err := encodeTx(tx)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", s.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(raw))
	if err != nil {
		return Result{}, fmt.Errorf("%s: build request: %w", s.name, err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if s.auth != "" {
		req.Header.Set("Authorization", s.auth)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%s: submit bundle: %w", s.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("%s: read response: %w", s.name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("%s: status %d: %s", s.name, resp.StatusCode, string(body))
	}

	return Result{BundleID: strings.Trim(strings.TrimSpace(string(body)), `"`)}, nil
}

func (s *JitoSender) BlockHeight(ctx context.Context) (uint64, error) {
	height, err := s.heights.GetBlockHeight(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("%s: get block height: %w", s.name, err)
	}
	return height, nil
}
