// ==================================
// File: internal/relay/http.go
// ==================================
package relay

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
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

// swapEnvelope is the JSON body the HTTP relays expect: the signed
// transaction base64-encoded, with preflight disabled.
type swapEnvelope struct {
	Transaction   txContent `json:"transaction"`
	SkipPreFlight bool      `json:"skipPreFlight"`
}

type txContent struct {
	Content string `json:"content"`
}

// httpSender is shared by the HTTP relays that accept the base64 JSON
// envelope. They differ only in name and endpoint.
type httpSender struct {
	name    string
	url     string
	auth    string
	txCfg   transaction.Config
	client  *http.Client
	heights *rpc.Client
}

func (s *httpSender) Name() string { return s.name }

func (s *httpSender) SendSwap(
	ctx context.Context,
	recentBlockhash solana.Hash,
	params *meteora.SwapParams,
) (Result, error) {
	tx, err := transaction.BuildSwapTx(s.txCfg, config.RelayRPC, recentBlockhash, params)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", s.name, err)
	}
	raw, err := encodeTx(tx)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", s.name, err)
	}

	payload, err := json.Marshal(swapEnvelope{
		Transaction:   txContent{Content: base64.StdEncoding.EncodeToString(raw)},
		SkipPreFlight: true,
	})
	if err != nil {
		return Result{}, fmt.Errorf("%s: encode request: %w", s.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("%s: build request: %w", s.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", s.auth)

	resp, err := s.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%s: submit transaction: %w", s.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("%s: read response: %w", s.name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("%s: status %d: %s", s.name, resp.StatusCode, string(body))
	}

	return Result{Signature: parseSignatureResponse(body)}, nil
}

func (s *httpSender) BlockHeight(ctx context.Context) (uint64, error) {
	height, err := s.heights.GetBlockHeight(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("%s: get block height: %w", s.name, err)
	}
	return height, nil
}

// parseSignatureResponse extracts the signature from a relay reply. The
// relays answer either {"signature": "..."} or the bare signature string.
func parseSignatureResponse(body []byte) string {
	var parsed struct {
		Signature string `json:"signature"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Signature != "" {
		return parsed.Signature
	}
	return strings.Trim(strings.TrimSpace(string(body)), `"`)
}
