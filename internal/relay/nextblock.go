// ==================================
// File: internal/relay/nextblock.go
// ==================================
package relay

import (
	"net/http"

	"github.com/gagliardetto/solana-go/rpc"

	"github.com/deadraid/meteora-sniper/internal/transaction"
)

// NewNextBlockSender submits through the NextBlock API. The wire format is
// the same base64 envelope bloXroute uses.
func NewNextBlockSender(name, url, auth string, txCfg transaction.Config, client *http.Client, heights *rpc.Client) Sender {
	return &httpSender{
		name:    name,
		url:     url,
		auth:    auth,
		txCfg:   txCfg,
		client:  client,
		heights: heights,
	}
}
