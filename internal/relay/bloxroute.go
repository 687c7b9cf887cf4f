// ==================================
// File: internal/relay/bloxroute.go
// ==================================
package relay

import (
	"net/http"

	"github.com/gagliardetto/solana-go/rpc"

	"github.com/deadraid/meteora-sniper/internal/transaction"
)

// NewBloxrouteSender submits through the bloXroute trader API.
func NewBloxrouteSender(name, url, auth string, txCfg transaction.Config, client *http.Client, heights *rpc.Client) Sender {
	return &httpSender{
		name:    name,
		url:     url,
		auth:    auth,
		txCfg:   txCfg,
		client:  client,
		heights: heights,
	}
}
