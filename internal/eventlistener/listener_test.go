// ==================================
// File: internal/eventlistener/listener_test.go
// ==================================
package eventlistener

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type handledTx struct {
	signature solana.Signature
	slot      uint64
	hasTx     bool
}

type captureHandler struct {
	got chan handledTx
}

func (h *captureHandler) HandleTransaction(
	_ context.Context,
	signature solana.Signature,
	tx *solana.Transaction,
	_ *rpc.TransactionMeta,
	_ bool,
	slot uint64,
) error {
	h.got <- handledTx{signature: signature, slot: slot, hasTx: tx != nil}
	return nil
}

// signedFixtureTx builds a minimal signed transfer so the feed has real
// bytes to decode.
func signedFixtureTx(t *testing.T) (*solana.Transaction, string) {
	t.Helper()
	priv, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	dest, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(1, priv.PublicKey(), dest.PublicKey()).Build(),
		},
		solana.Hash{},
		solana.TransactionPayer(priv.PublicKey()),
	)
	require.NoError(t, err)
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(priv.PublicKey()) {
			return &priv
		}
		return nil
	})
	require.NoError(t, err)

	raw, err := tx.MarshalBinary()
	require.NoError(t, err)
	return tx, base64.StdEncoding.EncodeToString(raw)
}

// logsWSServer answers one logsSubscribe request and then pushes the given
// notifications, keeping the connection open until the client drops it.
func logsWSServer(t *testing.T, notifications []string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var req struct {
			ID     uint64 `json:"id"`
			Method string `json:"method"`
		}
		if err := json.Unmarshal(msg, &req); err != nil || req.Method != "logsSubscribe" {
			t.Errorf("unexpected first message: %s", msg)
			return
		}
		confirm := fmt.Sprintf(`{"jsonrpc":"2.0","result":1,"id":%d}`, req.ID)
		if err := conn.WriteMessage(websocket.TextMessage, []byte(confirm)); err != nil {
			return
		}
		for _, n := range notifications {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(n)); err != nil {
				return
			}
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func logsNotification(signature string, failed bool, slot uint64) string {
	errJSON := "null"
	if failed {
		errJSON = `{"InstructionError":[0,"Custom"]}`
	}
	return fmt.Sprintf(
		`{"jsonrpc":"2.0","method":"logsNotification","params":{"result":{"context":{"slot":%d},"value":{"signature":%q,"err":%s,"logs":[]}},"subscription":1}}`,
		slot, signature, errJSON)
}

// transactionRPCServer serves getTransaction with a fixed payload and
// counts the fetches.
func transactionRPCServer(t *testing.T, txBase64 string, slot uint64, fetches *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode rpc request: %v", err)
			return
		}
		if req.Method != "getTransaction" {
			t.Errorf("unexpected rpc method %q", req.Method)
			return
		}
		fetches.Add(1)
		fmt.Fprintf(w,
			`{"jsonrpc":"2.0","result":{"slot":%d,"meta":null,"blockTime":null,"transaction":[%q,"base64"]},"id":%s}`,
			slot, txBase64, req.ID)
	}))
}

func TestListener_DispatchesConfirmedTransactions(t *testing.T) {
	fixtureTx, txBase64 := signedFixtureTx(t)
	goodSig := fixtureTx.Signatures[0]

	var failedSig solana.Signature
	failedSig[0] = 0xff

	wsServer := logsWSServer(t, []string{
		logsNotification(failedSig.String(), true, 41),
		logsNotification(goodSig.String(), false, 42),
	})
	defer wsServer.Close()

	var fetches atomic.Int32
	rpcServer := transactionRPCServer(t, txBase64, 42, &fetches)
	defer rpcServer.Close()

	handler := &captureHandler{got: make(chan handledTx, 4)}
	wsURL := "ws" + strings.TrimPrefix(wsServer.URL, "http")
	l := New(wsURL, rpc.New(rpcServer.URL), solana.SystemProgramID, handler, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runErr := make(chan error, 1)
	go func() { runErr <- l.Run(ctx) }()

	select {
	case got := <-handler.got:
		assert.Equal(t, goodSig, got.signature)
		assert.Equal(t, uint64(42), got.slot)
		assert.True(t, got.hasTx)
	case <-time.After(5 * time.Second):
		t.Fatal("no transaction dispatched")
	}

	// the failed-log signature must never be fetched or dispatched
	assert.Equal(t, int32(1), fetches.Load())
	select {
	case got := <-handler.got:
		t.Fatalf("unexpected extra dispatch: %s", got.signature)
	default:
	}

	cancel()
	select {
	case err := <-runErr:
		assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not stop on cancellation")
	}
}

func TestListener_RunStopsWhenContextAlreadyCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	handler := &captureHandler{got: make(chan handledTx, 1)}
	l := New("ws://127.0.0.1:0", rpc.New("http://127.0.0.1:0"), solana.SystemProgramID, handler, zap.NewNop())

	err := l.Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}
