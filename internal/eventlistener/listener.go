// ==================================
// File: internal/eventlistener/listener.go
// ==================================

// Package eventlistener subscribes to log notifications mentioning the
// Meteora program and feeds each confirmed transaction to a handler.
package eventlistener

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"go.uber.org/zap"
)

// TxHandler consumes one transaction from the feed. Implemented by
// meteora.Controller.
type TxHandler interface {
	HandleTransaction(
		ctx context.Context,
		signature solana.Signature,
		tx *solana.Transaction,
		meta *rpc.TransactionMeta,
		isVote bool,
		slot uint64,
	) error
}

// Listener maintains the WebSocket subscription and resolves every
// signature it sees into a full transaction with metadata.
type Listener struct {
	wsURL     string
	rpcClient *rpc.Client
	program   solana.PublicKey
	handler   TxHandler
	logger    *zap.Logger
}

func New(wsURL string, rpcClient *rpc.Client, program solana.PublicKey, handler TxHandler, logger *zap.Logger) *Listener {
	return &Listener{
		wsURL:     wsURL,
		rpcClient: rpcClient,
		program:   program,
		handler:   handler,
		logger:    logger.With(zap.String("component", "event_listener")),
	}
}

// Run blocks until ctx is canceled, reconnecting with exponential backoff
// whenever the subscription drops.
func (l *Listener) Run(ctx context.Context) error {
	operation := func() (struct{}, error) {
		err := l.listenOnce(ctx)
		if ctx.Err() != nil {
			return struct{}{}, backoff.Permanent(ctx.Err())
		}
		l.logger.Warn("subscription dropped, reconnecting", zap.Error(err))
		return struct{}{}, err
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(0))
	return err
}

func (l *Listener) listenOnce(ctx context.Context) error {
	client, err := ws.Connect(ctx, l.wsURL)
	if err != nil {
		return fmt.Errorf("connect websocket: %w", err)
	}
	defer client.Close()

	// Recv blocks without a context; closing the client unblocks it with
	// an error when ctx is canceled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			client.Close()
		case <-done:
		}
	}()

	sub, err := client.LogsSubscribeMentions(l.program, rpc.CommitmentProcessed)
	if err != nil {
		return fmt.Errorf("subscribe logs: %w", err)
	}
	defer sub.Unsubscribe()

	l.logger.Info("subscribed to program logs", zap.String("program", l.program.String()))

	for {
		notification, err := sub.Recv()
		if err != nil {
			return fmt.Errorf("receive notification: %w", err)
		}
		if notification.Value.Err != nil {
			// Failed transactions cannot have initialized a pool.
			continue
		}
		l.processSignature(ctx, notification.Value.Signature, notification.Context.Slot)
	}
}

// processSignature fetches the full transaction and hands it to the
// handler. Fetch and handler errors are logged; the feed keeps going.
func (l *Listener) processSignature(ctx context.Context, signature solana.Signature, slot uint64) {
	maxVersion := uint64(0)
	resp, err := l.rpcClient.GetTransaction(ctx, signature, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     rpc.CommitmentConfirmed,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if err != nil {
		l.logger.Warn("fetch transaction failed",
			zap.String("signature", signature.String()), zap.Error(err))
		return
	}
	if resp == nil || resp.Transaction == nil {
		return
	}

	tx, err := resp.Transaction.GetTransaction()
	if err != nil {
		l.logger.Warn("decode transaction failed",
			zap.String("signature", signature.String()), zap.Error(err))
		return
	}

	if err := l.handler.HandleTransaction(ctx, signature, tx, resp.Meta, false, slot); err != nil {
		l.logger.Warn("handler rejected transaction",
			zap.String("signature", signature.String()), zap.Error(err))
	}
}
