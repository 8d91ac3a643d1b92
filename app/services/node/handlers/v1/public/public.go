// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/kcoin/business/sys/validate"
	"github.com/ardanlabs/kcoin/business/web/errs"
	"github.com/ardanlabs/kcoin/foundation/blockchain/database"
	"github.com/ardanlabs/kcoin/foundation/blockchain/peer"
	"github.com/ardanlabs/kcoin/foundation/blockchain/state"
	"github.com/ardanlabs/kcoin/foundation/events"
	"github.com/ardanlabs/kcoin/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// MineBlock solves the next proof and appends a block holding the pending
// transactions plus the mining reward.
func (h Handlers) MineBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, err := h.State.MineNewBlock(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return errs.NewTrusted(errors.New("mining cancelled"), http.StatusServiceUnavailable)
		}
		return fmt.Errorf("mining block: %w", err)
	}

	resp := mineResponse{
		Message:      "Congratulations - you mined a block!",
		Index:        block.Index,
		Timestamp:    block.Timestamp,
		Proof:        block.Proof,
		PreviousHash: block.PreviousHash,
		Transactions: block.Transactions,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Chain returns the full chain held by this node.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	chain, length := h.State.RetrieveChain()

	resp := database.ChainResponse{
		Chain:  chain,
		Length: length,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// IsValid reports whether the chain held by this node is valid.
func (h Handlers) IsValid(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := messageResponse{Message: "Blockchain is NOT valid."}
	if h.State.IsChainValid() {
		resp.Message = "Blockchain is valid."
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// AddTransaction adds a transaction to the pending pool.
func (h Handlers) AddTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req transactionRequest
	if err := web.Decode(r, &req); err != nil {
		return decodeError(err)
	}

	tx := req.toTransaction()

	h.Log.Infow("add tran", "traceid", v.TraceID, "sender", tx.Sender, "receiver", tx.Receiver, "amount", tx.Amount)

	index, err := h.State.AddTransaction(tx)
	if err != nil {
		return fmt.Errorf("adding transaction: %w", err)
	}

	resp := messageResponse{
		Message: fmt.Sprintf("This transaction will be added to Block %d", index),
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// ConnectNode registers the provided addresses as known peers.
func (h Handlers) ConnectNode(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req connectRequest
	if err := web.Decode(r, &req); err != nil {
		return decodeError(err)
	}

	peers, err := h.State.RegisterPeers(req.Nodes)
	if err != nil {
		if errors.Is(err, peer.ErrInvalidAddress) {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		return err
	}

	resp := connectResponse{
		Message:    "All the nodes are now connected. The KCoin Blockchain now contains the following nodes:",
		TotalNodes: hosts(peers),
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// ReplaceChain asks the known peers for their chains and adopts the longest
// valid one.
func (h Handlers) ReplaceChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	replaced, err := h.State.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("resolving chain: %w", err)
	}

	chain, _ := h.State.RetrieveChain()

	resp := replaceResponse{Message: "The chain is the longest available.", ActualChain: chain}
	if replaced {
		resp = replaceResponse{Message: "The node had different chains, chain has been updated with longest one.", NewChain: chain}
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveGenesis(), http.StatusOK)
}

// Mempool returns the set of pending transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrievePending(), http.StatusOK)
}

// SignalMining asks the background worker to mine the pending transactions.
func (h Handlers) SignalMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	h.State.Worker.SignalStartMining()

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "mining signalled",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch, err := h.Evts.Acquire(v.TraceID)
	if err != nil {
		return nil
	}
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// decodeError keeps field errors for the error middleware and marks any
// other decoding failure as a bad request.
func decodeError(err error) error {
	if validate.IsFieldErrors(err) {
		return err
	}
	return errs.NewTrusted(err, http.StatusBadRequest)
}

func hosts(peers []peer.Peer) []string {
	hs := make([]string, len(peers))
	for i, pr := range peers {
		hs[i] = pr.Host
	}
	return hs
}
