// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ardanlabs/kcoin/foundation/blockchain/database"
	"github.com/ardanlabs/kcoin/foundation/blockchain/genesis"
	"github.com/ardanlabs/kcoin/foundation/blockchain/mempool"
	"github.com/ardanlabs/kcoin/foundation/blockchain/peer"
)

// defaultPeerTimeout bounds a single chain request to a peer when the
// configuration doesn't provide a value.
const defaultPeerTimeout = 5 * time.Second

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of the blockchain.
type EventHandler func(v string, args ...any)

// Fetcher defines a function that retrieves the chain held by a peer.
type Fetcher func(ctx context.Context, pr peer.Peer) (database.ChainResponse, error)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining and peer synchronization.
type Worker interface {
	Shutdown()
	Sync()
	SignalStartMining()
	SignalCancelMining()
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	NodeID      string
	Host        string
	Genesis     genesis.Genesis
	KnownPeers  *peer.PeerSet
	PeerTimeout time.Duration
	Fetcher     Fetcher
	EvHandler   EventHandler
}

// State manages the blockchain held in memory by this node.
type State struct {
	mu sync.RWMutex

	nodeID      string
	host        string
	peerTimeout time.Duration
	evHandler   EventHandler
	fetcher     Fetcher

	genesis    genesis.Genesis
	chain      []database.Block
	mempool    *mempool.Mempool
	knownPeers *peer.PeerSet

	Worker Worker
}

// New constructs a new blockchain with a freshly created genesis block.
func New(cfg Config) (*State, error) {
	if cfg.NodeID == "" {
		return nil, errors.New("node id is required")
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	// The host is compared against peer addresses so it gets the same
	// normalization.
	host := cfg.Host
	if host != "" {
		pr, err := peer.New(host)
		if err != nil {
			return nil, fmt.Errorf("host: %w", err)
		}
		host = pr.Host
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	peerTimeout := cfg.PeerTimeout
	if peerTimeout <= 0 {
		peerTimeout = defaultPeerTimeout
	}

	gen := cfg.Genesis
	if gen.Difficulty == 0 {
		gen = genesis.Default()
	}

	state := State{
		nodeID:      cfg.NodeID,
		host:        host,
		peerTimeout: peerTimeout,
		evHandler:   ev,
		fetcher:     cfg.Fetcher,

		genesis:    gen,
		mempool:    mempool.New(),
		knownPeers: knownPeers,

		Worker: nopWorker{},
	}

	if state.fetcher == nil {
		state.fetcher = state.NetRequestPeerChain
	}

	// The genesis block carries a fixed proof that is never checked against
	// the puzzle since there is no block before it.
	state.createBlock(gen.Proof, gen.PreviousHash)

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	s.Worker.Shutdown()

	return nil
}

// =============================================================================

// nopWorker is used until a real worker registers itself.
type nopWorker struct{}

func (nopWorker) Shutdown()           {}
func (nopWorker) Sync()               {}
func (nopWorker) SignalStartMining()  {}
func (nopWorker) SignalCancelMining() {}
