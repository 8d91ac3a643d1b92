package state_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ardanlabs/kcoin/foundation/blockchain/database"
	"github.com/ardanlabs/kcoin/foundation/blockchain/genesis"
	"github.com/ardanlabs/kcoin/foundation/blockchain/peer"
	"github.com/ardanlabs/kcoin/foundation/blockchain/state"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const nodeID = "3f9c1a2b4d5e6f708192a3b4c5d6e7f8"

// Proofs that solve the puzzle in sequence starting from the genesis proof.
var proofs = []int64{1, 533, 45293, 21391, 8018}

func ifErrFailNow(t *testing.T, err error) {
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
}

func newState(t *testing.T, cfg state.Config) *state.State {
	cfg.NodeID = nodeID
	if cfg.EvHandler == nil {
		cfg.EvHandler = func(v string, args ...any) { t.Logf(v, args...) }
	}

	st, err := state.New(cfg)
	ifErrFailNow(t, err)

	return st
}

// remoteChain constructs a valid chain of the specified length that forks
// from any locally mined chain since the timestamps differ.
func remoteChain(length int) []database.Block {
	now := time.Date(2020, time.March, 1, 8, 0, 0, 0, time.UTC)

	chain := []database.Block{database.NewBlock(1, now, proofs[0], "0", nil)}
	for i := 1; i < length; i++ {
		prev := chain[i-1]
		trans := []database.Transaction{database.NewTransaction("remote", "you", "1")}
		chain = append(chain, database.NewBlock(prev.Index+1, now.Add(time.Duration(i)*time.Second), proofs[i], prev.Hash(), trans))
	}

	return chain
}

// peerServer starts a node that reports the specified chain and length.
func peerServer(t *testing.T, chain []database.Block, length int) *httptest.Server {
	h := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get_chain" {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(database.ChainResponse{Chain: chain, Length: length})
	}

	srv := httptest.NewServer(http.HandlerFunc(h))
	t.Cleanup(srv.Close)

	return srv
}

// =============================================================================

func Test_Genesis(t *testing.T) {
	t.Log("Given the need to start a node with a genesis block.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen constructing a new state.", testID)
		{
			st := newState(t, state.Config{})

			chain, length := st.RetrieveChain()
			if length != 1 || len(chain) != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould have a chain of length 1, got %d.", failed, testID, length)
			}
			t.Logf("\t%s\tTest %d:\tShould have a chain of length 1.", success, testID)

			gen := chain[0]
			if gen.Index != 1 || gen.PreviousHash != "0" || gen.Proof != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould have the genesis values: %+v", failed, testID, gen)
			}
			t.Logf("\t%s\tTest %d:\tShould have the genesis values.", success, testID)

			if len(gen.Transactions) != 0 || gen.Transactions == nil {
				t.Fatalf("\t%s\tTest %d:\tShould have an empty transaction list.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould have an empty transaction list.", success, testID)

			if !st.IsChainValid() {
				t.Fatalf("\t%s\tTest %d:\tShould have a valid chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould have a valid chain.", success, testID)

			prev, err := st.PreviousBlock()
			ifErrFailNow(t, err)
			if prev.Hash() != gen.Hash() {
				t.Fatalf("\t%s\tTest %d:\tShould get back the genesis block as the previous block.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould get back the genesis block as the previous block.", success, testID)
		}
	}
}

func Test_NodeIDRequired(t *testing.T) {
	if _, err := state.New(state.Config{}); err == nil {
		t.Fatal("Should not be able to construct a state without a node id.")
	}
}

func Test_MineBlock(t *testing.T) {
	t.Log("Given the need to mine blocks with pending transactions.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen a transaction is submitted and a block mined.", testID)
		{
			st := newState(t, state.Config{})

			tx := database.NewTransaction("alice", "bob", "10")
			index, err := st.AddTransaction(tx)
			ifErrFailNow(t, err)

			if index != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould get back block index 2, got %d.", failed, testID, index)
			}
			t.Logf("\t%s\tTest %d:\tShould get back block index 2.", success, testID)

			block, err := st.MineNewBlock(context.Background())
			ifErrFailNow(t, err)

			if block.Index != 2 || block.Proof != proofs[1] {
				t.Fatalf("\t%s\tTest %d:\tShould mine block 2 with proof %d: %+v", failed, testID, proofs[1], block)
			}
			t.Logf("\t%s\tTest %d:\tShould mine block 2 with the expected proof.", success, testID)

			gen := st.RetrieveGenesis()
			reward := database.NewTransaction(nodeID, gen.RewardReceiver, gen.MiningReward)
			exp := []database.Transaction{tx, reward}

			if len(block.Transactions) != len(exp) {
				t.Fatalf("\t%s\tTest %d:\tShould have %d transactions, got %d.", failed, testID, len(exp), len(block.Transactions))
			}
			for i := range exp {
				if block.Transactions[i] != exp[i] {
					t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, block.Transactions[i])
					t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, exp[i])
					t.Fatalf("\t%s\tTest %d:\tShould have the submitted and reward transactions.", failed, testID)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould have the submitted and reward transactions.", success, testID)

			if n := st.QueryPendingLength(); n != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould have an empty pending pool, got %d.", failed, testID, n)
			}
			t.Logf("\t%s\tTest %d:\tShould have an empty pending pool.", success, testID)

			index, err = st.AddTransaction(database.NewTransaction("bob", "carol", "3"))
			ifErrFailNow(t, err)
			if index != 3 {
				t.Fatalf("\t%s\tTest %d:\tShould get back block index 3, got %d.", failed, testID, index)
			}
			if n := st.QueryPendingLength(); n != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould have a fresh pending pool with 1 transaction, got %d.", failed, testID, n)
			}
			t.Logf("\t%s\tTest %d:\tShould have a fresh pending pool.", success, testID)

			chain, _ := st.RetrieveChain()
			if chain[1].PreviousHash != chain[0].Hash() {
				t.Fatalf("\t%s\tTest %d:\tShould link the block to the genesis block.", failed, testID)
			}
			if !st.IsChainValid() {
				t.Fatalf("\t%s\tTest %d:\tShould have a valid chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould have a valid chain.", success, testID)
		}
	}
}

func Test_MineCancel(t *testing.T) {
	t.Log("Given the need to stop a mining operation.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen mining with a cancelled context.", testID)
		{
			st := newState(t, state.Config{})

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			if _, err := st.MineNewBlock(ctx); !errors.Is(err, context.Canceled) {
				t.Fatalf("\t%s\tTest %d:\tShould get back a cancel error, got %v.", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get back a cancel error.", success, testID)

			if _, length := st.RetrieveChain(); length != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould not add a block when cancelled, got length %d.", failed, testID, length)
			}
			t.Logf("\t%s\tTest %d:\tShould not add a block when cancelled.", success, testID)
		}
	}
}

func Test_CreateBlockAtomic(t *testing.T) {
	t.Log("Given the need to create blocks while transactions arrive.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen transactions are added during block creation.", testID)
		{
			const goroutines = 20
			const perG = 25

			st := newState(t, state.Config{EvHandler: func(string, ...any) {}})

			var wg sync.WaitGroup
			wg.Add(goroutines + 1)

			// The reader checks every snapshot until the writers are done.
			done := make(chan struct{})
			overlap := make(chan database.Transaction, 1)
			var readers sync.WaitGroup
			readers.Add(1)
			go func() {
				defer readers.Done()
				for {
					select {
					case <-done:
						return
					default:
					}

					chain, pending := st.RetrieveSnapshot()

					mined := make(map[database.Transaction]bool)
					for _, block := range chain {
						for _, tx := range block.Transactions {
							mined[tx] = true
						}
					}
					for _, tx := range pending {
						if mined[tx] {
							select {
							case overlap <- tx:
							default:
							}
							return
						}
					}
				}
			}()

			for g := 0; g < goroutines; g++ {
				go func(g int) {
					defer wg.Done()
					for i := 0; i < perG; i++ {
						st.AddTransaction(database.NewTransaction(fmt.Sprintf("g%d", g), fmt.Sprintf("%d", i), "1"))
					}
				}(g)
			}

			go func() {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					prev, _ := st.PreviousBlock()
					st.CreateBlock(int64(i), prev.Hash())
				}
			}()

			wg.Wait()
			close(done)
			readers.Wait()

			select {
			case tx := <-overlap:
				t.Fatalf("\t%s\tTest %d:\tShould never see transaction %s in a block and pending at once.", failed, testID, tx)
			default:
			}
			t.Logf("\t%s\tTest %d:\tShould never see a transaction in a block and pending at once.", success, testID)

			chain, _ := st.RetrieveChain()

			seen := make(map[database.Transaction]int)
			for i, block := range chain {
				if block.Index != int64(i+1) {
					t.Fatalf("\t%s\tTest %d:\tShould have sequential indexes, got %d at %d.", failed, testID, block.Index, i)
				}
				for _, tx := range block.Transactions {
					seen[tx]++
				}
			}
			for _, tx := range st.RetrievePending() {
				seen[tx]++
			}
			t.Logf("\t%s\tTest %d:\tShould have sequential indexes.", success, testID)

			if len(seen) != goroutines*perG {
				t.Fatalf("\t%s\tTest %d:\tShould account for every transaction, got %d.", failed, testID, len(seen))
			}
			for tx, n := range seen {
				if n != 1 {
					t.Fatalf("\t%s\tTest %d:\tShould see transaction %s exactly once, got %d.", failed, testID, tx, n)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould see every transaction exactly once.", success, testID)
		}
	}
}

func Test_RegisterPeers(t *testing.T) {
	t.Log("Given the need to register peers.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen registering duplicate and invalid addresses.", testID)
		{
			st := newState(t, state.Config{Host: "127.0.0.1:5000"})

			peers, err := st.RegisterPeers([]string{"http://192.168.1.5:5000/", "192.168.1.5:5000", "http://127.0.0.1:5000"})
			ifErrFailNow(t, err)

			if len(peers) != 1 || peers[0].Host != "192.168.1.5:5000" {
				t.Fatalf("\t%s\tTest %d:\tShould store a single normalized peer: %v", failed, testID, peers)
			}
			t.Logf("\t%s\tTest %d:\tShould store a single normalized peer.", success, testID)

			peers, err = st.RegisterPeers([]string{"10.0.0.1:5001", "http://", "10.0.0.2:5002"})
			if !errors.Is(err, peer.ErrInvalidAddress) {
				t.Fatalf("\t%s\tTest %d:\tShould get back an invalid address error, got %v.", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get back an invalid address error.", success, testID)

			if len(peers) != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould keep the peers before the invalid address: %v", failed, testID, peers)
			}
			t.Logf("\t%s\tTest %d:\tShould keep the peers before the invalid address.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the node's host is written as a url.", testID)
		{
			st := newState(t, state.Config{Host: "http://LOCALHOST:5000/"})

			if host := st.RetrieveHost(); host != "localhost:5000" {
				t.Fatalf("\t%s\tTest %d:\tShould normalize the host, got %q.", failed, testID, host)
			}
			t.Logf("\t%s\tTest %d:\tShould normalize the host.", success, testID)

			peers, err := st.RegisterPeers([]string{"localhost:5000", "http://localhost:5000", "10.0.0.1:5001"})
			ifErrFailNow(t, err)

			if len(peers) != 1 || peers[0].Host != "10.0.0.1:5001" {
				t.Fatalf("\t%s\tTest %d:\tShould not register itself as a peer: %v", failed, testID, peers)
			}
			t.Logf("\t%s\tTest %d:\tShould not register itself as a peer.", success, testID)

			if _, err := state.New(state.Config{NodeID: nodeID, Host: "http://"}); !errors.Is(err, peer.ErrInvalidAddress) {
				t.Fatalf("\t%s\tTest %d:\tShould reject a host without a name, got %v.", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject a host without a name.", success, testID)
		}
	}
}

func Test_Resolve(t *testing.T) {
	t.Log("Given the need to adopt the longest valid chain from peers.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen peers report invalid, equal, unreachable and longer chains.", testID)
		{
			st := newState(t, state.Config{PeerTimeout: time.Second})

			for i := 0; i < 2; i++ {
				_, err := st.MineNewBlock(context.Background())
				ifErrFailNow(t, err)
			}

			local, length := st.RetrieveChain()
			if length != 3 {
				t.Fatalf("\t%s\tTest %d:\tShould have a local chain of length 3, got %d.", failed, testID, length)
			}

			// Peer A reports a longer chain that is not valid.
			invalid := remoteChain(5)
			invalid[3].PreviousHash = strings.Repeat("f", 64)
			peerA := peerServer(t, invalid, 5)

			// Peer B reports a longer valid chain.
			longer := remoteChain(4)
			peerB := peerServer(t, longer, 4)

			// Peer C reports a valid chain of the same length.
			peerC := peerServer(t, remoteChain(3), 3)

			// Peer D is down.
			peerD := httptest.NewServer(http.NotFoundHandler())
			peerD.Close()

			_, err := st.RegisterPeers([]string{peerA.URL, peerB.URL, peerC.URL, peerD.URL})
			ifErrFailNow(t, err)

			replaced, err := st.Resolve(context.Background())
			ifErrFailNow(t, err)

			if !replaced {
				t.Fatalf("\t%s\tTest %d:\tShould replace the local chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould replace the local chain.", success, testID)

			chain, length := st.RetrieveChain()
			if length != 4 {
				t.Fatalf("\t%s\tTest %d:\tShould have a chain of length 4, got %d.", failed, testID, length)
			}
			if chain[3].Hash() != longer[3].Hash() {
				t.Fatalf("\t%s\tTest %d:\tShould adopt the valid longer chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould adopt the valid longer chain.", success, testID)

			if local[2].Hash() == chain[2].Hash() {
				t.Fatalf("\t%s\tTest %d:\tShould have discarded the local fork.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould have discarded the local fork.", success, testID)

			replaced, err = st.Resolve(context.Background())
			ifErrFailNow(t, err)
			if replaced {
				t.Fatalf("\t%s\tTest %d:\tShould not replace the chain with an equal length chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not replace the chain with an equal length chain.", success, testID)

			block, err := st.MineNewBlock(context.Background())
			ifErrFailNow(t, err)
			if block.Index != 5 || block.Proof != proofs[4] {
				t.Fatalf("\t%s\tTest %d:\tShould mine on top of the adopted chain: %+v", failed, testID, block)
			}
			t.Logf("\t%s\tTest %d:\tShould mine on top of the adopted chain.", success, testID)
		}
	}
}

func Test_ResolveNoReplacement(t *testing.T) {
	type table struct {
		name  string
		chain []database.Block
		len   int
	}

	tampered := remoteChain(3)
	tampered[1].Proof = 1

	tt := []table{
		{name: "equal", chain: remoteChain(1), len: 1},
		{name: "invalid", chain: tampered, len: 3},
		{name: "lying-length", chain: remoteChain(2), len: 4},
		{name: "empty", chain: nil, len: 2},
	}

	t.Log("Given the need to keep the local chain when no peer has a better one.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen a peer reports a %s chain.", testID, tst.name)
			{
				f := func(t *testing.T) {
					st := newState(t, state.Config{})
					before, _ := st.RetrieveChain()

					srv := peerServer(t, tst.chain, tst.len)
					_, err := st.RegisterPeers([]string{srv.URL})
					ifErrFailNow(t, err)

					replaced, err := st.Resolve(context.Background())
					ifErrFailNow(t, err)

					if replaced {
						t.Fatalf("\t%s\tTest %d:\tShould not replace the local chain.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould not replace the local chain.", success, testID)

					after, _ := st.RetrieveChain()
					if len(after) != len(before) || after[0].Hash() != before[0].Hash() {
						t.Fatalf("\t%s\tTest %d:\tShould leave the local chain untouched.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould leave the local chain untouched.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_ResolvePeerFailures(t *testing.T) {
	t.Log("Given the need to skip peers that fail.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen peers time out, error or return garbage.", testID)
		{
			slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-time.After(2 * time.Second):
				case <-r.Context().Done():
				}
			}))
			t.Cleanup(slow.Close)

			garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("{not json"))
			}))
			t.Cleanup(garbage.Close)

			broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			}))
			t.Cleanup(broken.Close)

			good := peerServer(t, remoteChain(2), 2)

			var mu sync.Mutex
			var warnings []string
			ev := func(v string, args ...any) {
				s := fmt.Sprintf(v, args...)
				if strings.Contains(s, "WARNING") {
					mu.Lock()
					warnings = append(warnings, s)
					mu.Unlock()
				}
			}

			st := newState(t, state.Config{PeerTimeout: 200 * time.Millisecond, EvHandler: ev})
			_, err := st.RegisterPeers([]string{slow.URL, garbage.URL, broken.URL, good.URL})
			ifErrFailNow(t, err)

			start := time.Now()
			replaced, err := st.Resolve(context.Background())
			ifErrFailNow(t, err)

			if !replaced {
				t.Fatalf("\t%s\tTest %d:\tShould adopt the chain of the healthy peer.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould adopt the chain of the healthy peer.", success, testID)

			if d := time.Since(start); d > 1500*time.Millisecond {
				t.Fatalf("\t%s\tTest %d:\tShould bound the slow peer by the timeout, took %v.", failed, testID, d)
			}
			t.Logf("\t%s\tTest %d:\tShould bound the slow peer by the timeout.", success, testID)

			mu.Lock()
			defer mu.Unlock()
			if len(warnings) != 3 {
				t.Fatalf("\t%s\tTest %d:\tShould report the three failing peers, got %d: %v", failed, testID, len(warnings), warnings)
			}
			t.Logf("\t%s\tTest %d:\tShould report the three failing peers.", success, testID)
		}
	}
}

func Test_ResolveFetcher(t *testing.T) {
	t.Log("Given the need to plug in a different network transport.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen a custom fetcher is configured.", testID)
		{
			var called []string
			var mu sync.Mutex

			fetcher := func(ctx context.Context, pr peer.Peer) (database.ChainResponse, error) {
				mu.Lock()
				called = append(called, pr.Host)
				mu.Unlock()

				if pr.Host == "down:1" {
					return database.ChainResponse{}, errors.New("connection refused")
				}

				chain := remoteChain(3)
				return database.ChainResponse{Chain: chain, Length: len(chain)}, nil
			}

			st := newState(t, state.Config{Fetcher: fetcher, Genesis: genesis.Default()})
			_, err := st.RegisterPeers([]string{"down:1", "up:2"})
			ifErrFailNow(t, err)

			replaced, err := st.Resolve(context.Background())
			ifErrFailNow(t, err)

			if !replaced || len(called) != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould ask both peers and adopt the chain: replaced[%v] called%v", failed, testID, replaced, called)
			}
			t.Logf("\t%s\tTest %d:\tShould ask both peers and adopt the chain.", success, testID)
		}
	}
}

func Test_ResolveNoPeers(t *testing.T) {
	st := newState(t, state.Config{})

	replaced, err := st.Resolve(context.Background())
	ifErrFailNow(t, err)

	if replaced {
		t.Fatal("Should not replace the chain without peers.")
	}
}
