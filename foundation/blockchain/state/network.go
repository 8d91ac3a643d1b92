package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ardanlabs/kcoin/foundation/blockchain/database"
	"github.com/ardanlabs/kcoin/foundation/blockchain/peer"
)

// chainURL is the route every node serves its chain on.
const chainURL = "http://%s/get_chain"

// NetRequestPeerChain asks the peer for its chain and the length it reports.
func (s *State) NetRequestPeerChain(ctx context.Context, pr peer.Peer) (database.ChainResponse, error) {
	s.evHandler("state: NetRequestPeerChain: started: %s", pr)
	defer s.evHandler("state: NetRequestPeerChain: completed: %s", pr)

	url := fmt.Sprintf(chainURL, pr.Host)

	var resp database.ChainResponse
	if err := send(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return database.ChainResponse{}, err
	}

	s.evHandler("state: NetRequestPeerChain: peer-node[%s]: length[%d]: blocks[%d]", pr, resp.Length, len(resp.Chain))

	return resp, nil
}

// =============================================================================

// send is a helper function to send an HTTP request to a node.
func send(ctx context.Context, method string, url string, dataSend any, dataRecv any) error {
	var body io.Reader

	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}

	if dataSend != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	var client http.Client
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return fmt.Errorf("status %d: %w", resp.StatusCode, errors.New(string(msg)))
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
