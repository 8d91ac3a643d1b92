package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ardanlabs/kcoin/business/web/errs"
	"github.com/ardanlabs/kcoin/foundation/blockchain/database"
)

// Client calls the http api of a node.
type Client struct {
	url  string
	http *http.Client
}

// NewClient constructs a client for the node served at the url.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:  strings.TrimSuffix(url, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// MinedBlock is the node's answer to a mining request.
type MinedBlock struct {
	Message      string                 `json:"message"`
	Index        int64                  `json:"index"`
	Timestamp    string                 `json:"timestamp"`
	Proof        int64                  `json:"proof"`
	PreviousHash string                 `json:"previous_hash"`
	Transactions []database.Transaction `json:"transactions"`
}

// Connected is the node's answer to a peer registration.
type Connected struct {
	Message    string   `json:"message"`
	TotalNodes []string `json:"total_nodes"`
}

// Replaced is the node's answer to a consensus request.
type Replaced struct {
	Message     string           `json:"message"`
	NewChain    []database.Block `json:"new_chain"`
	ActualChain []database.Block `json:"actual_chain"`
}

// Chain returns the chain held by the node.
func (c *Client) Chain(ctx context.Context) (database.ChainResponse, error) {
	var resp database.ChainResponse
	err := c.send(ctx, http.MethodGet, "/get_chain", nil, &resp)
	return resp, err
}

// Mine asks the node to mine a block.
func (c *Client) Mine(ctx context.Context) (MinedBlock, error) {
	var resp MinedBlock
	err := c.send(ctx, http.MethodGet, "/mine_block", nil, &resp)
	return resp, err
}

// Send submits a transaction and returns the node's message.
func (c *Client) Send(ctx context.Context, tx database.Transaction) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	err := c.send(ctx, http.MethodPost, "/add_transaction", tx, &resp)
	return resp.Message, err
}

// Connect registers peers with the node.
func (c *Client) Connect(ctx context.Context, nodes []string) (Connected, error) {
	req := struct {
		Nodes []string `json:"nodes"`
	}{
		Nodes: nodes,
	}

	var resp Connected
	err := c.send(ctx, http.MethodPost, "/connect_node", req, &resp)
	return resp, err
}

// Replace asks the node to adopt the longest valid chain of its peers.
func (c *Client) Replace(ctx context.Context) (Replaced, error) {
	var resp Replaced
	err := c.send(ctx, http.MethodGet, "/replace_chain", nil, &resp)
	return resp, err
}

// Valid returns the node's verdict on its own chain.
func (c *Client) Valid(ctx context.Context) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	err := c.send(ctx, http.MethodGet, "/is_valid", nil, &resp)
	return resp.Message, err
}

func (c *Client) send(ctx context.Context, method string, path string, dataSend any, dataRecv any) error {
	var body bytes.Buffer
	if dataSend != nil {
		if err := json.NewEncoder(&body).Encode(dataSend); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url+path, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var er errs.Response
		if err := json.NewDecoder(resp.Body).Decode(&er); err != nil || er.Error == "" {
			return fmt.Errorf("%s %s: %s", method, path, resp.Status)
		}
		if len(er.Fields) > 0 {
			return fmt.Errorf("%s: %v", er.Error, er.Fields)
		}
		return fmt.Errorf("%s", er.Error)
	}

	return json.NewDecoder(resp.Body).Decode(dataRecv)
}
