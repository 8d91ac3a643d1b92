// Package v1 contains the full set of handler functions and routes
// supported by the node api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/kcoin/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/kcoin/foundation/blockchain/state"
	"github.com/ardanlabs/kcoin/foundation/events"
	"github.com/ardanlabs/kcoin/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	Evts  *events.Events
}

// PublicRoutes binds all the public routes. The chain routes are served
// without a version so nodes speaking the original protocol can talk to
// this node.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		WS:    websocket.Upgrader{},
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, "", "/mine_block", pbl.MineBlock)
	app.Handle(http.MethodGet, "", "/get_chain", pbl.Chain)
	app.Handle(http.MethodGet, "", "/is_valid", pbl.IsValid)
	app.Handle(http.MethodPost, "", "/add_transaction", pbl.AddTransaction)
	app.Handle(http.MethodPost, "", "/connect_node", pbl.ConnectNode)
	app.Handle(http.MethodGet, "", "/replace_chain", pbl.ReplaceChain)

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/genesis/list", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/tx/uncommitted/list", pbl.Mempool)
	app.Handle(http.MethodGet, version, "/mining/signal", pbl.SignalMining)
}
