package state

import (
	"github.com/ardanlabs/kcoin/foundation/blockchain/peer"
)

// RegisterPeers normalizes and adds the addresses to the set of known peers
// and returns the resulting set. Processing stops at the first malformed
// address, addresses before it are kept.
func (s *State) RegisterPeers(addresses []string) ([]peer.Peer, error) {
	for _, address := range addresses {
		pr, err := peer.New(address)
		if err != nil {
			return s.RetrieveKnownPeers(), err
		}

		// Don't add this running node to the known peer list.
		if pr.Match(s.host) {
			continue
		}

		if s.knownPeers.Add(pr) {
			s.evHandler("state: RegisterPeers: adding peer-node %s", pr)
		}
	}

	return s.RetrieveKnownPeers(), nil
}

