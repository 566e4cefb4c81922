package domain

import "strings"

// Token is one stablecoin contract on a specific network.
type Token struct {
	Symbol   string
	Contract string
	Decimals int
}

// Network is one supported chain with its RPC endpoint and token table.
type Network struct {
	ID          string
	ChainID     int64
	RPCEndpoint string
	ScanBlocks  int64
	Tokens      []Token
}

func (n *Network) Token(symbol string) (*Token, bool) {
	for i := range n.Tokens {
		if strings.EqualFold(n.Tokens[i].Symbol, symbol) {
			return &n.Tokens[i], true
		}
	}
	return nil, false
}

// NetworkTable is the static network/token metadata, loaded once at process
// start and passed by reference to every component that needs it.
type NetworkTable struct {
	networks []Network
	byID     map[string]*Network
}

func NewNetworkTable(networks []Network) *NetworkTable {
	t := &NetworkTable{networks: networks, byID: make(map[string]*Network, len(networks))}
	for i := range t.networks {
		t.byID[t.networks[i].ID] = &t.networks[i]
	}
	return t
}

func (t *NetworkTable) Network(id string) (*Network, bool) {
	n, ok := t.byID[id]
	return n, ok
}

func (t *NetworkTable) All() []Network {
	return t.networks
}

// Supported reports whether the (network, symbol) pair is a known
// stablecoin on a known chain.
func (t *NetworkTable) Supported(networkID, symbol string) bool {
	n, ok := t.byID[networkID]
	if !ok {
		return false
	}
	_, ok = n.Token(symbol)
	return ok
}

// SupportedSymbol reports whether any network carries the symbol.
func (t *NetworkTable) SupportedSymbol(symbol string) bool {
	for i := range t.networks {
		if _, ok := t.networks[i].Token(symbol); ok {
			return true
		}
	}
	return false
}
