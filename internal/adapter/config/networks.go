package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quickpos/stablepay/internal/core/domain"
)

type networksFile struct {
	Networks []networkYAML `yaml:"networks"`
}

type networkYAML struct {
	ID          string      `yaml:"id"`
	ChainID     int64       `yaml:"chain_id"`
	RPCEndpoint string      `yaml:"rpc_endpoint"`
	ScanBlocks  int64       `yaml:"scan_blocks"`
	Tokens      []tokenYAML `yaml:"tokens"`
}

type tokenYAML struct {
	Symbol   string `yaml:"symbol"`
	Contract string `yaml:"contract"`
	Decimals int    `yaml:"decimals"`
}

// LoadNetworks reads the static network/token metadata table.
func LoadNetworks(path string) (*domain.NetworkTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read networks file: %w", err)
	}

	var file networksFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse networks file: %w", err)
	}

	networks := make([]domain.Network, 0, len(file.Networks))
	for _, n := range file.Networks {
		tokens := make([]domain.Token, 0, len(n.Tokens))
		for _, t := range n.Tokens {
			tokens = append(tokens, domain.Token{
				Symbol:   t.Symbol,
				Contract: t.Contract,
				Decimals: t.Decimals,
			})
		}
		networks = append(networks, domain.Network{
			ID:          n.ID,
			ChainID:     n.ChainID,
			RPCEndpoint: n.RPCEndpoint,
			ScanBlocks:  n.ScanBlocks,
			Tokens:      tokens,
		})
	}

	return domain.NewNetworkTable(networks), nil
}
