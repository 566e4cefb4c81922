package chainscan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/govalues/decimal"
	"go.uber.org/zap"

	"github.com/quickpos/stablepay/internal/core/domain"
)

// keccak256("Transfer(address,address,uint256)")
const transferTopic = "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"

const defaultScanBlocks = 500

// Client scans a network's recent ERC-20 Transfer logs for a destination
// address via plain JSON-RPC. One client serves every configured network;
// the endpoint comes from the network table.
type Client struct {
	logger *zap.Logger
	client *http.Client
}

func NewClient(log *zap.Logger) *Client {
	return &Client{
		logger: log,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) RecentTransfers(ctx context.Context, network *domain.Network, address string) ([]*domain.TransferEvent, error) {
	latest, err := c.blockNumber(ctx, network)
	if err != nil {
		return nil, err
	}

	lookback := network.ScanBlocks
	if lookback <= 0 {
		lookback = defaultScanBlocks
	}
	from := latest - lookback
	if from < 0 {
		from = 0
	}

	contracts := make([]string, 0, len(network.Tokens))
	tokenByContract := make(map[string]*domain.Token, len(network.Tokens))
	for i := range network.Tokens {
		contract := strings.ToLower(network.Tokens[i].Contract)
		contracts = append(contracts, contract)
		tokenByContract[contract] = &network.Tokens[i]
	}

	logs, err := c.getLogs(ctx, network, contracts, address, from, latest)
	if err != nil {
		return nil, err
	}

	events := make([]*domain.TransferEvent, 0, len(logs))
	for _, entry := range logs {
		token, ok := tokenByContract[strings.ToLower(entry.Address)]
		if !ok || len(entry.Topics) < 3 {
			continue
		}

		value, ok := new(big.Int).SetString(strings.TrimPrefix(entry.Data, "0x"), 16)
		if !ok {
			continue
		}
		amount, err := decimal.Parse(formatUnits(value, token.Decimals))
		if err != nil {
			c.logger.Warn("Unparseable transfer amount",
				zap.String("network", network.ID),
				zap.String("tx", entry.TransactionHash),
				zap.Error(err))
			continue
		}

		blockNumber, _ := parseHexInt64(entry.BlockNumber)

		events = append(events, &domain.TransferEvent{
			TransactionHash: entry.TransactionHash,
			BlockNumber:     blockNumber,
			FromAddress:     topicAddress(entry.Topics[1]),
			ToAddress:       topicAddress(entry.Topics[2]),
			Amount:          amount,
			AssetSymbol:     token.Symbol,
			NetworkID:       network.ID,
		})
	}

	return events, nil
}

func (c *Client) blockNumber(ctx context.Context, network *domain.Network) (int64, error) {
	var result string
	if err := c.call(ctx, network.RPCEndpoint, "eth_blockNumber", []any{}, &result); err != nil {
		return 0, err
	}
	return parseHexInt64(result)
}

type logEntry struct {
	Address         string   `json:"address"`
	Topics          []string `json:"topics"`
	Data            string   `json:"data"`
	BlockNumber     string   `json:"blockNumber"`
	TransactionHash string   `json:"transactionHash"`
}

func (c *Client) getLogs(ctx context.Context, network *domain.Network,
	contracts []string, address string, from, to int64) ([]logEntry, error) {

	filter := map[string]any{
		"fromBlock": hexInt64(from),
		"toBlock":   hexInt64(to),
		"address":   contracts,
		"topics":    []any{transferTopic, nil, addressTopic(address)},
	}

	var result []logEntry
	if err := c.call(ctx, network.RPCEndpoint, "eth_getLogs", []any{filter}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *Client) call(ctx context.Context, endpoint, method string, params []any, out any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("rpc http status %d", resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("rpc decode: %w", err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	return json.Unmarshal(rpcResp.Result, out)
}

func hexInt64(v int64) string {
	return "0x" + strconv.FormatInt(v, 16)
}

func parseHexInt64(v string) (int64, error) {
	return strconv.ParseInt(strings.TrimPrefix(v, "0x"), 16, 64)
}

// addressTopic left-pads an address to the 32-byte topic encoding.
func addressTopic(address string) string {
	hex := strings.ToLower(strings.TrimPrefix(address, "0x"))
	return "0x" + strings.Repeat("0", 64-len(hex)) + hex
}

// topicAddress recovers the 20-byte address from a 32-byte topic.
func topicAddress(topic string) string {
	hex := strings.TrimPrefix(topic, "0x")
	if len(hex) < 40 {
		return "0x" + hex
	}
	return "0x" + strings.ToLower(hex[len(hex)-40:])
}

// formatUnits renders a raw token value as a decimal string, truncating the
// fraction to six places: fiat matching never needs wei-level precision and
// the shorter mantissa keeps the value inside decimal's range.
func formatUnits(v *big.Int, decimals int) string {
	s := v.String()
	if decimals <= 0 {
		return s
	}
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}
	intPart := s[:len(s)-decimals]
	fracPart := s[len(s)-decimals:]
	if len(fracPart) > 6 {
		fracPart = fracPart[:6]
	}
	return intPart + "." + fracPart
}
