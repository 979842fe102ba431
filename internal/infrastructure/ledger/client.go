package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/suraksha/efir-anchor"
	"github.com/suraksha/efir-anchor/internal/config"
	"github.com/suraksha/efir-anchor/internal/domain"
)

var tracer = otel.Tracer("ledger")

// Client holds a long-lived RPC connection, the signing identity and the
// bound registry contract. Safe for concurrent Anchor calls; transaction
// submission for the single signing key is serialized so nonce assignment
// stays ordered.
type Client struct {
	eth            *ethclient.Client
	contract       *bind.BoundContract
	opts           *bind.TransactOpts
	signer         common.Address
	gasLimit       uint64
	confirmTimeout time.Duration

	mu sync.Mutex
}

// Dial connects to the ledger node, loads the signing key and binds the
// registry contract. The key comes from configuration, which in turn is
// env-injected; nothing is compiled in.
func Dial(ctx context.Context, cfg config.Ledger) (*Client, error) {
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, &domain.ConfigError{Field: "ledger.contractAddress", Err: fmt.Errorf("not a hex address: %s", cfg.ContractAddress)}
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, &domain.ConfigError{Field: "ledger.privateKey", Err: err}
	}

	eth, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, &domain.ConnectionError{Endpoint: cfg.RPCURL, Err: err}
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, &domain.ConnectionError{Endpoint: cfg.RPCURL, Err: errors.Wrap(err, "query chain id")}
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		eth.Close()
		return nil, &domain.ConfigError{Field: "ledger.privateKey", Err: err}
	}
	opts.GasLimit = cfg.GasLimit

	contract, err := BindRegistry(common.HexToAddress(cfg.ContractAddress), eth)
	if err != nil {
		eth.Close()
		return nil, &domain.ConfigError{Field: "ledger.contractAddress", Err: err}
	}

	return &Client{
		eth:            eth,
		contract:       contract,
		opts:           opts,
		signer:         crypto.PubkeyToAddress(key.PublicKey),
		gasLimit:       cfg.GasLimit,
		confirmTimeout: time.Duration(cfg.ConfirmTimeoutSeconds) * time.Second,
	}, nil
}

// Anchor submits one registerFIR transaction, waits for it to be mined and
// reads the confirming block's timestamp. Either a complete receipt is
// returned or an error; there is no partial state. A timeout abandons the
// wait only; the submitted transaction cannot be rolled back.
func (c *Client) Anchor(ctx context.Context, req efir.AnchorRequest) (*efir.AnchorReceipt, error) {
	ctx, span := tracer.Start(ctx, "Ledger.Client.Anchor")
	defer span.End()

	tx, err := c.submit(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, &domain.AnchorError{FIRID: req.FIRID, Err: err}
	}

	waitCtx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, c.eth, tx)
	if err != nil {
		span.RecordError(err)
		return nil, &domain.AnchorError{FIRID: req.FIRID, Err: errors.Wrap(err, "wait for confirmation")}
	}
	if receipt.Status == types.ReceiptStatusFailed {
		err := fmt.Errorf("transaction %s reverted", tx.Hash().Hex())
		span.RecordError(err)
		return nil, &domain.AnchorError{FIRID: req.FIRID, Err: err}
	}

	timestamp := time.Now().UTC()
	header, err := c.eth.HeaderByNumber(ctx, receipt.BlockNumber)
	if err == nil {
		timestamp = time.Unix(int64(header.Time), 0).UTC()
	}

	return &efir.AnchorReceipt{
		FIRID:       req.FIRID,
		TxHash:      tx.Hash().Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
		Timestamp:   timestamp,
		Signer:      c.signer.Hex(),
		Digest:      req.Digest,
	}, nil
}

// Signer returns the address transactions are sent from.
func (c *Client) Signer() string {
	return c.signer.Hex()
}

func (c *Client) Close() {
	c.eth.Close()
}

func (c *Client) submit(ctx context.Context, req efir.AnchorRequest) (*types.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	opts := *c.opts
	opts.Context = ctx

	return c.contract.Transact(&opts, registerMethod,
		req.FIRID,
		req.Digest,
		req.Complainant,
		req.Officer,
		req.IncidentType,
	)
}
