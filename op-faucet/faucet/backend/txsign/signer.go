package txsign

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/mantlenetworkio/testnet-faucet/op-service/eth"
)

var ErrInvalidKey = errors.New("invalid private key")

// TxParams are the inputs of one legacy value transfer. Data is always empty.
type TxParams struct {
	To       common.Address
	Value    eth.ETH
	Nonce    uint64
	GasPrice *big.Int
	GasLimit uint64
}

// SignedTx is a signed legacy transaction, ready for eth_sendRawTransaction.
type SignedTx struct {
	Raw  []byte
	Hash common.Hash

	Nonce    uint64
	GasPrice *big.Int
	GasLimit uint64
	To       common.Address
	Value    eth.ETH
}

// Signer holds the funding key and signs EIP-155 legacy transactions for one chain.
// Signing is deterministic (RFC 6979) and safe for concurrent use.
type Signer struct {
	priv    *ecdsa.PrivateKey
	addr    common.Address
	chainID eth.ChainID
}

// NewSigner parses a hex secp256k1 key, with or without 0x prefix.
func NewSigner(hexKey string, chainID eth.ChainID) (*Signer, error) {
	if chainID.IsZero() {
		return nil, errors.New("chain id must not be zero")
	}
	priv, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		// the key itself must never end up in an error message
		return nil, ErrInvalidKey
	}
	return &Signer{
		priv:    priv,
		addr:    crypto.PubkeyToAddress(priv.PublicKey),
		chainID: chainID,
	}, nil
}

// Address returns the funding address derived from the key.
func (s *Signer) Address() common.Address {
	return s.addr
}

func (s *Signer) ChainID() eth.ChainID {
	return s.chainID
}

// legacyTx is the wire layout of a signed legacy transaction.
type legacyTx struct {
	Nonce    uint64
	GasPrice *big.Int
	Gas      uint64
	To       *common.Address `rlp:"nil"`
	Value    *big.Int
	Data     []byte
	V, R, S  *big.Int
}

// SigningHash returns the EIP-155 hash the signature commits to:
// keccak256(rlp([nonce, gasPrice, gas, to, value, data, chainId, 0, 0])).
func (s *Signer) SigningHash(p TxParams) (common.Hash, error) {
	if p.GasPrice == nil {
		return common.Hash{}, errors.New("missing gas price")
	}
	enc, err := rlp.EncodeToBytes([]any{
		p.Nonce,
		p.GasPrice,
		p.GasLimit,
		&p.To,
		p.Value.ToBig(),
		[]byte{},
		s.chainID.ToBig(),
		uint(0),
		uint(0),
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to encode signing payload: %w", err)
	}
	return crypto.Keccak256Hash(enc), nil
}

// Sign builds and signs the transaction.
func (s *Signer) Sign(p TxParams) (*SignedTx, error) {
	h, err := s.SigningHash(p)
	if err != nil {
		return nil, err
	}
	sig, err := crypto.Sign(h[:], s.priv)
	if err != nil {
		return nil, fmt.Errorf("failed to sign: %w", err)
	}
	// v = recovery id + 35 + 2 * chainId
	v := new(big.Int).Mul(s.chainID.ToBig(), big.NewInt(2))
	v.Add(v, big.NewInt(35+int64(sig[64])))

	to := p.To
	raw, err := rlp.EncodeToBytes(&legacyTx{
		Nonce:    p.Nonce,
		GasPrice: p.GasPrice,
		Gas:      p.GasLimit,
		To:       &to,
		Value:    p.Value.ToBig(),
		Data:     []byte{},
		V:        v,
		R:        new(big.Int).SetBytes(sig[:32]),
		S:        new(big.Int).SetBytes(sig[32:64]),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction: %w", err)
	}
	return &SignedTx{
		Raw:      raw,
		Hash:     crypto.Keccak256Hash(raw),
		Nonce:    p.Nonce,
		GasPrice: new(big.Int).Set(p.GasPrice),
		GasLimit: p.GasLimit,
		To:       p.To,
		Value:    p.Value,
	}, nil
}
