package eth

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

// ChainID identifies the network transactions are signed for (EIP-155).
type ChainID uint256.Int

func ChainIDFromUInt64(i uint64) ChainID {
	return ChainID(*uint256.NewInt(i))
}

// ChainIDFromBig panics if the value is negative or does not fit in 256 bits.
func ChainIDFromBig(i *big.Int) ChainID {
	u, overflow := uint256.FromBig(i)
	if overflow || i.Sign() < 0 {
		panic(fmt.Errorf("chain id %v out of range", i))
	}
	return ChainID(*u)
}

// ParseDecimalChainID parses a decimal chain id, rejecting zero.
func ParseDecimalChainID(s string) (ChainID, error) {
	v, err := uint256.FromDecimal(strings.TrimSpace(s))
	if err != nil {
		return ChainID{}, fmt.Errorf("invalid chain id %q: %w", s, err)
	}
	if v.IsZero() {
		return ChainID{}, fmt.Errorf("chain id must not be zero")
	}
	return ChainID(*v), nil
}

func (id ChainID) String() string {
	return (*uint256.Int)(&id).Dec()
}

func (id ChainID) ToBig() *big.Int {
	return (*uint256.Int)(&id).ToBig()
}

func (id ChainID) IsZero() bool {
	return (*uint256.Int)(&id).IsZero()
}

// ToUInt64 returns the chain id and whether it fits in 64 bits.
func (id ChainID) ToUInt64() (uint64, bool) {
	v := (*uint256.Int)(&id)
	return v.Uint64(), v.IsUint64()
}

func (id ChainID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ChainID) UnmarshalText(data []byte) error {
	v, err := ParseDecimalChainID(string(data))
	if err != nil {
		return err
	}
	*id = v
	return nil
}
