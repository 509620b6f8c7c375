package eth

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"

	"github.com/ethereum/go-ethereum/params"
)

var (
	TenEther      = Ether(10)
	OneEther      = Ether(1)
	OneTenthEther = GWei(100_000_000)
	OneGWei       = GWei(1)
	OneWei        = WeiU64(1)
	ZeroWei       = WeiU64(0)
)

var (
	weiPerGWei = uint256.NewInt(params.GWei)
	weiPerEth  = uint256.NewInt(params.Ether)
)

// ETH is an amount of native currency, expressed in wei.
// Methods take and return flat values and never mutate the receiver.
type ETH uint256.Int

// String prints the amount with thousands separators and the largest unit
// that represents it exactly (ether, gwei or wei).
func (e ETH) String() string {
	vWei := (*uint256.Int)(&e)
	if vWei.Sign() == 0 {
		return "0 wei"
	}
	var vGWei, remainder uint256.Int
	vGWei.DivMod(vWei, weiPerGWei, &remainder)
	if remainder.Sign() != 0 {
		return vWei.PrettyDec(',') + " wei"
	}
	var vEth uint256.Int
	vEth.DivMod(vWei, weiPerEth, &remainder)
	if remainder.Sign() == 0 {
		return vEth.PrettyDec(',') + " ether"
	}
	return vGWei.PrettyDec(',') + " gwei"
}

// Decimal returns the amount in wei, in decimal form.
func (e ETH) Decimal() string {
	return (*uint256.Int)(&e).Dec()
}

// Hex returns the amount in wei, 0x-prefixed.
func (e ETH) Hex() string {
	return (*uint256.Int)(&e).Hex()
}

// EtherString returns the amount in ether units, without trailing zeroes or unit suffix.
func (e ETH) EtherString() string {
	var ethers, remainder uint256.Int
	ethers.DivMod((*uint256.Int)(&e), weiPerEth, &remainder)
	if remainder.Sign() == 0 {
		return ethers.Dec()
	}
	frac := remainder.Dec()
	frac = strings.Repeat("0", 18-len(frac)) + frac
	suffix := strings.TrimRight(frac, "0")
	return ethers.Dec() + "." + suffix
}

// WeiFloat returns the amount in wei as a float. Precision is lost for large values.
func (e ETH) WeiFloat() float64 {
	return (*uint256.Int)(&e).Float64()
}

func (e ETH) ToBig() *big.Int {
	return (*uint256.Int)(&e).ToBig()
}

// ToU256 returns a copy of the underlying integer.
func (e ETH) ToU256() *uint256.Int {
	return (*uint256.Int)(&e).Clone()
}

// AddOverflow adds v and reports whether the result wrapped around.
func (e ETH) AddOverflow(v ETH) (out ETH, overflow bool) {
	_, overflow = (*uint256.Int)(&out).AddOverflow((*uint256.Int)(&e), (*uint256.Int)(&v))
	return
}

// MulOverflow multiplies by a scalar and reports whether the result wrapped around.
func (e ETH) MulOverflow(scalar uint64) (out ETH, overflow bool) {
	_, overflow = (*uint256.Int)(&out).MulOverflow((*uint256.Int)(&e), uint256.NewInt(scalar))
	return
}

func (e ETH) Lt(v ETH) bool {
	return (*uint256.Int)(&e).Lt((*uint256.Int)(&v))
}

func (e ETH) IsZero() bool {
	return (*uint256.Int)(&e).IsZero()
}

// UnmarshalText accepts decimal, or hexadecimal with a 0x prefix.
func (e *ETH) UnmarshalText(data []byte) error {
	return (*uint256.Int)(e).UnmarshalText(data)
}

// MarshalText renders the amount in wei as a plain decimal number.
func (e ETH) MarshalText() ([]byte, error) {
	return []byte(e.Decimal()), nil
}

// ParseWei parses a decimal amount of wei. Leading/trailing whitespace is ignored.
func ParseWei(s string) (ETH, error) {
	v, err := uint256.FromDecimal(strings.TrimSpace(s))
	if err != nil {
		return ETH{}, fmt.Errorf("invalid wei amount %q: %w", s, err)
	}
	return ETH(*v), nil
}

// WeiBig converts a big.Int amount of wei.
// This panics on nil, negative values, or values that do not fit in 256 bits.
func WeiBig(wei *big.Int) (out ETH) {
	if wei == nil {
		panic("nil *big.Int input to ETH constructor")
	}
	if wei.Sign() < 0 {
		panic("negative amounts are not supported")
	}
	if (*uint256.Int)(&out).SetFromBig(wei) {
		panic("*big.Int input does not fit in uint256")
	}
	return
}

func WeiU64(wei uint64) (out ETH) {
	(*uint256.Int)(&out).SetUint64(wei)
	return
}

// GWei multiplies the amount by 1e9.
func GWei(gwei uint64) ETH {
	var x uint256.Int
	x.SetUint64(gwei)
	x.Mul(&x, weiPerGWei)
	return ETH(x)
}

// Ether multiplies the amount by 1e18.
func Ether(ether uint64) ETH {
	var x uint256.Int
	x.SetUint64(ether)
	x.Mul(&x, weiPerEth)
	return ETH(x)
}
