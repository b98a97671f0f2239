package bitfield

import (
	"math/big"
	"math/bits"
)

// Uint128 is the 128-bit base type. Go has no native 128-bit integer, so the
// value is held as two 64-bit halves.
type Uint128 struct {
	Hi uint64
	Lo uint64
}

// Uint128From64 widens v to 128 bits.
func Uint128From64(v uint64) Uint128 {
	return Uint128{Lo: v}
}

// MaxUint128 has every bit set.
var MaxUint128 = Uint128{Hi: ^uint64(0), Lo: ^uint64(0)}

func (u Uint128) And(v Uint128) Uint128 {
	return Uint128{Hi: u.Hi & v.Hi, Lo: u.Lo & v.Lo}
}

func (u Uint128) Or(v Uint128) Uint128 {
	return Uint128{Hi: u.Hi | v.Hi, Lo: u.Lo | v.Lo}
}

// AndNot clears in u every bit set in v.
func (u Uint128) AndNot(v Uint128) Uint128 {
	return Uint128{Hi: u.Hi &^ v.Hi, Lo: u.Lo &^ v.Lo}
}

func (u Uint128) Not() Uint128 {
	return Uint128{Hi: ^u.Hi, Lo: ^u.Lo}
}

// Lsh shifts left by n bits; shifts of 128 or more yield zero.
func (u Uint128) Lsh(n uint) Uint128 {
	switch {
	case n == 0:
		return u
	case n >= 128:
		return Uint128{}
	case n >= 64:
		return Uint128{Hi: u.Lo << (n - 64)}
	default:
		return Uint128{Hi: u.Hi<<n | u.Lo>>(64-n), Lo: u.Lo << n}
	}
}

// Rsh shifts right by n bits; shifts of 128 or more yield zero.
func (u Uint128) Rsh(n uint) Uint128 {
	switch {
	case n == 0:
		return u
	case n >= 128:
		return Uint128{}
	case n >= 64:
		return Uint128{Lo: u.Hi >> (n - 64)}
	default:
		return Uint128{Hi: u.Hi >> n, Lo: u.Lo>>n | u.Hi<<(64-n)}
	}
}

func (u Uint128) IsZero() bool {
	return u.Hi == 0 && u.Lo == 0
}

// Uint64 returns the low 64 bits.
func (u Uint128) Uint64() uint64 {
	return u.Lo
}

// Len returns the minimum number of bits needed to represent u.
func (u Uint128) Len() int {
	if u.Hi != 0 {
		return 64 + bits.Len64(u.Hi)
	}
	return bits.Len64(u.Lo)
}

// Big converts u to a big.Int.
func (u Uint128) Big() *big.Int {
	b := new(big.Int).SetUint64(u.Hi)
	b.Lsh(b, 64)
	return b.Or(b, new(big.Int).SetUint64(u.Lo))
}

// String formats u in base 10.
func (u Uint128) String() string {
	if u.Hi == 0 {
		return new(big.Int).SetUint64(u.Lo).String()
	}
	return u.Big().String()
}

// ParseUint128 parses s in the given base (0 selects by prefix as in
// strconv.ParseUint). Values that do not fit in 128 bits are rejected.
func ParseUint128(s string, base int) (Uint128, bool) {
	b, ok := new(big.Int).SetString(s, base)
	if !ok || b.Sign() < 0 || b.BitLen() > 128 {
		return Uint128{}, false
	}
	lo := new(big.Int).And(b, new(big.Int).SetUint64(^uint64(0)))
	hi := new(big.Int).Rsh(b, 64)
	return Uint128{Hi: hi.Uint64(), Lo: lo.Uint64()}, true
}

func mask128(width int) Uint128 {
	switch {
	case width >= 128:
		return MaxUint128
	case width >= 64:
		return Uint128{Hi: uint64(1)<<(width-64) - 1, Lo: ^uint64(0)}
	default:
		return Uint128{Lo: uint64(1)<<width - 1}
	}
}
