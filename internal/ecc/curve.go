package ecc

import (
	"math/big"

	"graphseal/internal/errs"
)

// P-256 domain parameters.
var (
	P  = mustHex("ffffffff00000001000000000000000000000000ffffffffffffffffffffffff")
	N  = mustHex("ffffffff00000000ffffffffffffffffbce6faada7179e84f3b9cac2fc632551")
	A  = new(big.Int).Sub(P, big.NewInt(3))
	B  = mustHex("5ac635d8aa3a93e7b3ebbd55769886bc651d06b0cc53b0f63bce3c3e27d2604b")
	Gx = mustHex("6b17d1f2e12c4247f8bce6e563a440f277037d812deb33a0f4a13945d898c296")
	Gy = mustHex("4fe342e2fe1a7f9b8ee7eb4a7c0f9e162bce33576b315ececbb6406837bf51f5")
)

// ByteLen is the fixed width of a scalar or coordinate.
const ByteLen = 32

// bits is the number of scalar bits processed by ScalarMult.
const bits = 256

func mustHex(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("ecc: bad constant " + s)
	}
	return v
}

// Point is an affine point on P-256. The zero value is the point at infinity.
type Point struct {
	X, Y *big.Int
}

// Infinity returns the identity element.
func Infinity() Point { return Point{} }

// G returns the base point.
func G() Point { return Point{X: new(big.Int).Set(Gx), Y: new(big.Int).Set(Gy)} }

// IsInfinity reports whether p is the identity element.
func (p Point) IsInfinity() bool { return p.X == nil || p.Y == nil }

// Equal reports whether p and q are the same point.
func (p Point) Equal(q Point) bool {
	if p.IsInfinity() || q.IsInfinity() {
		return p.IsInfinity() == q.IsInfinity()
	}
	return p.X.Cmp(q.X) == 0 && p.Y.Cmp(q.Y) == 0
}

// NewPoint validates (x, y) and returns it as a Point.
func NewPoint(x, y *big.Int) (Point, error) {
	p := Point{X: x, Y: y}
	if !IsOnCurve(p) {
		return Point{}, errs.New(errs.InvalidPoint, "point is not on P-256")
	}
	return p, nil
}

func inField(v *big.Int) bool {
	return v != nil && v.Sign() >= 0 && v.Cmp(P) < 0
}

// IsOnCurve reports whether p satisfies y² = x³ + ax + b over the field.
// The point at infinity is not considered on the curve.
func IsOnCurve(p Point) bool {
	if p.IsInfinity() || !inField(p.X) || !inField(p.Y) {
		return false
	}
	lhs := new(big.Int).Mul(p.Y, p.Y)
	lhs.Mod(lhs, P)

	rhs := new(big.Int).Mul(p.X, p.X)
	rhs.Mul(rhs, p.X)
	ax := new(big.Int).Mul(A, p.X)
	rhs.Add(rhs, ax)
	rhs.Add(rhs, B)
	rhs.Mod(rhs, P)

	return lhs.Cmp(rhs) == 0
}
