package ecc

import (
	"math/big"

	"graphseal/internal/errs"
)

// ModInverse returns a⁻¹ mod m computed as a^(m-2) mod m. Every bit of the
// exponent is processed with a square and a multiply. m must be prime.
func ModInverse(a, m *big.Int) (*big.Int, error) {
	r := new(big.Int).Mod(a, m)
	if r.Sign() == 0 {
		return nil, errs.New(errs.InvalidPoint, "no inverse for zero")
	}
	e := new(big.Int).Sub(m, big.NewInt(2))

	acc := big.NewInt(1)
	t := new(big.Int)
	for i := e.BitLen() - 1; i >= 0; i-- {
		acc.Mul(acc, acc).Mod(acc, m)
		t.Mul(acc, r).Mod(t, m)
		if e.Bit(i) == 1 {
			acc.Set(t)
		}
	}
	return acc, nil
}

// Add returns p + q. Both operands must be on the curve or at infinity.
func Add(p, q Point) (Point, error) {
	if err := checkOperand(p); err != nil {
		return Point{}, err
	}
	if err := checkOperand(q); err != nil {
		return Point{}, err
	}
	return add(p, q), nil
}

// Double returns 2p.
func Double(p Point) (Point, error) {
	if err := checkOperand(p); err != nil {
		return Point{}, err
	}
	return double(p), nil
}

// ScalarMult returns k·p. The scalar is reduced mod N and all 256 bits are
// processed; each step computes both the doubling and the addition and then
// selects the result.
func ScalarMult(k *big.Int, p Point) (Point, error) {
	if k == nil {
		return Point{}, errs.New(errs.InvalidInput, "nil scalar")
	}
	if !IsOnCurve(p) {
		return Point{}, errs.New(errs.InvalidPoint, "point is not on P-256")
	}
	s := new(big.Int).Mod(k, N)

	r := Infinity()
	for i := bits - 1; i >= 0; i-- {
		r = double(r)
		sum := add(r, p)
		r = selectPoint(s.Bit(i), sum, r)
	}
	return r, nil
}

// ScalarBaseMult returns k·G.
func ScalarBaseMult(k *big.Int) (Point, error) {
	return ScalarMult(k, G())
}

func checkOperand(p Point) error {
	if p.IsInfinity() || IsOnCurve(p) {
		return nil
	}
	return errs.New(errs.InvalidPoint, "point is not on P-256")
}

func selectPoint(bit uint, one, zero Point) Point {
	if bit == 1 {
		return one
	}
	return zero
}

func add(p, q Point) Point {
	switch {
	case p.IsInfinity():
		return q
	case q.IsInfinity():
		return p
	}
	if p.X.Cmp(q.X) == 0 {
		if p.Y.Cmp(q.Y) == 0 {
			return double(p)
		}
		return Infinity()
	}

	dy := new(big.Int).Sub(q.Y, p.Y)
	dx := new(big.Int).Sub(q.X, p.X)
	inv, err := ModInverse(dx, P)
	if err != nil {
		return Infinity()
	}
	lambda := dy.Mul(dy, inv)
	lambda.Mod(lambda, P)

	return chord(lambda, p, q.X)
}

func double(p Point) Point {
	if p.IsInfinity() || p.Y.Sign() == 0 {
		return Infinity()
	}
	num := new(big.Int).Mul(p.X, p.X)
	num.Mul(num, big.NewInt(3))
	num.Add(num, A)

	den := new(big.Int).Lsh(p.Y, 1)
	inv, err := ModInverse(den, P)
	if err != nil {
		return Infinity()
	}
	lambda := num.Mul(num, inv)
	lambda.Mod(lambda, P)

	return chord(lambda, p, p.X)
}

// chord completes addition given the slope through p and a point with x = qx.
func chord(lambda *big.Int, p Point, qx *big.Int) Point {
	x := new(big.Int).Mul(lambda, lambda)
	x.Sub(x, p.X)
	x.Sub(x, qx)
	x.Mod(x, P)

	y := new(big.Int).Sub(p.X, x)
	y.Mul(y, lambda)
	y.Sub(y, p.Y)
	y.Mod(y, P)

	return Point{X: x, Y: y}
}
