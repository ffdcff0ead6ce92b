// Package memzero wipes key material once it is no longer needed.
package memzero

import (
	"crypto/subtle"
	"math/big"
)

// Zero overwrites every buffer with zeros.
func Zero(bufs ...[]byte) {
	for _, b := range bufs {
		if len(b) == 0 {
			continue
		}
		subtle.ConstantTimeCopy(1, b, make([]byte, len(b)))
	}
}

// Int clears the words backing x and sets it to zero. A nil x is ignored.
func Int(x *big.Int) {
	if x == nil {
		return
	}
	words := x.Bits()
	for i := range words {
		words[i] = 0
	}
	x.SetInt64(0)
}
