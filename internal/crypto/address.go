package crypto

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"graphseal/internal/errs"
	"graphseal/internal/wire"
)

// ContentAddress returns the CIDv1 (raw codec, sha2-256) of data's canonical
// bytes. The SHA-256 digest inside it is the same one Hash encodes, so the
// CID and the "#"-soul hash name the same content.
func ContentAddress(data any) (string, error) {
	b, err := wire.Digestible(data)
	if err != nil {
		return "", errs.Wrap(errs.InvalidInput, "data is not JSON-serializable", err)
	}
	mh, err := multihash.Sum(b, multihash.SHA2_256, -1)
	if err != nil {
		return "", err
	}
	return cid.NewCidV1(cid.Raw, mh).String(), nil
}
