package crypto

import (
	"context"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"graphseal/internal/errs"
	"graphseal/internal/util/memzero"
	"graphseal/internal/wire"
)

const (
	workKeySize  = 64
	workSaltSize = 9
)

// WorkOptions tunes Work.
type WorkOptions struct {
	// Name is "PBKDF2" (default) or a digest name starting with "SHA"
	// ("SHA-256", "SHA-384", "SHA-512", "SHA-1").
	Name       string
	Iterations int
	// Length of the PBKDF2 output in bytes.
	Length   int
	Encoding Encoding
}

// Work stretches data into a proof. PBKDF2-SHA256 with salt (random 9 bytes
// when empty) by default; with a SHA name it returns the plain digest.
func (s *Suite) Work(ctx context.Context, data any, salt string, opts WorkOptions) (string, error) {
	out, err := s.work(ctx, data, salt, opts)
	if err != nil {
		return "", s.fail("work", err)
	}
	return out, nil
}

// Hash is Work with the SHA-256 digest, base64 encoded.
func (s *Suite) Hash(ctx context.Context, data any) (string, error) {
	return s.Work(ctx, data, "", WorkOptions{Name: "SHA-256"})
}

func (s *Suite) work(ctx context.Context, data any, salt string, opts WorkOptions) (string, error) {
	if data == nil {
		return "", errs.New(errs.InvalidInput, "nil data")
	}
	if !opts.Encoding.Valid() {
		return "", errs.New(errs.InvalidInput, "unknown encoding "+string(opts.Encoding))
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	in, err := wire.Digestible(data)
	if err != nil {
		return "", errs.Wrap(errs.InvalidInput, "data is not JSON-serializable", err)
	}

	name := strings.ToUpper(opts.Name)
	if strings.HasPrefix(name, "SHA") {
		h, err := digestFor(name)
		if err != nil {
			return "", err
		}
		h.Write(in)
		return opts.Encoding.Encode(h.Sum(nil)), nil
	}
	if name != "" && name != "PBKDF2" {
		return "", errs.New(errs.InvalidInput, "unknown work function "+opts.Name)
	}

	saltBytes := []byte(salt)
	if salt == "" {
		if saltBytes, err = s.random(workSaltSize); err != nil {
			return "", err
		}
	}
	iter := opts.Iterations
	if iter <= 0 {
		iter = s.iter
	}
	size := opts.Length
	if size <= 0 {
		size = workKeySize
	}
	key := pbkdf2.Key(in, saltBytes, iter, size, sha256.New)
	defer memzero.Zero(key)
	memzero.Zero(in)
	return opts.Encoding.Encode(key), nil
}

func digestFor(name string) (hash.Hash, error) {
	switch strings.ReplaceAll(name, "-", "") {
	case "SHA256":
		return sha256.New(), nil
	case "SHA384":
		return sha512.New384(), nil
	case "SHA512":
		return sha512.New(), nil
	case "SHA1":
		return sha1.New(), nil
	}
	return nil, errs.New(errs.InvalidInput, "unknown digest "+name)
}
