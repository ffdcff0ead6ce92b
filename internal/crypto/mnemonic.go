package crypto

import (
	"github.com/tyler-smith/go-bip39"

	"graphseal/internal/errs"
)

const mnemonicEntropyBits = 256

// NewMnemonic returns a fresh 24-word BIP-39 phrase.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(mnemonicEntropyBits)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// MnemonicSeed turns a BIP-39 phrase and optional passphrase into a seed for
// PairOptions.Seed. The phrase checksum is verified.
func MnemonicSeed(mnemonic, passphrase string) ([]byte, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidInput, "invalid mnemonic", err)
	}
	return seed, nil
}
