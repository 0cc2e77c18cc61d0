// File: internal/walletclient/signer.go
package walletclient

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// LocalSigner signs with an in-process keypair. Useful for tooling and tests;
// a browser wallet adapter would implement Signer the same way.
type LocalSigner struct {
	key solana.PrivateKey
}

func NewLocalSigner(key solana.PrivateKey) *LocalSigner {
	return &LocalSigner{key: key}
}

func (s *LocalSigner) PublicKey() solana.PublicKey {
	return s.key.PublicKey()
}

func (s *LocalSigner) SignTransaction(_ context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	_, err := tx.Sign(func(pub solana.PublicKey) *solana.PrivateKey {
		if pub.Equals(s.key.PublicKey()) {
			return &s.key
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}
