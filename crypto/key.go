// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package crypto

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
)

type (
	// PrivateKey signs mutations on the client side
	PrivateKey interface {
		Scheme() Scheme
		// PublicKey returns the raw public key, without tag
		PublicKey() []byte
		// Sign returns tag || raw signature || public key
		Sign([]byte) ([]byte, error)
		Account() AccountID
	}

	secp256k1PrvKey struct {
		sk *ecdsa.PrivateKey
	}

	ed25519PrvKey struct {
		sk ed25519.PrivateKey
	}
)

// GenerateKey generates a fresh key of the given scheme
func GenerateKey(scheme Scheme) (PrivateKey, error) {
	switch scheme {
	case Secp256k1:
		sk, err := ethcrypto.GenerateKey()
		if err != nil {
			return nil, errors.Wrap(err, "failed to generate secp256k1 key")
		}
		return &secp256k1PrvKey{sk: sk}, nil
	case Ed25519:
		_, sk, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, errors.Wrap(err, "failed to generate ed25519 key")
		}
		return &ed25519PrvKey{sk: sk}, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedScheme, "tag %#x", byte(scheme))
	}
}

// HexToSecp256k1 loads a secp256k1 key from its hex encoding
func HexToSecp256k1(s string) (PrivateKey, error) {
	sk, err := ethcrypto.HexToECDSA(s)
	if err != nil {
		return nil, errors.Wrap(ErrBadEncoding, err.Error())
	}
	return &secp256k1PrvKey{sk: sk}, nil
}

// Ed25519FromSeed loads an ed25519 key from a 32-byte seed
func Ed25519FromSeed(seed []byte) (PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Wrapf(ErrBadEncoding, "ed25519 seed of length %d", len(seed))
	}
	return &ed25519PrvKey{sk: ed25519.NewKeyFromSeed(seed)}, nil
}

func (k *secp256k1PrvKey) Scheme() Scheme { return Secp256k1 }

func (k *secp256k1PrvKey) PublicKey() []byte { return ethcrypto.CompressPubkey(&k.sk.PublicKey) }

func (k *secp256k1PrvKey) Account() AccountID { return NewAccountID(Secp256k1, k.PublicKey()) }

func (k *secp256k1PrvKey) Sign(message []byte) ([]byte, error) {
	digest := hash.Hash256b(message)
	sig, err := ethcrypto.Sign(digest[:], k.sk)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign with secp256k1")
	}
	return encodeSignature(Secp256k1, sig, k.PublicKey()), nil
}

func (k *ed25519PrvKey) Scheme() Scheme { return Ed25519 }

func (k *ed25519PrvKey) PublicKey() []byte {
	return append([]byte(nil), k.sk.Public().(ed25519.PublicKey)...)
}

func (k *ed25519PrvKey) Account() AccountID { return NewAccountID(Ed25519, k.PublicKey()) }

func (k *ed25519PrvKey) Sign(message []byte) ([]byte, error) {
	return encodeSignature(Ed25519, ed25519.Sign(k.sk, message), k.PublicKey()), nil
}

func encodeSignature(scheme Scheme, sig, pk []byte) []byte {
	b := make([]byte, 0, 1+len(sig)+len(pk))
	b = append(b, byte(scheme))
	b = append(b, sig...)
	return append(b, pk...)
}
