// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package crypto

import (
	"bytes"
	"crypto/ed25519"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
)

// Scheme is the one-byte tag that prefixes every signature and public key encoding
type Scheme byte

const (
	// Secp256k1 is a recoverable ECDSA signature over the blake2b-256 digest of the message
	Secp256k1 Scheme = 0x00
	// Ed25519 is an EdDSA signature over the raw message
	Ed25519 Scheme = 0x01
)

const (
	secp256k1SigLength    = 65
	secp256k1PubKeyLength = 33
	ed25519SigLength      = ed25519.SignatureSize
	ed25519PubKeyLength   = ed25519.PublicKeySize
)

var (
	// ErrBadEncoding indicates a signature or public key that cannot be parsed
	ErrBadEncoding = errors.New("bad signature encoding")
	// ErrUnsupportedScheme indicates an unknown scheme tag
	ErrUnsupportedScheme = errors.New("unsupported signature scheme")
	// ErrSignatureMismatch indicates a well-formed signature that does not match the message and key
	ErrSignatureMismatch = errors.New("signature mismatch")
)

func (s Scheme) String() string {
	switch s {
	case Secp256k1:
		return "secp256k1"
	case Ed25519:
		return "ed25519"
	default:
		return "unknown"
	}
}

// sigLength returns the length of the raw signature and public key following the tag
func (s Scheme) sigLength() (int, int, error) {
	switch s {
	case Secp256k1:
		return secp256k1SigLength, secp256k1PubKeyLength, nil
	case Ed25519:
		return ed25519SigLength, ed25519PubKeyLength, nil
	default:
		return 0, 0, errors.Wrapf(ErrUnsupportedScheme, "tag %#x", byte(s))
	}
}

// splitSignature parses tag || raw signature || public key
func splitSignature(signature []byte) (Scheme, []byte, []byte, error) {
	if len(signature) == 0 {
		return 0, nil, nil, errors.Wrap(ErrBadEncoding, "empty signature")
	}
	scheme := Scheme(signature[0])
	sigLen, pkLen, err := scheme.sigLength()
	if err != nil {
		return 0, nil, nil, err
	}
	body := signature[1:]
	if len(body) != sigLen+pkLen {
		return 0, nil, nil, errors.Wrapf(ErrBadEncoding, "%s signature of length %d", scheme, len(signature))
	}
	return scheme, body[:sigLen], body[sigLen:], nil
}

// verify checks raw signature sig over message against pk. Both schemes run the full decode
// and verification, no step is skipped based on which tag matched.
func (s Scheme) verify(message, sig, pk []byte) error {
	switch s {
	case Secp256k1:
		return verifySecp256k1(message, sig, pk)
	case Ed25519:
		if !ed25519.Verify(ed25519.PublicKey(pk), message, sig) {
			return errors.Wrap(ErrSignatureMismatch, "ed25519")
		}
		return nil
	default:
		return errors.Wrapf(ErrUnsupportedScheme, "tag %#x", byte(s))
	}
}

func verifySecp256k1(message, sig, pk []byte) error {
	if _, err := ethcrypto.DecompressPubkey(pk); err != nil {
		return errors.Wrap(ErrBadEncoding, err.Error())
	}
	r := new(big.Int).SetBytes(sig[:32])
	sv := new(big.Int).SetBytes(sig[32:64])
	// only the low-s form is accepted, so every signature has a single valid encoding
	if !ethcrypto.ValidateSignatureValues(sig[64], r, sv, true) {
		return errors.Wrap(ErrBadEncoding, "invalid secp256k1 signature values")
	}
	digest := hash.Hash256b(message)
	recovered, err := ethcrypto.SigToPub(digest[:], sig)
	if err != nil {
		return errors.Wrap(ErrSignatureMismatch, err.Error())
	}
	if !bytes.Equal(ethcrypto.CompressPubkey(recovered), pk) {
		return errors.Wrap(ErrSignatureMismatch, "secp256k1 recovered key differs")
	}
	return nil
}
