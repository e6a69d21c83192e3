// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package crypto

import (
	"bytes"

	"github.com/pkg/errors"
)

// RecoverSigner returns the account that produced signature over message.
// signature is tag || raw signature || public key, message is signed as is.
func RecoverSigner(message, signature []byte) (AccountID, error) {
	scheme, sig, pk, err := splitSignature(signature)
	if err != nil {
		return AccountID{}, err
	}
	if err := scheme.verify(message, sig, pk); err != nil {
		return AccountID{}, err
	}
	return NewAccountID(scheme, pk), nil
}

// RecoverSignerWithKey is RecoverSigner with an additional tag || public key that must match the
// key carried by the signature. An empty encodedKey is ignored.
func RecoverSignerWithKey(message, signature, encodedKey []byte) (AccountID, error) {
	account, err := RecoverSigner(message, signature)
	if err != nil {
		return AccountID{}, err
	}
	if len(encodedKey) > 0 && !bytes.Equal(encodedKey, EncodePublicKey(account.Scheme, account.PublicKey)) {
		return AccountID{}, errors.Wrap(ErrSignatureMismatch, "public key differs from the signing key")
	}
	return account, nil
}
