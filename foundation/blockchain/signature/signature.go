// Package signature provides helper functions for handling the blockchain
// hashing and signature needs.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrInvalidSignature is the single class of failure reported to callers
// when a signature can't be produced or verified. The underlying cause is
// available through errors.Is against the errors below.
var ErrInvalidSignature = errors.New("invalid signature")

// Distinct causes of an invalid signature outcome.
var (
	ErrInvalidKey         = errors.New("invalid key encoding")
	ErrMalformedSignature = errors.New("malformed signature encoding")
	ErrVerification       = errors.New("signature verification failed")
)

// signatureLength is the [R|S] length. The recovery id is not stored since
// the public key is always known at verification time.
const signatureLength = crypto.SignatureLength - 1

// =============================================================================

// Hash returns the lowercase hex encoded sha256 digest of the data. There is
// no 0x prefix since the proof of work rules count leading zero characters.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// GenerateKey produces a new private key and returns the private and public
// keys in their hex encoded form. The public key doubles as an address.
func GenerateKey() (privateKey string, publicKey string, err error) {
	pk, err := crypto.GenerateKey()
	if err != nil {
		return "", "", err
	}

	return EncodePrivateKey(pk), EncodePublicKey(&pk.PublicKey), nil
}

// EncodePrivateKey returns the hex encoded scalar of the private key.
func EncodePrivateKey(pk *ecdsa.PrivateKey) string {
	return hexutil.Encode(crypto.FromECDSA(pk))
}

// EncodePublicKey returns the hex encoded uncompressed curve point.
func EncodePublicKey(pub *ecdsa.PublicKey) string {
	return hexutil.Encode(crypto.FromECDSAPub(pub))
}

// DecodePrivateKey parses a hex encoded private key scalar.
func DecodePrivateKey(privateKey string) (*ecdsa.PrivateKey, error) {
	b, err := hexutil.Decode(privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}

	pk, err := crypto.ToECDSA(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}

	return pk, nil
}

// PublicKey derives the hex encoded public key from a hex encoded private key.
func PublicKey(privateKey string) (string, error) {
	pk, err := DecodePrivateKey(privateKey)
	if err != nil {
		return "", err
	}

	return EncodePublicKey(&pk.PublicKey), nil
}

// Sign uses the specified private key to sign the message. The message is
// hashed with sha256 before signing.
func Sign(privateKey string, message []byte) (string, error) {
	pk, err := DecodePrivateKey(privateKey)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	digest := sha256.Sum256(message)

	sig, err := crypto.Sign(digest[:], pk)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	return hexutil.Encode(sig[:signatureLength]), nil
}

// Verify checks the signature was produced over the message by the owner of
// the public key. Every failure wraps ErrInvalidSignature.
func Verify(publicKey string, message []byte, sig string) error {
	pubBytes, err := hexutil.Decode(publicKey)
	if err != nil {
		return fmt.Errorf("%w: %w: %w", ErrInvalidSignature, ErrInvalidKey, err)
	}

	if _, err := crypto.UnmarshalPubkey(pubBytes); err != nil {
		return fmt.Errorf("%w: %w: %w", ErrInvalidSignature, ErrInvalidKey, err)
	}

	sigBytes, err := hexutil.Decode(sig)
	if err != nil {
		return fmt.Errorf("%w: %w: %w", ErrInvalidSignature, ErrMalformedSignature, err)
	}

	if len(sigBytes) != signatureLength {
		return fmt.Errorf("%w: %w: length %d", ErrInvalidSignature, ErrMalformedSignature, len(sigBytes))
	}

	digest := sha256.Sum256(message)

	if !crypto.VerifySignature(pubBytes, digest[:], sigBytes) {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, ErrVerification)
	}

	return nil
}
