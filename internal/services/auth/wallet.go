package auth

import (
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"
)

// AuthMessagePrefix starts every message a wallet signs to sign in.
const AuthMessagePrefix = "Sign this message to authenticate with Sailor Swift: "

// ErrInvalidSignature is returned when a signature is malformed or cannot be recovered.
var ErrInvalidSignature = errors.New("invalid signature")

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// AuthMessage returns the message a wallet must sign for the given nonce.
func AuthMessage(nonce string) string {
	return AuthMessagePrefix + nonce
}

// IsValidAddress reports whether s is a 0x-prefixed 20-byte hex address.
// Checksums are not enforced.
func IsValidAddress(s string) bool {
	return addressPattern.MatchString(strings.TrimSpace(s))
}

// NormalizeAddress trims and lowercases an address, the form stored for users.
func NormalizeAddress(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ChecksumAddress returns the mixed-case EIP-55 form of a valid address.
func ChecksumAddress(address string) (string, error) {
	if !IsValidAddress(address) {
		return "", fmt.Errorf("invalid address %q", address)
	}
	lower := NormalizeAddress(address)[2:]
	hash := keccak256([]byte(lower))

	out := make([]byte, 0, 42)
	out = append(out, '0', 'x')
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		nibble := hash[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if c >= 'a' && c <= 'f' && nibble&0x0f >= 8 {
			c -= 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out), nil
}

// PersonalMessageHash is the EIP-191 hash a wallet signs for personal_sign.
func PersonalMessageHash(message string) []byte {
	prefix := "\x19Ethereum Signed Message:\n" + strconv.Itoa(len(message))
	return keccak256([]byte(prefix), []byte(message))
}

// RecoverAddress returns the lowercase address that produced a 65-byte
// r||s||v personal_sign signature over message. v may be 0, 1, 27 or 28.
func RecoverAddress(message, signatureHex string) (string, error) {
	sig, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(signatureHex), "0x"))
	if err != nil {
		return "", fmt.Errorf("%w: not hex", ErrInvalidSignature)
	}
	if len(sig) != 65 {
		return "", fmt.Errorf("%w: expected 65 bytes, got %d", ErrInvalidSignature, len(sig))
	}

	v := sig[64]
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return "", fmt.Errorf("%w: bad recovery id", ErrInvalidSignature)
	}

	compact := make([]byte, 65)
	compact[0] = 27 + v
	copy(compact[1:], sig[:64])

	pub, _, err := ecdsa.RecoverCompact(compact, PersonalMessageHash(message))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	uncompressed := pub.SerializeUncompressed()
	return "0x" + hex.EncodeToString(keccak256(uncompressed[1:])[12:]), nil
}

// VerifySignature reports whether signatureHex over message was produced by address.
func VerifySignature(address, message, signatureHex string) bool {
	recovered, err := RecoverAddress(message, signatureHex)
	if err != nil {
		return false
	}
	return recovered == NormalizeAddress(address)
}

func keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}
