package domain

import (
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/sha3"

	dErrors "crowdsale/pkg/domain-errors"
)

// AddressLength is the byte length of an account address.
const AddressLength = 20

// Address identifies a participant, a controller or a payee.
// The zero value is the null address.
type Address [AddressLength]byte

// ZeroAddress is the null address. It is never a valid beneficiary.
var ZeroAddress Address

// ParseAddress parses a 0x-prefixed hex address. Mixed-case input must carry a
// valid EIP-55 checksum; all-lower and all-upper input is accepted as is.
func ParseAddress(s string) (Address, error) {
	var a Address
	if !utf8.ValidString(s) {
		return a, dErrors.New(dErrors.CodeInvalidInput, "address is not valid UTF-8")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return a, dErrors.New(dErrors.CodeInvalidInput, "address is required")
	}
	body, ok := strings.CutPrefix(s, "0x")
	if !ok {
		body, ok = strings.CutPrefix(s, "0X")
	}
	if !ok || len(body) != 2*AddressLength {
		return a, dErrors.New(dErrors.CodeInvalidInput, "address must be 0x followed by 40 hex characters")
	}
	if _, err := hex.Decode(a[:], []byte(body)); err != nil {
		return Address{}, dErrors.New(dErrors.CodeInvalidInput, "address contains non-hex characters")
	}
	if isMixedCase(body) && checksumHex(a) != body {
		return Address{}, dErrors.New(dErrors.CodeInvalidInput, "address checksum mismatch")
	}
	return a, nil
}

// MustParseAddress is ParseAddress for constants and tests.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// String returns the EIP-55 checksummed form.
func (a Address) String() string {
	return "0x" + checksumHex(a)
}

// Hex returns the lowercase form used as a storage key.
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func checksumHex(a Address) string {
	lower := hex.EncodeToString(a[:])
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	digest := h.Sum(nil)

	out := []byte(lower)
	for i, c := range out {
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := digest[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if nibble&0x0f >= 8 {
			out[i] = c - 'a' + 'A'
		}
	}
	return string(out)
}

func isMixedCase(s string) bool {
	return strings.ToLower(s) != s && strings.ToUpper(s) != s
}
