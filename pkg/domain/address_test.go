package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "crowdsale/pkg/domain-errors"
)

// Checksummed vectors published with EIP-55.
var checksumVectors = []string{
	"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
	"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
	"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
	"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
}

func TestParseAddress(t *testing.T) {
	t.Run("checksummed vectors round-trip", func(t *testing.T) {
		for _, v := range checksumVectors {
			a, err := ParseAddress(v)
			require.NoError(t, err, v)
			assert.Equal(t, v, a.String())
		}
	})

	t.Run("lowercase input is accepted and checksummed on output", func(t *testing.T) {
		a, err := ParseAddress(strings.ToLower(checksumVectors[0]))
		require.NoError(t, err)
		assert.Equal(t, checksumVectors[0], a.String())
		assert.Equal(t, strings.ToLower(checksumVectors[0]), a.Hex())
	})

	t.Run("bad checksum is rejected", func(t *testing.T) {
		_, err := ParseAddress("0x5AAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("malformed input is rejected", func(t *testing.T) {
		for _, in := range []string{"", "0x", "5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", "0x12", "0xzz" + strings.Repeat("0", 38)} {
			_, err := ParseAddress(in)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), "input %q", in)
		}
	})

	t.Run("zero address parses and reports zero", func(t *testing.T) {
		a, err := ParseAddress("0x" + strings.Repeat("0", 40))
		require.NoError(t, err)
		assert.True(t, a.IsZero())
	})
}

func TestAddressJSON(t *testing.T) {
	type payload struct {
		Beneficiary Address `json:"beneficiary"`
	}
	in := payload{Beneficiary: MustParseAddress(checksumVectors[1])}

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"beneficiary":"`+checksumVectors[1]+`"}`, string(raw))

	var out payload
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)

	err = json.Unmarshal([]byte(`{"beneficiary":"nope"}`), &out)
	assert.Error(t, err)
}

// FuzzParseAddress checks that parsing never panics and that accepted input
// round-trips through the checksummed form.
func FuzzParseAddress(f *testing.F) {
	for _, v := range checksumVectors {
		f.Add(v)
	}
	f.Add("")
	f.Add("0x")
	f.Add("0X" + strings.Repeat("F", 40))
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		a, err := ParseAddress(input)
		if err != nil {
			return
		}
		again, err := ParseAddress(a.String())
		if err != nil {
			t.Fatalf("checksummed form rejected: %v", err)
		}
		if again != a {
			t.Fatal("round-trip changed address")
		}
	})
}
