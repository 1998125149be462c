package keymaterial

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTrip(t *testing.T) {
	identity, err := testBuilder(t).Mint()
	require.NoError(t, err, "Mint should succeed")

	encoded, err := Encode(identity)
	require.NoError(t, err, "Encode should succeed")
	require.NotEmpty(t, encoded)

	decoded, err := Decode(encoded)
	require.NoError(t, err, "Decode should succeed")

	assert.True(t, identity.Equal(decoded), "Decoded identity should equal the original field for field")
}

func TestCodec_ReencodeIsByteIdentical(t *testing.T) {
	identity, err := testBuilder(t).Mint()
	require.NoError(t, err)

	encoded, err := Encode(identity)
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)

	reencoded, err := Encode(decoded)
	require.NoError(t, err)

	assert.Equal(t, encoded, reencoded, "Encoding is deterministic, re-encoding a decoded identity must reproduce the exact bytes")
}

func TestCodec_EncodeRejectsInvalidIdentity(t *testing.T) {
	identity, err := testBuilder(t).Mint()
	require.NoError(t, err)

	identity.BoundSecret = identity.BoundSecret[:16]
	_, err = Encode(identity)
	assert.Error(t, err, "Encode should refuse an identity with a short bound secret")
}

func TestDecode_MalformedInputs(t *testing.T) {
	identity, err := testBuilder(t).Mint()
	require.NoError(t, err)
	encoded, err := Encode(identity)
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: []byte{}},
		{name: "garbage", data: []byte("definitely not cbor key material")},
		{name: "truncated", data: encoded[:len(encoded)/2]},
		{name: "wrong top-level type", data: mustCBOR(t, "a string, not an array")},
		{name: "wrong arity", data: mustCBOR(t, []any{[]byte{1, 2, 3}})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			require.Error(t, err, "Decode should reject malformed input")
			assert.ErrorIs(t, err, ErrMalformedEncoding)
		})
	}
}

func TestDecode_UnknownAlgorithm(t *testing.T) {
	identity, err := testBuilder(t).Mint()
	require.NoError(t, err)
	encoded, err := Encode(identity)
	require.NoError(t, err)

	var record encodedIdentity
	require.NoError(t, decMode.Unmarshal(encoded, &record))
	record.AttestationAlgorithm = 99

	tampered, err := encMode.Marshal(&record)
	require.NoError(t, err)

	_, err = Decode(tampered)
	require.Error(t, err, "Decode should reject an unrecognized algorithm identifier")
	assert.ErrorIs(t, err, ErrMalformedEncoding)
}

func TestDecode_CorruptedKeyBytes(t *testing.T) {
	identity, err := testBuilder(t).Mint()
	require.NoError(t, err)
	encoded, err := Encode(identity)
	require.NoError(t, err)

	var record encodedIdentity
	require.NoError(t, decMode.Unmarshal(encoded, &record))
	record.AttestationKey = []byte("not a DER key")

	tampered, err := encMode.Marshal(&record)
	require.NoError(t, err)

	_, err = Decode(tampered)
	assert.ErrorIs(t, err, ErrMalformedEncoding, "Corrupted key bytes should surface as a malformed encoding")
}

func mustCBOR(t *testing.T, v any) []byte {
	t.Helper()
	data, err := cbor.Marshal(v)
	require.NoError(t, err, "Failed to marshal test CBOR value")
	return data
}
