package totp

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RFC 6238 appendix B seeds.
const (
	rfcSeedSHA1   = "12345678901234567890"
	rfcSeedSHA256 = "12345678901234567890123456789012"
	rfcSeedSHA512 = "1234567890123456789012345678901234567890123456789012345678901234"
)

func TestCode_RFC6238Vectors(t *testing.T) {
	tests := []struct {
		alg  string
		seed string
		unix int64
		want string
	}{
		{SHA1, rfcSeedSHA1, 59, "287082"},
		{SHA1, rfcSeedSHA1, 1111111109, "081804"},
		{SHA1, rfcSeedSHA1, 1111111111, "050471"},
		{SHA1, rfcSeedSHA1, 1234567890, "005924"},
		{SHA1, rfcSeedSHA1, 2000000000, "279037"},
		{SHA256, rfcSeedSHA256, 59, "119246"},
		{SHA512, rfcSeedSHA512, 59, "693936"},
	}

	for _, tc := range tests {
		t.Run(tc.alg, func(t *testing.T) {
			p := DefaultParams()
			p.Algorithm = tc.alg
			p.Secret = Secret(tc.seed)

			code, err := p.Code(p.Window(time.Unix(tc.unix, 0)))
			require.NoError(t, err)
			assert.Equal(t, tc.want, code)
		})
	}
}

func TestCode_EightDigitVector(t *testing.T) {
	p := DefaultParams()
	p.Digits = 8
	p.Secret = Secret(rfcSeedSHA1)

	code, err := p.Code(p.Window(time.Unix(59, 0)))
	require.NoError(t, err)
	assert.Equal(t, "94287082", code)
}

func TestCode_UnknownAlgorithm(t *testing.T) {
	p := DefaultParams()
	p.Algorithm = "MD5"

	_, err := p.Code(1)
	assert.Error(t, err)
	assert.Equal(t, Placeholder, p.Generator()(1))
}

func TestDecodeSecret(t *testing.T) {
	b, ok := DecodeSecret("GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ")
	require.True(t, ok)
	assert.Equal(t, []byte(rfcSeedSHA1), b)

	b, ok = DecodeSecret("JBSWY3DPEHPK3PXP")
	require.True(t, ok)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", EncodeSecret(b))

	for _, text := range []string{
		"jbswy3dpehpk3pxp",
		"JBSWY3DPEHPK3PXP====",
		"not base32!",
		"JBSWY3DPEHPK3PX1",
	} {
		_, ok := DecodeSecret(text)
		assert.False(t, ok, "%q should not decode", text)
	}

	b, ok = DecodeSecret("")
	assert.True(t, ok)
	assert.Empty(t, b)
}

func TestSecret_JSONIsByteArray(t *testing.T) {
	data, err := json.Marshal(Secret("Hi"))
	require.NoError(t, err)
	assert.JSONEq(t, `[72,105]`, string(data))

	var s Secret
	require.NoError(t, json.Unmarshal([]byte(`[1,2,255]`), &s))
	assert.Equal(t, Secret{1, 2, 255}, s)

	assert.Error(t, json.Unmarshal([]byte(`[256]`), &s))
	assert.Error(t, json.Unmarshal([]byte(`"AQI="`), &s))
}

func TestSplit(t *testing.T) {
	tests := []struct {
		code        string
		digits      int
		left, right string
	}{
		{"123456", 6, "123", "456"},
		{"1234567", 7, "123", "4567"},
		{"1234", 4, "12", "34"},
		{"12345", 5, "12", "345"},
		{Placeholder, 6, "---", "---"},
		{Placeholder, 4, "--", "--"},
		{Placeholder, 5, "--", "---"},
		{Placeholder, 7, "---", "----"},
	}
	for _, tc := range tests {
		left, right := Split(tc.code, tc.digits)
		assert.Equal(t, tc.left, left, tc.code)
		assert.Equal(t, tc.right, right, tc.code)
		assert.Len(t, left+right, tc.digits)
	}
}

func TestClampDigits(t *testing.T) {
	assert.Equal(t, 4, ClampDigits(2))
	assert.Equal(t, 4, ClampDigits(4))
	assert.Equal(t, 7, ClampDigits(7))
	assert.Equal(t, 7, ClampDigits(8))
}

func TestWindowAndProgress(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, uint64(1), p.Window(time.Unix(59, 0)))
	assert.Equal(t, uint64(2), p.Window(time.Unix(60, 0)))
	assert.InDelta(t, 0.5, p.Progress(time.Unix(75, 0)), 1e-9)

	p.Step = 0
	assert.Equal(t, uint64(DefaultStep), p.StepSeconds())
}
