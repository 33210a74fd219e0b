// Package totp computes RFC 6238 codes for stored secrets and caches the
// current and next code of each record between frames.
package totp

import (
	"encoding/base32"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

const (
	DefaultDigits = 6
	DefaultStep   = 30
	MinDigits     = 4
	// MaxDigits is exclusive.
	MaxDigits = 8

	// Placeholder is shown for a record whose codes were never computed.
	Placeholder = "------"
)

// Algorithm names as they appear in the data file.
const (
	SHA1   = "SHA1"
	SHA256 = "SHA256"
	SHA512 = "SHA512"
)

// canonical is unpadded upper-case RFC 4648 base32, the only form accepted
// as an encoded secret.
var canonical = base32.StdEncoding.WithPadding(base32.NoPadding)

// Params is the "data" object of a stored TOTP record.
type Params struct {
	Algorithm string `json:"algorithm"`
	Digits    int    `json:"digits"`
	Skew      uint8  `json:"skew"`
	Step      uint64 `json:"step"`
	Secret    Secret `json:"secret"`
}

func DefaultParams() Params {
	return Params{
		Algorithm: SHA1,
		Digits:    DefaultDigits,
		Skew:      1,
		Step:      DefaultStep,
		Secret:    Secret{},
	}
}

// Secret is raw key material. It is stored as a JSON array of byte values.
type Secret []byte

func (s Secret) MarshalJSON() ([]byte, error) {
	vals := make([]int, len(s))
	for i, b := range s {
		vals[i] = int(b)
	}
	return json.Marshal(vals)
}

func (s *Secret) UnmarshalJSON(data []byte) error {
	var vals []int
	if err := json.Unmarshal(data, &vals); err != nil {
		return fmt.Errorf("totp secret: %w", err)
	}
	out := make(Secret, len(vals))
	for i, v := range vals {
		if v < 0 || v > 255 {
			return fmt.Errorf("totp secret: byte %d out of range: %d", i, v)
		}
		out[i] = byte(v)
	}
	*s = out
	return nil
}

// EncodeSecret renders raw key material as canonical base32.
func EncodeSecret(secret []byte) string {
	return canonical.EncodeToString(secret)
}

// DecodeSecret accepts text only when it is canonical base32, that is when
// encoding the decoded bytes gives back exactly the same text.
func DecodeSecret(text string) ([]byte, bool) {
	b, err := canonical.DecodeString(text)
	if err != nil {
		return nil, false
	}
	if canonical.EncodeToString(b) != text {
		return nil, false
	}
	return b, true
}

// StepSeconds returns the period in seconds, falling back to DefaultStep.
func (p Params) StepSeconds() uint64 {
	if p.Step == 0 {
		return DefaultStep
	}
	return p.Step
}

// Window is the index of the time slice containing t.
func (p Params) Window(t time.Time) uint64 {
	unix := t.Unix()
	if unix < 0 {
		return 0
	}
	return uint64(unix) / p.StepSeconds()
}

// Progress is the fraction of the current window already elapsed at t.
func (p Params) Progress(t time.Time) float64 {
	period := time.Duration(p.StepSeconds()) * time.Second
	elapsed := time.Duration(t.UnixNano()) % period
	return float64(elapsed) / float64(period)
}

// Code computes the code for a window index.
func (p Params) Code(window uint64) (string, error) {
	alg, err := algorithm(p.Algorithm)
	if err != nil {
		return "", err
	}
	return hotp.GenerateCodeCustom(base32.StdEncoding.EncodeToString(p.Secret), window, hotp.ValidateOpts{
		Digits:    otp.Digits(p.Digits),
		Algorithm: alg,
	})
}

func algorithm(name string) (otp.Algorithm, error) {
	switch strings.ToUpper(name) {
	case "", SHA1:
		return otp.AlgorithmSHA1, nil
	case SHA256:
		return otp.AlgorithmSHA256, nil
	case SHA512:
		return otp.AlgorithmSHA512, nil
	default:
		return 0, fmt.Errorf("unsupported totp algorithm %q", name)
	}
}

// Split breaks a code into two display groups; the first holds digits/2
// characters so odd lengths put the shorter group in front. Placeholder is
// resized to digits first.
func Split(code string, digits int) (string, string) {
	if code == Placeholder {
		code = strings.Repeat("-", digits)
	}
	half := min(digits/2, len(code))
	return code[:half], code[half:]
}

// ClampDigits keeps a digit count within [MinDigits, MaxDigits).
func ClampDigits(d int) int {
	if d < MinDigits {
		return MinDigits
	}
	if d >= MaxDigits {
		return MaxDigits - 1
	}
	return d
}
