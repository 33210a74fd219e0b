package vault

import (
	"crypto/rand"
	"encoding/json"
	"math/big"
	"time"

	"passrs/internal/totp"
)

const (
	DefaultPasswordName = "New Password"
	DefaultTOTPName     = "New TOTP"

	generatedLength = 32
	generatedChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

type Password struct {
	Name     string `json:"name"`
	Password string `json:"password"`

	// Deleted marks the record for removal at save time. Never persisted.
	Deleted bool `json:"-"`
}

// NewPassword returns the record created by the "new" action: a default name
// and a random password.
func NewPassword() Password {
	return Password{Name: DefaultPasswordName, Password: generatePassword()}
}

func generatePassword() string {
	limit := big.NewInt(int64(len(generatedChars)))
	out := make([]byte, generatedLength)
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			// left empty; the user fills it in before confirming
			return ""
		}
		out[i] = generatedChars[n.Int64()]
	}
	return string(out)
}

type TOTP struct {
	Name   string
	Params totp.Params

	// RawSecret holds the text the user typed when it was not canonical
	// base32. Params.Secret then holds those same bytes verbatim.
	RawSecret *string

	Deleted bool
	Codes   totp.Cache
}

func NewTOTP() TOTP {
	return TOTP{Name: DefaultTOTPName, Params: totp.DefaultParams()}
}

// Clone returns a deep copy suitable for editing.
func (t TOTP) Clone() TOTP {
	out := t
	out.Params.Secret = append(totp.Secret{}, t.Params.Secret...)
	if t.RawSecret != nil {
		raw := *t.RawSecret
		out.RawSecret = &raw
	}
	return out
}

// SecretText is the single text value shown in the editor: the raw text when
// one was kept, otherwise the canonical base32 of the secret.
func (t TOTP) SecretText() string {
	if t.RawSecret != nil {
		return *t.RawSecret
	}
	return totp.EncodeSecret(t.Params.Secret)
}

// SetSecretText stores text as canonical base32 when it decodes as such, and
// otherwise keeps it verbatim and uses its bytes as the key.
func (t *TOTP) SetSecretText(text string) {
	if b, ok := totp.DecodeSecret(text); ok {
		t.Params.Secret = b
		t.RawSecret = nil
		return
	}
	t.Params.Secret = totp.Secret(text)
	raw := text
	t.RawSecret = &raw
}

func (t TOTP) Digits() int { return t.Params.Digits }

func (t *TOTP) SetDigits(d int) { t.Params.Digits = totp.ClampDigits(d) }

// Refresh brings the code cache to the window containing now and reports
// whether the window changed.
func (t *TOTP) Refresh(now time.Time) bool {
	window := t.Params.Window(now)
	before, ok := t.Codes.Window()
	t.Codes.Refresh(window, t.Params.Generator())
	return !ok || before != window
}

// Recompute discards cached codes, used after the secret or digits changed.
func (t *TOTP) Recompute(now time.Time) {
	t.Codes.Force(t.Params.Window(now), t.Params.Generator())
}

func (t TOTP) Code(next bool) string { return t.Codes.Code(next) }

type totpJSON struct {
	Name      string      `json:"name"`
	Digits    int         `json:"digits"`
	Data      totp.Params `json:"data"`
	RawSecret *string     `json:"raw_secret"`
}

func (t TOTP) MarshalJSON() ([]byte, error) {
	params := t.Params
	if params.Secret == nil {
		params.Secret = totp.Secret{}
	}
	return json.Marshal(totpJSON{
		Name:      t.Name,
		Digits:    params.Digits,
		Data:      params,
		RawSecret: t.RawSecret,
	})
}

func (t *TOTP) UnmarshalJSON(data []byte) error {
	raw := totpJSON{Data: totp.DefaultParams()}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Data.Digits == 0 {
		raw.Data.Digits = raw.Digits
	}
	if raw.Data.Digits == 0 {
		raw.Data.Digits = totp.DefaultDigits
	}
	*t = TOTP{Name: raw.Name, Params: raw.Data, RawSecret: raw.RawSecret}
	return nil
}
