// Package scantoken encodes and decodes the tamper-resistant, time-bounded
// payloads that identify a pass to scanning devices.
package scantoken

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

const MaxTokenAge = 24 * time.Hour

var (
	ErrMalformedToken    = errors.New("malformed scan token")
	ErrTokenStale        = errors.New("scan token has expired")
	ErrIncompletePayload = errors.New("scan token payload is incomplete")
	ErrPassExpired       = errors.New("pass has expired")
)

// Payload identifies a pass for scanning. Timestamp and Nonce are attached
// at encode time.
type Payload struct {
	PassID     int       `json:"pass_id"`
	RiderID    int       `json:"rider_id"`
	RouteID    string    `json:"route_id"`
	ExpiryDate time.Time `json:"expiry_date"`
	Timestamp  time.Time `json:"timestamp"`
	Nonce      string    `json:"nonce"`
}

// Codec seals payloads with AES-256-GCM under a pre-shared key. The
// ciphertext is opaque to clients; GCM authentication makes tampering a
// decode failure rather than a forged payload.
type Codec struct {
	aead cipher.AEAD
	now  func() time.Time
}

func NewCodec(key []byte) (*Codec, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Codec{aead: aead, now: time.Now}, nil
}

func (c *Codec) Encode(p Payload) (string, error) {
	p.Timestamp = c.now()
	p.Nonce = uuid.NewString()

	plaintext, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	iv := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	sealed := c.aead.Seal(iv, iv, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decode reverses Encode and runs the freshness and completeness checks.
// These precede, and are independent of, the registry's own expiry and
// dedup checks.
func (c *Codec) Decode(token string) (*Payload, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(raw) < c.aead.NonceSize() {
		return nil, ErrMalformedToken
	}

	iv, ciphertext := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return nil, ErrMalformedToken
	}

	var p Payload
	if err := json.Unmarshal(plaintext, &p); err != nil {
		return nil, ErrMalformedToken
	}

	if c.now().Sub(p.Timestamp) > MaxTokenAge {
		return nil, ErrTokenStale
	}

	if p.PassID == 0 || p.RiderID == 0 || p.RouteID == "" {
		return nil, ErrIncompletePayload
	}

	if p.ExpiryDate.Before(c.now()) {
		return nil, ErrPassExpired
	}

	return &p, nil
}
