package security

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Envelope is the serialized form of sealed key material: base64 of
// nonce||ciphertext plus a base64 RSA-SHA256 signature of the ciphertext.
// Sealed seed files and sealed HTTP responses both carry this shape.
type Envelope struct {
	Data      string `json:"data"`
	Signature string `json:"signature"`
}

// SealEnvelope encrypts and signs plaintext. Requires signing material.
func SealEnvelope(s Sealer, plaintext []byte) (Envelope, error) {
	ct, err := s.Seal(plaintext)
	if err != nil {
		return Envelope{}, fmt.Errorf("seal: %w", err)
	}
	sig, err := s.Sign(ct)
	if err != nil {
		return Envelope{}, fmt.Errorf("sign: %w", err)
	}
	return Envelope{
		Data:      base64.StdEncoding.EncodeToString(ct),
		Signature: base64.StdEncoding.EncodeToString(sig),
	}, nil
}

// OpenEnvelope verifies the signature, then decrypts. A bad signature fails
// before any decryption happens.
func OpenEnvelope(s Sealer, env Envelope) ([]byte, error) {
	ct, err := base64.StdEncoding.DecodeString(env.Data)
	if err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	sig, err := base64.StdEncoding.DecodeString(env.Signature)
	if err != nil {
		return nil, fmt.Errorf("decode signature: %w", err)
	}
	if err := s.Verify(ct, sig); err != nil {
		return nil, err
	}
	return s.Open(ct)
}

// Marshal renders the JSON form.
func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEnvelope parses the JSON form.
func DecodeEnvelope(b []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, fmt.Errorf("parse envelope: %w", err)
	}
	if env.Data == "" {
		return Envelope{}, fmt.Errorf("envelope missing data field")
	}
	return env, nil
}
