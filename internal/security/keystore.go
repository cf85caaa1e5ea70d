package security

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Drayarch/genlayer-intelligent-contracts/configs"
)

// CryptoMaterial holds the sealing keys loaded once at startup: an AES-256
// key for payload encryption plus an RSA pair for envelope signatures. The
// RSA private key is optional; without it a process can open and verify
// envelopes but not produce them.
type CryptoMaterial struct {
	KeyID  string
	AESKey []byte
	RSAPub *rsa.PublicKey
	RSAPri *rsa.PrivateKey
}

// LoadCryptoMaterial decodes the configured key material. PEM values may be
// given inline or as a path to a PEM file (detected by the BEGIN marker).
func LoadCryptoMaterial(c configs.CryptoConfig) (CryptoMaterial, error) {
	if c.AES256B64 == "" || c.RSAPubPEM == "" {
		return CryptoMaterial{}, errors.New("missing aes256_b64url or rsa_pub_pem")
	}

	key, err := base64.RawURLEncoding.DecodeString(c.AES256B64)
	if err != nil {
		return CryptoMaterial{}, fmt.Errorf("decode aes256_b64url: %w", err)
	}
	if len(key) != 32 {
		return CryptoMaterial{}, fmt.Errorf("aes key must be 32 bytes, got %d", len(key))
	}

	pubPEM, err := pemBytes(c.RSAPubPEM)
	if err != nil {
		return CryptoMaterial{}, fmt.Errorf("rsa pub pem: %w", err)
	}
	pub, err := parseRSAPublicKey(pubPEM)
	if err != nil {
		return CryptoMaterial{}, fmt.Errorf("parse rsa pub pem: %w", err)
	}

	var pri *rsa.PrivateKey
	if c.RSAPriPEM != "" {
		priPEM, err := pemBytes(c.RSAPriPEM)
		if err != nil {
			return CryptoMaterial{}, fmt.Errorf("rsa pri pem: %w", err)
		}
		pri, err = parseRSAPrivateKey(priPEM)
		if err != nil {
			return CryptoMaterial{}, fmt.Errorf("parse rsa pri pem: %w", err)
		}
	}

	id := c.KeyID
	if id == "" {
		id = "v1"
	}
	return CryptoMaterial{
		KeyID:  id,
		AESKey: key,
		RSAPub: pub,
		RSAPri: pri,
	}, nil
}

// pemBytes returns v itself when it already looks like PEM, otherwise treats
// v as a file path.
func pemBytes(v string) ([]byte, error) {
	if strings.Contains(v, "-----BEGIN") {
		return []byte(v), nil
	}
	b, err := os.ReadFile(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func parseRSAPublicKey(pemData []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, errors.New("no pem block")
	}
	pubAny, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	pub, ok := pubAny.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("not rsa public key")
	}
	return pub, nil
}

func parseRSAPrivateKey(pemData []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, errors.New("no pem block in RSA private key")
	}

	// try PKCS#8 first
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err == nil {
		if rsaKey, ok := key.(*rsa.PrivateKey); ok {
			return rsaKey, nil
		}
		return nil, errors.New("not an RSA private key in PKCS#8")
	}

	// fallback to PKCS#1
	rsaKey, err2 := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err2 != nil {
		return nil, fmt.Errorf("parse RSA private key failed (PKCS#8: %v, PKCS#1: %v)", err, err2)
	}
	return rsaKey, nil
}
