package security

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMaterial(t *testing.T) *CryptoMaterial {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	pri, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	return &CryptoMaterial{
		KeyID:  "test",
		AESKey: key,
		RSAPub: &pri.PublicKey,
		RSAPri: pri,
	}
}

func TestSealOpenRoundtrip(t *testing.T) {
	s, err := NewSealer(testMaterial(t))
	require.NoError(t, err)

	plain := []byte(`{"service":"weather","key":"bbe7e79a414f003442cd9662246f7be7"}`)
	ct, err := s.Seal(plain)
	require.NoError(t, err)
	assert.NotContains(t, string(ct), "weather")

	got, err := s.Open(ct)
	require.NoError(t, err)
	assert.Equal(t, plain, got)
}

func TestOpenRejectsTamperedCiphertext(t *testing.T) {
	s, err := NewSealer(testMaterial(t))
	require.NoError(t, err)

	ct, err := s.Seal([]byte("secret"))
	require.NoError(t, err)
	ct[len(ct)-1] ^= 0xff

	_, err = s.Open(ct)
	require.Error(t, err)
}

func TestOpenRejectsShortCiphertext(t *testing.T) {
	s, err := NewSealer(testMaterial(t))
	require.NoError(t, err)

	_, err = s.Open([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestSignVerify(t *testing.T) {
	s, err := NewSealer(testMaterial(t))
	require.NoError(t, err)

	payload := []byte("payload")
	sig, err := s.Sign(payload)
	require.NoError(t, err)
	require.NoError(t, s.Verify(payload, sig))

	require.Error(t, s.Verify([]byte("other payload"), sig))
}

func TestVerifyOnlySealerCannotSign(t *testing.T) {
	cm := testMaterial(t)
	cm.RSAPri = nil
	s, err := NewSealer(cm)
	require.NoError(t, err)

	_, err = s.Sign([]byte("x"))
	require.Error(t, err)
}

func TestEnvelopeRoundtrip(t *testing.T) {
	s, err := NewSealer(testMaterial(t))
	require.NoError(t, err)

	plain := []byte("services:\n  - service: weather\n    key: abc\n")
	env, err := SealEnvelope(s, plain)
	require.NoError(t, err)

	body, err := env.Marshal()
	require.NoError(t, err)

	decoded, err := DecodeEnvelope(body)
	require.NoError(t, err)

	got, err := OpenEnvelope(s, decoded)
	require.NoError(t, err)
	assert.Equal(t, plain, got)
}

func TestOpenEnvelopeRejectsBadSignature(t *testing.T) {
	s, err := NewSealer(testMaterial(t))
	require.NoError(t, err)

	env, err := SealEnvelope(s, []byte("payload"))
	require.NoError(t, err)
	env.Signature = env.Data // garbage signature

	_, err = OpenEnvelope(s, env)
	require.Error(t, err)
}

func TestEnvelopeCrossKeyFails(t *testing.T) {
	a, err := NewSealer(testMaterial(t))
	require.NoError(t, err)
	b, err := NewSealer(testMaterial(t))
	require.NoError(t, err)

	env, err := SealEnvelope(a, []byte("payload"))
	require.NoError(t, err)

	_, err = OpenEnvelope(b, env)
	require.Error(t, err, "envelope sealed under one key set must not open under another")
}

func TestNewSealerRejectsBadMaterial(t *testing.T) {
	cm := testMaterial(t)
	cm.AESKey = cm.AESKey[:16]
	_, err := NewSealer(cm)
	require.Error(t, err)

	cm = testMaterial(t)
	cm.RSAPub = nil
	_, err = NewSealer(cm)
	require.Error(t, err)
}
