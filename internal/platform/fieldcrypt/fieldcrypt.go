// Package fieldcrypt encrypts sensitive comment fields at rest and masks
// platform user identifiers before they leave the service.
//
// Ciphertext is bound to a (user, platform) context: the AES key is derived
// per context, so an encrypted blob copied between tenants fails to decrypt
// instead of leaking another user's data.
package fieldcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

// MaskMarker terminates every masked identifier so callers can visually
// confirm a field was masked.
const MaskMarker = "***"

var (
	ErrEmptyKey  = errors.New("fieldcrypt: master key is required")
	ErrDecrypt   = errors.New("fieldcrypt: cannot decrypt field")
	ErrEmptyText = errors.New("fieldcrypt: plaintext is empty")
)

// Codec holds the master key. Construct once at process start and pass it to
// the handlers; there is no package-level instance.
type Codec struct {
	master []byte
}

func New(masterKey string) (*Codec, error) {
	if masterKey == "" {
		return nil, ErrEmptyKey
	}
	// Normalise whatever secret material was configured into 32 bytes.
	sum := sha256.Sum256([]byte(masterKey))
	return &Codec{master: sum[:]}, nil
}

// contextKey derives the AES-256 key for a (user, platform) pair.
func (c *Codec) contextKey(userID, platform string) ([]byte, error) {
	info := []byte("field:" + userID + ":" + platform)
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, c.master, nil, info), key); err != nil {
		return nil, err
	}
	return key, nil
}

// Encrypt seals plaintext under the (userID, platform) context key with
// AES-GCM and returns base64 nonce||ciphertext.
func (c *Codec) Encrypt(plaintext, userID, platform string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyText
	}
	key, err := c.contextKey(userID, platform)
	if err != nil {
		return "", err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt for the same context. Corrupt or foreign
// ciphertext yields ErrDecrypt; callers treat the field as unavailable rather
// than failing the whole request.
func (c *Codec) Decrypt(ciphertext, userID, platform string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrDecrypt
	}
	key, err := c.contextKey(userID, platform)
	if err != nil {
		return "", err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	if len(raw) < gcm.NonceSize() {
		return "", ErrDecrypt
	}
	nonce, sealed := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plain), nil
}

// Mask irreversibly obfuscates an identifier for display. No plaintext is
// revealed; the result always ends with MaskMarker.
func Mask(plaintext string) string {
	if plaintext == "" {
		return MaskMarker
	}
	return "••••" + MaskMarker
}

// HashContent fingerprints comment content for duplicate detection. The same
// (content, userID) pair always yields the same fingerprint; different users
// with identical content never collide.
func (c *Codec) HashContent(content, userID string) string {
	mac := hmac.New(sha256.New, c.master)
	mac.Write([]byte(userID))
	mac.Write([]byte{0})
	mac.Write([]byte(content))
	return hex.EncodeToString(mac.Sum(nil))
}
