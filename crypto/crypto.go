// SPDX-License-Identifier: GPL-3.0-only

package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"laundrolink-server/commons"

	"github.com/alexedwards/argon2id"
)

func NewCrypto() *Crypto {
	return &Crypto{
		ArgonTime:    uint32(commons.GetEnvInt("ARGON2_TIME", 1)),
		ArgonMemory:  uint32(commons.GetEnvInt("ARGON2_MEMORY", 65536)),
		ArgonThreads: uint8(commons.GetEnvInt("ARGON2_THREADS", 2)),
		ArgonKeyLen:  uint32(commons.GetEnvInt("ARGON2_KEYLEN", 32)),
		ArgonSaltLen: uint32(commons.GetEnvInt("ARGON2_SALTLEN", 16)),
	}
}

func (c *Crypto) HashPassword(password string) (string, error) {
	commons.Logger.Debug("Hashing password")
	params := &argon2id.Params{
		Memory:      c.ArgonMemory,
		Iterations:  c.ArgonTime,
		Parallelism: c.ArgonThreads,
		SaltLength:  c.ArgonSaltLen,
		KeyLength:   c.ArgonKeyLen,
	}
	hash, err := argon2id.CreateHash(password, params)
	if err != nil {
		return "", err
	}
	commons.Logger.Debug("Password hashed")
	return hash, nil
}

// VerifyPassword reports whether password matches encodedHash. A malformed
// hash is a mismatch.
func (c *Crypto) VerifyPassword(password, encodedHash string) bool {
	commons.Logger.Debug("Verifying password")
	match, err := argon2id.ComparePasswordAndHash(password, encodedHash)
	if err != nil {
		commons.Logger.Debugf("Password hash could not be decoded: %v", err)
		return false
	}
	return match
}

func GenerateRandomString(prefix string, length int, encoding string) (string, error) {
	supported_encodings := []string{"hex", "base64", "base64url"}

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	switch encoding {
	case "hex":
		return prefix + hex.EncodeToString(b), nil
	case "base64":
		return prefix + base64.StdEncoding.EncodeToString(b), nil
	case "base64url":
		return prefix + base64.RawURLEncoding.EncodeToString(b), nil
	default:
		return "", fmt.Errorf("unsupported encoding: %s, Supported encodings are: %s", encoding, supported_encodings)
	}
}
