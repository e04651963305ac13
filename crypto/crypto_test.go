// SPDX-License-Identifier: GPL-3.0-only

package crypto

import (
	"encoding/base64"
	"strings"
	"testing"
)

func newTestCrypto() *Crypto {
	return &Crypto{
		ArgonTime:    1,
		ArgonMemory:  1024,
		ArgonThreads: 1,
		ArgonKeyLen:  32,
		ArgonSaltLen: 16,
	}
}

func TestNewCryptoReadsEnv(t *testing.T) {
	t.Setenv("ARGON2_TIME", "3")
	t.Setenv("ARGON2_MEMORY", "2048")
	t.Setenv("ARGON2_THREADS", "4")
	c := NewCrypto()

	if c.ArgonTime != 3 || c.ArgonMemory != 2048 || c.ArgonThreads != 4 {
		t.Errorf("Unexpected params: %+v", c)
	}
	if c.ArgonKeyLen != 32 || c.ArgonSaltLen != 16 {
		t.Errorf("Expected default key and salt length, got %+v", c)
	}
}

func TestHashPassword(t *testing.T) {
	crypto := newTestCrypto()
	password := "testpassword123"

	hash, err := crypto.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if hash == "" {
		t.Error("Hash should not be empty")
	}
	if strings.Contains(hash, password) {
		t.Error("Hash should not contain the password")
	}

	hash2, err := crypto.HashPassword(password)
	if err != nil {
		t.Fatalf("Second HashPassword failed: %v", err)
	}

	if hash == hash2 {
		t.Error("Two hashes of same password should be different (due to salt)")
	}
}

func TestVerifyPassword(t *testing.T) {
	crypto := newTestCrypto()
	password := "testpassword123"

	hash, err := crypto.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if !crypto.VerifyPassword(password, hash) {
		t.Error("VerifyPassword failed for correct password")
	}

	if crypto.VerifyPassword("wrongpassword", hash) {
		t.Error("VerifyPassword should fail for wrong password")
	}

	if crypto.VerifyPassword(password, "invalid-hash") {
		t.Error("VerifyPassword should fail for invalid hash")
	}

	if crypto.VerifyPassword(password, "") {
		t.Error("VerifyPassword should fail for empty hash")
	}
}

func TestGenerateRandomString(t *testing.T) {
	s, err := GenerateRandomString("prt_", 16, "hex")
	if err != nil {
		t.Fatalf("GenerateRandomString failed: %v", err)
	}
	if !strings.HasPrefix(s, "prt_") || len(s) != 4+32 {
		t.Errorf("Unexpected hex string: %s", s)
	}

	u, err := GenerateRandomString("", 32, "base64url")
	if err != nil {
		t.Fatalf("GenerateRandomString failed: %v", err)
	}
	if strings.ContainsAny(u, "+/=") {
		t.Errorf("base64url output should be URL safe, got %s", u)
	}
	decoded, err := base64.RawURLEncoding.DecodeString(u)
	if err != nil || len(decoded) != 32 {
		t.Errorf("Expected 32 decoded bytes, got %d (%v)", len(decoded), err)
	}

	other, _ := GenerateRandomString("", 32, "base64url")
	if other == u {
		t.Error("Two random strings should differ")
	}

	if _, err := GenerateRandomString("", 8, "base32"); err == nil {
		t.Error("GenerateRandomString should fail for unsupported encoding")
	}
}
