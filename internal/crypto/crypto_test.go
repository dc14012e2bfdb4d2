package crypto_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/craftline/craftline/internal/crypto"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestNewEncryptorValidation(t *testing.T) {
	t.Parallel()

	if _, err := crypto.NewEncryptor(""); !errors.Is(err, crypto.ErrMissingKey) {
		t.Errorf("empty key: got %v, want ErrMissingKey", err)
	}
	if _, err := crypto.NewEncryptor("too-short"); !errors.Is(err, crypto.ErrInvalidKeySize) {
		t.Errorf("short key: got %v, want ErrInvalidKeySize", err)
	}
	if _, err := crypto.NewEncryptor(testKey); err != nil {
		t.Fatalf("valid key: unexpected error %v", err)
	}
}

func TestEncryptRoundTrip(t *testing.T) {
	t.Parallel()

	enc, err := crypto.NewEncryptor(testKey)
	if err != nil {
		t.Fatal(err)
	}

	plaintext := "IBAN DE89 3704 0044 0532 0130 00"
	ciphertext, err := enc.Encrypt(plaintext)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(ciphertext, "IBAN") {
		t.Error("ciphertext leaks plaintext")
	}

	got, err := enc.Decrypt(ciphertext)
	if err != nil {
		t.Fatal(err)
	}
	if got != plaintext {
		t.Errorf("round trip: got %q, want %q", got, plaintext)
	}
}

func TestEncryptNoncesDiffer(t *testing.T) {
	t.Parallel()

	enc, err := crypto.NewEncryptor(testKey)
	if err != nil {
		t.Fatal(err)
	}

	a, err := enc.Encrypt("same input")
	if err != nil {
		t.Fatal(err)
	}
	b, err := enc.Encrypt("same input")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two encryptions of the same input produced identical ciphertext")
	}
}

func TestDecryptRejectsGarbage(t *testing.T) {
	t.Parallel()

	enc, err := crypto.NewEncryptor(testKey)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := enc.Decrypt("not base64!!"); err == nil {
		t.Error("expected error for invalid encoding")
	}
	if _, err := enc.Decrypt("c2hvcnQ="); !errors.Is(err, crypto.ErrMalformedCipher) {
		t.Errorf("truncated input: got %v, want ErrMalformedCipher", err)
	}
}
