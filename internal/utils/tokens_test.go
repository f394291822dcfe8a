package utils

import (
	"testing"
	"time"
)

func TestConfirmationTokenRoundTrip(t *testing.T) {
	token, err := NewConfirmationToken("secret", 42, time.Hour)
	if err != nil {
		t.Fatalf("NewConfirmationToken: %v", err)
	}
	if !VerifyConfirmationToken("secret", token, 42) {
		t.Error("valid token rejected")
	}
}

func TestConfirmationTokenRejections(t *testing.T) {
	token, err := NewConfirmationToken("secret", 42, time.Hour)
	if err != nil {
		t.Fatalf("NewConfirmationToken: %v", err)
	}

	if VerifyConfirmationToken("other-secret", token, 42) {
		t.Error("token accepted with wrong secret")
	}
	if VerifyConfirmationToken("secret", token, 43) {
		t.Error("token accepted for wrong user")
	}
	if VerifyConfirmationToken("secret", token+"x", 42) {
		t.Error("tampered token accepted")
	}

	expired, err := NewConfirmationToken("secret", 42, -time.Minute)
	if err != nil {
		t.Fatalf("NewConfirmationToken: %v", err)
	}
	if VerifyConfirmationToken("secret", expired, 42) {
		t.Error("expired token accepted")
	}
}

func TestEncodeDecodeUserID(t *testing.T) {
	for _, id := range []uint{1, 42, 123456} {
		decoded, err := DecodeUserID(EncodeUserID(id))
		if err != nil {
			t.Fatalf("DecodeUserID(EncodeUserID(%d)): %v", id, err)
		}
		if decoded != id {
			t.Errorf("round trip %d -> %d", id, decoded)
		}
	}

	if _, err := DecodeUserID("!!! not base64 !!!"); err == nil {
		t.Error("expected error for malformed encoding")
	}
	if _, err := DecodeUserID(EncodeUserID(1) + "Zm9v"); err == nil {
		t.Error("expected error for non-numeric payload")
	}
}
