package fieldcrypt

import (
	"strings"
	"testing"
)

func newCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := New("unit-test-master-key")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return c
}

func TestNew_EmptyKey(t *testing.T) {
	if _, err := New(""); err != ErrEmptyKey {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	c := newCodec(t)
	cases := []struct{ plain, user, platform string }{
		{"ig-user-29381", "user-1", "instagram"},
		{"tt_9f2", "user-1", "tiktok"},
		{"a", "user-2", "threads"},
		{"unicode: héllo wörld 💬", "user-3", "facebook"},
	}
	for _, tc := range cases {
		ct, err := c.Encrypt(tc.plain, tc.user, tc.platform)
		if err != nil {
			t.Fatalf("encrypt %q: %v", tc.plain, err)
		}
		if ct == tc.plain {
			t.Fatal("ciphertext equals plaintext")
		}
		got, err := c.Decrypt(ct, tc.user, tc.platform)
		if err != nil {
			t.Fatalf("decrypt: %v", err)
		}
		if got != tc.plain {
			t.Fatalf("round trip mismatch: got %q want %q", got, tc.plain)
		}
	}
}

func TestDecrypt_ForeignContextFails(t *testing.T) {
	c := newCodec(t)
	ct, err := c.Encrypt("ig-user-29381", "user-1", "instagram")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	// Same blob under a different user or platform must not decrypt.
	if _, err := c.Decrypt(ct, "user-2", "instagram"); err != ErrDecrypt {
		t.Fatalf("expected ErrDecrypt for foreign user, got %v", err)
	}
	if _, err := c.Decrypt(ct, "user-1", "tiktok"); err != ErrDecrypt {
		t.Fatalf("expected ErrDecrypt for foreign platform, got %v", err)
	}
}

func TestDecrypt_Corrupt(t *testing.T) {
	c := newCodec(t)
	if _, err := c.Decrypt("not base64 !!!", "user-1", "instagram"); err != ErrDecrypt {
		t.Fatalf("expected ErrDecrypt, got %v", err)
	}
	if _, err := c.Decrypt("c2hvcnQ", "user-1", "instagram"); err != ErrDecrypt {
		t.Fatalf("expected ErrDecrypt for truncated blob, got %v", err)
	}
}

func TestMask(t *testing.T) {
	for _, in := range []string{"", "ig-user-29381", "x"} {
		out := Mask(in)
		if !strings.HasSuffix(out, MaskMarker) {
			t.Fatalf("mask of %q does not end with marker: %q", in, out)
		}
		if in != "" && out == in {
			t.Fatalf("mask of %q equals plaintext", in)
		}
		if in != "" && strings.Contains(out, in) {
			t.Fatalf("mask of %q reveals plaintext: %q", in, out)
		}
	}
}

func TestHashContent_Deterministic(t *testing.T) {
	c := newCodec(t)
	h1 := c.HashContent("great post!", "user-1")
	h2 := c.HashContent("great post!", "user-1")
	if h1 != h2 {
		t.Fatal("fingerprint is not deterministic")
	}
	if h1 == c.HashContent("great post!", "user-2") {
		t.Fatal("fingerprints collide across users")
	}
	if h1 == c.HashContent("great post", "user-1") {
		t.Fatal("fingerprints collide across content")
	}
}
