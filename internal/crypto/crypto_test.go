package crypto

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"
)

var testDevice = DeviceInfo{
	UserAgent:           "Mozilla/5.0 (X11; Linux x86_64)",
	Language:            "zh-CN",
	HardwareConcurrency: 8,
	ScreenWidth:         1920,
	ScreenHeight:        1080,
	ColorDepth:          24,
	TimezoneOffset:      -480,
}

func TestFingerprintFormat(t *testing.T) {
	want := "Mozilla/5.0 (X11; Linux x86_64)|zh-CN|8|1920|1080|24|-480"
	if got := testDevice.Fingerprint(); got != want {
		t.Fatalf("got=%q want=%q", got, want)
	}
	if got := (DeviceInfo{}).Fingerprint(); got != "|||0|0|0|0" {
		t.Fatalf("zero device fingerprint=%q", got)
	}
}

func TestRoundTrip(t *testing.T) {
	svc := NewService(StaticSource{Device: testDevice})
	inputs := []string{"", "sk-test-1234567890", "密钥", "with\nnewline", string(make([]byte, 1024))}

	for _, in := range inputs {
		sealed, err := svc.Encrypt(in)
		if err != nil {
			t.Fatalf("encrypt %q: %v", in, err)
		}
		nonce, err := base64.StdEncoding.DecodeString(sealed.IV)
		if err != nil || len(nonce) != NonceSize {
			t.Fatalf("iv is not a %d-byte base64 nonce: %q", NonceSize, sealed.IV)
		}
		got, err := svc.Decrypt(sealed.Ciphertext, sealed.IV)
		if err != nil {
			t.Fatalf("decrypt: %v", err)
		}
		if got != in {
			t.Fatalf("got=%q want=%q", got, in)
		}
	}
}

func TestFreshNoncePerCall(t *testing.T) {
	svc := NewService(StaticSource{Device: testDevice})
	a, err := svc.Encrypt("same")
	if err != nil {
		t.Fatal(err)
	}
	b, err := svc.Encrypt("same")
	if err != nil {
		t.Fatal(err)
	}
	if a.IV == b.IV || a.Ciphertext == b.Ciphertext {
		t.Fatalf("nonce reused across calls")
	}
}

func TestDecryptFailsWhenFingerprintChanges(t *testing.T) {
	sealed, err := NewService(StaticSource{Device: testDevice}).Encrypt("sk-secret")
	if err != nil {
		t.Fatal(err)
	}

	mutations := map[string]func(d *DeviceInfo){
		"user agent":  func(d *DeviceInfo) { d.UserAgent += " Edg/120" },
		"language":    func(d *DeviceInfo) { d.Language = "en-US" },
		"cpu count":   func(d *DeviceInfo) { d.HardwareConcurrency = 4 },
		"width":       func(d *DeviceInfo) { d.ScreenWidth = 2560 },
		"height":      func(d *DeviceInfo) { d.ScreenHeight = 1440 },
		"color depth": func(d *DeviceInfo) { d.ColorDepth = 30 },
		"timezone":    func(d *DeviceInfo) { d.TimezoneOffset = 0 },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			d := testDevice
			mutate(&d)
			got, err := NewService(StaticSource{Device: d}).Decrypt(sealed.Ciphertext, sealed.IV)
			if !errors.Is(err, ErrDecrypt) {
				t.Fatalf("expected ErrDecrypt, got plaintext=%q err=%v", got, err)
			}
			if got != "" {
				t.Fatalf("returned plaintext on failure: %q", got)
			}
		})
	}
}

func TestDecryptRejectsTampering(t *testing.T) {
	svc := NewService(StaticSource{Device: testDevice})
	sealed, err := svc.Encrypt("sk-secret")
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := base64.StdEncoding.DecodeString(sealed.Ciphertext)
	raw[0] ^= 0xff
	tampered := base64.StdEncoding.EncodeToString(raw)

	if _, err := svc.Decrypt(tampered, sealed.IV); !errors.Is(err, ErrDecrypt) {
		t.Fatalf("expected ErrDecrypt for tampered ciphertext, got %v", err)
	}
	if _, err := svc.Decrypt("%%%", sealed.IV); !errors.Is(err, ErrDecrypt) {
		t.Fatalf("expected ErrDecrypt for bad base64, got %v", err)
	}
	if _, err := svc.Decrypt(sealed.Ciphertext, base64.StdEncoding.EncodeToString([]byte("short"))); !errors.Is(err, ErrDecrypt) {
		t.Fatalf("expected ErrDecrypt for short iv, got %v", err)
	}
}

type failingSource struct{}

func (failingSource) Fingerprint() (string, error) { return "", errors.New("no device") }

func TestEncryptFingerprintError(t *testing.T) {
	if _, err := NewService(failingSource{}).Encrypt("x"); !errors.Is(err, ErrEncrypt) {
		t.Fatalf("expected ErrEncrypt, got %v", err)
	}
}

func TestHostSourceOverrides(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.FixedZone("CST", 8*3600))
	src := HostSource{
		Overrides: Overrides{UserAgent: "ua", Language: "zh-CN", HardwareConcurrency: intPtr(2), ScreenWidth: intPtr(1280), ScreenHeight: intPtr(720), ColorDepth: intPtr(24)},
		Now:       func() time.Time { return fixed },
	}
	got, err := src.Fingerprint()
	if err != nil {
		t.Fatal(err)
	}
	want := "ua|zh-CN|2|1280|720|24|-480"
	if got != want {
		t.Fatalf("got=%q want=%q", got, want)
	}
}

func TestHostSourceForcesZero(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.FixedZone("CST", 8*3600))
	src := HostSource{
		Overrides: Overrides{UserAgent: "ua", Language: "en-US", HardwareConcurrency: intPtr(0), TimezoneOffset: intPtr(0)},
		Now:       func() time.Time { return fixed },
	}
	got, err := src.Fingerprint()
	if err != nil {
		t.Fatal(err)
	}
	want := "ua|en-US|0|0|0|0|0"
	if got != want {
		t.Fatalf("got=%q want=%q", got, want)
	}
}

func TestFingerprintRendersZeroFields(t *testing.T) {
	got := DeviceInfo{UserAgent: "ua"}.Fingerprint()
	want := "ua||0|0|0|0|0"
	if got != want {
		t.Fatalf("got=%q want=%q", got, want)
	}
}

func intPtr(n int) *int { return &n }

func TestDeriveKeyLength(t *testing.T) {
	if n := len(DeriveKey("anything")); n != 32 {
		t.Fatalf("key length=%d want=32", n)
	}
}
