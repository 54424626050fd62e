package tuya

import (
	"strings"
	"testing"
)

func TestSignRequest_Deterministic(t *testing.T) {
	a := signRequest("client", "secret", "token", "1700000000000", "nonce", "GET", "/v1.0/devices/d1/status", nil)
	b := signRequest("client", "secret", "token", "1700000000000", "nonce", "GET", "/v1.0/devices/d1/status", nil)
	if a != b {
		t.Errorf("signRequest not deterministic: %s != %s", a, b)
	}
}

func TestSignRequest_Format(t *testing.T) {
	sign := signRequest("client", "secret", "", "1700000000000", "nonce", "GET", "/v1.0/token?grant_type=1", nil)

	if len(sign) != 64 {
		t.Errorf("signature length = %d, want 64", len(sign))
	}
	if sign != strings.ToUpper(sign) {
		t.Errorf("signature should be uppercase hex, got %s", sign)
	}
}

func TestSignRequest_InputSensitivity(t *testing.T) {
	base := signRequest("client", "secret", "token", "1700000000000", "nonce", "GET", "/v1.0/devices/d1/status", nil)

	variants := map[string]string{
		"different secret": signRequest("client", "other", "token", "1700000000000", "nonce", "GET", "/v1.0/devices/d1/status", nil),
		"different token":  signRequest("client", "secret", "", "1700000000000", "nonce", "GET", "/v1.0/devices/d1/status", nil),
		"different t":      signRequest("client", "secret", "token", "1700000000001", "nonce", "GET", "/v1.0/devices/d1/status", nil),
		"different nonce":  signRequest("client", "secret", "token", "1700000000000", "other", "GET", "/v1.0/devices/d1/status", nil),
		"different method": signRequest("client", "secret", "token", "1700000000000", "nonce", "POST", "/v1.0/devices/d1/status", nil),
		"different path":   signRequest("client", "secret", "token", "1700000000000", "nonce", "GET", "/v1.0/devices/d2/status", nil),
		"different body":   signRequest("client", "secret", "token", "1700000000000", "nonce", "GET", "/v1.0/devices/d1/status", []byte(`{}`)),
	}

	for name, sign := range variants {
		if sign == base {
			t.Errorf("%s produced identical signature", name)
		}
	}
}
