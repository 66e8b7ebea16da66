package tor

import (
	"errors"
	"testing"
)

// validV3 is the address of a well-known onion service (DuckDuckGo),
// used as a checksum-valid fixture.
const validV3 = "duckduckgogg42xjoc72x3sjasowoarfbgcmvfimaftt6twagswzczad.onion"

// TestIsValidV3Address tests v3 onion address validation.
func TestIsValidV3Address(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		address string
		want    bool
	}{
		{"valid v3 address", validV3, true},
		{"valid v3 uppercase", "DUCKDUCKGOGG42XJOC72X3SJASOWOARFBGCMVFIMAFTT6TWAGSWZCZAD.ONION", true},
		{"corrupted checksum", "duckduckgogg42xjoc72x3sjasowoarfbgcmvfimaftt6twagswzczae.onion", false},
		{"too short", "abcdefghijklmnop.onion", false},
		{"wrong charset", "duckduckgogg42xjoc72x3sjasowoarfbgcmvfimaftt6twagswzcza1.onion", false},
		{"no suffix", "duckduckgogg42xjoc72x3sjasowoarfbgcmvfimaftt6twagswzczad", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsValidV3Address(tt.address); got != tt.want {
				t.Errorf("IsValidV3Address(%q) = %v, want %v", tt.address, got, tt.want)
			}
		})
	}
}

// TestIsV2Address tests deprecated v2 address detection.
func TestIsV2Address(t *testing.T) {
	t.Parallel()

	if !IsV2Address("abcdefghijklmnop.onion") {
		t.Error("expected 16-char base32 host to be detected as v2")
	}
	if IsV2Address(validV3) {
		t.Error("v3 address detected as v2")
	}
	if IsV2Address("short.onion") {
		t.Error("short host detected as v2")
	}
}

// TestValidateSeedURL tests seed URL admission.
func TestValidateSeedURL(t *testing.T) {
	t.Parallel()

	t.Run("valid v3 seed", func(t *testing.T) {
		t.Parallel()
		if err := ValidateSeedURL("http://" + validV3 + "/index.html"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("v2 seed is accepted", func(t *testing.T) {
		t.Parallel()
		if err := ValidateSeedURL("http://abcdefghijklmnop.onion/"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("https with port", func(t *testing.T) {
		t.Parallel()
		if err := ValidateSeedURL("https://" + validV3 + ":8443/"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("non-onion host", func(t *testing.T) {
		t.Parallel()
		err := ValidateSeedURL("http://example.com/")
		if !errors.Is(err, ErrInvalidOnionAddress) {
			t.Errorf("expected ErrInvalidOnionAddress, got %v", err)
		}
	})

	t.Run("missing scheme", func(t *testing.T) {
		t.Parallel()
		err := ValidateSeedURL(validV3)
		if !errors.Is(err, ErrInvalidOnionAddress) {
			t.Errorf("expected ErrInvalidOnionAddress, got %v", err)
		}
	})
}
