package tor

import (
	"encoding/base32"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Onion address constants.
const (
	// OnionV3Length is the length of a v3 onion address without the
	// ".onion" suffix: 56 base32 characters.
	OnionV3Length = 56

	// OnionV2Length is the length of a deprecated v2 onion address
	// without the ".onion" suffix. V2 was retired from the Tor network
	// in 2021; we detect these only to warn about them.
	OnionV2Length = 16

	// OnionSuffix is the common suffix for all onion addresses.
	OnionSuffix = ".onion"

	// onionV3Version is the version byte embedded in v3 addresses.
	onionV3Version = 0x03
)

// onionV3Pattern matches v3 onion hosts (56 base32 characters + .onion).
// Base32 uses a-z and 2-7.
var onionV3Pattern = regexp.MustCompile(`^[a-z2-7]{56}\.onion$`)

// onionV2Pattern matches deprecated v2 onion hosts.
var onionV2Pattern = regexp.MustCompile(`^[a-z2-7]{16}\.onion$`)

// checksumPrefix is defined by the Tor rendezvous specification for
// v3 address checksum calculation.
var checksumPrefix = []byte(".onion checksum")

// IsValidV3Address checks whether address is a valid v3 onion address,
// including checksum verification.
//
// Full checksum validation catches typos and corrupted addresses that
// pattern matching alone would accept; it is the same check Tor itself
// performs when connecting. The address must include the ".onion"
// suffix; case is ignored.
func IsValidV3Address(address string) bool {
	address = strings.ToLower(address)

	if !onionV3Pattern.MatchString(address) {
		return false
	}

	onionPart := strings.TrimSuffix(address, OnionSuffix)

	// The Tor spec uses standard RFC 4648 base32.
	decoded, err := base32.StdEncoding.DecodeString(strings.ToUpper(onionPart))
	if err != nil {
		return false
	}

	// 32 bytes ed25519 public key, 2 bytes checksum, 1 byte version.
	if len(decoded) != 35 {
		return false
	}

	pubkey := decoded[:32]
	checksum := decoded[32:34]
	version := decoded[34]

	if version != onionV3Version {
		return false
	}

	expected := computeV3Checksum(pubkey, version)
	return checksum[0] == expected[0] && checksum[1] == expected[1]
}

// computeV3Checksum computes the first two bytes of
// SHA3-256(".onion checksum" || pubkey || version).
func computeV3Checksum(pubkey []byte, version byte) []byte {
	data := make([]byte, 0, len(checksumPrefix)+len(pubkey)+1)
	data = append(data, checksumPrefix...)
	data = append(data, pubkey...)
	data = append(data, version)

	hash := sha3.Sum256(data)
	return hash[:2]
}

// IsV2Address checks whether address matches the deprecated v2 onion
// address format. V2 addresses no longer work on the Tor network; this
// exists so callers can warn about stale seed lists.
func IsV2Address(address string) bool {
	return onionV2Pattern.MatchString(strings.ToLower(address))
}

// ValidateSeedURL checks that a user-supplied seed URL points at an
// onion service with a plausible host.
//
// The URL must use an http or https scheme and its host must be either
// a checksum-valid v3 address or a v2 address (accepted with the
// expectation that the caller warns about deprecation). Returns
// ErrInvalidOnionAddress wrapped with the offending host otherwise.
func ValidateSeedURL(rawURL string) error {
	host := hostOf(rawURL)
	if host == "" {
		return fmt.Errorf("%w: %q has no onion host", ErrInvalidOnionAddress, rawURL)
	}
	if IsValidV3Address(host) || IsV2Address(host) {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidOnionAddress, host)
}

// hostOf extracts the host part of an http(s) URL without a full parse.
// Returns an empty string when the URL has no http(s) scheme.
func hostOf(rawURL string) string {
	rawURL = strings.ToLower(strings.TrimSpace(rawURL))

	rest, ok := strings.CutPrefix(rawURL, "http://")
	if !ok {
		rest, ok = strings.CutPrefix(rawURL, "https://")
	}
	if !ok {
		return ""
	}

	if idx := strings.IndexAny(rest, "/?#"); idx != -1 {
		rest = rest[:idx]
	}
	// Strip an explicit port.
	if idx := strings.LastIndex(rest, ":"); idx != -1 {
		rest = rest[:idx]
	}
	return rest
}
