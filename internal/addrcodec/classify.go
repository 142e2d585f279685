package addrcodec

import "strings"

// AddressType is a display label derived from an address's prefix.
type AddressType string

const (
	AddressLegacyP2PKH AddressType = "Legacy (P2PKH)"
	AddressLegacyP2SH  AddressType = "Legacy (P2SH)"
	AddressSegWit      AddressType = "SegWit (Bech32)"
	AddressTaproot     AddressType = "Taproot (P2TR)"
	AddressUnknown     AddressType = "Unknown"
)

// ClassifyAddressType labels a mainnet address by prefix alone. It is meant
// for display; a "1..." string is labeled P2PKH whether or not its checksum is
// valid.
func ClassifyAddressType(address string) AddressType {
	lower := strings.ToLower(address)

	switch {
	case strings.HasPrefix(address, "1"):
		return AddressLegacyP2PKH
	case strings.HasPrefix(address, "3"):
		return AddressLegacyP2SH
	case strings.HasPrefix(lower, "bc1q"):
		return AddressSegWit
	case strings.HasPrefix(lower, "bc1p"):
		return AddressTaproot
	default:
		return AddressUnknown
	}
}
