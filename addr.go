// SPDX-License-Identifier: Apache-2.0

package initcreds

import "net"

// HostAddress is a single client address to embed in an AS-REQ, expressed
// as the address-type/octets pair RFC 4120 §5.2.5 uses on the wire. The
// ASN.1 encoding of this pair is the codec's concern; here it is just data.
type HostAddress struct {
	AddrType int32
	Address  []byte
}

const (
	addrTypeIPv4 int32 = 2
	addrTypeIPv6 int32 = 24
)

// AddressPolicy selects how the request builder populates the AS-REQ's
// address list, per spec §4.2.
type AddressPolicy int

const (
	// AddressPolicyAuto queries the local OS interfaces unless the
	// caller's config sets noaddresses.
	AddressPolicyAuto AddressPolicy = iota
	// AddressPolicyNone omits addresses entirely.
	AddressPolicyNone
	// AddressPolicyExplicit uses a caller-supplied address list.
	AddressPolicyExplicit
)

// localAddresses enumerates non-loopback unicast addresses bound to this
// host's interfaces, used when AddressPolicyAuto applies and the config
// does not say noaddresses. Failure to enumerate addresses is not fatal:
// an empty list is returned and the request simply carries no addresses,
// matching krb5's tolerant behavior on hosts without usable interfaces.
func localAddresses() []HostAddress {
	ifaceAddrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil
	}

	var out []HostAddress
	for _, a := range ifaceAddrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			out = append(out, HostAddress{AddrType: addrTypeIPv4, Address: ip4})
		} else if ip16 := ipNet.IP.To16(); ip16 != nil {
			out = append(out, HostAddress{AddrType: addrTypeIPv6, Address: ip16})
		}
	}
	return out
}

// resolveAddresses implements spec §4.2's address policy: explicit list if
// given, else empty if noaddresses, else the local OS addresses.
func resolveAddresses(policy AddressPolicy, explicit []HostAddress, noaddresses bool) []HostAddress {
	switch policy {
	case AddressPolicyExplicit:
		return explicit
	case AddressPolicyNone:
		return nil
	default:
		if noaddresses {
			return nil
		}
		return localAddresses()
	}
}
