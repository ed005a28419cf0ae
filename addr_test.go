package initcreds

import "testing"

func TestResolveAddressesExplicitPolicy(t *testing.T) {
	a := NewAssert(t)

	explicit := []HostAddress{{AddrType: addrTypeIPv4, Address: []byte{192, 168, 1, 1}}}
	out := resolveAddresses(AddressPolicyExplicit, explicit, false)
	a.Equal(explicit, out)
}

func TestResolveAddressesNonePolicy(t *testing.T) {
	a := NewAssert(t)

	out := resolveAddresses(AddressPolicyNone, []HostAddress{{AddrType: addrTypeIPv4}}, false)
	a.Nil(out)
}

func TestResolveAddressesAutoPolicyHonorsNoAddresses(t *testing.T) {
	a := NewAssert(t)

	out := resolveAddresses(AddressPolicyAuto, nil, true)
	a.Nil(out)
}
