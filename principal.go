// SPDX-License-Identifier: Apache-2.0

package initcreds

import "strings"

// NameType mirrors the small subset of RFC 4120 §6.2 name-type values this
// package needs to reason about; the rest pass through opaquely.
type NameType int32

const (
	NameTypeUnknown    NameType = 0
	NameTypePrincipal  NameType = 1
	NameTypeSrvInst    NameType = 2
	NameTypeEnterprise NameType = 10
)

// Principal is the tuple of (realm, ordered name components, name-type)
// from spec §3. Equality is component-wise.
type Principal struct {
	Realm      string
	Components []string
	NameType   NameType
}

// NewPrincipal builds a Principal from an already-split component list.
func NewPrincipal(realm string, nameType NameType, components ...string) Principal {
	cs := make([]string, len(components))
	copy(cs, components)
	return Principal{Realm: realm, Components: cs, NameType: nameType}
}

// ParseName splits a "service/instance" or "name" string into components,
// leaving the realm untouched. It does not accept a trailing "@realm"; the
// realm is always supplied separately by the caller, per spec §4.2's
// "rewrite its realm to match the client realm" requirement.
func ParseName(name string) []string {
	return strings.Split(name, "/")
}

// TGSPrincipal builds the canonical krbtgt/REALM@REALM service principal.
func TGSPrincipal(realm string) Principal {
	return NewPrincipal(realm, NameTypeSrvInst, "krbtgt", realm)
}

// IsTGS reports whether p has exactly two name components whose first is
// the literal "krbtgt", per spec §3's definition of a TGS principal.
func (p Principal) IsTGS() bool {
	return len(p.Components) == 2 && p.Components[0] == "krbtgt"
}

// IsEnterprise reports whether p carries the enterprise name-type, which
// implicitly enables realm canonicalization per spec §3.
func (p Principal) IsEnterprise() bool {
	return p.NameType == NameTypeEnterprise
}

// Equal reports component-wise, realm-inclusive equality.
func (p Principal) Equal(o Principal) bool {
	if p.Realm != o.Realm || len(p.Components) != len(o.Components) {
		return false
	}
	for i := range p.Components {
		if p.Components[i] != o.Components[i] {
			return false
		}
	}
	return true
}

// WithRealm returns a copy of p with its realm replaced, used when a
// referral or client-realm default rewrites a principal in place. The
// name-type and components are preserved.
func (p Principal) WithRealm(realm string) Principal {
	cs := make([]string, len(p.Components))
	copy(cs, p.Components)
	return Principal{Realm: realm, Components: cs, NameType: p.NameType}
}

// String renders "comp1/comp2@REALM" for diagnostics.
func (p Principal) String() string {
	return strings.Join(p.Components, "/") + "@" + p.Realm
}
