package initcreds

import "testing"

func TestParseName(t *testing.T) {
	a := NewAssert(t)

	a.Equal([]string{"host", "server.example.com"}, ParseName("host/server.example.com"))
	a.Equal([]string{"alice"}, ParseName("alice"))
}

func TestTGSPrincipalIsTGS(t *testing.T) {
	a := NewAssert(t)

	p := TGSPrincipal("EXAMPLE.COM")
	a.True(p.IsTGS())
	a.Equal("EXAMPLE.COM", p.Realm)
	a.Equal([]string{"krbtgt", "EXAMPLE.COM"}, p.Components)
}

func TestIsTGSRejectsLookalikes(t *testing.T) {
	a := NewAssert(t)

	a.False(NewPrincipal("EXAMPLE.COM", NameTypeSrvInst, "krbtgt").IsTGS())
	a.False(NewPrincipal("EXAMPLE.COM", NameTypePrincipal, "host", "svc").IsTGS())
}

func TestPrincipalEqual(t *testing.T) {
	a := NewAssert(t)

	p1 := NewPrincipal("EXAMPLE.COM", NameTypePrincipal, "alice")
	p2 := NewPrincipal("EXAMPLE.COM", NameTypePrincipal, "alice")
	p3 := NewPrincipal("OTHER.COM", NameTypePrincipal, "alice")

	a.True(p1.Equal(p2))
	a.False(p1.Equal(p3))
}

func TestPrincipalWithRealm(t *testing.T) {
	a := NewAssert(t)

	p := NewPrincipal("OLD.COM", NameTypeEnterprise, "alice")
	rewritten := p.WithRealm("NEW.COM")

	a.Equal("NEW.COM", rewritten.Realm)
	a.Equal(p.Components, rewritten.Components)
	a.Equal(p.NameType, rewritten.NameType)
	a.True(p.IsEnterprise())
}

func TestPrincipalString(t *testing.T) {
	a := NewAssert(t)

	p := NewPrincipal("EXAMPLE.COM", NameTypeSrvInst, "host", "server.example.com")
	a.Equal("host/server.example.com@EXAMPLE.COM", p.String())
}
