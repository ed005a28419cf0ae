package initcreds

import "testing"

func TestParseBoolVocabulary(t *testing.T) {
	a := NewAssert(t)

	for _, s := range []string{"y", "yes", "true", "t", "1", "on", "YES", " True "} {
		a.True(parseBool(s), "expected %q to parse true", s)
	}
	for _, s := range []string{"n", "no", "false", "0", "off", "", "maybe"} {
		a.False(parseBool(s), "expected %q to parse false", s)
	}
}

func TestDefaultConfigHasSafeTicketLifeAndOrdering(t *testing.T) {
	a := NewAssert(t)

	c := DefaultConfig()
	a.True(c.TicketLifetime > 0)
	a.Equal("17, 16, 15, 14", c.PreferredPreauthTypes)
	a.True(c.MaxRenewalHops > 0)
}

func TestWithRealmOverridesAppliesBooleanVocabularyAndOptions(t *testing.T) {
	a := NewAssert(t)

	client := NewPrincipal("EXAMPLE.COM", NameTypePrincipal, "alice")
	c := NewContext(client, nil, 0,
		WithConfig(Config{Forwardable: true, Canonicalize: false}),
		WithRealmOverrides(map[string]string{
			"forwardable":  "no",
			"canonicalize": "yes",
			"noaddresses":  "1",
		}),
	)

	a.False(c.cfg.Forwardable)
	a.True(c.cfg.Canonicalize)
	a.True(c.cfg.NoAddresses)
	a.True(c.params.Options.Has(OptCanonicalize))
	a.False(c.params.Options.Has(OptForwardable))
	a.True(c.params.NoAddresses)
}
