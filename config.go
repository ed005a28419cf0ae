// SPDX-License-Identifier: Apache-2.0

package initcreds

import (
	"strconv"
	"strings"
	"time"

	krb5config "github.com/jcmturner/gokrb5/v8/config"
)

// Config is the subset of a loaded krb5.conf this package consults,
// recognized under [libdefaults] with per-realm override, per spec §6.
type Config struct {
	Forwardable           bool
	Proxiable             bool
	Canonicalize          bool
	TicketLifetime        time.Duration
	RenewLifetime         time.Duration
	NoAddresses           bool
	PreferredPreauthTypes string
	SyncKDCTime           bool
	ClockSkew             time.Duration
	MaxRenewalHops        int
}

// DefaultConfig returns the library defaults used when no profile is
// loaded: a 10 hour ticket life, renewal disabled, addresses enabled, the
// PKINIT-first pre-auth ordering of spec §4.3, and a 5 minute clock skew.
func DefaultConfig() Config {
	return Config{
		TicketLifetime:        10 * time.Hour,
		PreferredPreauthTypes: "17, 16, 15, 14",
		ClockSkew:             5 * time.Minute,
		MaxRenewalHops:        5,
	}
}

// LoadConfig reads a krb5.conf via gokrb5's profile parser and projects
// the [libdefaults] keys this package recognizes into a Config. The realm
// argument is not used: no per-realm override is read from the profile
// (see [WithRealmOverrides] for applying one on a Context).
func LoadConfig(path, realm string) (Config, error) {
	c := DefaultConfig()

	kc, err := krb5config.Load(path)
	if err != nil {
		return c, newError(KindConfig, "loading krb5 profile: %v", err)
	}

	ld := kc.LibDefaults
	c.Forwardable = ld.Forwardable
	c.Proxiable = ld.Proxiable
	c.Canonicalize = ld.Canonicalize
	c.NoAddresses = ld.NoAddresses
	c.TicketLifetime = ld.TicketLifetime
	c.RenewLifetime = ld.RenewLifetime
	c.ClockSkew = ld.Clockskew

	if len(ld.PreferredPreauthTypes) > 0 {
		strs := make([]string, len(ld.PreferredPreauthTypes))
		for i, v := range ld.PreferredPreauthTypes {
			strs[i] = strconv.Itoa(v)
		}
		c.PreferredPreauthTypes = strings.Join(strs, ", ")
	}

	// gokrb5's profile parser does not model per-realm [libdefaults]
	// overrides distinctly from the global section; realm-specific KDC
	// addressing lives in [realms] and is the transport collaborator's
	// concern, not this package's.
	_ = realm

	return c, nil
}

// parseBool implements spec §6's boolean vocabulary: y|yes|true|t|1|on and
// n|no|false|nil|0|off, case-insensitively; anything else defaults false.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true", "t", "1", "on":
		return true
	default:
		return false
	}
}
