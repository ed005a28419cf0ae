// SPDX-License-Identifier: Apache-2.0

package initcreds

import (
	"crypto/rand"
	"time"
)

const maxLoops = 16

// Context is the resumable state machine behind the step API of spec
// §4.9, and the shared state the all-in-one [Loop] driver also threads
// through its iterations (spec §3's NegotiationContext). A Context is not
// safe for concurrent use by more than one goroutine; independent
// contexts do not interact.
type Context struct {
	cfg      Config
	prompter Prompter
	getAsKey GetAsKeyFunc

	params RequestParams
	req    *KdcRequest

	prevEncoded []byte
	lastError   *KrbError
	lastReply   *KdcReply

	key KeyMaterial

	loopCount     int
	referralCount int
	requestTime   time.Time

	fastState any

	complete bool
	cred     Credential
	randGen  func([]byte) (int, error)
	cache    CredentialCache
}

// NewContext implements spec §4.9's init: it does not send anything yet.
// The first call to [Context.Step] builds and returns the first AS-REQ.
func NewContext(client Principal, prompter Prompter, startOffset time.Duration, opts ...Option) *Context {
	c := &Context{
		cfg:      DefaultConfig(),
		prompter: prompter,
		randGen:  rand.Read,
		params: RequestParams{
			Client:      client,
			StartOffset: startOffset,
			TicketLife:  10 * time.Hour,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Option configures a [Context] or a [Loop] call.
type Option func(*Context)

// WithConfig supplies a loaded profile's [libdefaults] settings.
func WithConfig(cfg Config) Option {
	return func(c *Context) {
		c.cfg = cfg
		c.params.Options = optionsFromConfig(cfg)
		c.params.TicketLife = cfg.TicketLifetime
		c.params.RenewLife = cfg.RenewLifetime
		c.params.NoAddresses = cfg.NoAddresses
	}
}

// WithRealmOverrides layers a per-realm [libdefaults] override on top of
// whatever [WithConfig] already set, per spec §6's "Configuration
// recognized ... with per-realm override". gokrb5's profile parser
// exposes only the global [libdefaults] section as typed fields (see
// config.go's LoadConfig), so a caller that has already resolved a
// realm-specific stanza itself (e.g. from a [realms] subsection or an
// environment override) supplies the raw key/value pairs here; boolean
// keys are interpreted with spec §6's y|yes|true|t|1|on /
// n|no|false|nil|0|off vocabulary via [parseBool]. Unrecognized keys are
// ignored. Apply after [WithConfig] so the override wins.
func WithRealmOverrides(kv map[string]string) Option {
	return func(c *Context) {
		if v, ok := kv["forwardable"]; ok {
			c.cfg.Forwardable = parseBool(v)
		}
		if v, ok := kv["proxiable"]; ok {
			c.cfg.Proxiable = parseBool(v)
		}
		if v, ok := kv["canonicalize"]; ok {
			c.cfg.Canonicalize = parseBool(v)
		}
		if v, ok := kv["noaddresses"]; ok {
			c.cfg.NoAddresses = parseBool(v)
		}
		if v, ok := kv["preferred_preauth_types"]; ok {
			c.cfg.PreferredPreauthTypes = v
		}
		c.params.Options = optionsFromConfig(c.cfg)
		c.params.NoAddresses = c.cfg.NoAddresses
	}
}

// WithServer overrides the default krbtgt/<realm>@<realm> target.
func WithServer(server Principal) Option {
	return func(c *Context) { c.params.Server = server }
}

// WithEnctypes overrides the default client enctype preference order.
func WithEnctypes(etypes []int32) Option {
	return func(c *Context) { c.params.EType = etypes }
}

// WithAddresses supplies an explicit address list, per spec §4.2.
func WithAddresses(addrs []HostAddress) Option {
	return func(c *Context) {
		c.params.AddrPolicy = AddressPolicyExplicit
		c.params.Addresses = addrs
	}
}

// WithPreauthHints seeds the first iteration's padata candidates from a
// cached hint (e.g. a credential cache's stashed etype-info), avoiding an
// extra PREAUTH_REQUIRED round trip when the caller already knows it.
func WithPreauthHints(hints []PAData) Option {
	return func(c *Context) { c.params.PAData = hints }
}

// WithGetAsKey supplies the capability spec §4.9 calls `get_as_key`,
// used when decryption with the derived key fails and a fresh key must be
// obtained (e.g. by re-prompting for a passphrase).
func WithGetAsKey(f GetAsKeyFunc) Option {
	return func(c *Context) { c.getAsKey = f }
}

// WithRandom overrides the nonce source; primarily for deterministic tests.
func WithRandom(f func([]byte) (int, error)) Option {
	return func(c *Context) { c.randGen = f }
}

// WithCache configures the stasher to store the acquired [Credential] in
// cache once the negotiation completes, per spec §4.7's "if a cache is
// configured, store the credential; otherwise the caller reads it back".
func WithCache(cache CredentialCache) Option {
	return func(c *Context) { c.cache = cache }
}

func optionsFromConfig(cfg Config) KdcOptions {
	var o KdcOptions
	if cfg.Forwardable {
		o |= OptForwardable
	}
	if cfg.Proxiable {
		o |= OptProxiable
	}
	if cfg.Canonicalize {
		o |= OptCanonicalize
	}
	if cfg.RenewLifetime > 0 {
		o |= OptRenewable
	}
	return o
}

// StepComplete is set in the flags word [Context.Step] returns once the
// credential is ready, per spec §6's wire contract.
const StepComplete uint32 = 1

// Free zeroizes the AS key, session key, and any password-derived buffers
// still held by the context, per spec §3's NegotiationContext lifecycle
// and §5's resource-acquisition rules. Idempotent.
func (c *Context) Free() {
	if c.key.ASKey != nil {
		c.key.ASKey.Zero()
		c.key.ASKey = nil
	}
	c.cred.Zero()
	c.prevEncoded = nil
	c.lastReply = nil
}

// GetCreds returns a copy of the acquired credential, per spec §4.9. It is
// only meaningful once [Context.Step] has set [StepComplete].
func (c *Context) GetCreds() (Credential, bool) {
	return c.cred, c.complete
}

// GetError returns a deep copy of the most recent KRB-ERROR retained on
// the context, per spec §7's "retrievable via get_error ... a deep copy".
func (c *Context) GetError() (KrbError, bool) {
	if c.lastError == nil {
		return KrbError{}, false
	}
	ke := *c.lastError
	ke.EData = append([]byte(nil), c.lastError.EData...)
	if c.lastError.Client != nil {
		cl := *c.lastError.Client
		ke.Client = &cl
	}
	return ke, true
}
