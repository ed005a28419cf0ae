// SPDX-License-Identifier: Apache-2.0

package initcreds

import "time"

// KdcOptions is the AS-REQ kdc-options bitmask from spec §3.
type KdcOptions uint32

const (
	OptForwardable KdcOptions = 1 << iota
	OptProxiable
	OptAllowPostdate
	OptPostdated
	OptRenewable
	OptRenewableOK
	OptCanonicalize
)

// Has reports whether all bits in mask are set in o.
func (o KdcOptions) Has(mask KdcOptions) bool { return o&mask == mask }

// PAData is a single pre-authentication element attached to a request or
// returned in a KRB-ERROR's e-data / an AS-REP's padata, per spec §3.
type PAData struct {
	Type  int32
	Value []byte
}

// KdcRequest is the AS-REQ body described in spec §3. Fields not yet
// populated on the first iteration are filled in by [buildRequest]; fields
// mutated between rounds (Nonce, PAData) are updated by the loop/step
// drivers directly.
type KdcRequest struct {
	Client  Principal
	Server  Principal
	Options KdcOptions

	From      time.Time
	Till      time.Time
	RTime     time.Time
	Nonce     uint32
	EType     []int32
	Addresses []HostAddress
	PAData    []PAData
}

// RequestParams are the caller-supplied inputs to [buildRequest], per
// spec §4.2.
type RequestParams struct {
	Client Principal
	// Server is the target service principal; if its Components are nil
	// the TGS principal krbtgt/<clientRealm>@<clientRealm> is synthesized.
	Server Principal

	Options     KdcOptions
	EType       []int32
	AddrPolicy  AddressPolicy
	Addresses   []HostAddress
	PAData      []PAData
	StartOffset time.Duration
	TicketLife  time.Duration
	RenewLife   time.Duration
	NoAddresses bool
}

// defaultEnctypes is the set of enctypes this package knows how to ask for
// when the caller gives none, in client-preference order. A caller's list
// may reorder this set but never introduce an enctype not present in it,
// per spec §4.2's "never invented" rule.
var defaultEnctypes = []int32{18, 17, 23, 16} // aes256-cts, aes128-cts, rc4-hmac, des3-cbc-sha1

// orderEnctypes promotes caller-preferred enctypes to the front, in the
// caller's order, while preserving the remainder of defaultEnctypes in its
// original relative order. Enctypes the caller lists that are not in
// defaultEnctypes are dropped.
func orderEnctypes(caller []int32) []int32 {
	if len(caller) == 0 {
		out := make([]int32, len(defaultEnctypes))
		copy(out, defaultEnctypes)
		return out
	}

	known := make(map[int32]bool, len(defaultEnctypes))
	for _, e := range defaultEnctypes {
		known[e] = true
	}

	seen := make(map[int32]bool, len(caller))
	out := make([]int32, 0, len(defaultEnctypes))
	for _, e := range caller {
		if known[e] && !seen[e] {
			out = append(out, e)
			seen[e] = true
		}
	}
	for _, e := range defaultEnctypes {
		if !seen[e] {
			out = append(out, e)
			seen[e] = true
		}
	}
	return out
}

// buildRequest assembles a KdcRequest from the caller's parameters, per
// spec §4.2. now is the wall-clock time to use for the first-iteration
// request_time; subsequent iterations reuse the previously built request
// and only rewrite Nonce/PAData/Server (the latter only after a referral).
func buildRequest(p RequestParams, now time.Time) (*KdcRequest, error) {
	server := p.Server
	if len(server.Components) == 0 {
		server = TGSPrincipal(p.Client.Realm)
	} else {
		server = server.WithRealm(p.Client.Realm)
	}

	etypes := orderEnctypes(p.EType)
	if len(etypes) == 0 {
		return nil, newError(KindConfig, "no supported enctype")
	}

	addrs := resolveAddresses(p.AddrPolicy, p.Addresses, p.NoAddresses)

	from := saturatingAddInt32(int32(now.Unix()), int32(p.StartOffset/time.Second))
	till := saturatingAddInt32(from, int32(p.TicketLife/time.Second))

	opts := p.Options
	var rtime int32
	if p.RenewLife > 0 {
		opts |= OptRenewable
		rtime = saturatingAddInt32(till, int32(p.RenewLife/time.Second))
		if rtime < till {
			rtime = till
		}
	}

	req := &KdcRequest{
		Client:    p.Client,
		Server:    server,
		Options:   opts,
		From:      time.Unix(int64(from), 0).UTC(),
		Till:      time.Unix(int64(till), 0).UTC(),
		EType:     etypes,
		Addresses: addrs,
		PAData:    append([]PAData(nil), p.PAData...),
	}
	if rtime != 0 {
		req.RTime = time.Unix(int64(rtime), 0).UTC()
	}

	return req, nil
}

// refreshNonce draws a fresh 31-bit nonce (high bit cleared for interop
// with KDCs, notably Active Directory, that reject a full 32-bit value),
// falling back to the current time if randGen is nil or fails.
func refreshNonce(randGen func([]byte) (int, error), now time.Time) uint32 {
	var buf [4]byte
	if randGen != nil {
		if _, err := randGen(buf[:]); err == nil {
			n := uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3])
			return n &^ (1 << 31)
		}
	}
	return uint32(now.Unix()) &^ (1 << 31)
}

// rebuildServer recomputes the request's server principal after a referral
// changes the client realm, per spec §4.9's "must be recomputed after
// referrals" note. If server was explicitly a non-TGS principal its realm
// is simply rewritten; if it was the synthesized krbtgt it is rebuilt
// against the new realm.
func rebuildServer(current Principal, clientRealm string) Principal {
	if current.IsTGS() {
		return TGSPrincipal(clientRealm)
	}
	return current.WithRealm(clientRealm)
}
