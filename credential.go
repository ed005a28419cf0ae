// SPDX-License-Identifier: Apache-2.0

package initcreds

import "time"

// Credential is the populated TGT and session material from spec §3,
// ready for a credential cache.
type Credential struct {
	Client    Principal
	Server    Principal
	Key       Key
	Flags     KdcOptions
	AuthTime  time.Time
	StartTime time.Time
	EndTime   time.Time
	RenewTill time.Time
	Addresses []HostAddress
	Ticket    []byte
}

// Zero overwrites the session key bytes in place. Called by [Context.Free]
// and on any mid-stash failure, per spec §4.7 and §5.
func (c *Credential) Zero() {
	c.Key.Zero()
}

// CredentialCache is the storage collaborator from spec §1; callers that
// want persisted credentials configure one on the negotiation. Stashing
// still succeeds without one — the caller reads the Credential back from
// [Context.GetCreds] or the all-in-one driver's return value.
type CredentialCache interface {
	Store(Credential) error
}

// stashReply implements spec §4.7's stasher: copy session key, times,
// flags, addresses, and the encoded ticket into a Credential. If in is
// non-nil its Client/Server are preserved when already set, else copied
// from the reply, matching "If the input credential's client or server
// was null, copy them from the reply."
func stashReply(in *Credential, client Principal, rep *KdcReply) Credential {
	cred := Credential{}
	if in != nil {
		cred = *in
	}
	if cred.Client.Components == nil {
		cred.Client = client
	}
	if cred.Server.Components == nil {
		cred.Server = rep.DecryptedEncPart.Server
	}

	cred.Key = rep.DecryptedEncPart.Key
	cred.Flags = rep.DecryptedEncPart.Flags
	cred.AuthTime = rep.DecryptedEncPart.AuthTime
	cred.StartTime = rep.DecryptedEncPart.StartTime
	cred.EndTime = rep.DecryptedEncPart.EndTime
	cred.RenewTill = rep.DecryptedEncPart.RenewTill
	cred.Addresses = rep.DecryptedEncPart.Addresses
	cred.Ticket = rep.Ticket

	return cred
}
