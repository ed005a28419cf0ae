// SPDX-License-Identifier: Apache-2.0

package initcreds

import "time"

// Transport sends an encoded AS-REQ to a realm's KDC and returns the raw
// reply bytes. It is the external collaborator spec §1 calls out of
// scope: UDP/TCP selection, retry, and KDC discovery for a realm all live
// on the other side of this interface, matching spec §6's
// `send_to_kdc(req_bytes, realm, use_master: inout bool, tcp_only: bool)`
// contract. UseTCP is set by [Loop] after a RESPONSE_TOO_BIG reply and
// stays set for the remainder of the exchange. UseMaster is
// owned by the transport: [Loop] only carries it across iterations so a
// transport that falls back to a realm's master KDC on one round (e.g.
// after a stale-replica error) keeps talking to it on subsequent rounds
// of the same exchange.
type Transport interface {
	Send(realm string, req []byte, useTCP bool, useMaster *bool) (reply []byte, err error)
}

// Loop implements spec §4.8's all-in-one driver: it owns the request/
// response cycle end to end, calling t.Send for every round and feeding
// the reply back into a [Context] built the same way [NewContext] would.
// It returns the acquired [Credential] or the terminal error.
func Loop(t Transport, client Principal, prompter Prompter, startOffset time.Duration, opts ...Option) (Credential, error) {
	c := NewContext(client, prompter, startOffset, opts...)

	if c.params.Server.Components != nil && c.params.Server.Realm != "" &&
		c.params.Server.Realm != client.Realm && !c.cfg.Canonicalize {
		return Credential{}, &Error{Kind: KindRealmMismatch, Message: "client and server realms disagree and canonicalize is not set"}
	}

	useTCP := false
	useMaster := false
	var in []byte

	for i := 0; i < maxLoops; i++ {
		out, realm, flags, err := c.Step(in, time.Now())
		if err != nil {
			return Credential{}, err
		}
		if flags&StepComplete != 0 {
			cred, _ := c.GetCreds()
			return cred, nil
		}
		if len(out) == 0 {
			return Credential{}, newError(KindConfig, "negotiation produced no request and no credential")
		}

		reply, sendErr := t.Send(realm, out, useTCP, &useMaster)
		if sendErr != nil {
			return Credential{}, newError(KindConfig, "transport: %v", sendErr)
		}

		in = reply

		if looksLikeResponseTooBig(reply) && !useTCP {
			useTCP = true
		}
	}

	return Credential{}, &Error{Kind: KindLoopLimit}
}

// looksLikeResponseTooBig classifies a raw reply to decide whether the next
// round should go over TCP: it reports true only for a KRB-ERROR carrying
// RESPONSE_TOO_BIG. It is the only place [Loop] switches useTCP on;
// [Context.Step] separately classifies the same reply and returns the
// original request unchanged, which Loop then resends over TCP.
func looksLikeResponseTooBig(reply []byte) bool {
	kind, _, kerr, err := classifyReply(reply)
	if err != nil {
		return false
	}
	return kind == replyKindError && kerr.ErrorCode == kdcErrResponseTooBig
}
