// SPDX-License-Identifier: Apache-2.0

package initcreds

import "time"

// verifyReply enforces spec §3 invariants 3–10 against a decrypted AS-REP.
// now is local wall-clock time; syncKDCTime mirrors config's SYNC_KDCTIME,
// which adopts reply.authtime as the local notion of real time instead of
// enforcing the clock-skew bound (invariant 10).
func verifyReply(req *KdcRequest, enc *EncKdcRepPart, replyClient Principal, now time.Time, clockSkew time.Duration, syncKDCTime bool, canonicalize bool) *Error {
	// Invariant 3: nonce echoed back.
	if enc.Nonce != req.Nonce {
		return newError(KindKDCRepModified, "nonce mismatch")
	}

	// Invariant 4 (reply.server == ticket's server) is enforced by the
	// caller, which has access to the decoded ticket; see
	// [Context.handleASRepReply].

	// Invariant 5: client and server principals unchanged, unless
	// canonicalization was requested and both request.server and
	// reply.server are TGS principals — mirroring the original's combined
	// canon_ok test, which rejects on *either* identity changing when
	// canon_ok is false rather than checking the client alone.
	canonOK := canonicalize && req.Options.Has(OptCanonicalize) && req.Server.IsTGS() && enc.Server.IsTGS()
	if !canonOK && (!replyClient.Equal(req.Client) || !enc.Server.Equal(req.Server)) {
		return newError(KindKDCRepModified, "client or server principal was rewritten without sanctioned canonicalization")
	}

	// Compatibility repair, not a rejection: if starttime is zero, adopt authtime.
	if enc.StartTime.IsZero() {
		enc.StartTime = enc.AuthTime
	}

	// Invariant 6: POSTDATED with nonzero from implies reply.starttime == request.from.
	if req.Options.Has(OptPostdated) && !req.From.IsZero() {
		if !enc.StartTime.Equal(req.From) {
			return newError(KindKDCRepModified, "postdated start time does not match request")
		}
	}

	// Invariant 7: reply.endtime <= request.till (when till != 0).
	if !req.Till.IsZero() && enc.EndTime.After(req.Till) {
		return newError(KindKDCRepModified, "end time exceeds requested till")
	}

	// Invariant 8: if RENEWABLE, reply.renew-till <= request.rtime (when nonzero).
	if req.Options.Has(OptRenewable) && !req.RTime.IsZero() && enc.RenewTill.After(req.RTime) {
		return newError(KindKDCRepModified, "renew-till exceeds requested rtime")
	}

	// Invariant 9: only RENEWABLE_OK (not RENEWABLE) and KDC granted
	// renewable: reply.renew-till <= request.till. Intentionally
	// asymmetric with invariant 8 — the KDC is allowed to upgrade a
	// non-renewable request, per spec §9's open-question resolution.
	if !req.Options.Has(OptRenewable) && req.Options.Has(OptRenewableOK) && enc.Flags.Has(OptRenewable) {
		if !req.Till.IsZero() && enc.RenewTill.After(req.Till) {
			return newError(KindKDCRepModified, "upgraded renew-till exceeds requested till")
		}
	}

	// Invariant 10: clock skew, unless syncing with the KDC's clock.
	if !syncKDCTime && req.From.IsZero() {
		skew := now.Sub(enc.StartTime)
		if skew < 0 {
			skew = -skew
		}
		if skew > clockSkew {
			return &Error{Kind: KindKDCRepSkew}
		}
	}

	return nil
}
