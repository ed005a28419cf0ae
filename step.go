// SPDX-License-Identifier: Apache-2.0

package initcreds

import "time"

// FastArmor wraps outgoing requests in a FAST armor and unwraps armored
// error replies, per spec §4.5/§4.9. It is an external collaborator
// (FAST's pre-auth armor methods are out of scope for this package); when
// nil, requests and replies pass through unarmored.
type FastArmor interface {
	Wrap(body []byte, state any) (wrapped []byte, newState any, err error)
	Unwrap(errBody []byte, state any) (unwrapped []byte, newState any, err error)
}

// Step implements spec §4.9's single turn of the state machine. On the
// first call in is empty. Step returns the bytes to send (out), the realm
// to send them to, and a flags word with [StepComplete] set once the
// credential is ready. Once complete, further calls are a no-op and
// return empty out/realm, per spec §4.9's idempotence requirement.
func (c *Context) Step(in []byte, now time.Time) (out []byte, realm string, flags uint32, err error) {
	if c.complete {
		return nil, "", StepComplete, nil
	}

	if len(in) > 0 {
		retryTransport, stepErr := c.stepReply(in, now)
		if stepErr != nil {
			if stepErr.Kind == KindResponseTooBig {
				// Re-emit the last request unchanged so the caller can
				// retry it over TCP, per spec §4.9 — step never reissues
				// transport itself.
				return c.prevEncoded, c.req.Client.Realm, 0, nil
			}
			return nil, "", 0, stepErr
		}
		if c.complete {
			return nil, "", StepComplete, nil
		}
		_ = retryTransport
	}

	return c.stepRequest(now)
}

// stepReply is the internal `step_reply` split from spec §4.9.
func (c *Context) stepReply(in []byte, now time.Time) (bool, *Error) {
	c.loopCount++
	if c.loopCount > maxLoops {
		return false, &Error{Kind: KindLoopLimit}
	}

	payload := in
	if c.fastArmor() != nil {
		unwrapped, newState, err := c.fastArmor().Unwrap(in, c.fastState)
		if err != nil {
			return false, newError(KindConfig, "FAST unwrap: %v", err)
		}
		payload, c.fastState = unwrapped, newState
	}

	kind, rep, kerr, err := classifyReply(payload)
	if err != nil {
		return false, asError(err)
	}

	if kind == replyKindError {
		c.lastError = kerr
		return c.handleErrorReply(kerr)
	}

	return false, c.handleASRepReply(rep, now)
}

func (c *Context) handleErrorReply(kerr *KrbError) (bool, *Error) {
	switch {
	case kerr.ErrorCode == kdcErrPreauthRequired && len(kerr.EData) > 0:
		mc := &MethodContext{Request: c.req, PrevEncoded: c.prevEncoded, Key: &c.key, Prompter: c.prompter, FastState: c.fastState, GetAsKey: c.getAsKey}
		produced, err := dispatchTryAgain(mc, kerr, c.cfg.PreferredPreauthTypes)
		if err != nil {
			return false, asError(err)
		}
		c.req.PAData = produced
		return false, nil

	case kerr.ErrorCode == kdcErrWrongRealm && c.canonicalizeEnabled():
		if kerr.Client == nil || kerr.Client.Realm == "" {
			return false, &Error{Kind: KindWrongRealm, Message: "referral carried no client realm"}
		}
		c.referralCount++
		if c.referralCount > c.cfg.MaxRenewalHops {
			return false, &Error{Kind: KindWrongRealm, Message: "too many realm referrals"}
		}
		newRealm := kerr.Client.Realm
		c.req.Client = c.req.Client.WithRealm(newRealm)
		c.req.Server = rebuildServer(c.req.Server, newRealm)
		return false, nil

	case kerr.ErrorCode == kdcErrResponseTooBig:
		return true, &Error{Kind: KindResponseTooBig}

	case kerr.ErrorCode == kdcErrCPrincipalUnknown:
		e := newKDCError(kerr.ErrorCode, kerr.Text)
		return false, enrichPrincipalUnknown(e, c.req.Client.String())

	default:
		return false, newKDCError(kerr.ErrorCode, kerr.Text)
	}
}

func (c *Context) handleASRepReply(rep *KdcReply, now time.Time) *Error {
	c.lastReply = rep

	mc := &MethodContext{Request: c.req, PrevEncoded: c.prevEncoded, Key: &c.key, Prompter: c.prompter, FastState: c.fastState, GetAsKey: c.getAsKey}
	if err := dispatchProcessResponse(mc, rep.PAData); err != nil {
		return asError(err)
	}

	var suppliedKey *Key
	if c.key.ASKey != nil {
		suppliedKey = c.key.ASKey
	}

	enc, asKey, err := decryptReply(rep, suppliedKey, c.key.Salt, c.key.S2KParams, c.getAsKey)
	if err != nil {
		return asError(err)
	}
	rep.DecryptedEncPart = enc

	// Invariant 4: the reply's server principal equals the server named
	// in the ticket itself. Checked here, against the raw ticket this
	// package otherwise treats as opaque, rather than inside verifyReply
	// which only sees the decrypted enc-part.
	if rep.TicketServer.Components != nil && !rep.TicketServer.Equal(enc.Server) {
		asKey.Zero()
		return newError(KindKDCRepModified, "reply server does not match the ticket's embedded server")
	}

	if verr := verifyReply(c.req, &rep.DecryptedEncPart, rep.Client, now, c.cfg.ClockSkew, c.cfg.SyncKDCTime, c.cfg.Canonicalize); verr != nil {
		asKey.Zero()
		return verr
	}

	cred := stashReply(&c.cred, rep.Client, rep)

	if c.cache != nil {
		if err := c.cache.Store(cred); err != nil {
			cred.Zero()
			asKey.Zero()
			return newError(KindConfig, "storing credential: %v", err)
		}
	}

	c.cred = cred
	c.key.ASKey = &asKey
	c.complete = true
	return nil
}

// stepRequest is the internal `step_request` split from spec §4.9.
func (c *Context) stepRequest(now time.Time) ([]byte, string, uint32, error) {
	if c.req == nil {
		c.requestTime = now
		req, err := buildRequest(c.params, now)
		if err != nil {
			return nil, "", 0, err
		}
		c.req = req
	} else {
		c.req.Server = rebuildServer(c.req.Server, c.req.Client.Realm)
	}

	c.req.Nonce = refreshNonce(c.randGen, now)

	mc := &MethodContext{Request: c.req, PrevEncoded: c.prevEncoded, Key: &c.key, Prompter: c.prompter, FastState: c.fastState, GetAsKey: c.getAsKey}

	var produced []PAData
	var err error
	if c.lastError != nil && len(c.req.PAData) == 0 {
		produced, err = dispatchTryAgain(mc, c.lastError, c.cfg.PreferredPreauthTypes)
	} else {
		produced, err = dispatchPrepare(mc, c.req.PAData, c.cfg.PreferredPreauthTypes)
	}
	if err != nil {
		if ierr := asError(err); ierr.Kind == KindPreauthFailed && len(c.req.PAData) > 0 {
			// Candidates already attached (e.g. from WithPreauthHints); a
			// dispatcher miss is not fatal, and they are sent as they are.
		} else {
			return nil, "", 0, ierr
		}
	}
	if produced != nil {
		c.req.PAData = produced
	}

	out, encErr := encodeASReq(c.req)
	if encErr != nil {
		return nil, "", 0, encErr
	}

	if c.fastArmor() != nil {
		wrapped, newState, werr := c.fastArmor().Wrap(out, c.fastState)
		if werr != nil {
			return nil, "", 0, newError(KindConfig, "FAST wrap: %v", werr)
		}
		out, c.fastState = wrapped, newState
	}

	c.prevEncoded = out
	return out, c.req.Client.Realm, 0, nil
}

func (c *Context) canonicalizeEnabled() bool {
	return c.cfg.Canonicalize || c.req.Client.IsEnterprise()
}

func (c *Context) fastArmor() FastArmor {
	fa, _ := c.fastState.(FastArmor)
	return fa
}
