// SPDX-License-Identifier: Apache-2.0

package initcreds

import "fmt"

// Kind classifies an [Error] into the taxonomy of spec §7: protocol-format,
// cryptographic-mismatch, policy, loop-limit, transport-signaled,
// KDC-reported, and config/resource failures.
type Kind uint8

const (
	// KindBadMsgType means the reply was neither a KRB-ERROR nor an AS-REP.
	KindBadMsgType Kind = iota + 1
	// KindV4Reply means the KDC answered with a legacy Kerberos v4 error.
	KindV4Reply
	// KindKDCRepModified means one of the AS-REP cross-field invariants
	// (nonce, principal, time bounds) failed.
	KindKDCRepModified
	// KindKDCRepSkew means the reply's start time is outside the
	// configured clock skew of local time.
	KindKDCRepSkew
	// KindRealmMismatch means the request's client and server realms
	// disagreed and canonicalization was not requested.
	KindRealmMismatch
	// KindWrongRealm means a WRONG_REALM referral could not be followed,
	// either because it carried no client realm or the hop count was
	// exhausted. A WRONG_REALM error received while canonicalization is
	// disabled is returned as [KindKDCReported].
	KindWrongRealm
	// KindLoopLimit means the negotiation exceeded the maximum number of
	// request/response rounds.
	KindLoopLimit
	// KindResponseTooBig is the transport-signaled retry condition. It is
	// consumed internally: [Context.Step] answers it by returning the
	// previous request unchanged so the caller can resend it over TCP, and
	// [Loop] does that resend itself.
	KindResponseTooBig
	// KindKDCReported wraps a KDC error code that the core did not
	// recognize as one it should consume locally (preauth-required and
	// realm referrals are consumed; everything else surfaces).
	KindKDCReported
	// KindConfig covers missing configuration, absent pre-auth methods,
	// and similar resource failures.
	KindConfig
	// KindPreauthFailed means no registered pre-auth method could act on
	// the KDC's hint.
	KindPreauthFailed
)

func (k Kind) String() string {
	switch k {
	case KindBadMsgType:
		return "reply was not AS-REP or KRB-ERROR"
	case KindV4Reply:
		return "KDC answered with a Kerberos v4 error"
	case KindKDCRepModified:
		return "AS-REP failed a cross-field invariant check"
	case KindKDCRepSkew:
		return "AS-REP start time outside configured clock skew"
	case KindRealmMismatch:
		return "client and server realms disagree without canonicalization"
	case KindWrongRealm:
		return "realm referral could not be followed"
	case KindLoopLimit:
		return "negotiation loop exceeded its maximum round count"
	case KindResponseTooBig:
		return "KDC reply did not fit the transport in use"
	case KindKDCReported:
		return "KDC reported an error"
	case KindConfig:
		return "configuration or resource error"
	case KindPreauthFailed:
		return "no pre-authentication method could satisfy the KDC"
	default:
		return "unknown error"
	}
}

// Error is the tagged error type returned by this package. KDCCode is only
// meaningful when Kind is KindKDCReported; it is the raw KDC error-code,
// preserved so callers that need wire compatibility can still recover the
// integer value spec.md §7 calls "error + base".
type Error struct {
	Kind    Kind
	KDCCode int32
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("initcreds: %s: %s", e.Kind, e.Message)
	}
	if e.Kind == KindKDCReported {
		return fmt.Sprintf("initcreds: %s (code %d)", e.Kind, e.KDCCode)
	}
	return fmt.Sprintf("initcreds: %s", e.Kind)
}

// Retryable reports whether the negotiation loop would have consumed this
// error locally and attempted another round, rather than surfaced it to the
// caller. Per spec.md §7's propagation policy, PREAUTH_REQUIRED (with
// e-data) and a followable WRONG_REALM referral are consumed internally by
// [Context.Step] and [Loop] and never constructed as a returned *Error in
// the first place — so by construction every *Error this package actually
// returns is already terminal, and Retryable always reports false. It is
// exposed so a caller composing its own retry policy around a [KrbError]
// obtained via [Context.GetError] doesn't have to re-derive that filtering
// by hand.
func (e *Error) Retryable() bool {
	return false
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// asError normalizes an error returned across a plugin boundary (a
// [PreauthMethod] or [GetAsKeyFunc] implementation is not required to
// return *Error) into this package's tagged type, so callers can inspect
// Kind without a failing type assertion.
func asError(err error) *Error {
	if err == nil {
		return nil
	}
	if ie, ok := err.(*Error); ok {
		return ie
	}
	return newError(KindPreauthFailed, "%v", err)
}

func newKDCError(code int32, text string) *Error {
	return &Error{Kind: KindKDCReported, KDCCode: code, Message: text}
}

// enrichPrincipalUnknown adds the unparsed client name to a
// C_PRINCIPAL_UNKNOWN error, per spec §7's user-visible behavior note.
func enrichPrincipalUnknown(err *Error, unparsed string) *Error {
	if err.Message == "" {
		err.Message = fmt.Sprintf("client %q is not known to the KDC", unparsed)
	} else {
		err.Message = fmt.Sprintf("%s (client %q)", err.Message, unparsed)
	}
	return err
}
