// SPDX-License-Identifier: Apache-2.0

package initcreds

import "strings"

// Prompter asks the user for secrets (passphrases, SAM responses) when a
// pre-auth method needs one. It is invoked synchronously from the pre-auth
// dispatcher and must not re-enter the context it was called from, per
// spec §5.
type Prompter interface {
	Prompt(prompts []string) ([]string, error)
}

// KeyMaterial is the mutable state a pre-auth method can read and update
// across Prepare/TryAgain/ProcessResponse calls: salt, s2kparams, the
// enctype in use, and the derived AS key, per spec §4.5.
type KeyMaterial struct {
	Salt      string
	S2KParams string
	EType     int32
	ASKey     *Key
}

// MethodContext is the uniform capability object the dispatcher passes to
// every registered method, per spec §9's "capability object carrying named
// methods" design note. FastState is an opaque value threaded through
// every call for FAST-armored negotiations; this package only checks
// whether it implements [FastArmor].
type MethodContext struct {
	Request     *KdcRequest
	PrevEncoded []byte
	Key         *KeyMaterial
	Prompter    Prompter
	FastState   any
	GetAsKey    GetAsKeyFunc
}

// PreauthMethod is the plugin surface spec §1 calls out of scope: the core
// invokes registered methods via this interface but does not implement
// timestamp, encrypted-challenge, PKINIT, SAM, or FAST-armor bodies
// itself, beyond the one reference implementation in preauth/encts.
type PreauthMethod interface {
	// Prepare produces the padata to attach to the next request, given
	// candidate padata from cached hints or the KDC's prior error.
	Prepare(mc *MethodContext, candidates []PAData) ([]PAData, error)
	// TryAgain reconsiders using the KDC's hint after an error reply with
	// e-data; returning (nil, nil) means this method cannot act.
	TryAgain(mc *MethodContext, krbErr *KrbError) ([]PAData, error)
	// ProcessResponse handles reply-side padata on an AS-REP (FAST
	// response, SAM echo, strengthen-key).
	ProcessResponse(mc *MethodContext, replyPAData []PAData) error
}

type methodFactory func() PreauthMethod

var preauthRegistry = map[int32]methodFactory{}

// RegisterPreauthMethod registers a pre-auth method factory under a
// padata-type, following the self-registering Register(name, factory)
// convention used throughout this package's lineage for pluggable
// mechanisms. Called from a plugin package's init().
func RegisterPreauthMethod(padataType int32, factory func() PreauthMethod) {
	preauthRegistry[padataType] = factory
}

// RegisteredPreauthTypes returns the padata-types with a registered
// method, for diagnostics and tests.
func RegisteredPreauthTypes() []int32 {
	out := make([]int32, 0, len(preauthRegistry))
	for t := range preauthRegistry {
		out = append(out, t)
	}
	return out
}

func lookupMethod(padataType int32) PreauthMethod {
	f, ok := preauthRegistry[padataType]
	if !ok {
		return nil
	}
	return f()
}

// dispatchPrepare runs Prepare for every candidate padata type that has a
// registered method, accumulating the resulting padata in candidate order.
// Candidates are first reordered per spec §4.3's preference string, so
// that when more than one method could act, the configured preference
// (e.g. PKINIT before encrypted timestamp) decides which runs first.
func dispatchPrepare(mc *MethodContext, candidates []PAData, preferredTypes string) ([]PAData, error) {
	candidates = orderPadata(candidates, preferredTypes)
	var out []PAData
	for _, c := range candidates {
		m := lookupMethod(c.Type)
		if m == nil {
			continue
		}
		produced, err := m.Prepare(mc, candidates)
		if err != nil {
			return nil, err
		}
		out = append(out, produced...)
	}
	return out, nil
}

// dispatchTryAgain implements spec §4.5's try-again entry point: decode
// the KDC's e-data hint, sort it per spec §4.3's preference string (spec
// §4.8's loop pseudocode: "decode e_data as padata sequence; sort;
// continue"), and ask each method named in it whether it can act. If none
// can, the error is terminal — spec §4.4/§4.8's PREAUTH_REQUIRED handling
// relies on this to distinguish "loop again" from "surface to caller".
func dispatchTryAgain(mc *MethodContext, krbErr *KrbError, preferredTypes string) ([]PAData, error) {
	hints, err := decodePadataSequence(krbErr.EData)
	if err != nil {
		// e-data may be typed-data rather than a padata sequence; a
		// method-less retry is simply not possible.
		return nil, newError(KindPreauthFailed, "could not interpret KDC hint: %v", err)
	}
	hints = orderPadata(hints, preferredTypes)

	var out []PAData
	acted := false
	for _, h := range hints {
		m := lookupMethod(h.Type)
		if m == nil {
			continue
		}
		produced, err := m.TryAgain(mc, krbErr)
		if err != nil {
			return nil, err
		}
		if produced != nil {
			acted = true
			out = append(out, produced...)
		}
	}
	if !acted {
		return nil, newError(KindPreauthFailed, "no registered pre-auth method handles the KDC's hint (%s)", describeHintTypes(hints))
	}
	return out, nil
}

// describeHintTypes renders a KDC hint's padata types by name for the
// dispatchTryAgain failure message, e.g. "pkinit, encrypted-timestamp".
func describeHintTypes(hints []PAData) string {
	names := make([]string, len(hints))
	for i, h := range hints {
		names[i] = preauthTypeName(h.Type)
	}
	return strings.Join(names, ", ")
}

// dispatchProcessResponse runs ProcessResponse for every reply padata
// entry that has a registered method.
func dispatchProcessResponse(mc *MethodContext, replyPAData []PAData) error {
	for _, p := range replyPAData {
		m := lookupMethod(p.Type)
		if m == nil {
			continue
		}
		if err := m.ProcessResponse(mc, replyPAData); err != nil {
			return err
		}
	}
	return nil
}

// preauthTypeNames is used only for diagnostics (Error messages); it is
// deliberately small since the plugin surface is open-ended.
var preauthTypeNames = map[int32]string{
	2:   "encrypted-timestamp",
	17:  "pkinit",
	19:  "etype-info2",
	138: "encrypted-challenge",
}

func preauthTypeName(t int32) string {
	if n, ok := preauthTypeNames[t]; ok {
		return n
	}
	return "padata-type"
}
