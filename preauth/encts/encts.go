// SPDX-License-Identifier: Apache-2.0

// Package encts implements PA-ENC-TIMESTAMP (RFC 4120 §5.2.7.2), the one
// pre-authentication method this module ships built in. Importing it for
// its side effect registers the method; callers that want a different or
// additional method import their own plugin package instead or alongside.
package encts

import (
	"encoding/asn1"
	"time"

	"github.com/jcmturner/gokrb5/v8/crypto"

	"github.com/go-krb5/initcreds"
)

const (
	padataTypeEncTimestamp = int32(2)
	padataTypeETypeInfo2   = int32(19)

	// keyUsagePAEncTimestamp is RFC 4120 §7.5.1's key-usage value for
	// encrypting the PA-ENC-TS-ENC structure in the client's long-term key.
	keyUsagePAEncTimestamp = int32(1)
)

func init() {
	initcreds.RegisterPreauthMethod(padataTypeEncTimestamp, newMethod)
	initcreds.RegisterPreauthMethod(padataTypeETypeInfo2, newMethod)
}

type method struct{}

func newMethod() initcreds.PreauthMethod { return &method{} }

// Prepare attaches PA-ENC-TIMESTAMP when a candidate carries an
// etype-info2 hint (e.g. a cached hint supplied via WithPreauthHints) or
// the context already has a salt or key; otherwise, as on a cold start, it
// attaches nothing and the method defers to the KDC's PREAUTH_REQUIRED
// error.
func (m *method) Prepare(mc *initcreds.MethodContext, candidates []initcreds.PAData) ([]initcreds.PAData, error) {
	sawHint := false
	for _, c := range candidates {
		if c.Type == padataTypeETypeInfo2 {
			if err := applyETypeInfo2(mc, c.Value); err != nil {
				return nil, err
			}
			sawHint = true
		}
	}
	if !sawHint && mc.Key.ASKey == nil && mc.Key.Salt == "" {
		return nil, nil
	}
	return buildEncTimestamp(mc, time.Now())
}

// TryAgain reads the KDC's etype-info2 hint for the salt and s2kparams,
// derives or fetches the AS key, and responds with an encrypted timestamp.
func (m *method) TryAgain(mc *initcreds.MethodContext, krbErr *initcreds.KrbError) ([]initcreds.PAData, error) {
	for _, h := range krbErr.Hints() {
		if h.Type == padataTypeETypeInfo2 {
			if err := applyETypeInfo2(mc, h.Value); err != nil {
				return nil, err
			}
		}
	}
	return buildEncTimestamp(mc, time.Now())
}

// ProcessResponse has nothing to do on the reply side: PA-ENC-TIMESTAMP
// carries no reply padata of its own.
func (m *method) ProcessResponse(mc *initcreds.MethodContext, replyPAData []initcreds.PAData) error {
	return nil
}

// etypeInfo2Entry mirrors RFC 4120 §5.2.7.5's ETYPE-INFO2-ENTRY.
type etypeInfo2Entry struct {
	EType     int32  `asn1:"explicit,tag:0"`
	Salt      string `asn1:"generalstring,explicit,optional,tag:1"`
	S2KParams []byte `asn1:"explicit,optional,tag:2"`
}

func applyETypeInfo2(mc *initcreds.MethodContext, value []byte) error {
	var entries []etypeInfo2Entry
	if _, err := asn1.Unmarshal(value, &entries); err != nil || len(entries) == 0 {
		return nil
	}

	entry := entries[0]
	for _, e := range entries {
		if len(mc.Request.EType) > 0 && e.EType == mc.Request.EType[0] {
			entry = e
			break
		}
	}

	mc.Key.EType = entry.EType
	mc.Key.Salt = entry.Salt
	mc.Key.S2KParams = string(entry.S2KParams)
	return nil
}

// paEncTSEnc mirrors RFC 4120 §5.2.7.2's PA-ENC-TS-ENC.
type paEncTSEnc struct {
	PATimeStamp time.Time `asn1:"generalized,explicit,tag:0"`
	PAUSec      int       `asn1:"explicit,optional,tag:1"`
}

func buildEncTimestamp(mc *initcreds.MethodContext, now time.Time) ([]initcreds.PAData, error) {
	key, err := resolveKey(mc)
	if err != nil {
		return nil, err
	}

	ts := paEncTSEnc{
		PATimeStamp: now.UTC().Truncate(time.Second),
		PAUSec:      now.Nanosecond() / 1000,
	}
	plain, err := asn1.Marshal(ts)
	if err != nil {
		return nil, err
	}

	enc, err := initcreds.EncryptEncPart(key, keyUsagePAEncTimestamp, plain)
	if err != nil {
		return nil, err
	}
	wire, err := initcreds.EncodeEncPart(enc)
	if err != nil {
		return nil, err
	}

	return []initcreds.PAData{{Type: padataTypeEncTimestamp, Value: wire}}, nil
}

// resolveKey returns the AS key to encrypt the timestamp with: the one
// already on the context, else one from the caller's key source, else
// (matching this package's default empty-passphrase attempt, per
// decryptReply) one derived locally from the KDC's salt hint.
func resolveKey(mc *initcreds.MethodContext) (initcreds.Key, error) {
	if mc.Key.ASKey != nil {
		return *mc.Key.ASKey, nil
	}

	etype := mc.Key.EType
	if etype == 0 && len(mc.Request.EType) > 0 {
		etype = mc.Request.EType[0]
	}

	if mc.GetAsKey != nil {
		key, err := mc.GetAsKey(mc.Request.Client, etype, mc.Key.Salt, mc.Key.S2KParams)
		if err != nil {
			return initcreds.Key{}, err
		}
		mc.Key.ASKey = &key
		return key, nil
	}

	et, err := crypto.GetEtype(etype)
	if err != nil {
		return initcreds.Key{}, &initcreds.Error{Kind: initcreds.KindConfig, Message: "unsupported enctype deriving PA-ENC-TIMESTAMP key"}
	}
	kb, err := et.StringToKey("", mc.Key.Salt, mc.Key.S2KParams)
	if err != nil {
		return initcreds.Key{}, err
	}
	key := initcreds.Key{EType: etype, Data: kb}
	mc.Key.ASKey = &key
	return key, nil
}
