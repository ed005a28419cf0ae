// SPDX-License-Identifier: Apache-2.0

package initcreds

import "time"

// EncPart is an opaque encrypted blob plus the enctype/kvno header that
// accompanies it on the wire, per spec §3's "encrypted-part header".
type EncPart struct {
	EType  int32
	KVNO   int
	Cipher []byte
}

// KdcReply is the decoded, not-yet-decrypted AS-REP from spec §3: the
// unencrypted portion plus the still-opaque encrypted portion.
type KdcReply struct {
	Client Principal
	Ticket []byte // opaque to the client: the ticket's own encrypted part is never ours to read

	// TicketServer is the server principal named in the ticket's own
	// (unencrypted) realm/sname fields, decoded alongside Ticket so
	// [Context.handleASRepReply] can enforce spec §3 invariant 4 (reply's
	// server principal equals the one embedded in the returned ticket)
	// without this package otherwise touching the ticket's contents.
	TicketServer Principal

	Enc    EncPart
	PAData []PAData

	// DecryptedEncPart is populated by the decryptor; zero value until then.
	DecryptedEncPart EncKdcRepPart
}

// EncKdcRepPart is the AS-REP encrypted portion from spec §3, valid only
// after decryption.
type EncKdcRepPart struct {
	Key        Key
	Flags      KdcOptions
	AuthTime   time.Time
	StartTime  time.Time
	EndTime    time.Time
	RenewTill  time.Time
	Server     Principal
	Addresses  []HostAddress
	PAData     []PAData
	Nonce      uint32
}

// Key is a decrypted or string-to-key-derived symmetric key plus its
// enctype. Zero() must be called before the Key is discarded.
type Key struct {
	EType int32
	Data  []byte
}

// Zero overwrites the key bytes in place. Called from every path that
// retires a Key: context teardown, decrypt retry, and stash failure.
func (k *Key) Zero() {
	for i := range k.Data {
		k.Data[i] = 0
	}
}

// KrbError is the decoded KRB-ERROR message from spec §3.
type KrbError struct {
	CTime, STime time.Time
	Cusec, Susec int
	ErrorCode    int32
	Client       *Principal
	Server       Principal
	Text         string
	EData        []byte
}

// Hints decodes EData as a padata sequence, returning nil if it does not
// parse as one (e.g. it carries typed-data instead). Pre-auth methods use
// it to read salt/s2kparams/etype-info hints off a PREAUTH_REQUIRED error
// without each reimplementing padata decoding.
func (k *KrbError) Hints() []PAData {
	hints, err := decodePadataSequence(k.EData)
	if err != nil {
		return nil
	}
	return hints
}

// replyKind distinguishes the outcomes of [classifyReply].
type replyKind int

const (
	replyKindError replyKind = iota
	replyKindAS
)

// classifyReply implements spec §4.4: try KRB-ERROR first, then AS-REP,
// then detect the legacy v4 magic, else BAD_MSG_TYPE.
func classifyReply(data []byte) (replyKind, *KdcReply, *KrbError, error) {
	if len(data) == 0 {
		return 0, nil, nil, newError(KindBadMsgType, "empty reply")
	}

	if kerr, ok := tryDecodeKRBError(data); ok {
		return replyKindError, nil, kerr, nil
	}

	if rep, ok := tryDecodeASRep(data); ok {
		return replyKindAS, rep, nil, nil
	}

	if len(data) >= 2 && data[0] == 4 && data[1]&^1 == 5<<1 {
		return 0, nil, nil, newError(KindV4Reply, "KDC answered with a Kerberos v4 error")
	}

	return 0, nil, nil, newError(KindBadMsgType, "unrecognized reply message type")
}
