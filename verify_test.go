package initcreds

import (
	"testing"
	"time"
)

func baseReq() *KdcRequest {
	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	return &KdcRequest{
		Client: NewPrincipal("EXAMPLE.COM", NameTypePrincipal, "alice"),
		Server: TGSPrincipal("EXAMPLE.COM"),
		Nonce:  12345,
		From:   now,
		Till:   now.Add(10 * time.Hour),
	}
}

func TestVerifyReplyAcceptsMatchingReply(t *testing.T) {
	a := NewAssert(t)

	req := baseReq()
	enc := &EncKdcRepPart{
		Nonce:     req.Nonce,
		Server:    req.Server,
		StartTime: req.From,
		EndTime:   req.Till,
	}

	err := verifyReply(req, enc, req.Client, req.From, 5*time.Minute, false, false)
	a.Nil(err)
}

func TestVerifyReplyRejectsNonceMismatch(t *testing.T) {
	a := NewAssert(t)

	req := baseReq()
	enc := &EncKdcRepPart{Nonce: req.Nonce + 1, StartTime: req.From, EndTime: req.Till}

	err := verifyReply(req, enc, req.Client, req.From, 5*time.Minute, false, false)
	a.NotNil(err)
	a.Equal(KindKDCRepModified, err.Kind)
}

func TestVerifyReplyRejectsUnsanctionedClientRewrite(t *testing.T) {
	a := NewAssert(t)

	req := baseReq()
	otherClient := NewPrincipal("OTHER.EXAMPLE.COM", NameTypePrincipal, "alice")
	enc := &EncKdcRepPart{Nonce: req.Nonce, Server: req.Server, StartTime: req.From, EndTime: req.Till}

	err := verifyReply(req, enc, otherClient, req.From, 5*time.Minute, false, false)
	a.NotNil(err)
	a.Equal(KindKDCRepModified, err.Kind)
}

func TestVerifyReplyRejectsUnsanctionedServerRewrite(t *testing.T) {
	a := NewAssert(t)

	req := baseReq()
	otherServer := NewPrincipal("EXAMPLE.COM", NameTypeSrvInst, "host", "other.example.com")
	enc := &EncKdcRepPart{Nonce: req.Nonce, Server: otherServer, StartTime: req.From, EndTime: req.Till}

	err := verifyReply(req, enc, req.Client, req.From, 5*time.Minute, false, false)
	a.NotNil(err)
	a.Equal(KindKDCRepModified, err.Kind)
}

func TestVerifyReplyAllowsCanonicalizedClientRewriteForTGSRequest(t *testing.T) {
	a := NewAssert(t)

	req := baseReq()
	req.Options |= OptCanonicalize
	otherClient := NewPrincipal("OTHER.EXAMPLE.COM", NameTypePrincipal, "alice")
	enc := &EncKdcRepPart{
		Nonce:     req.Nonce,
		Server:    req.Server,
		StartTime: req.From,
		EndTime:   req.Till,
	}

	err := verifyReply(req, enc, otherClient, req.From, 5*time.Minute, false, true)
	a.Nil(err)
}

func TestVerifyReplyRejectsEndTimeBeyondTill(t *testing.T) {
	a := NewAssert(t)

	req := baseReq()
	enc := &EncKdcRepPart{
		Nonce:     req.Nonce,
		Server:    req.Server,
		StartTime: req.From,
		EndTime:   req.Till.Add(time.Hour),
	}

	err := verifyReply(req, enc, req.Client, req.From, 5*time.Minute, false, false)
	a.NotNil(err)
	a.Equal(KindKDCRepModified, err.Kind)
}

func TestVerifyReplyRenewableOkAsymmetry(t *testing.T) {
	a := NewAssert(t)

	req := baseReq()
	req.Options |= OptRenewableOK // not OptRenewable
	enc := &EncKdcRepPart{
		Nonce:     req.Nonce,
		Server:    req.Server,
		StartTime: req.From,
		EndTime:   req.Till,
		RenewTill: req.Till.Add(48 * time.Hour),
		Flags:     OptRenewable,
	}

	err := verifyReply(req, enc, req.Client, req.From, 5*time.Minute, false, false)
	a.NotNil(err)
	a.Equal(KindKDCRepModified, err.Kind)
}

func TestVerifyReplyRejectsClockSkew(t *testing.T) {
	a := NewAssert(t)

	req := baseReq()
	req.From = time.Time{} // clock-skew check only applies when From is unset
	enc := &EncKdcRepPart{
		Nonce:     req.Nonce,
		Server:    req.Server,
		StartTime: time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC),
		EndTime:   req.Till,
	}
	now := enc.StartTime.Add(10 * time.Minute)

	err := verifyReply(req, enc, req.Client, now, 5*time.Minute, false, false)
	a.NotNil(err)
	a.Equal(KindKDCRepSkew, err.Kind)
}

func TestVerifyReplySkipsClockSkewWhenSyncingKDCTime(t *testing.T) {
	a := NewAssert(t)

	req := baseReq()
	req.From = time.Time{}
	enc := &EncKdcRepPart{
		Nonce:     req.Nonce,
		Server:    req.Server,
		StartTime: time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC),
		EndTime:   req.Till,
	}
	now := enc.StartTime.Add(time.Hour)

	err := verifyReply(req, enc, req.Client, now, 5*time.Minute, true, false)
	a.Nil(err)
}
