package initcreds

import (
	"testing"

	"github.com/jcmturner/gokrb5/v8/iana/msgtype"
	"github.com/jcmturner/gokrb5/v8/messages"
	"github.com/jcmturner/gokrb5/v8/types"
)

func TestPrincipalWireRoundTrip(t *testing.T) {
	a := NewAssert(t)

	p := NewPrincipal("EXAMPLE.COM", NameTypePrincipal, "alice")
	wire := principalToWire(p)
	back := principalFromWire(wire, p.Realm)

	a.True(p.Equal(back))
	a.Equal(p.NameType, back.NameType)
}

func TestPADataWireRoundTrip(t *testing.T) {
	a := NewAssert(t)

	in := []PAData{{Type: 2, Value: []byte("one")}, {Type: 19, Value: []byte("two")}}
	back := paDataFromWire(paDataToWire(in))

	a.Equal(in, back)
}

func TestAddressesWireRoundTrip(t *testing.T) {
	a := NewAssert(t)

	in := []HostAddress{{AddrType: addrTypeIPv4, Address: []byte{10, 0, 0, 1}}}
	back := addressesFromWire(addressesToWire(in))

	a.Equal(in, back)
}

func TestKdcOptionsWireRoundTrip(t *testing.T) {
	a := NewAssert(t)

	opts := OptForwardable | OptProxiable | OptCanonicalize | OptRenewable
	bs := kdcOptionsToWire(opts)
	back := flagsFromWire(bs)

	a.True(back.Has(OptForwardable))
	a.True(back.Has(OptProxiable))
	a.True(back.Has(OptRenewable))
}

func TestClassifyReplyDetectsKRBError(t *testing.T) {
	a := NewAssert(t)

	e := messages.KRBError{
		MsgType:   msgtype.KRB_ERROR,
		ErrorCode: kdcErrPreauthRequired,
		EText:     "need preauth",
		SName:     types.PrincipalName{NameType: int32(NameTypeSrvInst), NameString: []string{"krbtgt", "EXAMPLE.COM"}},
		Realm:     "EXAMPLE.COM",
	}
	b, err := e.Marshal()
	a.NoErrorFatal(err)

	kind, rep, kerr, cerr := classifyReply(b)
	a.NoErrorFatal(cerr)
	a.Equal(replyKindError, kind)
	a.Nil(rep)
	a.Equal(kdcErrPreauthRequired, kerr.ErrorCode)
	a.Equal("need preauth", kerr.Text)
}

func TestClassifyReplyRejectsEmpty(t *testing.T) {
	a := NewAssert(t)

	_, _, _, err := classifyReply(nil)
	a.NotNil(err)

	ierr := asError(err)
	a.Equal(KindBadMsgType, ierr.Kind)
}

func TestClassifyReplyRejectsGarbage(t *testing.T) {
	a := NewAssert(t)

	_, _, _, err := classifyReply([]byte{0xff, 0x00, 0x01, 0x02})
	a.NotNil(err)
}
