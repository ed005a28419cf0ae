package initcreds

import (
	"testing"
	"time"
)

func TestStashReplyCopiesClientAndServerWhenUnset(t *testing.T) {
	a := NewAssert(t)

	client := NewPrincipal("EXAMPLE.COM", NameTypePrincipal, "alice")
	server := TGSPrincipal("EXAMPLE.COM")
	rep := &KdcReply{
		Client: client,
		Ticket: []byte("opaque-ticket"),
		DecryptedEncPart: EncKdcRepPart{
			Key:      Key{EType: 18, Data: []byte("sessionkey")},
			Server:   server,
			AuthTime: time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC),
		},
	}

	cred := stashReply(nil, client, rep)

	a.True(cred.Client.Equal(client))
	a.True(cred.Server.Equal(server))
	a.Equal([]byte("sessionkey"), cred.Key.Data)
	a.Equal([]byte("opaque-ticket"), cred.Ticket)
}

func TestStashReplyPreservesExistingClientAndServer(t *testing.T) {
	a := NewAssert(t)

	pinnedClient := NewPrincipal("PINNED.COM", NameTypePrincipal, "bob")
	pinnedServer := TGSPrincipal("PINNED.COM")
	in := Credential{Client: pinnedClient, Server: pinnedServer}

	rep := &KdcReply{
		Client: NewPrincipal("EXAMPLE.COM", NameTypePrincipal, "alice"),
		DecryptedEncPart: EncKdcRepPart{
			Server: TGSPrincipal("EXAMPLE.COM"),
		},
	}

	cred := stashReply(&in, rep.Client, rep)

	a.True(cred.Client.Equal(pinnedClient))
	a.True(cred.Server.Equal(pinnedServer))
}

func TestCredentialZeroClearsKeyBytes(t *testing.T) {
	a := NewAssert(t)

	cred := Credential{Key: Key{EType: 18, Data: []byte{1, 2, 3, 4}}}
	cred.Zero()

	for _, b := range cred.Key.Data {
		a.Equal(byte(0), b)
	}
}
