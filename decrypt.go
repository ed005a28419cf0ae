// SPDX-License-Identifier: Apache-2.0

package initcreds

// Key usage numbers from RFC 4120 §7.5.1, used when decrypting the AS-REP
// encrypted part with the client's long-term key.
const keyUsageASRepEncPart = 3

// GetAsKeyFunc derives the client's long-term (AS) key, either from a
// cached secret or by prompting, per spec §4.9's `get_as_key` capability.
// A pre-auth method may invoke it when it has no AS key yet; the decryptor
// invokes it when string-to-key with an empty passphrase fails, and again,
// once, if the first decryption attempt fails — spec §4.9's "prompt for a
// fresh key and retry once".
type GetAsKeyFunc func(client Principal, etype int32, salt, s2kparams string) (Key, error)

// decryptReply implements spec §4.7's decryptor: use the caller-supplied
// key directly if one was given, else derive the salt from the reply's
// (already canonicalized) client principal and call string-to-key, then
// decrypt the enc-part and parse it.
func decryptReply(rep *KdcReply, key *Key, salt, s2kparams string, getAsKey GetAsKeyFunc) (EncKdcRepPart, Key, error) {
	var asKey Key
	if key != nil {
		asKey = *key
	} else {
		if salt == "" {
			salt = principalToSalt(rep.Client)
		}
		var err error
		asKey, err = stringToKey("", salt, s2kparams, rep.Enc.EType)
		if err != nil && getAsKey != nil {
			asKey, err = getAsKey(rep.Client, rep.Enc.EType, salt, s2kparams)
		}
		if err != nil {
			return EncKdcRepPart{}, Key{}, err
		}
	}

	plain, err := decryptEncPart(asKey, rep.Enc, keyUsageASRepEncPart)
	if err != nil {
		if getAsKey == nil {
			return EncKdcRepPart{}, asKey, err
		}
		// Retry once with a freshly prompted key, per spec §4.9.
		asKey.Zero()
		asKey, err = getAsKey(rep.Client, rep.Enc.EType, salt, s2kparams)
		if err != nil {
			return EncKdcRepPart{}, Key{}, err
		}
		plain, err = decryptEncPart(asKey, rep.Enc, keyUsageASRepEncPart)
		if err != nil {
			asKey.Zero()
			return EncKdcRepPart{}, Key{}, err
		}
	}

	enc, err := decodeEncKdcRepPart(plain)
	if err != nil {
		asKey.Zero()
		return EncKdcRepPart{}, Key{}, err
	}

	return enc, asKey, nil
}
