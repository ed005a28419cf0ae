// SPDX-License-Identifier: Apache-2.0

package initcreds

// KDC error codes from RFC 4120 §7.5.9 that this package interprets
// directly; everything else is wrapped as [KindKDCReported] and passed
// through to the caller.
const (
	kdcErrCPrincipalUnknown int32 = 6
	kdcErrPreauthRequired   int32 = 25
	kdcErrResponseTooBig    int32 = 52
	kdcErrWrongRealm        int32 = 68
)
