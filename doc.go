// SPDX-License-Identifier: Apache-2.0

/*
Package initcreds implements the initial-credential acquisition state
machine of a Kerberos v5 client: the Authentication Service (AS) exchange
that turns a client principal and a pre-authentication capability into a
Ticket-Granting Ticket.

The package exposes two entry points over the same underlying logic:

  - [Loop], a blocking all-in-one driver that owns its own transport.
  - [NewContext] plus [Context.Step], a resumable state machine that
    externalizes transport: callers perform I/O themselves and feed
    replies back in.

A [Context] is not safe for concurrent use by more than one goroutine.
Different contexts are independent. Callers that stop driving a Context
before it completes must still call [Context.Free] to zeroize any key
material it holds.

This package does not perform ASN.1 encoding, decryption, or transport
itself; those are provided by github.com/jcmturner/gokrb5/v8 and by the
caller's network code respectively. Pre-authentication method bodies
(timestamp, encrypted challenge, PKINIT, SAM, FAST armor) are a plugin
surface registered with [RegisterPreauthMethod]; the preauth/encts
subpackage ships the one built-in method. This package only orders
candidates and dispatches to whichever methods are registered.
*/
package initcreds
