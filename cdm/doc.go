/*
Package cdm implements the authorization-gated log of Conjunction Data
Messages.

A State is created once by Initialize, which fixes the owner. The owner
whitelists providers with AddProvider, and providers append messages with
SubmitMessage. Both operations evaluate their guard (IsOwner, IsProvider)
against the state before any mutation, so a rejected call never leaves a
partial change behind.

The two rejections are asymmetric: AddProvider by a non-owner fails with
ErrUnauthorized, while SubmitMessage by a non-provider completes without
error and without effect.

Operations are synchronous and do no locking. Callers (see the host
package) serialize access to a State.
*/
package cdm
