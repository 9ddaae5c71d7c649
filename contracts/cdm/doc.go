/*
Package cdm implements the CDM contract which keeps a shared append-only log
of satellite Conjunction Data Messages.

The account deploying the contract becomes its owner. The owner whitelists
CDM providers with AddProvider; whitelisted providers append messages with
SubmitMessage. A message is four integers: NORAD IDs of two objects, the
collision probability and the time of the closest pass.

AddProvider invoked by anyone but the owner fails. SubmitMessage invoked by
an account which is not a provider completes successfully but does nothing.

# Contract notifications

ProviderAdded notification. This notification is produced when the owner
whitelists a new provider. Providers can be added several times, each call
produces a notification.

	ProviderAdded:
	  - name: provider
	    type: Hash160

MessageSubmitted notification. This notification is produced when a message
submitted by a provider is appended to the log.

	MessageSubmitted:
	  - name: provider
	    type: Hash160
	  - name: object1ID
	    type: Integer
	  - name: object2ID
	    type: Integer
	  - name: collisionProbability
	    type: Integer
	  - name: timeOfClosestPass
	    type: Integer
*/
package cdm

/*
Contract storage model.

Current conventions:
 <index>: 8-byte big-endian message number starting from 0

# Summary
Key-value storage format:
 - 'o' -> interop.Hash160
   owner of the contract, set once at deployment
 - 'p' -> []interop.Hash160
   serialized list of providers in the order they were added
 - 'c' -> int
   number of messages in the log
 - 'm' + <index> -> ConjunctionDataMessage
   serialized message

# Log
Messages are never changed or removed. Storage iteration over 'm' prefix
returns them in submission order.
*/
