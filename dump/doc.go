/*
Package dump provides I/O operations for snapshots of the CDM log.

A snapshot pins the contract state (owner and providers) and the complete
message log at some blockchain height. Snapshots are used to archive the log
and to compare it across networks.

The package works with dumps stored in the file system using human-readable
encoding.
*/
package dump
