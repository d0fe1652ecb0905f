// Package resolver turns a materialized source into named tables.
//
// Resolution runs in four steps:
//
//  1. Plan: for each reader, in declaration order, list the blobs of the
//     storage and map each one to a table. Blobs without a table are
//     skipped. The blobs a reader maps to one table form one entry.
//  2. Naming: every entry gets a candidate name. A labelled reader
//     produces "<table>_<label>" unless the conflict policy has an explicit
//     rule for the bare table name, in which case the bare name is kept.
//  3. Conflicts: entries sharing a candidate name collide. The strategy for
//     that name (explicit rule, else the default) either rejects the
//     collision with a *ConflictError or unions the entries in reader order.
//  4. Tables: each entry infers its schema from its first blob, appends its
//     attribute fields and concatenates one record source per blob.
//
// Only record iteration is lazy; resolution itself reads the storage
// listing and one header per entry.
//
// A ResolvedSource owns the storage of its materialized source and must be
// closed. Cache keeps resolved sources for a TTL and shares them between
// callers through leases.
package resolver
