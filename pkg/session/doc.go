/*
Package session implements session management and persistence orchestration.

Each session owns one answer tree, persisted in a ports.BlobStore under its own key,
plus the last pricing returned for it. Requests against the same session are
serialised by a reference-counted local mutex and, when configured, a distributed
lock shared by every replica.
*/
package session
