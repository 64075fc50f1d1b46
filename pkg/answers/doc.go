/*
Package answers implements the Answer Store: the single source of truth for everything the
user has entered, addressable by dot-separated paths.

The store keeps the answer tree in memory and persists a full snapshot to a ports.BlobStore
after every mutation. Keys are marshalled in sorted order, so writing the same tree twice
yields byte-identical blobs.

Persistence failures never interrupt the wizard: the first failure is logged and the store
keeps working in memory only for the rest of its life.
*/
package answers
