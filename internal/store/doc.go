// Package store abstracts the output location of a fetch.
//
// Two implementations exist:
//   - [DirStore]: a local directory, created with its parents on open
//   - [BucketStore]: any gocloud.dev/blob bucket (mem://, file://, s3://, gs://)
//
// [Open] picks one from a location string.
//
// # Writes
//
// [Store.Create] returns a [Writer]; the data becomes visible under its name
// only on [Writer.Commit]. A directory in atomic mode writes to a hidden part
// file,
//
//	{dir}/.{name}.{uuid}.part
//
// and links it onto {dir}/{name} on commit. If {name} was created by someone
// else in the meantime, Commit returns [ErrExists] and the part is removed.
// Without atomic mode the file is created directly with O_EXCL and an
// interrupted write leaves a truncated file that later runs will treat as
// present.
//
// Bucket writes are always atomic: an aborted writer is cancelled and never
// becomes visible.
//
// # Directory options
//
//   - Lock: advisory lock on {dir}/.skyfetch.lock for the store's lifetime
//   - MinFreeSpace: refuse to open when the filesystem is too full
package store
