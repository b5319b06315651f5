// Package stamp hashes strings, byte slices and streams into fixed-width
// uppercase hexadecimal stamps.
//
// Three families are provided:
//   - Digest: SHA-256, rendered with at least 32 hex digits.
//   - FastDigest: MD5, rendered with at least 16 hex digits. MD5 is not
//     collision resistant; use it for deduplication and checksumming of
//     trusted input only.
//   - Checksum: BLAKE3-256, rendered with 64 hex digits.
//
// The digest is read as an unsigned integer and left padded with zeros up to
// the family's minimum width, so stamps produced here match stamps recorded by
// earlier tooling that used the same rendering.
//
// Hash contexts are pooled. A context is reset before use and returned after
// the stamp is formatted, so concurrent callers never share hashing state.
package stamp
