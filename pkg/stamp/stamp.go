package stamp

import (
	"crypto/md5"
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"math/big"
	"sync"

	"github.com/zeebo/blake3"
)

const (
	// DigestWidth is the minimum number of hex digits in a Digest stamp.
	DigestWidth = 32
	// FastDigestWidth is the minimum number of hex digits in a FastDigest stamp.
	FastDigestWidth = 16
	// ChecksumWidth is the minimum number of hex digits in a Checksum stamp.
	ChecksumWidth = 64
)

// family couples a pool of reusable hash contexts with its rendering width.
type family struct {
	width int
	pool  sync.Pool
}

func newFamily(width int, fn func() hash.Hash) *family {
	return &family{
		width: width,
		pool:  sync.Pool{New: func() any { return fn() }},
	}
}

var (
	secure = newFamily(DigestWidth, sha256.New)
	fast   = newFamily(FastDigestWidth, md5.New)
	check  = newFamily(ChecksumWidth, func() hash.Hash { return blake3.New() })
)

// Digest returns the SHA-256 stamp of input.
func Digest(input string) string {
	return secure.sumBytes([]byte(input))
}

// DigestBytes returns the SHA-256 stamp of input.
func DigestBytes(input []byte) string {
	return secure.sumBytes(input)
}

// DigestReader returns the SHA-256 stamp of everything remaining in r.
func DigestReader(r io.Reader) (string, error) {
	return secure.sumReader(r)
}

// FastDigest returns the MD5 stamp of input.
func FastDigest(input string) string {
	return fast.sumBytes([]byte(input))
}

// FastDigestBytes returns the MD5 stamp of input.
func FastDigestBytes(input []byte) string {
	return fast.sumBytes(input)
}

// FastDigestReader returns the MD5 stamp of everything remaining in r.
func FastDigestReader(r io.Reader) (string, error) {
	return fast.sumReader(r)
}

// Checksum returns the BLAKE3-256 stamp of input.
func Checksum(input string) string {
	return check.sumBytes([]byte(input))
}

// ChecksumBytes returns the BLAKE3-256 stamp of input.
func ChecksumBytes(input []byte) string {
	return check.sumBytes(input)
}

// ChecksumReader returns the BLAKE3-256 stamp of everything remaining in r.
func ChecksumReader(r io.Reader) (string, error) {
	return check.sumReader(r)
}

func (f *family) sumBytes(input []byte) string {
	h := f.acquire()
	defer f.pool.Put(h)
	_, _ = h.Write(input)
	return format(h.Sum(nil), f.width)
}

func (f *family) sumReader(r io.Reader) (string, error) {
	if r == nil {
		return "", fmt.Errorf("stamp: reader is nil")
	}
	h := f.acquire()
	defer f.pool.Put(h)
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("stamp: read input: %w", err)
	}
	return format(h.Sum(nil), f.width), nil
}

func (f *family) acquire() hash.Hash {
	h := f.pool.Get().(hash.Hash)
	h.Reset()
	return h
}

// format renders sum as an unsigned integer in uppercase hex, zero padded to
// at least width digits.
func format(sum []byte, width int) string {
	return fmt.Sprintf("%0*X", width, new(big.Int).SetBytes(sum))
}
