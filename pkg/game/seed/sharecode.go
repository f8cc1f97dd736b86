package seed

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// ErrInvalidShareCode is returned when a share code cannot be decoded.
var ErrInvalidShareCode = errors.New("invalid share code")

// Share code layout (version 1), before base64url encoding:
//
//	[0]     version
//	[1:5]   primary seed, big endian
//	[5:13]  timestamp, big endian
//	[13:17] low 32 bits of xxhash64 over bytes [0:13]
//
// Stream seeds are not stored; they are re-derived from the primary seed.
const (
	payloadLen = 13
	guardLen   = 4
	codeLen    = payloadLen + guardLen
)

var shareEncoding = base64.RawURLEncoding.Strict()

// Encode renders a bundle as a URL-safe share code
func Encode(b Bundle) string {
	buf := make([]byte, codeLen)
	buf[0] = b.Version
	binary.BigEndian.PutUint32(buf[1:5], b.Primary)
	binary.BigEndian.PutUint64(buf[5:13], uint64(b.Timestamp))
	binary.BigEndian.PutUint32(buf[13:], guard(buf[:payloadLen]))
	return shareEncoding.EncodeToString(buf)
}

// Decode parses a share code produced by Encode. Any malformed, truncated,
// tampered or unknown-version code is rejected with ErrInvalidShareCode, as is
// any string other than the exact text Encode would produce for its bundle.
func Decode(code string) (Bundle, error) {
	if code == "" {
		return Bundle{}, fmt.Errorf("%w: empty", ErrInvalidShareCode)
	}
	buf, err := shareEncoding.DecodeString(code)
	if err != nil {
		return Bundle{}, fmt.Errorf("%w: %v", ErrInvalidShareCode, err)
	}
	if len(buf) != codeLen {
		return Bundle{}, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidShareCode, len(buf), codeLen)
	}
	if got, want := binary.BigEndian.Uint32(buf[payloadLen:]), guard(buf[:payloadLen]); got != want {
		return Bundle{}, fmt.Errorf("%w: checksum mismatch", ErrInvalidShareCode)
	}
	if buf[0] != Version {
		return Bundle{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidShareCode, buf[0])
	}

	b := Derive(binary.BigEndian.Uint32(buf[1:5]))
	b.Timestamp = int64(binary.BigEndian.Uint64(buf[5:13]))
	if err := b.Validate(); err != nil {
		return Bundle{}, fmt.Errorf("%w: %w", ErrInvalidShareCode, err)
	}
	// The decoder skips CR and LF
	if Encode(b) != code {
		return Bundle{}, fmt.Errorf("%w: not in canonical form", ErrInvalidShareCode)
	}
	return b, nil
}

func guard(payload []byte) uint32 {
	return uint32(xxhash.Sum64(payload))
}
