// Package awsutil holds the small shared utilities every emulated service
// needs: wall-clock reads, opaque identifiers, digests and ARN construction.
package awsutil

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NowMillis returns the current wall-clock time in milliseconds since epoch.
func NowMillis() int64 { return time.Now().UnixMilli() }

// NowSecs returns the current wall-clock time in seconds since epoch.
func NowSecs() int64 { return time.Now().Unix() }

// ISO8601Millis renders t as RFC 3339 with millisecond precision in UTC,
// the timestamp format S3 uses in XML bodies.
func ISO8601Millis(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// NewID returns a fresh opaque identifier (UUID v4 string).
func NewID() string { return uuid.NewString() }

// MD5Hex returns the lowercase hex MD5 of data.
func MD5Hex(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// MD5Raw returns the raw 16-byte MD5 digest of data.
func MD5Raw(data []byte) []byte {
	sum := md5.Sum(data)
	return sum[:]
}

// SHA256Raw returns the raw 32-byte SHA-256 digest of data.
func SHA256Raw(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// SHA256Hex returns the lowercase hex SHA-256 of data.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Base64Decode decodes standard base64, returning nil on malformed input.
func Base64Decode(s string) []byte {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}

// Base64Encode encodes data as standard base64.
func Base64Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// ARN builds an AWS-style resource name for the given service.
func ARN(service, region, accountID, resource string) string {
	return fmt.Sprintf("arn:aws:%s:%s:%s:%s", service, region, accountID, resource)
}

// HexDecode decodes a lowercase or uppercase hex string, returning nil on
// malformed input.
func HexDecode(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}
