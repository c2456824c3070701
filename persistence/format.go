package persistence

import "errors"

const (
	// MagicNumber identifies docstore snapshot frames (ASCII: "DSN1").
	MagicNumber uint32 = 0x314E5344
	// Version is the current frame format version.
	Version uint16 = 1

	// fixed header: magic(4) version(2) compression(1) codecLen(1)
	fixedHeaderSize = 8
	// trailer of the header: payloadLen(8) checksum(8)
	lengthsSize = 16

	maxCodecName = 255
)

var (
	ErrInvalidMagic    = errors.New("invalid magic number")
	ErrInvalidVersion  = errors.New("unsupported version")
	ErrTruncated       = errors.New("truncated frame")
	ErrUnknownCodec    = errors.New("unknown codec")
	ErrUnknownCompress = errors.New("unknown compression")
)

// Header describes a snapshot frame.
type Header struct {
	Version     uint16
	Compression Compression
	Codec       string
	PayloadLen  uint64
	Checksum    uint64
}

// Size returns the encoded header length in bytes.
func (h Header) Size() int {
	return fixedHeaderSize + len(h.Codec) + lengthsSize
}
