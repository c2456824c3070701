package persistence

import (
	"encoding/binary"
	"fmt"

	"github.com/hupe1980/docstore"
	"github.com/hupe1980/docstore/codec"
)

// Encode serializes snap into a frame using c and compression comp.
// A nil codec selects codec.Default.
func Encode(snap *docstore.Snapshot, c codec.Codec, comp Compression) ([]byte, error) {
	if snap == nil {
		return nil, fmt.Errorf("persistence: nil snapshot")
	}
	if c == nil {
		c = codec.Default
	}
	if len(c.Name()) > maxCodecName {
		return nil, fmt.Errorf("persistence: codec name %q too long", c.Name())
	}

	raw, err := c.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("persistence: encode snapshot: %w", err)
	}
	payload, err := compress(comp, raw)
	if err != nil {
		return nil, fmt.Errorf("persistence: compress %s: %w", comp, err)
	}

	h := Header{
		Version:     Version,
		Compression: comp,
		Codec:       c.Name(),
		PayloadLen:  uint64(len(payload)),
		Checksum:    Checksum(payload),
	}

	buf := make([]byte, 0, h.Size()+len(payload))
	buf = binary.LittleEndian.AppendUint32(buf, MagicNumber)
	buf = binary.LittleEndian.AppendUint16(buf, h.Version)
	buf = append(buf, byte(h.Compression), byte(len(h.Codec)))
	buf = append(buf, h.Codec...)
	buf = binary.LittleEndian.AppendUint64(buf, h.PayloadLen)
	buf = binary.LittleEndian.AppendUint64(buf, h.Checksum)
	return append(buf, payload...), nil
}

// ReadHeader parses the frame header without touching the payload.
func ReadHeader(data []byte) (Header, error) {
	var h Header
	if len(data) < fixedHeaderSize {
		return h, ErrTruncated
	}
	if binary.LittleEndian.Uint32(data[0:4]) != MagicNumber {
		return h, ErrInvalidMagic
	}
	h.Version = binary.LittleEndian.Uint16(data[4:6])
	if h.Version != Version {
		return h, fmt.Errorf("%w: %d", ErrInvalidVersion, h.Version)
	}
	h.Compression = Compression(data[6])
	nameLen := int(data[7])

	off := fixedHeaderSize
	if len(data) < off+nameLen+lengthsSize {
		return h, ErrTruncated
	}
	h.Codec = string(data[off : off+nameLen])
	off += nameLen
	h.PayloadLen = binary.LittleEndian.Uint64(data[off:])
	h.Checksum = binary.LittleEndian.Uint64(data[off+8:])
	return h, nil
}

// Decode parses a frame produced by Encode. The codec recorded in the header
// is resolved with codec.ByName.
func Decode(data []byte) (*docstore.Snapshot, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return nil, fmt.Errorf("persistence: %w", err)
	}
	c, ok := codec.ByName(h.Codec)
	if !ok {
		return nil, fmt.Errorf("persistence: %w: %q", ErrUnknownCodec, h.Codec)
	}

	payload := data[h.Size():]
	if uint64(len(payload)) != h.PayloadLen {
		return nil, fmt.Errorf("persistence: %w: payload is %d bytes, header says %d", ErrTruncated, len(payload), h.PayloadLen)
	}
	if err := VerifyChecksum(payload, h.Checksum); err != nil {
		return nil, fmt.Errorf("persistence: %w", err)
	}

	raw, err := decompress(h.Compression, payload)
	if err != nil {
		return nil, fmt.Errorf("persistence: decompress %s: %w", h.Compression, err)
	}
	var snap docstore.Snapshot
	if err := c.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("persistence: decode snapshot: %w", err)
	}
	return &snap, nil
}
