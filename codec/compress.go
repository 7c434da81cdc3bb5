package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Zstd wraps inner with zstd compression.
//
// Record and partition files stay self-contained: the whole encoded document
// is compressed as one zstd frame. Decoding bytes that are not a valid frame
// fails, which surfaces as a corrupt record/index to the caller.
func Zstd(inner Codec) Codec {
	if inner == nil {
		inner = Default
	}
	return &zstdCodec{inner: inner}
}

// Shared encoder/decoder; EncodeAll/DecodeAll are safe for concurrent use.
var (
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil)
)

type zstdCodec struct {
	inner Codec
}

func (c *zstdCodec) Marshal(v any) ([]byte, error) {
	b, err := c.inner.Marshal(v)
	if err != nil {
		return nil, err
	}
	return zstdEncoder.EncodeAll(b, nil), nil
}

func (c *zstdCodec) Unmarshal(data []byte, v any) error {
	b, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return fmt.Errorf("zstd decode: %w", err)
	}
	return c.inner.Unmarshal(b, v)
}

func (c *zstdCodec) Name() string { return c.inner.Name() + "+zstd" }

// LZ4 wraps inner with lz4 frame compression.
func LZ4(inner Codec) Codec {
	if inner == nil {
		inner = Default
	}
	return &lz4Codec{inner: inner}
}

type lz4Codec struct {
	inner Codec
}

func (c *lz4Codec) Marshal(v any) ([]byte, error) {
	b, err := c.inner.Marshal(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(b); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *lz4Codec) Unmarshal(data []byte, v any) error {
	r := lz4.NewReader(bytes.NewReader(data))
	b, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("lz4 decode: %w", err)
	}
	return c.inner.Unmarshal(b, v)
}

func (c *lz4Codec) Name() string { return c.inner.Name() + "+lz4" }
