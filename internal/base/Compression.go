package base

import (
	"fmt"
	"io"

	"github.com/DataDog/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionFormat enumerates the codecs forge's persistent caches offer.
type CompressionFormat int32

const (
	COMPRESSION_FORMAT_NONE CompressionFormat = iota
	COMPRESSION_FORMAT_LZ4
	COMPRESSION_FORMAT_ZSTD
)

func (f CompressionFormat) String() string {
	switch f {
	case COMPRESSION_FORMAT_LZ4:
		return "Lz4"
	case COMPRESSION_FORMAT_ZSTD:
		return "Zstd"
	default:
		return "None"
	}
}

// NewCompressedWriter wraps dst with the requested codec. Lz4 is forge's
// default -- almost as fast as uncompressed, but with far fewer IO calls.
func NewCompressedWriter(dst io.Writer, format CompressionFormat) (io.WriteCloser, error) {
	switch format {
	case COMPRESSION_FORMAT_NONE:
		return nopWriteCloser{dst}, nil
	case COMPRESSION_FORMAT_LZ4:
		return lz4.NewWriter(dst), nil
	case COMPRESSION_FORMAT_ZSTD:
		return zstd.NewWriter(dst), nil
	default:
		return nil, fmt.Errorf("compression: unknown format %v", format)
	}
}

func NewCompressedReader(src io.Reader, format CompressionFormat) (io.ReadCloser, error) {
	switch format {
	case COMPRESSION_FORMAT_NONE:
		return io.NopCloser(src), nil
	case COMPRESSION_FORMAT_LZ4:
		return io.NopCloser(lz4.NewReader(src)), nil
	case COMPRESSION_FORMAT_ZSTD:
		return zstd.NewReader(src), nil
	default:
		return nil, fmt.Errorf("compression: unknown format %v", format)
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
