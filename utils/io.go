package utils

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"io"

	"github.com/carbocation/pfx"
	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

type DataType byte

const (
	DataTypeInvalid DataType = iota
	DataTypeNoCompression
	DataTypeGzip
	DataTypeZip
	DataTypeXZ
	DataTypeZstd
	DataTypeBZip2
)

var byteCodeSigs = map[DataType][]byte{
	DataTypeGzip:  {0x1f, 0x8b, 0x08},
	DataTypeZip:   {0x50, 0x4b, 0x03, 0x04},
	DataTypeXZ:    {0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00},
	DataTypeZstd:  {0x28, 0xb5, 0x2f, 0xfd},
	DataTypeBZip2: {0x42, 0x5a, 0x68},
}

// DetectDataType peeks at the leading bytes of br, without consuming them,
// and matches them against known compression signatures.
func DetectDataType(br *bufio.Reader) (DataType, error) {
	buff, err := br.Peek(6)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return DataTypeInvalid, pfx.Err(err)
	}

	for dt, sig := range byteCodeSigs {
		if len(buff) >= len(sig) && bytes.Equal(buff[:len(sig)], sig) {
			return dt, nil
		}
	}

	return DataTypeNoCompression, nil
}

// MaybeDecompress wraps r in the decompressor matching its signature.
// bgzip output is multi-member gzip and is handled by the gzip branch.
// Uncompressed input is passed through as is.
func MaybeDecompress(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)

	dt, err := DetectDataType(br)
	if err != nil {
		return nil, err
	}

	switch dt {
	case DataTypeGzip:
		gr, err := pgzip.NewReader(br)
		if err != nil {
			return nil, pfx.Err(err)
		}
		return gr, nil
	case DataTypeZstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, pfx.Err(err)
		}
		return zr.IOReadCloser(), nil
	case DataTypeZip:
		zr := zipstream.NewReader(br)
		// only the first entry of an archive is read
		if _, err := zr.Next(); err != nil {
			return nil, pfx.Err(err)
		}
		return &readCloserFaker{zr}, nil
	case DataTypeBZip2:
		return &readCloserFaker{bzip2.NewReader(br)}, nil
	case DataTypeXZ:
		reader, err := xz.NewReader(br, 0)
		if err != nil {
			return nil, pfx.Err(err)
		}
		return &readCloserFaker{reader}, nil
	}

	return &readCloserFaker{br}, nil
}

// readCloserFaker "upgrades" readers that don't need to be closed
type readCloserFaker struct {
	io.Reader
}

func (c *readCloserFaker) Close() error {
	return nil
}
