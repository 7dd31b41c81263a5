package network

import (
	"bytes"
	"compress/flate"
	"fmt"
	"io"
	"net/http"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

type bodyDecompressFunc = func([]byte) ([]byte, error)
type decompressorFactory = func(io.Reader) (io.Reader, error)

// DecompressResponseBody reads a HTTP response body and undoes any transport
// compression indicated by the content-encoding header.
func DecompressResponseBody(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %s", err)
	}

	encoding := resp.Header.Get("Content-Encoding")
	decompressFunc, err := getBodyDecompressFunc(encoding)
	if err != nil {
		return nil, err
	}

	data, err := decompressFunc(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress response: %s", err)
	}

	return data, nil
}

// Returns a byte decompress function according to encoding type.
func getBodyDecompressFunc(encoding string) (bodyDecompressFunc, error) {
	switch encoding {
	case "br":
		return brotliDecompress, nil
	case "deflate":
		return flateDecompress, nil
	case "gzip":
		return gzipDecompress, nil
	case "zstd":
		return zstdDecompress, nil
	case "", "identity":
		return noDecompress, nil
	default:
		return nil, fmt.Errorf("unknown content-encoding: %s", encoding)
	}
}

// Decompresses given data with decompress function.
func decompressBodyWith(body []byte, factory decompressorFactory) ([]byte, error) {
	byteReader := bytes.NewReader(body)

	reader, err := factory(byteReader)
	if err != nil {
		return nil, err
	}

	output, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	return output, nil
}

func brotliDecompress(body []byte) ([]byte, error) {
	return decompressBodyWith(body, func(r io.Reader) (io.Reader, error) {
		return brotli.NewReader(r), nil
	})
}

func flateDecompress(body []byte) ([]byte, error) {
	return decompressBodyWith(body, func(r io.Reader) (io.Reader, error) {
		return flate.NewReader(r), nil
	})
}

func gzipDecompress(body []byte) ([]byte, error) {
	return decompressBodyWith(body, func(r io.Reader) (io.Reader, error) {
		return gzip.NewReader(r)
	})
}

func zstdDecompress(body []byte) ([]byte, error) {
	return decompressBodyWith(body, func(r io.Reader) (io.Reader, error) {
		return zstd.NewReader(r)
	})
}

func noDecompress(body []byte) ([]byte, error) {
	return body, nil
}
