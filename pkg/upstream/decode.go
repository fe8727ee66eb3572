package upstream

import (
	"bytes"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// Decode inflates body according to a Content-Encoding header value.
// "gzip" and "deflate" are decoded; any other value, including an empty one,
// returns body unchanged.
//
// "deflate" is tried as a zlib stream first and falls back to raw DEFLATE,
// since servers send both under that name.
func Decode(encoding string, body []byte) ([]byte, error) {
	enc := strings.ToLower(strings.TrimSpace(encoding))
	switch enc {
	case "gzip":
		zr, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, &DecodeError{Encoding: enc, Err: err}
		}
		defer zr.Close()
		return readDecoded(enc, zr)

	case "deflate":
		if zr, err := zlib.NewReader(bytes.NewReader(body)); err == nil {
			defer zr.Close()
			return readDecoded(enc, zr)
		}
		fr := flate.NewReader(bytes.NewReader(body))
		defer fr.Close()
		return readDecoded(enc, fr)
	}

	return body, nil
}

func readDecoded(enc string, r io.Reader) ([]byte, error) {
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, &DecodeError{Encoding: enc, Err: err}
	}
	return out, nil
}
