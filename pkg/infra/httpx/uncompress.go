package httpx

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/valyala/fasthttp"
)

// AcceptEncoding is sent on provider requests; every listed coding is
// understood by DecodeBody.
const AcceptEncoding = "gzip, br, zstd, deflate"

// DecodeBody undoes the Content-Encoding of resp. Codings are removed in
// reverse order of application, so "gzip, br" is unwrapped as br then gzip.
func DecodeBody(resp *fasthttp.Response) ([]byte, error) {
	return decodeChain(string(resp.Header.Peek(fasthttp.HeaderContentEncoding)), resp.Body())
}

func decodeChain(contentEncoding string, body []byte) ([]byte, error) {
	if strings.TrimSpace(contentEncoding) == "" {
		return body, nil
	}
	codings := strings.Split(contentEncoding, ",")
	for i := len(codings) - 1; i >= 0; i-- {
		coding := strings.ToLower(strings.TrimSpace(codings[i]))
		var err error
		body, err = decodeOne(coding, body)
		if err != nil {
			return nil, fmt.Errorf("decode %s body: %w", coding, err)
		}
	}
	return body, nil
}

func decodeOne(coding string, body []byte) ([]byte, error) {
	switch coding {
	case "", "identity":
		return body, nil
	case "br":
		return io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
	case "gzip", "x-gzip":
		gr, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		defer gr.Close()
		return io.ReadAll(gr)
	case "zstd":
		dec, err := zstd.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return io.ReadAll(dec)
	case "deflate":
		// RFC 9110 says zlib-wrapped, but raw deflate is common in practice.
		if zr, err := zlib.NewReader(bytes.NewReader(body)); err == nil {
			defer zr.Close()
			return io.ReadAll(zr)
		}
		fr := flate.NewReader(bytes.NewReader(body))
		defer fr.Close()
		return io.ReadAll(fr)
	default:
		return nil, fmt.Errorf("unsupported content-encoding %q", coding)
	}
}
