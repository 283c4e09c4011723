package transport

import (
	"bytes"
	"io"
	"net/http"
)

// bodySource returns a function yielding a fresh copy of r's body for each
// send. A body without GetBody is read into memory once; r is not modified.
func bodySource(r *http.Request) (func() (io.ReadCloser, error), error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	if r.GetBody != nil {
		_ = r.Body.Close()
		return r.GetBody, nil
	}
	buf, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	if err != nil {
		return nil, err
	}
	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(buf)), nil
	}, nil
}

// clone copies r for a single send, with its own headers and a body drawn
// from getBody.
func clone(r *http.Request, getBody func() (io.ReadCloser, error)) (*http.Request, error) {
	cloned := r.Clone(r.Context())
	if getBody == nil {
		return cloned, nil
	}
	body, err := getBody()
	if err != nil {
		return nil, err
	}
	cloned.Body = body
	cloned.GetBody = getBody
	return cloned, nil
}
