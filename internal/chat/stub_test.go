package chat

import (
	"bytes"
	"io"

	fhttp "github.com/bogdanfinn/fhttp"
)

// stubDoer answers every request with a fixed status and body, or err when set
type stubDoer struct {
	status int
	body   string
	err    error
}

func (s *stubDoer) Do(req *fhttp.Request) (*fhttp.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &fhttp.Response{
		StatusCode: s.status,
		Body:       io.NopCloser(bytes.NewReader([]byte(s.body))),
		Header:     make(fhttp.Header),
		Request:    req,
	}, nil
}
