package oauth

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/qepting91/reddit-stream-monitor/internal/domain"
)

// CallbackParams holds the query parameters of the provider redirect.
type CallbackParams map[string]string

func (p CallbackParams) State() string { return p["state"] }
func (p CallbackParams) Code() string  { return p["code"] }

// ProviderError returns the provider's error value and whether one was sent.
func (p CallbackParams) ProviderError() (string, bool) {
	v, ok := p["error"]
	return v, ok
}

// ParseCallback extracts the query parameters from the first line of a
// raw HTTP request ("METHOD target PROTOCOL"). The path is ignored.
func ParseCallback(raw []byte) (CallbackParams, error) {
	line, _, _ := bytes.Cut(raw, []byte("\n"))
	fields := strings.Fields(strings.TrimRight(string(line), "\r"))
	if len(fields) != 3 {
		return nil, parseErr(fmt.Errorf("malformed request line %q", line))
	}
	_, query, ok := strings.Cut(fields[1], "?")
	if !ok {
		return nil, parseErr(errors.New("request target has no query string"))
	}

	params := make(CallbackParams)
	for _, pair := range strings.Split(query, "&") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, parseErr(fmt.Errorf("query pair %q has no '='", pair))
		}
		k, err := url.QueryUnescape(key)
		if err != nil {
			return nil, parseErr(err)
		}
		v, err := url.QueryUnescape(value)
		if err != nil {
			return nil, parseErr(err)
		}
		params[k] = v
	}

	if _, ok := params["state"]; !ok {
		return nil, parseErr(errors.New("callback has no state parameter"))
	}
	_, hasCode := params["code"]
	_, hasErr := params["error"]
	if !hasCode && !hasErr {
		return nil, parseErr(errors.New("callback has neither code nor error"))
	}
	return params, nil
}

func parseErr(err error) error {
	return domain.E(domain.KindProtocolParse, "parse callback", err)
}
