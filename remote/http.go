package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

const (
	maxErrorBody = 4096
)

// HTTPUpdater sends moves to a URL, as a form body for POST or query parameters otherwise.
type HTTPUpdater struct {
	URL string

	// Method defaults to POST.
	Method string

	// Client defaults to [http.DefaultClient].
	Client *http.Client

	// BeforeSend may customize each request before it is sent, e.g., to add headers.
	// Returning an error aborts the move.
	BeforeSend func(*http.Request) error
}

func (h *HTTPUpdater) Update(ctx context.Context, r Request) error {
	method := h.Method
	if method == "" {
		method = http.MethodPost
	}

	values := r.Values()
	var req *http.Request
	var err error
	if method == http.MethodGet || method == http.MethodHead {
		u := h.URL
		if strings.Contains(u, "?") {
			u += "&" + values.Encode()
		} else {
			u += "?" + values.Encode()
		}
		req, err = http.NewRequestWithContext(ctx, method, u, nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, h.URL, strings.NewReader(values.Encode()))
		if req != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return err
	}

	if h.BeforeSend != nil {
		if err := h.BeforeSend(req); err != nil {
			return err
		}
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		io.Copy(io.Discard, res.Body)
		return nil
	}
	return statusErrorFrom(res)
}

func statusErrorFrom(res *http.Response) *StatusError {
	se := &StatusError{Code: res.StatusCode, Status: http.StatusText(res.StatusCode)}

	b, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	var body replyMessage
	if json.Unmarshal(b, &body) == nil && body.Err != "" {
		se.Status += ": " + body.Err
	}
	return se
}
