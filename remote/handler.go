package remote

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/samthor/rowreorder/order"
)

type replyMessage struct {
	CallID  int            `json:"c,omitzero"`
	Ok      bool           `json:"ok"`
	Updates []order.Update `json:"u,omitempty"`
	Err     string         `json:"err,omitzero"`
}

// statusFor maps a move error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnknownRecord):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidMove):
		return http.StatusBadRequest
	case errors.Is(err, ErrExcessTraffic):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// Handler serves moves posted as forms (or GET query parameters), as sent by HTTPUpdater.
// Successful moves reply with the applied rank writes as JSON.
func (s *Store) Handler(limit *LimitConfig) http.Handler {
	gate := limit.gate()

	return httpFunc(func(w http.ResponseWriter, r *http.Request) any {
		switch r.Method {
		case http.MethodGet, http.MethodPost, http.MethodPut:
		default:
			w.Header().Set("Allow", "GET, POST, PUT")
			return http.StatusMethodNotAllowed
		}

		if err := r.ParseForm(); err != nil {
			return errors.Join(ErrInvalidMove, err)
		}

		req, err := ParseValues(r.Form)
		if err != nil {
			return err
		}
		if err := gate.admit(req); err != nil {
			return err
		}
		updates, err := s.Apply(req)
		if err != nil {
			return err
		}
		return &replyMessage{Ok: true, Updates: updates}
	})
}

// httpFunc is a handler which returns a simple result type, or nil if it has already written its reply.
type httpFunc func(http.ResponseWriter, *http.Request) any

func (fn httpFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch x := fn(w, r).(type) {
	case nil:
	case int:
		w.WriteHeader(x)
	case error:
		code := statusFor(x)
		if code == http.StatusInternalServerError {
			log.Printf("got err handling %s: err=%v", r.URL.Path, x)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(&replyMessage{Err: x.Error()})
	default:
		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(x)
		if err != nil {
			log.Printf("got err encoding %s: err=%v", r.URL.Path, err)
		}
	}
}
