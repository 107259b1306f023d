package remote

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"golang.org/x/sync/errgroup"
)

const (
	SocketCodeExcessTraffic = 3001
	SocketCodeBadCallID     = 3002
)

var (
	ErrSocketClosed = errors.New("socket closed")
)

type callMessage struct {
	CallID  int     `json:"c"`
	Request Request `json:"r"`
}

// SocketHandler serves moves over a WebSocket.
// Each incoming `{"c":id,"r":request}` gets a reply `{"c":id,"ok":true,"u":[...]}`, or one with "err" set.
func (s *Store) SocketHandler(limit *LimitConfig, options *websocket.AcceptOptions) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sock, err := websocket.Accept(w, r, options)
		if err != nil {
			log.Printf("got err setting up websocket %s: %v", r.URL.Path, err)
			return // websocket.Accept already wrote an error
		}

		// the request context is not valid after Accept
		ctx, cancel := context.WithCancelCause(context.Background())
		err = s.runSocket(ctx, sock, limit)
		cancel(err)

		var closeError websocket.CloseError
		if errors.As(err, &closeError) {
			log.Printf("shutdown socket due to known reason: %+v", closeError)
			sock.Close(closeError.Code, closeError.Reason)
		} else if websocket.CloseStatus(err) != -1 {
			sock.CloseNow()
		} else if err != nil && err != context.Canceled {
			log.Printf("shutdown socket due to error: %v", err)
			sock.Close(websocket.StatusInternalError, "")
		} else {
			sock.Close(websocket.StatusNormalClosure, "")
		}
	})
}

func (s *Store) runSocket(ctx context.Context, sock *websocket.Conn, limit *LimitConfig) error {
	gate := limit.gate()

	for {
		var call callMessage
		if err := wsjson.Read(ctx, sock, &call); err != nil {
			return err
		}
		if call.CallID <= 0 {
			return websocket.CloseError{Code: SocketCodeBadCallID}
		}
		if err := gate.admit(call.Request); err != nil {
			log.Printf("closing reorder socket: %v", err)
			return websocket.CloseError{Code: SocketCodeExcessTraffic, Reason: "too many moves"}
		}

		reply := replyMessage{CallID: call.CallID}
		updates, err := s.Apply(call.Request)
		if err != nil {
			reply.Err = err.Error()
		} else {
			reply.Ok = true
			reply.Updates = updates
		}

		if err := wsjson.Write(ctx, sock, reply); err != nil {
			return err
		}
	}
}

// SocketUpdater sends moves over a single WebSocket to a Store's SocketHandler.
type SocketUpdater struct {
	conn *websocket.Conn
	eg   *errgroup.Group
	ctx  context.Context // done when the read loop stops

	lock    sync.Mutex
	pending map[int]chan replyMessage
}

// DialSocket connects to the given WebSocket URL.
// The connection lives until Close is called or it fails; it is not tied to ctx beyond the dial.
func DialSocket(ctx context.Context, url string, options *websocket.DialOptions) (*SocketUpdater, error) {
	conn, _, err := websocket.Dial(ctx, url, options)
	if err != nil {
		return nil, err
	}

	eg, groupCtx := errgroup.WithContext(context.Background())
	su := &SocketUpdater{
		conn:    conn,
		eg:      eg,
		ctx:     groupCtx,
		pending: map[int]chan replyMessage{},
	}
	eg.Go(func() error { return su.readLoop(groupCtx) })
	return su, nil
}

func (su *SocketUpdater) readLoop(ctx context.Context) error {
	defer su.failPending()

	for {
		var reply replyMessage
		if err := wsjson.Read(ctx, su.conn, &reply); err != nil {
			return err
		}

		su.lock.Lock()
		ch, ok := su.pending[reply.CallID]
		delete(su.pending, reply.CallID)
		su.lock.Unlock()

		if ok {
			ch <- reply // buffered
		}
	}
}

func (su *SocketUpdater) failPending() {
	su.lock.Lock()
	defer su.lock.Unlock()

	for id, ch := range su.pending {
		close(ch)
		delete(su.pending, id)
	}
	su.pending = nil
}

func (su *SocketUpdater) Update(ctx context.Context, r Request) error {
	id := <-callIDs()
	ch := make(chan replyMessage, 1)

	su.lock.Lock()
	if su.pending == nil {
		su.lock.Unlock()
		return ErrSocketClosed
	}
	su.pending[id] = ch
	su.lock.Unlock()

	err := wsjson.Write(ctx, su.conn, callMessage{CallID: id, Request: r})
	if err != nil {
		su.forget(id)
		return err
	}

	select {
	case reply, ok := <-ch:
		if !ok {
			return ErrSocketClosed
		} else if !reply.Ok {
			return &StatusError{Status: reply.Err}
		}
		return nil
	case <-ctx.Done():
		su.forget(id)
		return context.Cause(ctx)
	}
}

func (su *SocketUpdater) forget(id int) {
	su.lock.Lock()
	defer su.lock.Unlock()
	delete(su.pending, id)
}

// Close shuts down the socket and waits for its read loop.
func (su *SocketUpdater) Close() error {
	err := su.conn.Close(websocket.StatusNormalClosure, "")
	su.eg.Wait()
	return err
}

// Done is closed when the socket has stopped reading.
func (su *SocketUpdater) Done() <-chan struct{} {
	return su.ctx.Done()
}
