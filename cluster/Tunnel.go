package cluster

import (
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/outlaybuild/forge/internal/base"
)

// Tunnel wraps one websocket connection to a farm peer: a dial/listen
// pair with last-read/last-write tracking for ping scheduling, over
// gorilla/websocket rather than a QUIC stream (DESIGN.md ADR-2).
type Tunnel struct {
	conn      *websocket.Conn
	lastWrite time.Time
	lastRead  time.Time
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,
}

// DialTunnel opens a worker connection.
func DialTunnel(addr string) (*Tunnel, error) {
	url := fmt.Sprintf("ws://%s/forge/v1", addr)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	base.LogVerbose(LogCluster, "dialed farm peer %q", addr)
	now := time.Now()
	return &Tunnel{conn: conn, lastWrite: now, lastRead: now}, nil
}

// AcceptTunnel upgrades an incoming HTTP connection to a websocket tunnel on
// the worker side.
func AcceptTunnel(w http.ResponseWriter, r *http.Request) (*Tunnel, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Tunnel{conn: conn, lastWrite: now, lastRead: now}, nil
}

func (t *Tunnel) Close() error { return t.conn.Close() }

// SendJob writes a JobRequest as a single JSON websocket text frame.
func (t *Tunnel) SendJob(job JobRequest) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	t.lastWrite = time.Now()
	return t.conn.WriteMessage(websocket.TextMessage, payload)
}

// RecvJob blocks for the next JobRequest frame.
func (t *Tunnel) RecvJob() (JobRequest, error) {
	var job JobRequest
	_, payload, err := t.conn.ReadMessage()
	if err != nil {
		return job, err
	}
	t.lastRead = time.Now()
	err = json.Unmarshal(payload, &job)
	return job, err
}

// SendResult writes a JobResult frame back to the dispatcher.
func (t *Tunnel) SendResult(result JobResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	t.lastWrite = time.Now()
	return t.conn.WriteMessage(websocket.TextMessage, payload)
}

// RecvResult blocks for the next JobResult frame; its ID is not checked
// against the request that was sent.
func (t *Tunnel) RecvResult() (JobResult, error) {
	var result JobResult
	_, payload, err := t.conn.ReadMessage()
	if err != nil {
		return result, err
	}
	t.lastRead = time.Now()
	err = json.Unmarshal(payload, &result)
	return result, err
}

func (t *Tunnel) TimeSinceLastWrite() time.Duration { return time.Since(t.lastWrite) }
func (t *Tunnel) TimeSinceLastRead() time.Duration  { return time.Since(t.lastRead) }
