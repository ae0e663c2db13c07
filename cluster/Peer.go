// Package cluster implements the distributed-farm transport the Farm and
// Hybrid executors dispatch remotely-eligible actions over: peer identity,
// a websocket tunnel carrying job bundles, and webdav-staged artifact
// exchange, over gorilla/websocket rather than a QUIC transport (DESIGN.md
// ADR-2), with a job payload narrowed to forge's concrete graph.Action
// batches rather than a generic buildable job shape.
package cluster

import (
	"strings"

	"github.com/Showmax/go-fqdn"
	"github.com/google/uuid"

	"github.com/outlaybuild/forge/internal/base"
)

var LogCluster = base.NewLogCategory("Cluster")

// PeerIdentity names a farm participant: an fqdn-derived hostname plus a
// per-process UUID so a worker restarting on the same host is never
// mistaken for its predecessor.
type PeerIdentity struct {
	Hostname string
	ID       uuid.UUID
}

func NewPeerIdentity() (PeerIdentity, error) {
	host, err := fqdn.FqdnHostname()
	if err != nil {
		host = "unknown-host"
	}
	return PeerIdentity{Hostname: strings.ToLower(host), ID: uuid.New()}, nil
}

func (p PeerIdentity) String() string {
	return p.Hostname + "/" + p.ID.String()
}

// PeerMode is a ladder of how aggressively a worker offers its idle
// capacity to the farm.
type PeerMode int32

const (
	PeerModeDisabled PeerMode = iota
	PeerModeIdle
	PeerModeDedicated
	PeerModeProportional
)

func (m PeerMode) String() string {
	switch m {
	case PeerModeDisabled:
		return "DISABLED"
	case PeerModeIdle:
		return "IDLE"
	case PeerModeDedicated:
		return "DEDICATED"
	case PeerModeProportional:
		return "PROPORTIONAL"
	default:
		return "UNKNOWN"
	}
}
