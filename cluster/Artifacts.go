package cluster

import (
	"fmt"
	"net/http"

	"golang.org/x/net/webdav"

	"github.com/outlaybuild/forge/internal/base"
)

var LogWebdav = base.NewLogCategory("Webdav")

// ArtifactServer exposes a single staging directory over WebDAV so a
// dispatching peer can push prerequisite inputs to a worker (and pull
// produced outputs back) without round-tripping every file through the
// websocket job channel -- one handler per build's staging root, since
// forge workers don't need filesystem-wide DAV access.
type ArtifactServer struct {
	Prefix  string
	handler webdav.Handler
}

func NewArtifactServer(stagingDir string) *ArtifactServer {
	prefix := "/forge/artifacts"
	return &ArtifactServer{
		Prefix: prefix,
		handler: webdav.Handler{
			Prefix:     prefix,
			FileSystem: webdav.Dir(stagingDir),
			LockSystem: webdav.NewMemLS(),
			Logger: func(r *http.Request, err error) {
				if err != nil {
					base.LogWarning(LogWebdav, "%s %s: %v", r.Method, r.URL.Path, err)
				} else {
					base.LogTrace(LogWebdav, "%s %s", r.Method, r.URL.Path)
				}
			},
		},
	}
}

func (s *ArtifactServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Endpoint returns the WebDAV URL a peer mounts this server's staging root
// under, given the worker's advertised host:port.
func (s *ArtifactServer) Endpoint(addr string) string {
	return fmt.Sprintf("http://%s%s", addr, s.Prefix)
}
