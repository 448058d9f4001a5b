package controller

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tnqbao/gau-object-gallery/realtime"
)

// Subscribe upgrades the request to a WebSocket session fed by the hub.
func (ctrl *Controller) Subscribe(c *gin.Context) {
	ctx := c.Request.Context()

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already written the error response
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Realtime] WebSocket upgrade failed: %v", err)
		return
	}

	session := realtime.NewSession(ctrl.Hub, conn, ctrl.Infra.Logger)
	if !ctrl.Hub.Register(session) {
		_ = conn.Close()
		return
	}

	go session.WritePump()
	go session.ReadPump()
}

// newOriginChecker accepts requests without an Origin header, any origin when
// "*" is configured, and otherwise only the listed scheme://host origins.
func newOriginChecker(allowDomains string) func(r *http.Request) bool {
	allowed := make(map[string]struct{})
	for _, origin := range strings.Split(allowDomains, ",") {
		trimmed := strings.TrimRight(strings.TrimSpace(origin), "/")
		if trimmed != "" {
			allowed[trimmed] = struct{}{}
		}
	}
	_, allowAll := allowed["*"]

	return func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" || allowAll {
			return true
		}

		parsed, err := url.Parse(origin)
		if err != nil || parsed.Host == "" {
			return false
		}
		_, ok := allowed[parsed.Scheme+"://"+parsed.Host]
		return ok
	}
}
