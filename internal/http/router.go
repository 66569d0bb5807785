package http

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// NewEngine builds the gin engine. Forwarding headers such as X-Forwarded-For
// are honoured only when the peer is one of trustedProxies; with none
// configured the client address is the socket peer.
func NewEngine(trustedProxies []string) (*gin.Engine, error) {
	engine := gin.New()
	engine.Use(gin.Recovery())
	if err := engine.SetTrustedProxies(trustedProxies); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}
	return engine, nil
}
