package api

import (
	xhttp "github.com/katheedev/crypto-sentiment/pkg/http"

	"github.com/labstack/echo/v4"
)

// Composite fans route registration out to several handlers so the server
// only sees one xhttp.Handler.
type Composite struct {
	handlers []xhttp.Handler
}

func NewComposite(handlers ...xhttp.Handler) *Composite {
	return &Composite{handlers: handlers}
}

func (c *Composite) RegisterRoutes(e *echo.Echo) {
	for _, h := range c.handlers {
		if h != nil {
			h.RegisterRoutes(e)
		}
	}
}
