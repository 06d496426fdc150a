// Static page handlers.
//
// The intake form and the response dashboard are embedded into the binary so
// the service ships as a single artifact. Both pages talk to the JSON API.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-sos-backend/internal/web"
)

// servePage writes an embedded HTML page or a 500 if the asset is missing
// from the build.
func servePage(c *gin.Context, name string) {
	data, err := web.Pages.ReadFile("pages/" + name)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "page unavailable")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", data)
}

// IndexPage serves the SOS submission form at GET /.
func (h *Handlers) IndexPage(c *gin.Context) { servePage(c, "index.html") }

// DashboardPage serves the response dashboard at GET /dashboard.
func (h *Handlers) DashboardPage(c *gin.Context) { servePage(c, "dashboard.html") }
