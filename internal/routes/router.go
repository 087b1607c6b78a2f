package routes

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tenant-reports/internal/config"
	"tenant-reports/internal/launcher"
	"tenant-reports/internal/middleware"
	appErrors "tenant-reports/pkg/errors"
)

const indexPage = `<!DOCTYPE html>
<html>
<head><title>Report Launcher</title></head>
<body>
<h1>Report Launcher</h1>
<div id="scripts"></div>
<pre id="status"></pre>
<script>
async function refresh() {
  const status = await (await fetch('/api/status')).json();
  document.getElementById('status').textContent = JSON.stringify(status, null, 2);
  const running = status.state === 'running';
  const scripts = await (await fetch('/api/scripts')).json();
  const div = document.getElementById('scripts');
  div.innerHTML = '';
  for (const s of scripts) {
    const btn = document.createElement('button');
    btn.textContent = s.name;
    btn.disabled = running;
    btn.onclick = () => fetch('/api/run', {
      method: 'POST',
      headers: {'Content-Type': 'application/json'},
      body: JSON.stringify({name: s.name})
    }).then(refresh);
    div.appendChild(btn);
  }
}
refresh();
setInterval(refresh, 2000);
</script>
</body>
</html>`

// SetupRoutes wires the launcher HTTP surface: a minimal page of script
// buttons plus the JSON API it polls.
func SetupRoutes(cfg *config.Config, runner *launcher.Runner, self string) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Launcher is running",
		})
	})

	router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexPage))
	})

	router.GET("/api/scripts", func(c *gin.Context) {
		scripts, err := launcher.Discover(cfg.Launcher.ScriptsDir, self)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if scripts == nil {
			scripts = []launcher.Script{}
		}
		c.JSON(http.StatusOK, scripts)
	})

	router.POST("/api/run", func(c *gin.Context) {
		var req struct {
			Name string `json:"name" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "script name is required"})
			return
		}

		scripts, err := launcher.Discover(cfg.Launcher.ScriptsDir, self)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		script, err := launcher.Find(scripts, req.Name)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}

		// The child must outlive the HTTP request, so it does not run
		// under the request context.
		id, err := runner.Start(context.Background(), script)
		if err != nil {
			if errors.Is(err, appErrors.ErrRunInProgress) {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"id": id.String()})
	})

	router.GET("/api/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, runner.Status())
	})

	return router
}
