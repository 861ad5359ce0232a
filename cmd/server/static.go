package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// setupStaticFiles serves the frontend from dir when it exists.
// Unknown /api paths always get a JSON 404.
func setupStaticFiles(router *gin.Engine, dir string) {
	index := filepath.Join(dir, "index.html")
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		log.Printf("⚠️  Frontend directory %q not found, serving API only", dir)
		router.NoRoute(apiNotFound)
		return
	}

	log.Printf("📦 Serving frontend assets from %s", dir)
	router.Static("/static", filepath.Join(dir, "static"))
	router.StaticFile("/favicon.ico", filepath.Join(dir, "static", "favicon.ico"))

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			apiNotFound(c)
			return
		}
		if _, err := os.Stat(index); err != nil {
			c.String(http.StatusNotFound, "404 page not found")
			return
		}
		c.File(index)
	})
}

func apiNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
}
