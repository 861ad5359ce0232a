package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestSetupStaticFiles(t *testing.T) {
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>krishi</html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	router := gin.New()
	setupStaticFiles(router, dir)

	tests := []struct {
		path       string
		wantStatus int
		wantJSON   bool
	}{
		{"/api/v1/unknown", http.StatusNotFound, true},
		{"/history", http.StatusOK, false},
		{"/", http.StatusOK, false},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != tt.wantStatus {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.wantStatus, rec.Code)
		}
		isJSON := rec.Header().Get("Content-Type") == "application/json; charset=utf-8"
		if isJSON != tt.wantJSON {
			t.Errorf("%s: unexpected content type %q", tt.path, rec.Header().Get("Content-Type"))
		}
	}
}

func TestSetupStaticFiles_MissingDir(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	setupStaticFiles(router, filepath.Join(t.TempDir(), "missing"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 without a frontend, got %d", rec.Code)
	}
}
