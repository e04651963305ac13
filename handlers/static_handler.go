// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// ServeUpload serves profile pictures from the upload directory.
func (h *Handler) ServeUpload(c echo.Context) error {
	requestedPath := c.Param("*")

	cleanPath := filepath.Clean(requestedPath)
	if strings.Contains(cleanPath, "..") || strings.HasPrefix(cleanPath, "/") {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid file path")
	}

	uploadDir := h.Config.UploadDir
	fullPath := filepath.Join(uploadDir, cleanPath)

	absUploadDir, err := filepath.Abs(uploadDir)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Unable to resolve upload directory")
	}

	absFullPath, err := filepath.Abs(fullPath)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid file path")
	}

	if !strings.HasPrefix(absFullPath, absUploadDir+string(os.PathSeparator)) {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}

	ext := strings.ToLower(filepath.Ext(absFullPath))
	if !allowedExtensions[ext] {
		return echo.NewHTTPError(http.StatusForbidden, "File type not allowed")
	}

	fileInfo, err := os.Stat(absFullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return echo.NewHTTPError(http.StatusNotFound, "File not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Unable to access file")
	}

	if fileInfo.IsDir() {
		return echo.NewHTTPError(http.StatusForbidden, "Directory listing not allowed")
	}

	c.Response().Header().Set("X-Content-Type-Options", "nosniff")
	c.Response().Header().Set("Cache-Control", "public, max-age=3600")

	return c.File(absFullPath)
}

// saveUpload stores the profile_pic form file as <name>_<uuid>_<filename> and
// returns the stored name. It returns "" when no acceptable file was sent.
// Names never collide, so removing a stored file only affects its own upload.
func (h *Handler) saveUpload(c echo.Context, providerName string) (string, error) {
	file, err := c.FormFile("profile_pic")
	if err != nil {
		return "", nil
	}

	filename := secureFilename(file.Filename)
	if filename == "" || !allowedExtensions[strings.ToLower(filepath.Ext(filename))] {
		c.Logger().Debugf("Ignoring profile picture %q", file.Filename)
		return "", nil
	}
	filename = fmt.Sprintf("%s_%s_%s", secureFilename(strings.ReplaceAll(providerName, " ", "_")), uuid.NewString(), filename)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(h.Config.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	dst, err := os.OpenFile(filepath.Join(h.Config.UploadDir, filename), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return filename, nil
}

// secureFilename keeps ASCII letters, digits, dot, dash and underscore of the
// base name.
func secureFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "._")
}
