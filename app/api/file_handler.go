package api

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type FileHandler struct {
	sourceDir string
}

func NewFileHandler(sourceDir string) *FileHandler {
	return &FileHandler{
		sourceDir: sourceDir,
	}
}

// HandleUpload drops a PDF into the intake directory. The loader picks it up
// on its next run; nothing is indexed here.
func (h *FileHandler) HandleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return ErrBadRequest()
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
		return NewError(fiber.StatusBadRequest, "only .pdf files are accepted")
	}

	path := filepath.Join(h.sourceDir, filepath.Base(file.Filename))
	if err := c.SaveFile(file, path); err != nil {
		return err
	}
	fmt.Printf("[UPLOAD] File successfully saved to: %s\n", path)

	return c.JSON("ok")
}
