package handlers

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const maxSQLFileSize = 1 << 20

// UploadSQLFileHandler uploads a SQL file as reference
// @Summary      Upload SQL reference file
// @Description  Upload a SQL file that will be used as reference when generating queries
// @Tags         SQL Files
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "SQL file to upload"
// @Success      200   {object}  map[string]string  "File uploaded successfully"
// @Failure      400   {object}  map[string]string  "No file provided"
// @Failure      500   {object}  map[string]string  "Failed to store file"
// @Router       /api/sql/upload [post]
func (h *Handlers) UploadSQLFileHandler(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	name := filepath.Base(file.Filename)
	if !strings.EqualFold(filepath.Ext(name), ".sql") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only .sql files are accepted"})
		return
	}
	if file.Size > maxSQLFileSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is too large"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open file"})
		return
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}

	if err := h.db.StoreSQLFile(name, string(content)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store SQL file"})
		return
	}

	if h.sqlFilesDir != "" {
		if err := os.MkdirAll(h.sqlFilesDir, 0755); err == nil {
			err = os.WriteFile(filepath.Join(h.sqlFilesDir, name), content, 0644)
		}
		if err != nil {
			log.Warn().Err(err).Str("component", "sql_handler").Str("filename", name).
				Msg("failed to save SQL file to filesystem")
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "SQL file uploaded successfully", "filename": name})
}

// ListSQLFilesHandler lists all stored SQL reference files
// @Summary      List SQL reference files
// @Description  Get a list of all SQL files stored as references
// @Tags         SQL Files
// @Produce      json
// @Success      200  {object}  map[string][]string  "List of SQL file names"
// @Failure      500  {object}  map[string]string     "Failed to load files"
// @Router       /api/sql/files [get]
func (h *Handlers) ListSQLFilesHandler(c *gin.Context) {
	sqlFiles, err := h.db.GetSQLFiles()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load SQL files"})
		return
	}

	names := make([]string, len(sqlFiles))
	for i, f := range sqlFiles {
		names[i] = f.Name
	}

	c.JSON(http.StatusOK, gin.H{"files": names})
}
