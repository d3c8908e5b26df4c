package controllers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"webdl/models"
	util "webdl/utils"
)

// maxUploadBytes caps the uploaded URL list.
const maxUploadBytes = 1 << 20

type bulkForm struct {
	URLs           string `form:"urls"`
	TargetDir      string `form:"target_dir"`
	FormatID       string `form:"format_id"`
	AudioOnly      string `form:"audio_only"`
	Archive        string `form:"archive"`
	OutputTemplate string `form:"output_template"`
	RequestID      string `form:"request_id"`
}

func (h *Handler) BulkHandler(c *gin.Context) {
	var form bulkForm
	bindErr := c.ShouldBind(&form)

	// the page may already be subscribed, so every exit has to end its stream
	requestID := strings.TrimSpace(form.RequestID)
	if requestID == "" {
		requestID = strings.TrimSpace(c.PostForm("request_id"))
	}
	if requestID == "" {
		requestID = util.GenerateRequestID()
	}
	defer h.Hub.Close(requestID)

	if bindErr != nil {
		fail(c, http.StatusBadRequest, "Invalid form data: "+bindErr.Error())
		return
	}

	uploaded, err := readUploadedList(c)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	urls := util.SplitURLs(form.URLs, uploaded)
	if len(urls) == 0 {
		fail(c, http.StatusBadRequest, "Provide at least one URL.")
		return
	}

	dir, err := h.targetDir(form.TargetDir)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	log.Printf("[BulkController] request=%s | urls=%d | dir=%s | archive=%t", requestID, len(urls), dir, checked(form.Archive))

	result := h.Bulk.Run(context.WithoutCancel(c.Request.Context()), models.BulkRequest{
		URLs:      urls,
		TargetDir: dir,
		Options: models.DownloadOptions{
			FormatID:       form.FormatID,
			AudioOnly:      checked(form.AudioOnly),
			OutputTemplate: form.OutputTemplate,
		},
		ArchiveRequested: checked(form.Archive),
		RequestID:        requestID,
	})

	resp := gin.H{
		"ok":         result.OK(),
		"files":      result.Files,
		"errors":     result.Errors,
		"request_id": requestID,
	}
	if result.ArchivePath != "" {
		resp["archive"] = result.ArchivePath
	}
	c.JSON(http.StatusOK, resp)
}

// checked accepts the usual checkbox spellings.
func checked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// readUploadedList returns the text of the optional "file" upload.
func readUploadedList(c *gin.Context) (string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", err
	}
	if fh.Filename == "" {
		return "", nil
	}

	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(data), ""), nil
}
