package intercept

import (
	"errors"
	"net/http"

	"github.com/davay42/sw-gallery/internal/domain"
	"github.com/davay42/sw-gallery/internal/transport/logx"
)

// Serve отдаёт сырое содержимое файла. Ошибки здесь — plain text,
// как у обычного файлового сервера.
func (h *Handler) Serve(req *http.Request, filename string) *http.Response {
	const op = "gallery.serve"
	reqID := RequestIDFromCtx(req.Context())

	item, err := h.Store.Get(req.Context(), filename)
	if errors.Is(err, domain.ErrNotFound) {
		logx.Info(h.Log, reqID, op, "not found", "filename", filename)
		return textResponse(http.StatusNotFound, "File not found")
	}
	if err != nil {
		logx.Error(h.Log, reqID, op, "store get failed", err, "filename", filename)
		return textResponse(http.StatusInternalServerError, "Storage error")
	}

	hdr := make(http.Header)
	hdr.Set("Content-Type", domain.TypeByFilename(filename))
	hdr.Set("Cache-Control", "public, max-age=31536000")
	hdr.Set("Access-Control-Allow-Origin", "*")

	logx.Info(h.Log, reqID, op, "ok", "filename", filename, "size", item.Size)
	return newResponse(http.StatusOK, hdr, item.Blob)
}
