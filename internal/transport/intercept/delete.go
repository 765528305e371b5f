package intercept

import (
	"net/http"

	"github.com/davay42/sw-gallery/internal/transport/logx"
)

// Delete удаляет запись по имени. Идемпотентен: удаление несуществующего
// файла — тоже успех.
func (h *Handler) Delete(req *http.Request, filename string) *http.Response {
	const op = "gallery.delete"
	reqID := RequestIDFromCtx(req.Context())

	if err := h.Store.Delete(req.Context(), filename); err != nil {
		logx.Error(h.Log, reqID, op, "store delete failed", err, "filename", filename)
		return failJSON(http.StatusInternalServerError, err.Error())
	}

	logx.Info(h.Log, reqID, op, "ok", "filename", filename)
	return jsonResponse(http.StatusOK, map[string]any{
		"success": true,
		"message": "deleted " + filename,
	})
}
