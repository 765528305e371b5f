package intercept

import (
	"net/http"

	"github.com/davay42/sw-gallery/internal/transport/logx"
)

// List отдаёт JSON-массив дескрипторов всех сохранённых картинок.
// Порядок не гарантируется.
func (h *Handler) List(req *http.Request) *http.Response {
	const op = "gallery.list"
	reqID := RequestIDFromCtx(req.Context())

	items, err := h.Store.GetAll(req.Context())
	if err != nil {
		logx.Error(h.Log, reqID, op, "store get all failed", err)
		return errorJSON(http.StatusInternalServerError, err.Error())
	}

	type itemOut struct {
		Filename  string `json:"filename"`
		Timestamp int64  `json:"timestamp"`
		Size      int64  `json:"size"`
		Type      string `json:"type"`
		URL       string `json:"url"`
	}
	out := make([]itemOut, 0, len(items))
	for _, it := range items {
		out = append(out, itemOut{
			Filename:  it.Filename,
			Timestamp: it.Timestamp,
			Size:      it.Size,
			Type:      it.Type,
			URL:       h.Scope.FileURL(it.Filename),
		})
	}

	logx.Info(h.Log, reqID, op, "ok", "count", len(out))
	return jsonResponse(http.StatusOK, out)
}
