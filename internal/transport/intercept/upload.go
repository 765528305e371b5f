package intercept

import (
	"io"
	"net/http"

	"github.com/davay42/sw-gallery/internal/domain"
	"github.com/davay42/sw-gallery/internal/transport/logx"
)

// Upload принимает multipart/form-data с файлами в поле "images"
// (поле повторяемое). Каждый файл пишется отдельной записью под свежим
// уникальным именем; при ошибке на середине уже записанные файлы
// не откатываются.
func (h *Handler) Upload(req *http.Request) *http.Response {
	const op = "gallery.upload"
	reqID := RequestIDFromCtx(req.Context())

	if err := req.ParseMultipartForm(64 << 20); err != nil { // 64MB
		logx.Error(h.Log, reqID, op, "parse multipart failed", err)
		return failJSON(http.StatusBadRequest, "invalid multipart form")
	}
	files := req.MultipartForm.File["images"]
	if len(files) == 0 {
		logx.Error(h.Log, reqID, op, "no files", domain.ErrBadParams)
		return failJSON(http.StatusBadRequest, `no files in "images" field`)
	}

	type uploadedOut struct {
		Filename string `json:"filename"`
		Size     int64  `json:"size"`
		Type     string `json:"type"`
		URL      string `json:"url"`
	}
	uploaded := make([]uploadedOut, 0, len(files))

	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			logx.Error(h.Log, reqID, op, "open part failed", err, "name", fh.Filename)
			return failJSON(http.StatusInternalServerError, err.Error())
		}
		blob, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			logx.Error(h.Log, reqID, op, "read part failed", err, "name", fh.Filename)
			return failJSON(http.StatusInternalServerError, err.Error())
		}

		mt := fh.Header.Get("Content-Type")
		if mt == "application/octet-stream" {
			mt = "" // не объявлен — выведем по расширению
		}
		item := domain.NewStoredItem(domain.UniqueFilename(fh.Filename), blob, mt)
		if err := h.Store.Put(req.Context(), item); err != nil {
			logx.Error(h.Log, reqID, op, "store put failed", err, "filename", item.Filename)
			return failJSON(http.StatusInternalServerError, err.Error())
		}
		uploaded = append(uploaded, uploadedOut{
			Filename: item.Filename,
			Size:     item.Size,
			Type:     item.Type,
			URL:      h.Scope.FileURL(item.Filename),
		})
	}

	logx.Info(h.Log, reqID, op, "ok", "count", len(uploaded))
	return jsonResponse(http.StatusOK, map[string]any{
		"success":  true,
		"uploaded": uploaded,
	})
}
