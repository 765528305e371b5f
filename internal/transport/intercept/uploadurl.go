package intercept

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/davay42/sw-gallery/internal/domain"
	"github.com/davay42/sw-gallery/internal/transport/logx"
)

// UploadFromURL скачивает картинку по ссылке из JSON-тела {url, filename?}
// и сохраняет её под уникальным именем. Имя берётся из filename, иначе из
// последнего сегмента пути URL, иначе "image".
func (h *Handler) UploadFromURL(req *http.Request) *http.Response {
	const op = "gallery.upload_url"
	reqID := RequestIDFromCtx(req.Context())

	var in struct {
		URL      string `json:"url"`
		Filename string `json:"filename"`
	}
	if req.Body != nil {
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil && err != io.EOF {
			logx.Error(h.Log, reqID, op, "decode body failed", err)
			return failJSON(http.StatusBadRequest, "invalid JSON body")
		}
	}
	if in.URL == "" {
		logx.Error(h.Log, reqID, op, "url missing", domain.ErrBadParams)
		return failJSON(http.StatusBadRequest, "URL is required")
	}

	fetchReq, err := http.NewRequestWithContext(req.Context(), http.MethodGet, in.URL, nil)
	if err != nil {
		logx.Error(h.Log, reqID, op, "bad url", err, "url", in.URL)
		return failJSON(http.StatusBadRequest, "invalid URL: "+err.Error())
	}
	remote, err := h.Fetch.Do(fetchReq)
	if err != nil {
		logx.Error(h.Log, reqID, op, "remote fetch failed", fmt.Errorf("%w: %v", domain.ErrUpstreamFetch, err), "url", in.URL)
		return failJSON(http.StatusInternalServerError, "failed to fetch URL: "+err.Error())
	}
	defer remote.Body.Close()

	if remote.StatusCode < 200 || remote.StatusCode > 299 {
		logx.Error(h.Log, reqID, op, "remote status", domain.ErrUpstreamFetch, "url", in.URL, "status", remote.StatusCode)
		return failJSON(http.StatusInternalServerError,
			fmt.Sprintf("failed to fetch URL: status %d", remote.StatusCode))
	}
	blob, err := io.ReadAll(remote.Body)
	if err != nil {
		logx.Error(h.Log, reqID, op, "read remote body failed", err, "url", in.URL)
		return failJSON(http.StatusInternalServerError, "failed to fetch URL: "+err.Error())
	}

	original := strings.TrimSpace(in.Filename)
	if original == "" {
		if base := path.Base(fetchReq.URL.Path); base != "." && base != "/" {
			original = base
		}
	}
	if original == "" {
		original = "image"
	}

	item := domain.NewStoredItem(
		domain.UniqueFilename(original),
		blob,
		mediaTypeOf(remote.Header.Get("Content-Type")),
	)
	if err := h.Store.Put(req.Context(), item); err != nil {
		logx.Error(h.Log, reqID, op, "store put failed", err, "filename", item.Filename)
		return failJSON(http.StatusInternalServerError, err.Error())
	}

	logx.Info(h.Log, reqID, op, "ok", "filename", item.Filename, "size", item.Size)
	return jsonResponse(http.StatusOK, map[string]any{
		"success":  true,
		"filename": item.Filename,
		"size":     item.Size,
		"type":     item.Type,
		"url":      h.Scope.FileURL(item.Filename),
	})
}

// mediaTypeOf срезает параметры вида "; charset=...".
func mediaTypeOf(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.TrimSpace(contentType)
}
