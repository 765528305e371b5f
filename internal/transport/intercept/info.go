package intercept

import "net/http"

// Info отдаёт статическое описание эндпоинтов виртуального API.
func (h *Handler) Info(req *http.Request) *http.Response {
	base := h.Scope.String()

	type endpointOut struct {
		Method      string `json:"method"`
		URL         string `json:"url"`
		Description string `json:"description"`
	}
	return jsonResponse(http.StatusOK, map[string]any{
		"name": "sw-gallery virtual API",
		"endpoints": []endpointOut{
			{http.MethodGet, base + "/list.json", "list stored images"},
			{http.MethodPost, base + "/upload", `multipart upload, repeatable field "images"`},
			{http.MethodPost, base + "/upload-url", "fetch a remote image and store it"},
			{http.MethodGet, base + "/get/{filename}", "serve a stored image"},
			{http.MethodDelete, base + "/delete/{filename}", "delete a stored image"},
			{http.MethodGet, base + "/api", "this document"},
		},
	})
}
