package intercept

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Синтез HTTP-ответов: перехваченный запрос получает *http.Response,
// неотличимый от пришедшего по сети.

func newResponse(status int, header http.Header, body []byte) *http.Response {
	if header == nil {
		header = make(http.Header)
	}
	header.Set("Content-Length", fmt.Sprintf("%d", len(body)))
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
	}
}

func jsonResponse(status int, v any) *http.Response {
	b, err := json.Marshal(v)
	if err != nil {
		return textResponse(http.StatusInternalServerError, "encode response: "+err.Error())
	}
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	return newResponse(status, h, b)
}

func textResponse(status int, msg string) *http.Response {
	h := make(http.Header)
	h.Set("Content-Type", "text/plain; charset=utf-8")
	return newResponse(status, h, []byte(msg))
}

// failJSON — конверт ошибки вида {"success":false,"error":...}
func failJSON(status int, msg string) *http.Response {
	return jsonResponse(status, map[string]any{"success": false, "error": msg})
}

// errorJSON — короткий конверт {"error":...} (list и перехват паник)
func errorJSON(status int, msg string) *http.Response {
	return jsonResponse(status, map[string]any{"error": msg})
}
