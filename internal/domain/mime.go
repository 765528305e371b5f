package domain

import "strings"

// Фиксированная таблица расширение → MIME. Неизвестное или отсутствующее
// расширение считаем image/jpeg.
var mimeByExt = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
	"bmp":  "image/bmp",
	"avif": "image/avif",
	"tiff": "image/tiff",
}

// TypeByFilename резолвит MIME по расширению имени файла.
func TypeByFilename(name string) string {
	ext := ""
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		ext = strings.ToLower(name[i+1:])
	}
	if mt, ok := mimeByExt[ext]; ok {
		return mt
	}
	return "image/jpeg"
}
