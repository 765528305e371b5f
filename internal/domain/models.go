package domain

import "time"

// Одна сохранённая картинка. Filename — первичный ключ.
type StoredItem struct {
	Filename  string `json:"filename"`
	Blob      []byte `json:"-"`         // содержимое наружу не сериализуем
	Timestamp int64  `json:"timestamp"` // миллисекунды Unix, выставляется при записи
	Size      int64  `json:"size"`
	Type      string `json:"type"`
}

// NewStoredItem собирает запись для записи в стор. Size и Type выводятся
// из blob в момент создания и отдельно не мутируются; повторная запись того
// же filename — это новая запись с новым Timestamp.
func NewStoredItem(filename string, blob []byte, mediaType string) StoredItem {
	if mediaType == "" {
		mediaType = TypeByFilename(filename)
	}
	return StoredItem{
		Filename:  filename,
		Blob:      blob,
		Timestamp: time.Now().UnixMilli(),
		Size:      int64(len(blob)),
		Type:      mediaType,
	}
}
