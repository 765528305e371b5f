package intercept

import (
	"log"
	"net/http"

	"github.com/davay42/sw-gallery/internal/domain"
)

// Handler обслуживает эндпоинты виртуального API против BlobStore.
// Обработчики не держат общего изменяемого состояния: параллельные
// запросы независимы, общая точка — только стор.
type Handler struct {
	Log   *log.Logger
	Store domain.BlobStore
	Scope domain.Scope
	// Fetch — клиент для удалённых загрузок upload-url; ходит мимо
	// перехватчика, чтобы URL внутри scope не зациклился.
	Fetch *http.Client
}

func (h *Handler) NotFound(req *http.Request) *http.Response {
	return failJSON(http.StatusNotFound, "not found")
}
