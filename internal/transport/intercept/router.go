package intercept

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/davay42/sw-gallery/internal/domain"
)

// Op — закрытое перечисление операций виртуального API.
type Op int

const (
	OpNone      Op = iota // вне scope: не вмешиваемся, запрос уходит в сеть
	OpList                // GET  list.json
	OpUpload              // POST upload
	OpUploadURL           // POST upload-url
	OpDelete              // DELETE delete/<filename>
	OpServe               // GET  get/<filename>
	OpInfo                // GET  api
	OpNotFound            // внутри scope, но маршрут не распознан → 404
)

func (op Op) String() string {
	switch op {
	case OpNone:
		return "none"
	case OpList:
		return "list"
	case OpUpload:
		return "upload"
	case OpUploadURL:
		return "upload-url"
	case OpDelete:
		return "delete"
	case OpServe:
		return "serve"
	case OpInfo:
		return "info"
	default:
		return "not-found"
	}
}

type Route struct {
	Op       Op
	Filename string // для OpServe/OpDelete, уже percent-decoded
	Err      error  // ошибка декодирования <rest>
}

// Match решает, относится ли запрос к виртуальному API и к какой операции.
// Вне scope — OpNone, и запрос остаётся нетронутым. Внутри scope нераспознанная
// пара путь/метод — OpNotFound.
func Match(scope domain.Scope, method string, u *url.URL) Route {
	rel, ok := scope.Match(u)
	if !ok {
		return Route{Op: OpNone}
	}

	switch {
	case rel == "list.json" && method == http.MethodGet:
		return Route{Op: OpList}
	case rel == "upload" && method == http.MethodPost:
		return Route{Op: OpUpload}
	case rel == "upload-url" && method == http.MethodPost:
		return Route{Op: OpUploadURL}
	case rel == "api" && method == http.MethodGet:
		return Route{Op: OpInfo}
	}

	if rest, found := strings.CutPrefix(rel, "get/"); found && method == http.MethodGet {
		return namedRoute(OpServe, rest)
	}
	if rest, found := strings.CutPrefix(rel, "delete/"); found && method == http.MethodDelete {
		return namedRoute(OpDelete, rest)
	}
	return Route{Op: OpNotFound}
}

func namedRoute(op Op, rest string) Route {
	if rest == "" {
		return Route{Op: OpNotFound}
	}
	name, err := url.PathUnescape(rest)
	if err != nil {
		return Route{Op: op, Err: fmt.Errorf("%w: bad percent-encoding in %q", domain.ErrBadParams, rest)}
	}
	return Route{Op: op, Filename: name}
}
