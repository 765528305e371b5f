package domain

import "errors"

// Ошибки уровня домена (маппятся на HTTP-статусы в transport)
var (
	ErrBadParams     = errors.New("bad_params")     // 400
	ErrNotFound      = errors.New("not_found")      // 404
	ErrUpstreamFetch = errors.New("upstream_fetch") // 500: удалённая загрузка не удалась
	ErrStore         = errors.New("store")          // 500: ошибка хранилища
)
