package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// Scope — зона ответственности виртуального API: origin + префикс пути.
// Запросы под этим префиксом перехватчик обслуживает сам, без сети.
type Scope struct {
	Origin string // схема://хост[:порт]
	Prefix string // путь без завершающего "/"
}

// ParseScope разбирает абсолютный URL вида "https://app.local/images".
func ParseScope(raw string) (Scope, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Scope{}, fmt.Errorf("parse scope: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return Scope{}, fmt.Errorf("scope %q: need absolute URL with scheme and host", raw)
	}
	return Scope{
		Origin: u.Scheme + "://" + u.Host,
		Prefix: strings.TrimRight(u.Path, "/"),
	}, nil
}

// Match возвращает путь запроса относительно префикса (без ведущего "/")
// в percent-encoded виде. Чужой origin или путь вне префикса — ok=false,
// запрос не наш.
func (s Scope) Match(u *url.URL) (rel string, ok bool) {
	if u.Scheme+"://"+u.Host != s.Origin {
		return "", false
	}
	p := u.EscapedPath()
	if s.Prefix != "" {
		rest, found := strings.CutPrefix(p, s.Prefix)
		if !found || (rest != "" && rest[0] != '/') {
			return "", false
		}
		p = rest
	}
	return strings.TrimPrefix(p, "/"), true
}

// FileURL — абсолютный URL выдачи файла внутри scope.
func (s Scope) FileURL(filename string) string {
	return s.Origin + s.Prefix + "/get/" + url.PathEscape(filename)
}

// URL — абсолютный URL относительного пути внутри scope.
func (s Scope) URL(rel string) string {
	return s.Origin + s.Prefix + "/" + rel
}

func (s Scope) String() string {
	return s.Origin + s.Prefix
}
