package intercept

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/davay42/sw-gallery/internal/domain"
	"github.com/davay42/sw-gallery/internal/transport/logx"
)

// Transport — точка перехвата: http.RoundTripper, который отвечает на
// запросы внутри scope локально из BlobStore, а все остальные отдаёт
// базовому транспорту нетронутыми.
type Transport struct {
	base         http.RoundTripper
	scope        domain.Scope
	handler      *Handler
	log          *log.Logger
	fetchTimeout time.Duration
}

type Option func(*Transport)

// WithBase задаёт транспорт для запросов вне scope и для удалённых
// загрузок upload-url. nil игнорируется.
func WithBase(rt http.RoundTripper) Option {
	return func(t *Transport) {
		if rt != nil {
			t.base = rt
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(t *Transport) {
		if l != nil {
			t.log = l
		}
	}
}

// WithFetchTimeout ограничивает длительность удалённой загрузки upload-url.
func WithFetchTimeout(d time.Duration) Option {
	return func(t *Transport) {
		if d > 0 {
			t.fetchTimeout = d
		}
	}
}

func New(scope domain.Scope, store domain.BlobStore, opts ...Option) *Transport {
	t := &Transport{
		base:         http.DefaultTransport,
		scope:        scope,
		log:          log.New(io.Discard, "", 0),
		fetchTimeout: 30 * time.Second,
	}
	for _, o := range opts {
		o(t)
	}
	t.handler = &Handler{
		Log:   t.log,
		Store: store,
		Scope: scope,
		// удалённые загрузки ходят через базовый транспорт, мимо перехватчика
		Fetch: &http.Client{Transport: t.base, Timeout: t.fetchTimeout},
	}
	return t
}

// Install ставит перехватчик на клиента поверх его текущего транспорта.
// Повторный вызов — no-op: уже установленный Transport второй раз
// не оборачивается.
func Install(client *http.Client, scope domain.Scope, store domain.BlobStore, opts ...Option) *Transport {
	if t, ok := client.Transport.(*Transport); ok {
		return t
	}
	opts = append([]Option{WithBase(client.Transport)}, opts...)
	t := New(scope, store, opts...)
	client.Transport = t
	return t
}

// Installed сообщает, стоит ли на клиенте перехватчик.
func Installed(client *http.Client) bool {
	_, ok := client.Transport.(*Transport)
	return ok
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt := Match(t.scope, req.Method, req.URL)
	if rt.Op == OpNone {
		// не наш запрос — обычная сеть
		return t.base.RoundTrip(req)
	}

	reqID := newRequestID()
	start := time.Now()

	resp := t.dispatch(req.WithContext(withRequestID(req.Context(), reqID)), rt, reqID)
	resp.Request = req

	t.log.Printf("lvl=info req_id=%s op=%s method=%s path=%q status=%d duration_ms=%d",
		reqID, rt.Op, req.Method, req.URL.Path, resp.StatusCode, time.Since(start).Milliseconds())
	return resp, nil
}

// dispatch вызывает ровно один обработчик. Паника обработчика превращается
// в 500 с JSON-телом: наружу, в клиентский код, ошибка не уходит никогда.
func (t *Transport) dispatch(req *http.Request, rt Route, reqID string) (resp *http.Response) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error(t.log, reqID, "dispatch", "panic in handler", fmt.Errorf("%v", r))
			resp = errorJSON(http.StatusInternalServerError, fmt.Sprintf("%v", r))
		}
	}()

	if rt.Err != nil {
		logx.Error(t.log, reqID, "dispatch", "bad route", rt.Err)
		return failJSON(http.StatusBadRequest, "invalid filename encoding")
	}

	switch rt.Op {
	case OpList:
		return t.handler.List(req)
	case OpUpload:
		return t.handler.Upload(req)
	case OpUploadURL:
		return t.handler.UploadFromURL(req)
	case OpDelete:
		return t.handler.Delete(req, rt.Filename)
	case OpServe:
		return t.handler.Serve(req, rt.Filename)
	case OpInfo:
		return t.handler.Info(req)
	default:
		return t.handler.NotFound(req)
	}
}
