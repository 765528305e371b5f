package intercept_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davay42/sw-gallery/internal/domain"
	"github.com/davay42/sw-gallery/internal/infra/store/memory"
	"github.com/davay42/sw-gallery/internal/transport/intercept"
)

// baseStub — базовый транспорт-заглушка: считает вызовы и отвечает
// через handler (по умолчанию 204).
type baseStub struct {
	mu      sync.Mutex
	calls   []string
	handler func(*http.Request) (*http.Response, error)
}

func (b *baseStub) RoundTrip(req *http.Request) (*http.Response, error) {
	b.mu.Lock()
	b.calls = append(b.calls, req.URL.String())
	b.mu.Unlock()
	if b.handler != nil {
		return b.handler(req)
	}
	return stubResponse(http.StatusNoContent, "", nil), nil
}

func (b *baseStub) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

func stubResponse(status int, contentType string, body []byte) *http.Response {
	h := make(http.Header)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return &http.Response{
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode: status,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     h,
		Body:       io.NopCloser(bytes.NewReader(body)),
	}
}

func newTestClient(t *testing.T, store domain.BlobStore, base *baseStub) (*http.Client, domain.Scope) {
	t.Helper()
	scope := testScope(t)
	tr := intercept.New(scope, store, intercept.WithBase(base))
	return &http.Client{Transport: tr}, scope
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// multipartBody собирает тело с файлами в поле "images".
func multipartBody(t *testing.T, files map[string][]byte, contentTypes map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, blob := range files {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="images"; filename=%q`, name))
		if ct := contentTypes[name]; ct != "" {
			hdr.Set("Content-Type", ct)
		}
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(blob)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

var filenameRe = regexp.MustCompile(`^\d+-[a-z0-9]{6}-(.+)$`)

func TestPassThroughOutsideScope(t *testing.T) {
	base := &baseStub{}
	client, _ := newTestClient(t, memory.New(), base)

	resp, err := client.Get("https://other.example/ping")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 1, base.callCount())
}

func TestInScopeNeverHitsNetwork(t *testing.T) {
	base := &baseStub{}
	client, scope := newTestClient(t, memory.New(), base)

	for _, u := range []string{
		scope.URL("list.json"),
		scope.URL("api"),
		scope.URL("get/missing.png"),
		scope.URL("nope"),
	} {
		resp, err := client.Get(u)
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.Equal(t, 0, base.callCount())
}

func TestUploadListServeRoundTrip(t *testing.T) {
	client, scope := newTestClient(t, memory.New(), &baseStub{})
	blob := []byte("\x89PNG fake image bytes")

	body, ct := multipartBody(t,
		map[string][]byte{"cat.png": blob},
		map[string]string{"cat.png": "image/png"})
	resp, err := client.Post(scope.URL("upload"), ct, body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var up struct {
		Success  bool `json:"success"`
		Uploaded []struct {
			Filename string `json:"filename"`
			Size     int64  `json:"size"`
			Type     string `json:"type"`
			URL      string `json:"url"`
		} `json:"uploaded"`
	}
	decodeJSON(t, resp, &up)
	require.True(t, up.Success)
	require.Len(t, up.Uploaded, 1)

	got := up.Uploaded[0]
	m := filenameRe.FindStringSubmatch(got.Filename)
	require.NotNil(t, m, "filename %q", got.Filename)
	assert.Equal(t, "cat.png", m[1])
	assert.Equal(t, int64(len(blob)), got.Size)
	assert.Equal(t, "image/png", got.Type)
	assert.Equal(t, scope.FileURL(got.Filename), got.URL)

	// list.json видит ровно одну запись с теми же метаданными
	resp, err = client.Get(scope.URL("list.json"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []struct {
		Filename  string `json:"filename"`
		Timestamp int64  `json:"timestamp"`
		Size      int64  `json:"size"`
		Type      string `json:"type"`
		URL       string `json:"url"`
	}
	decodeJSON(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, got.Filename, list[0].Filename)
	assert.Equal(t, got.Size, list[0].Size)
	assert.Equal(t, got.Type, list[0].Type)
	assert.NotZero(t, list[0].Timestamp)

	// выдача байт-в-байт, с нужными заголовками
	resp, err = client.Get(got.URL)
	require.NoError(t, err)
	served, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, blob, served)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, "public, max-age=31536000", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestUploadMultipleFiles(t *testing.T) {
	client, scope := newTestClient(t, memory.New(), &baseStub{})

	body, ct := multipartBody(t, map[string][]byte{
		"a.png": []byte("aaa"),
		"b.gif": []byte("bbbb"),
	}, map[string]string{"a.png": "image/png", "b.gif": "image/gif"})
	resp, err := client.Post(scope.URL("upload"), ct, body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var up struct {
		Success  bool `json:"success"`
		Uploaded []struct {
			Filename string `json:"filename"`
		} `json:"uploaded"`
	}
	decodeJSON(t, resp, &up)
	assert.True(t, up.Success)
	assert.Len(t, up.Uploaded, 2)
}

func TestUploadWithoutFiles(t *testing.T) {
	client, scope := newTestClient(t, memory.New(), &baseStub{})

	body, ct := multipartBody(t, nil, nil)
	resp, err := client.Post(scope.URL("upload"), ct, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := memory.New()
	client, scope := newTestClient(t, store, &baseStub{})

	require.NoError(t, store.Put(context.Background(),
		domain.NewStoredItem("cat.png", []byte("x"), "image/png")))

	del := func(name string) *http.Response {
		req, err := http.NewRequest(http.MethodDelete, scope.URL("delete/"+url.PathEscape(name)), nil)
		require.NoError(t, err)
		resp, err := client.Do(req)
		require.NoError(t, err)
		return resp
	}

	for _, name := range []string{"cat.png", "cat.png", "never-existed.png"} {
		resp := del(name)
		var out struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		}
		require.Equal(t, http.StatusOK, resp.StatusCode)
		decodeJSON(t, resp, &out)
		assert.True(t, out.Success)
		assert.NotEmpty(t, out.Message)
	}

	// после удаления выдача отвечает 404
	resp, err := client.Get(scope.URL("get/cat.png"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServeMissingFile(t *testing.T) {
	client, scope := newTestClient(t, memory.New(), &baseStub{})

	resp, err := client.Get(scope.URL("get/missing.jpg"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "File not found", string(b))
}

func TestUploadFromURL(t *testing.T) {
	remoteBlob := bytes.Repeat([]byte{0x42}, 1024)
	base := &baseStub{handler: func(req *http.Request) (*http.Response, error) {
		require.Equal(t, "https://example.com/a/b/cat.png", req.URL.String())
		return stubResponse(http.StatusOK, "image/png", remoteBlob), nil
	}}
	client, scope := newTestClient(t, memory.New(), base)

	resp, err := client.Post(scope.URL("upload-url"), "application/json",
		strings.NewReader(`{"url":"https://example.com/a/b/cat.png"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Success  bool   `json:"success"`
		Filename string `json:"filename"`
		Size     int64  `json:"size"`
		Type     string `json:"type"`
		URL      string `json:"url"`
	}
	decodeJSON(t, resp, &out)
	assert.True(t, out.Success)
	m := filenameRe.FindStringSubmatch(out.Filename)
	require.NotNil(t, m, "filename %q", out.Filename)
	assert.Equal(t, "cat.png", m[1])
	assert.Equal(t, int64(1024), out.Size)
	assert.Equal(t, "image/png", out.Type)
	assert.Equal(t, scope.FileURL(out.Filename), out.URL)
	assert.Equal(t, 1, base.callCount())

	// сохранённое отдаётся байт-в-байт
	resp, err = client.Get(out.URL)
	require.NoError(t, err)
	served, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, remoteBlob, served)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
}

func TestUploadFromURLExplicitFilename(t *testing.T) {
	base := &baseStub{handler: func(req *http.Request) (*http.Response, error) {
		return stubResponse(http.StatusOK, "image/webp", []byte("webp")), nil
	}}
	client, scope := newTestClient(t, memory.New(), base)

	resp, err := client.Post(scope.URL("upload-url"), "application/json",
		strings.NewReader(`{"url":"https://example.com/raw","filename":"avatar.webp"}`))
	require.NoError(t, err)

	var out struct {
		Filename string `json:"filename"`
		Type     string `json:"type"`
	}
	decodeJSON(t, resp, &out)
	m := filenameRe.FindStringSubmatch(out.Filename)
	require.NotNil(t, m)
	assert.Equal(t, "avatar.webp", m[1])
	assert.Equal(t, "image/webp", out.Type)
}

func TestUploadFromURLRequiresURL(t *testing.T) {
	client, scope := newTestClient(t, memory.New(), &baseStub{})

	resp, err := client.Post(scope.URL("upload-url"), "application/json",
		strings.NewReader(`{}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var out struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	decodeJSON(t, resp, &out)
	assert.False(t, out.Success)
	assert.Equal(t, "URL is required", out.Error)
}

func TestUploadFromURLRemoteFailure(t *testing.T) {
	base := &baseStub{handler: func(req *http.Request) (*http.Response, error) {
		return stubResponse(http.StatusNotFound, "text/plain", []byte("nope")), nil
	}}
	client, scope := newTestClient(t, memory.New(), base)

	resp, err := client.Post(scope.URL("upload-url"), "application/json",
		strings.NewReader(`{"url":"https://example.com/gone.png"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var out struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	decodeJSON(t, resp, &out)
	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "404")
}

func TestUnknownRouteInScope(t *testing.T) {
	client, scope := newTestClient(t, memory.New(), &baseStub{})

	resp, err := client.Get(scope.URL("nope"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// известный путь, но не тот метод — тоже 404, не сеть
	resp, err = client.Post(scope.URL("list.json"), "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInfo(t *testing.T) {
	client, scope := newTestClient(t, memory.New(), &baseStub{})

	resp, err := client.Get(scope.URL("api"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Name      string `json:"name"`
		Endpoints []struct {
			Method string `json:"method"`
			URL    string `json:"url"`
		} `json:"endpoints"`
	}
	decodeJSON(t, resp, &out)
	assert.NotEmpty(t, out.Name)
	assert.Len(t, out.Endpoints, 6)
	for _, e := range out.Endpoints {
		assert.True(t, strings.HasPrefix(e.URL, scope.String()), "url %q", e.URL)
	}
}

func TestInstallIsIdempotent(t *testing.T) {
	scope := testScope(t)
	store := memory.New()
	client := &http.Client{}

	first := intercept.Install(client, scope, store)
	second := intercept.Install(client, scope, store)
	assert.Same(t, first, second)
	assert.True(t, intercept.Installed(client))
}

// failingStore — все операции падают с ошибкой стора.
type failingStore struct{}

func (failingStore) Get(context.Context, string) (domain.StoredItem, error) {
	return domain.StoredItem{}, fmt.Errorf("%w: boom", domain.ErrStore)
}
func (failingStore) GetAll(context.Context) ([]domain.StoredItem, error) {
	return nil, fmt.Errorf("%w: boom", domain.ErrStore)
}
func (failingStore) Put(context.Context, domain.StoredItem) error {
	return fmt.Errorf("%w: boom", domain.ErrStore)
}
func (failingStore) Delete(context.Context, string) error {
	return fmt.Errorf("%w: boom", domain.ErrStore)
}
func (failingStore) Ping(context.Context) error { return nil }
func (failingStore) Close()                     {}

func TestStoreFailures(t *testing.T) {
	client, scope := newTestClient(t, failingStore{}, &baseStub{})

	t.Run("list", func(t *testing.T) {
		resp, err := client.Get(scope.URL("list.json"))
		require.NoError(t, err)
		require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		var out struct {
			Error string `json:"error"`
		}
		decodeJSON(t, resp, &out)
		assert.NotEmpty(t, out.Error)
	})

	t.Run("upload", func(t *testing.T) {
		body, ct := multipartBody(t, map[string][]byte{"a.png": []byte("x")}, nil)
		resp, err := client.Post(scope.URL("upload"), ct, body)
		require.NoError(t, err)
		require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		var out struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}
		decodeJSON(t, resp, &out)
		assert.False(t, out.Success)
		assert.NotEmpty(t, out.Error)
	})

	t.Run("delete", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodDelete, scope.URL("delete/x.png"), nil)
		require.NoError(t, err)
		resp, err := client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})

	t.Run("serve", func(t *testing.T) {
		resp, err := client.Get(scope.URL("get/x.png"))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
	})
}

// panicStore роняет GetAll: диспетчер обязан превратить панику в 500,
// а не отдать её клиентскому коду.
type panicStore struct{ domain.BlobStore }

func (panicStore) GetAll(context.Context) ([]domain.StoredItem, error) {
	panic("unexpected store state")
}

func TestPanicBecomes500(t *testing.T) {
	client, scope := newTestClient(t, panicStore{memory.New()}, &baseStub{})

	resp, err := client.Get(scope.URL("list.json"))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var out struct {
		Error string `json:"error"`
	}
	decodeJSON(t, resp, &out)
	assert.Contains(t, out.Error, "unexpected store state")
}

func TestConcurrentRequests(t *testing.T) {
	store := memory.New()
	client, scope := newTestClient(t, store, &baseStub{})

	require.NoError(t, store.Put(context.Background(),
		domain.NewStoredItem("shared.png", []byte("shared"), "image/png")))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := client.Get(scope.URL("get/shared.png"))
			assert.NoError(t, err)
			if err == nil {
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
			}
		}()
	}
	wg.Wait()
}
