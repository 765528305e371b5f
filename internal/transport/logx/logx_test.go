package logx

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	var buf bytes.Buffer
	l := log.New(&buf, "", 0)

	Info(l, "req-1", "gallery.list", "ok", "count", 3)

	got := buf.String()
	assert.Contains(t, got, "lvl=info")
	assert.Contains(t, got, "req_id=req-1")
	assert.Contains(t, got, "op=gallery.list")
	assert.Contains(t, got, `msg="ok"`)
	assert.Contains(t, got, "count=3")
}

func TestError(t *testing.T) {
	var buf bytes.Buffer
	l := log.New(&buf, "", 0)

	Error(l, "req-2", "gallery.serve", "store get failed", errors.New("boom"), "filename", "cat.png")

	got := buf.String()
	assert.Contains(t, got, "lvl=error")
	assert.Contains(t, got, `err="boom"`)
	assert.Contains(t, got, "filename=cat.png")
}
