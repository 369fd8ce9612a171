package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/navai/internal/extract"
	"github.com/yoockh/navai/internal/models"
	"github.com/yoockh/navai/internal/providers/llm"
	"github.com/yoockh/navai/internal/utils"
)

// memRepo stores deep copies so callers cannot mutate the record of truth.
type memRepo struct {
	mu        sync.Mutex
	items     map[string]models.Interview
	getCalls  int
	appendErr error
	createErr error
	// afterGet, when set, runs after GetByID has read the record.
	afterGet func()
}

func newMemRepo() *memRepo { return &memRepo{items: map[string]models.Interview{}} }

func clone(it models.Interview) models.Interview {
	it.Turns = append([]models.Turn(nil), it.Turns...)
	return it
}

func (r *memRepo) Create(_ context.Context, it *models.Interview) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.items[it.ID] = clone(*it)
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*models.Interview, error) {
	r.mu.Lock()
	r.getCalls++
	it, ok := r.items[id]
	hook := r.afterGet
	r.mu.Unlock()

	if !ok {
		return nil, utils.ErrNotFound
	}
	out := clone(it)
	if hook != nil {
		hook()
	}
	return &out, nil
}

func (r *memRepo) AppendTurns(_ context.Context, id string, turns ...models.Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	it, ok := r.items[id]
	if !ok {
		return utils.ErrNotFound
	}
	it.Turns = append(it.Turns, turns...)
	r.items[id] = it
	return nil
}

func (r *memRepo) ListByOwner(_ context.Context, ownerID string, limit int64) ([]models.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Interview
	for _, it := range r.items {
		if it.OwnerID == ownerID {
			out = append(out, clone(it))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepo) stored(id string) models.Interview {
	r.mu.Lock()
	defer r.mu.Unlock()
	return clone(r.items[id])
}

type fakeExtractor struct {
	text string
	err  error
	got  extract.Document
	body []byte
}

func (f *fakeExtractor) Extract(_ context.Context, doc extract.Document) (string, error) {
	f.got = doc
	f.body, _ = io.ReadAll(doc.Body)
	return f.text, f.err
}

type echoLLM struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (e *echoLLM) Generate(_ context.Context, msgs []llm.Message) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.err != nil {
		return "", e.err
	}
	if strings.Contains(msgs[0].Content, "final exchange") {
		return "That concludes our interview. Clear and well structured answers.", nil
	}
	return "Question?", nil
}

func (e *echoLLM) Close() error { return nil }

type fakeSTT struct{ text string }

func (f fakeSTT) TranscribeFile(context.Context, string, string) (string, float64, error) {
	return f.text, 0.8, nil
}

func (fakeSTT) Close() error { return nil }

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	dels []string
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *memCache) SetJSON(_ context.Context, key string, val any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.data[key] = b
	return nil
}

func (c *memCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		c.dels = append(c.dels, k)
	}
	return nil
}

type fakeUploader struct {
	object  string
	body    []byte
	err     error
	deleted []string
}

func (u *fakeUploader) Upload(_ context.Context, objectName, _ string, r io.Reader) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.object = objectName
	u.body, _ = io.ReadAll(r)
	return "gs://bucket/" + objectName, nil
}

func (u *fakeUploader) Delete(_ context.Context, objectName string) error {
	u.deleted = append(u.deleted, objectName)
	return nil
}

var errBoom = errors.New("boom")

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func pdfUpload(body string) extract.Document {
	return extract.Document{Filename: "cv.pdf", ContentType: "application/pdf", Body: bytes.NewReader([]byte(body))}
}
