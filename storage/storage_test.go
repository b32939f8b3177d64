package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStore_Success(t *testing.T) {
	var gotMethod, gotPath, gotContentType, gotUpsert, gotAPIKey, gotAuth string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotUpsert = r.Header.Get("x-upsert")
		gotAPIKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, APIKey: "anon-key"})

	url, err := c.Store(context.Background(), "media", "7/3/1700000000.jpg", []byte("jpeg-bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Fatalf("expected POST, got %s", gotMethod)
	}
	if gotPath != "/object/media/7/3/1700000000.jpg" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotContentType != "image/jpeg" {
		t.Fatalf("unexpected content type: %s", gotContentType)
	}
	if gotUpsert != "true" {
		t.Fatalf("expected x-upsert true, got %q", gotUpsert)
	}
	if gotAPIKey != "anon-key" || gotAuth != "Bearer anon-key" {
		t.Fatalf("auth headers wrong: %q %q", gotAPIKey, gotAuth)
	}
	if string(gotBody) != "jpeg-bytes" {
		t.Fatalf("body not passed through")
	}
	want := srv.URL + "/object/public/media/7/3/1700000000.jpg"
	if url != want {
		t.Fatalf("public url = %s, want %s", url, want)
	}
}

func TestStore_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bucket quota exceeded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	_, err := c.Store(context.Background(), "media", "a.jpg", []byte("x"), "image/jpeg")
	if !errors.Is(err, ErrWriteFailed) {
		t.Fatalf("expected ErrWriteFailed, got %v", err)
	}
}

func TestStore_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // 直接关掉，制造连接失败

	c := New(Config{BaseURL: srv.URL})
	_, err := c.Store(context.Background(), "media", "a.jpg", []byte("x"), "image/jpeg")
	if !errors.Is(err, ErrWriteFailed) {
		t.Fatalf("expected ErrWriteFailed, got %v", err)
	}
}

func TestStore_NoBaseURL(t *testing.T) {
	c := New(Config{})
	_, err := c.Store(context.Background(), "media", "a.jpg", []byte("x"), "image/jpeg")
	if !errors.Is(err, ErrWriteFailed) {
		t.Fatalf("expected ErrWriteFailed, got %v", err)
	}
}

func TestConfigDefaults(t *testing.T) {
	c := New(Config{BaseURL: "http://s.example/storage/v1/"})
	if c.MediaBucket() != DefaultMediaBucket || c.ThumbBucket() != DefaultThumbBucket {
		t.Fatalf("default buckets wrong: %s %s", c.MediaBucket(), c.ThumbBucket())
	}
	// 末尾斜杠归一化
	if got := c.PublicURL("media", "/x/y.jpg"); got != "http://s.example/storage/v1/object/public/media/x/y.jpg" {
		t.Fatalf("public url = %s", got)
	}
}
