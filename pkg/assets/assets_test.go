package assets

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/image/bmp"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestValidKey(t *testing.T) {
	tests := map[string]bool{
		"p1.jpg":          true,
		"wall/left/a.png": true,
		"":                false,
		"../secret":       false,
		"/etc/passwd":     false,
		"a/../../b":       false,
		`..\windows`:      false,
	}
	for key, want := range tests {
		if got := ValidKey(key); got != want {
			t.Errorf("ValidKey(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	data := encodePNG(t, 4, 4)
	if err := os.WriteFile(filepath.Join(dir, "p1.png"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := NewDirSource(dir)
	if err != nil {
		t.Fatalf("NewDirSource: %v", err)
	}
	ctx := context.Background()

	got, err := src.Fetch(ctx, "p1.png")
	if err != nil || !bytes.Equal(got, data) {
		t.Errorf("Fetch = %d bytes, %v", len(got), err)
	}
	if _, err := src.Fetch(ctx, "missing.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing file err = %v, want ErrNotFound", err)
	}
	if _, err := src.Fetch(ctx, "../p1.png"); !errors.Is(err, ErrDenied) {
		t.Errorf("escape err = %v, want ErrDenied", err)
	}

	if _, err := NewDirSource(filepath.Join(dir, "p1.png")); err == nil {
		t.Error("a file should not be accepted as a root")
	}
}

func TestDecodeFormats(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	var bmpBuf bytes.Buffer
	if err := bmp.Encode(&bmpBuf, img); err != nil {
		t.Fatalf("bmp.Encode: %v", err)
	}

	tests := []struct {
		name   string
		data   []byte
		format string
	}{
		{"png", encodePNG(t, 8, 6), "png"},
		{"bmp", bmpBuf.Bytes(), "bmp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, format, err := Decode(tt.data, 0)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if format != tt.format || got.Bounds().Dx() != 8 || got.Bounds().Dy() != 6 {
				t.Errorf("format=%s bounds=%v", format, got.Bounds())
			}
		})
	}

	if _, _, err := Decode([]byte("not an image"), 0); err == nil {
		t.Error("garbage should fail to decode")
	}
}

func TestFitKeepsAspect(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{4000, 2000, 1000, 1000, 500},
		{1000, 3000, 300, 100, 300},
		{200, 100, 1000, 200, 100},
		{5000, 1, 100, 100, 1},
	}
	for _, tt := range tests {
		got := Fit(image.NewRGBA(image.Rect(0, 0, tt.w, tt.h)), tt.max)
		if got.Bounds().Dx() != tt.wantW || got.Bounds().Dy() != tt.wantH {
			t.Errorf("Fit(%dx%d, %d) = %v, want %dx%d", tt.w, tt.h, tt.max, got.Bounds(), tt.wantW, tt.wantH)
		}
	}
}

// recordSink 收集加载结果
type recordSink struct {
	mu      sync.Mutex
	results map[string][]error
	images  map[string]image.Image
	done    chan string
}

func newRecordSink() *recordSink {
	return &recordSink{
		results: make(map[string][]error),
		images:  make(map[string]image.Image),
		done:    make(chan string, 64),
	}
}

func (s *recordSink) Complete(key string, img image.Image, err error) {
	s.mu.Lock()
	s.results[key] = append(s.results[key], err)
	s.images[key] = img
	s.mu.Unlock()
	s.done <- key
}

func (s *recordSink) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-s.done:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for result %d of %d", i+1, n)
		}
	}
}

func TestLoaderRequestsOnce(t *testing.T) {
	data := encodePNG(t, 64, 32)
	var fetches atomic.Int32
	src := SourceFunc(func(ctx context.Context, key string) ([]byte, error) {
		fetches.Add(1)
		if key == "broken.png" {
			return nil, ErrNotFound
		}
		return data, nil
	})

	opts := DefaultLoaderOptions()
	opts.RatePerSecond = 0
	opts.MaxTextureSize = 16
	l := NewLoader(src, opts)
	defer l.Close()
	sink := newRecordSink()
	l.Bind(sink)

	for i := 0; i < 10; i++ {
		l.Request("a.png")
		l.Request("broken.png")
	}
	sink.wait(t, 2)
	l.Wait()

	if n := fetches.Load(); n != 2 {
		t.Errorf("source fetched %d times, want 2", n)
	}
	if l.Requests() != 2 {
		t.Errorf("Requests = %d, want 2", l.Requests())
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if errs := sink.results["a.png"]; len(errs) != 1 || errs[0] != nil {
		t.Errorf("a.png results = %v", errs)
	}
	if b := sink.images["a.png"].Bounds(); b.Dx() != 16 || b.Dy() != 8 {
		t.Errorf("a.png not fitted to texture size: %v", b)
	}
	if errs := sink.results["broken.png"]; len(errs) != 1 || !errors.Is(errs[0], ErrNotFound) {
		t.Errorf("broken.png results = %v", errs)
	}
	if loaded, failed := l.Stats(); loaded != 1 || failed != 1 {
		t.Errorf("stats = %d/%d, want 1/1", loaded, failed)
	}
}

func TestLoaderBoundsConcurrency(t *testing.T) {
	data := encodePNG(t, 2, 2)
	release := make(chan struct{})
	var inflight, peak atomic.Int32
	src := SourceFunc(func(ctx context.Context, key string) ([]byte, error) {
		n := inflight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		<-release
		inflight.Add(-1)
		return data, nil
	})

	l := NewLoader(src, LoaderOptions{Concurrency: 2})
	defer l.Close()
	sink := newRecordSink()
	l.Bind(sink)

	for _, key := range []string{"1", "2", "3", "4", "5"} {
		l.Request(key)
	}

	deadline := time.Now().Add(5 * time.Second)
	for inflight.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	sink.wait(t, 5)

	if p := peak.Load(); p != 2 {
		t.Errorf("peak concurrency = %d, want 2", p)
	}
}

func TestLoaderCloseCancels(t *testing.T) {
	started := make(chan struct{})
	src := SourceFunc(func(ctx context.Context, key string) ([]byte, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})

	l := NewLoader(src, LoaderOptions{Concurrency: 1})
	sink := newRecordSink()
	l.Bind(sink)
	l.Request("slow.png")
	<-started

	l.Close()
	sink.wait(t, 1)
	sink.mu.Lock()
	errs := sink.results["slow.png"]
	sink.mu.Unlock()
	if len(errs) != 1 || !errors.Is(errs[0], ErrClosed) {
		t.Errorf("results after close = %v, want ErrClosed", errs)
	}

	// 关闭后的请求被忽略
	l.Request("late.png")
	if l.Requests() != 1 {
		t.Errorf("request after close was accepted")
	}
}
