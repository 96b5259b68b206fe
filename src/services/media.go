package services

import (
	"bytes"
	"context"
	"fmt"
	"hotelmaint/src/config"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

type Upload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

type MediaService struct {
	Storage ObjectStorage
}

// Store compresses images and passes videos through, then uploads under
// a fresh random key. The stored key is returned.
func (m *MediaService) Store(ctx context.Context, ticketID uuid.UUID, up Upload) (string, error) {
	head := make([]byte, 3072)
	n, err := io.ReadFull(up.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	head = head[:n]
	mtype := mimetype.Detect(head)
	body := io.MultiReader(bytes.NewReader(head), up.Body)

	base := strings.TrimSuffix(filepath.Base(up.Filename), filepath.Ext(up.Filename))
	name := slug.Make(base)
	if name == "" {
		name = "file"
	}

	switch {
	case mtype.Is("image/jpeg"), mtype.Is("image/png"), mtype.Is("image/webp"):
		if up.Size > config.MAX_IMAGE_UPLOAD_BYTES {
			return "", ErrMediaTooLarge
		}
		compressed, err := compressImage(io.LimitReader(body, config.MAX_IMAGE_UPLOAD_BYTES+1), mtype.String())
		if err != nil {
			return "", err
		}
		key := mediaKey(ticketID, name, ".jpg")
		return m.Storage.Upload(ctx, key, "image/jpeg", compressed)
	case strings.HasPrefix(mtype.String(), "video/"):
		if up.Size > config.MAX_VIDEO_BYTES {
			return "", ErrMediaTooLarge
		}
		key := mediaKey(ticketID, name, mtype.Extension())
		return m.Storage.Upload(ctx, key, mtype.String(), &limitedReader{r: body, n: config.MAX_VIDEO_BYTES})
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedMedia, mtype.String())
}

func mediaKey(ticketID uuid.UUID, name, ext string) string {
	return fmt.Sprintf("tickets/%s/%s-%s%s", ticketID, uuid.New(), name, ext)
}

// limitedReader fails instead of truncating once n bytes have been read.
type limitedReader struct {
	r io.Reader
	n int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.n -= int64(n)
	if l.n < 0 {
		return n, ErrMediaTooLarge
	}
	return n, err
}

func decodeImage(r io.Reader, mime string) (image.Image, error) {
	switch mime {
	case "image/png":
		return png.Decode(r)
	case "image/webp":
		return webp.Decode(r)
	}
	return jpeg.Decode(r)
}

// compressImage bounds the longest side to MAX_IMAGE_DIMENSION and
// re-encodes as JPEG.
func compressImage(r io.Reader, mime string) (*bytes.Buffer, error) {
	src, err := decodeImage(r, mime)
	if err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, ErrMediaTooLarge
		}
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, err.Error())
	}
	dst := resize(src, config.MAX_IMAGE_DIMENSION)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: config.JPEG_QUALITY}); err != nil {
		return nil, err
	}
	return &buf, nil
}

func resize(src image.Image, max int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= max && h <= max {
		return src
	}
	if w >= h {
		h = h * max / w
		w = max
	} else {
		w = w * max / h
		h = max
	}
	dst := image.NewRGBA(image.Rect(0, 0, max1(w), max1(h)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

func max1(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

// Sign exchanges stored references for presigned URLs. References that
// cannot be signed are dropped from the result.
func (m *MediaService) Sign(ctx context.Context, refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		signed, err := m.Storage.SignURL(ctx, ref, config.SIGNED_URL_TTL)
		if err != nil {
			log.Printf("Could not sign media reference [%s]: %s\n", ref, err.Error())
			continue
		}
		out = append(out, signed)
	}
	return out
}

// Remove deletes objects best-effort.
func (m *MediaService) Remove(ctx context.Context, refs ...string) {
	for _, ref := range refs {
		if err := m.Storage.Delete(ctx, ref); err != nil {
			log.Printf("Could not delete media object [%s]: %s\n", ref, err.Error())
		}
	}
}

// MemoryStorage keeps objects in process; SignURL returns a local URL
// carrying the expiry.
type MemoryStorage struct {
	mu      sync.RWMutex
	now     func() time.Time
	objects map[string]memoryObject
}

type memoryObject struct {
	ContentType string
	Data        []byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{now: time.Now, objects: map[string]memoryObject{}}
}

func (s *MemoryStorage) Upload(_ context.Context, key, contentType string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; ok {
		return "", fmt.Errorf("object %s already exists", key)
	}
	s.objects[key] = memoryObject{ContentType: contentType, Data: data}
	return key, nil
}

func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *MemoryStorage) SignURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.objects[key]; !ok {
		return "", fmt.Errorf("object %s not found", key)
	}
	return fmt.Sprintf("memory://%s?expires=%d", key, s.now().Add(ttl).Unix()), nil
}

func (s *MemoryStorage) Object(key string) (contentType string, data []byte, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[key]
	return o.ContentType, o.Data, ok
}

func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
