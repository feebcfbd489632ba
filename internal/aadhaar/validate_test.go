package aadhaar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
)

var (
	jpegHead = append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, bytes.Repeat([]byte{0x22}, 64)...)
	pngHead  = append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}, bytes.Repeat([]byte{0x33}, 64)...)
)

func TestValidateImageAcceptsJpegAndPng(t *testing.T) {
	if err := ValidateImage("image/jpeg", int64(len(jpegHead)), jpegHead); err != nil {
		t.Fatalf("jpeg: %v", err)
	}
	if err := ValidateImage("image/jpg", int64(len(jpegHead)), jpegHead); err != nil {
		t.Fatalf("jpg alias: %v", err)
	}
	if err := ValidateImage("image/png", int64(len(pngHead)), pngHead); err != nil {
		t.Fatalf("png: %v", err)
	}
}

func TestValidateImageRejectsBadInput(t *testing.T) {
	if err := ValidateImage("image/jpeg", 0, nil); !errors.Is(err, ErrImageMissing) {
		t.Fatalf("expected ErrImageMissing, got %v", err)
	}
	if err := ValidateImage("image/jpeg", MaxImageBytes+1, jpegHead); !errors.Is(err, ErrImageTooBig) {
		t.Fatalf("expected ErrImageTooBig, got %v", err)
	}
	if err := ValidateImage("application/pdf", 100, jpegHead); !errors.Is(err, ErrImageFormat) {
		t.Fatalf("expected ErrImageFormat for pdf mime, got %v", err)
	}
	// Declared mime looks fine but the bytes are not an image.
	text := []byte("not an image at all")
	if err := ValidateImage("image/jpeg", int64(len(text)), text); !errors.Is(err, ErrImageFormat) {
		t.Fatalf("expected ErrImageFormat for sniffed text, got %v", err)
	}
}

type recordingStore struct {
	saves int
}

func (s *recordingStore) Save(ctx context.Context, userId string, fileName string, r io.Reader) (string, int64, string, error) {
	s.saves++
	n, _ := io.Copy(io.Discard, r)
	return fmt.Sprintf("%s/%s", userId, fileName), n, "image/jpeg", nil
}

func (s *recordingStore) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	return nil, fmt.Errorf("not stored: %s", storageKey)
}

func (s *recordingStore) Delete(ctx context.Context, storageKey string) error { return nil }

func (s *recordingStore) URL(storageKey string) string { return "/files/" + storageKey }

func TestSavePairValidatesBothBeforeStoring(t *testing.T) {
	repo := NewMemoryRepo()
	store := &recordingStore{}
	svc := NewService(repo, store)

	front := ImageUpload{FileName: "front.jpg", Mime: "image/jpeg", Size: int64(len(jpegHead)), Body: bytes.NewReader(jpegHead)}
	back := ImageUpload{FileName: "back.txt", Mime: "text/plain", Size: 10, Body: bytes.NewReader([]byte("plain text"))}

	if _, err := svc.SavePair(context.Background(), "seeker-1", front, back); !errors.Is(err, ErrImageFormat) {
		t.Fatalf("expected ErrImageFormat, got %v", err)
	}
	if store.saves != 0 {
		t.Fatalf("expected no stored objects after rejection, got %d", store.saves)
	}
	if _, _, err := svc.Check(context.Background(), "seeker-1"); err != nil {
		t.Fatalf("check: %v", err)
	}
	if _, err := repo.GetBySeeker(context.Background(), "seeker-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected no recorded pair, got %v", err)
	}
}
