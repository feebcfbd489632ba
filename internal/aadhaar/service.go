package aadhaar

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"jobgujarat-backend/internal/shared/metrics"
	"jobgujarat-backend/internal/shared/storage/object"
)

// ImageUpload is one staged Aadhaar image as received from the client.
type ImageUpload struct {
	FileName string
	Mime     string
	Size     int64
	Body     io.Reader
}

// Service stores and looks up Aadhaar document pairs.
type Service struct {
	Repo  Repo
	Store object.ObjectStore
}

func NewService(repo Repo, store object.ObjectStore) *Service {
	return &Service{Repo: repo, Store: store}
}

// Check returns the seeker's confirmed document pair, if any.
func (s *Service) Check(ctx context.Context, seekerID string) (DocumentPair, bool, error) {
	if strings.TrimSpace(seekerID) == "" {
		return DocumentPair{}, false, errors.New("seeker id is required")
	}
	pair, err := s.Repo.GetBySeeker(ctx, seekerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return DocumentPair{}, false, nil
		}
		return DocumentPair{}, false, err
	}
	return pair, true, nil
}

// SavePair validates both images, stores them, and records the pair. Both
// files are validated before either is written so a rejection never leaves a
// half-stored pair behind.
func (s *Service) SavePair(ctx context.Context, seekerID string, front, back ImageUpload) (DocumentPair, error) {
	if strings.TrimSpace(seekerID) == "" {
		return DocumentPair{}, errors.New("seeker id is required")
	}

	frontData, err := stage(front)
	if err != nil {
		metrics.IncAadhaarUploadFailed()
		return DocumentPair{}, err
	}
	backData, err := stage(back)
	if err != nil {
		metrics.IncAadhaarUploadFailed()
		return DocumentPair{}, err
	}

	frontKey, _, _, err := s.Store.Save(ctx, seekerID, "aadhaar_front_"+front.FileName, bytes.NewReader(frontData))
	if err != nil {
		metrics.IncAadhaarUploadFailed()
		return DocumentPair{}, err
	}
	backKey, _, _, err := s.Store.Save(ctx, seekerID, "aadhaar_back_"+back.FileName, bytes.NewReader(backData))
	if err != nil {
		metrics.IncAadhaarUploadFailed()
		return DocumentPair{}, err
	}

	pair := DocumentPair{
		SeekerID:   seekerID,
		FrontKey:   frontKey,
		BackKey:    backKey,
		FrontURL:   s.Store.URL(frontKey),
		BackURL:    s.Store.URL(backKey),
		UploadedAt: time.Now().UTC(),
	}
	if err := s.Repo.Upsert(ctx, pair); err != nil {
		metrics.IncAadhaarUploadFailed()
		return DocumentPair{}, err
	}

	metrics.IncAadhaarUpload()
	return pair, nil
}

func stage(img ImageUpload) ([]byte, error) {
	if img.Body == nil {
		return nil, ErrImageMissing
	}
	data, err := io.ReadAll(io.LimitReader(img.Body, MaxImageBytes+1))
	if err != nil {
		return nil, err
	}
	size := img.Size
	if size <= 0 {
		size = int64(len(data))
	}
	if int64(len(data)) > MaxImageBytes {
		size = int64(len(data))
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return data, ValidateImage(img.Mime, size, head)
}
