package app

import (
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"fmt"
	"path"
	"strings"
	"time"

	"amsterdam_guide/internal/domain"
)

// PhotoService stores a photo binary and links it to a place. Independent of
// the CSV pipeline; shares only the places table as a lookup target.
type PhotoService struct {
	repo  domain.PlaceRepository
	store domain.ObjectStore
	cache domain.Cache
}

func NewPhotoService(r domain.PlaceRepository, store domain.ObjectStore, cache domain.Cache) *PhotoService {
	return &PhotoService{repo: r, store: store, cache: cache}
}

func (s *PhotoService) Upload(ctx context.Context, placeSlug, filename, contentType, alt string, data []byte) (string, error) {
	placeID, err := s.repo.GetPlaceID(ctx, placeSlug)
	if err != nil {
		return "", err
	}

	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		ext = "jpg"
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	// place-slug/timestamp-random.ext keeps object keys unique per upload
	var rnd [6]byte
	_, _ = crand.Read(rnd[:])
	key := fmt.Sprintf("%s/%d-%s.%s", placeSlug, time.Now().UnixMilli(), hex.EncodeToString(rnd[:]), ext)

	url, err := s.store.Put(ctx, key, contentType, data)
	if err != nil {
		return "", fmt.Errorf("store photo: %w", err)
	}

	if err := s.repo.InsertPhoto(ctx, domain.Photo{PlaceID: placeID, URL: url, Alt: alt}); err != nil {
		return "", fmt.Errorf("insert photo row: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, "place:"+placeSlug)
	}
	return url, nil
}
