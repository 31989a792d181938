package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"plant-journal-be/internal/entity"
	"plant-journal-be/internal/pkg/logger"
	"plant-journal-be/internal/repository/live"
	"plant-journal-be/internal/repository/specification"
	"plant-journal-be/internal/repository/unitofwork"
	"plant-journal-be/internal/storage"
	"plant-journal-be/pkg/vision"
	"plant-journal-be/pkg/vision/parse"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// ErrNotFound is returned when a discovery does not exist or belongs to a
// different owner.
var ErrNotFound = errors.New("discovery not found")

type IDiscoveryService interface {
	// Pipeline steps, driven by the capture workflow.
	SaveImage(ctx context.Context, ownerId string, image []byte) (string, error)
	Identify(ctx context.Context, imagePath string) (*vision.Identification, error)
	SaveDiscovery(ctx context.Context, ownerId string, ident *vision.Identification, imagePath string, category entity.Category, capturedAt int64) (uuid.UUID, error)

	// Journal reads and record management.
	Get(ctx context.Context, ownerId string, id uuid.UUID) (*entity.Discovery, error)
	List(ctx context.Context, ownerId string) ([]*entity.Discovery, error)
	UpdateCategory(ctx context.Context, ownerId string, id uuid.UUID, category entity.Category) (*entity.Discovery, error)
	Delete(ctx context.Context, ownerId string, id uuid.UUID) error
	DeleteAll(ctx context.Context, ownerId string) error
	StreamByOwner(ctx context.Context, ownerId string) (<-chan []*entity.Discovery, error)
}

type discoveryService struct {
	uowFactory   unitofwork.RepositoryFactory
	imageStore   *storage.ImageStore
	provider     vision.Provider
	providerName string
	modelName    string
	stream       *live.DiscoveryStream
	// identCache avoids re-spending an API call when the same image is
	// retried shortly after a downstream failure.
	identCache *gocache.Cache
	logger     logger.ILogger
}

func NewDiscoveryService(
	uowFactory unitofwork.RepositoryFactory,
	imageStore *storage.ImageStore,
	provider vision.Provider,
	providerName string,
	modelName string,
	stream *live.DiscoveryStream,
	log logger.ILogger,
) IDiscoveryService {
	return &discoveryService{
		uowFactory:   uowFactory,
		imageStore:   imageStore,
		provider:     provider,
		providerName: providerName,
		modelName:    modelName,
		stream:       stream,
		identCache:   gocache.New(10*time.Minute, 5*time.Minute),
		logger:       log,
	}
}

func (s *discoveryService) SaveImage(ctx context.Context, ownerId string, image []byte) (string, error) {
	path, err := s.imageStore.Save(ownerId, image)
	if err != nil {
		s.logger.Error("DiscoveryService", "Image save failed", map[string]interface{}{
			"owner_id": ownerId,
			"error":    err.Error(),
		})
		return "", err
	}
	return path, nil
}

func (s *discoveryService) Identify(ctx context.Context, imagePath string) (*vision.Identification, error) {
	data, err := s.imageStore.Read(imagePath)
	if err != nil {
		return nil, err
	}

	digest := sha256.Sum256(data)
	cacheKey := hex.EncodeToString(digest[:])
	if cached, ok := s.identCache.Get(cacheKey); ok {
		ident := cached.(*vision.Identification)
		if parse.IsUnidentifiable(ident.Name) {
			return nil, vision.ErrUnidentifiable
		}
		return ident, nil
	}

	raw, err := s.provider.Identify(ctx, vision.Image{
		Data:      data,
		MediaType: storage.DetectMediaType(data),
	})
	if err != nil {
		// The saved image stays on disk, orphaned. Surfaced here so the
		// leak is at least observable.
		s.logger.Warn("DiscoveryService", "Identification failed, image orphaned", map[string]interface{}{
			"image_path": imagePath,
			"error":      err.Error(),
		})
		return nil, err
	}

	result := parse.Parse(raw)
	if result.Degraded {
		s.logger.Warn("DiscoveryService", "Parser degraded to raw-text fallback", map[string]interface{}{
			"image_path": imagePath,
		})
	}

	ident := &vision.Identification{
		Name:     result.Name,
		Fact:     result.Fact,
		Provider: s.providerName,
		Model:    s.modelName,
		Degraded: result.Degraded,
	}
	s.identCache.Set(cacheKey, ident, gocache.DefaultExpiration)

	if parse.IsUnidentifiable(ident.Name) {
		return nil, vision.ErrUnidentifiable
	}
	return ident, nil
}

func (s *discoveryService) SaveDiscovery(ctx context.Context, ownerId string, ident *vision.Identification, imagePath string, category entity.Category, capturedAt int64) (uuid.UUID, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	discovery := &entity.Discovery{
		Id:         uuid.New(),
		OwnerId:    ownerId,
		Name:       ident.Name,
		Fact:       ident.Fact,
		ImagePath:  imagePath,
		Category:   category,
		CapturedAt: capturedAt,
		CreatedAt:  time.Now().UnixMilli(),
		Meta: &entity.IdentificationMeta{
			Provider: ident.Provider,
			Model:    ident.Model,
			Degraded: ident.Degraded,
		},
	}

	id, err := uow.DiscoveryRepository().Insert(ctx, discovery)
	if err != nil {
		s.logger.Error("DiscoveryService", "Discovery insert failed", map[string]interface{}{
			"owner_id": ownerId,
			"error":    err.Error(),
		})
		return uuid.Nil, err
	}

	s.logger.Info("DiscoveryService", "Discovery saved", map[string]interface{}{
		"discovery_id": id,
		"owner_id":     ownerId,
		"name":         discovery.Name,
	})
	return id, nil
}

func (s *discoveryService) Get(ctx context.Context, ownerId string, id uuid.UUID) (*entity.Discovery, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	discovery, err := uow.DiscoveryRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{OwnerID: ownerId},
	)
	if err != nil {
		return nil, err
	}
	if discovery == nil {
		return nil, ErrNotFound
	}
	return discovery, nil
}

func (s *discoveryService) List(ctx context.Context, ownerId string) ([]*entity.Discovery, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.DiscoveryRepository().FindAll(ctx,
		specification.OwnedBy{OwnerID: ownerId},
		specification.CapturedAtDesc{},
	)
}

// UpdateCategory is the only permitted mutation of a stored discovery.
func (s *discoveryService) UpdateCategory(ctx context.Context, ownerId string, id uuid.UUID, category entity.Category) (*entity.Discovery, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.DiscoveryRepository()

	discovery, err := repo.FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{OwnerID: ownerId},
	)
	if err != nil {
		return nil, err
	}
	if discovery == nil {
		return nil, ErrNotFound
	}

	discovery.Category = category
	if err := repo.Update(ctx, discovery); err != nil {
		return nil, err
	}
	return discovery, nil
}

func (s *discoveryService) Delete(ctx context.Context, ownerId string, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.DiscoveryRepository()

	discovery, err := repo.FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{OwnerID: ownerId},
	)
	if err != nil {
		return err
	}
	if discovery == nil {
		return nil // idempotent delete
	}
	return repo.DeleteById(ctx, id)
}

func (s *discoveryService) DeleteAll(ctx context.Context, ownerId string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.DiscoveryRepository().DeleteAllByOwner(ctx, ownerId)
}

func (s *discoveryService) StreamByOwner(ctx context.Context, ownerId string) (<-chan []*entity.Discovery, error) {
	return s.stream.StreamByOwner(ctx, ownerId)
}
