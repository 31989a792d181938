package implementation

import (
	"context"
	"errors"
	"time"

	"plant-journal-be/internal/entity"
	"plant-journal-be/internal/mapper"
	"plant-journal-be/internal/model"
	"plant-journal-be/internal/repository/contract"
	"plant-journal-be/internal/repository/specification"
	"plant-journal-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	wmessage "github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DiscoveryRepositoryImpl struct {
	db        *gorm.DB
	mapper    *mapper.DiscoveryMapper
	publisher wmessage.Publisher
}

func NewDiscoveryRepository(db *gorm.DB, publisher wmessage.Publisher) contract.DiscoveryRepository {
	return &DiscoveryRepositoryImpl{
		db:        db,
		mapper:    mapper.NewDiscoveryMapper(),
		publisher: publisher,
	}
}

func (r *DiscoveryRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// publishChange notifies live subscribers for the owner. A publish failure is
// swallowed: the write already succeeded and subscribers re-sync on the next
// event or re-subscribe.
func (r *DiscoveryRepositoryImpl) publishChange(op events.ChangeOp, ownerId string, discoveryId string) {
	if r.publisher == nil {
		return
	}
	evt := events.DiscoveryChanged{
		Op:          op,
		OwnerId:     ownerId,
		DiscoveryId: discoveryId,
		OccurredAt:  time.Now(),
	}
	payload, err := evt.Marshal()
	if err != nil {
		return
	}
	msg := wmessage.NewMessage(watermill.NewUUID(), payload)
	_ = r.publisher.Publish(events.DiscoveryChangedTopic(ownerId), msg)
}

func (r *DiscoveryRepositoryImpl) Insert(ctx context.Context, discovery *entity.Discovery) (uuid.UUID, error) {
	if discovery.Id == uuid.Nil {
		discovery.Id = uuid.New()
	}
	if discovery.CreatedAt == 0 {
		discovery.CreatedAt = time.Now().UnixMilli()
	}

	m := r.mapper.ToModel(discovery)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(m).Error
	if err != nil {
		return uuid.Nil, err
	}

	*discovery = *r.mapper.ToEntity(m)
	r.publishChange(events.OpInsert, discovery.OwnerId, discovery.Id.String())
	return discovery.Id, nil
}

func (r *DiscoveryRepositoryImpl) Update(ctx context.Context, discovery *entity.Discovery) error {
	m := r.mapper.ToModel(discovery)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*discovery = *r.mapper.ToEntity(m)
	r.publishChange(events.OpUpdate, discovery.OwnerId, discovery.Id.String())
	return nil
}

func (r *DiscoveryRepositoryImpl) DeleteById(ctx context.Context, id uuid.UUID) error {
	var m model.Discovery
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil // deleting a missing record is a no-op
		}
		return err
	}

	if err := r.db.WithContext(ctx).Delete(&model.Discovery{}, "id = ?", id).Error; err != nil {
		return err
	}
	r.publishChange(events.OpDelete, m.OwnerId, id.String())
	return nil
}

func (r *DiscoveryRepositoryImpl) DeleteAllByOwner(ctx context.Context, ownerId string) error {
	res := r.db.WithContext(ctx).Where("owner_id = ?", ownerId).Delete(&model.Discovery{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		r.publishChange(events.OpDeleteAll, ownerId, "")
	}
	return nil
}

func (r *DiscoveryRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Discovery, error) {
	var m model.Discovery
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DiscoveryRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Discovery, error) {
	var models []*model.Discovery
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *DiscoveryRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Discovery{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
