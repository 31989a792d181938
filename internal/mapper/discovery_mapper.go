package mapper

import (
	"encoding/json"

	"plant-journal-be/internal/entity"
	"plant-journal-be/internal/model"

	"gorm.io/datatypes"
)

type DiscoveryMapper struct{}

func NewDiscoveryMapper() *DiscoveryMapper {
	return &DiscoveryMapper{}
}

func (m *DiscoveryMapper) ToEntity(d *model.Discovery) *entity.Discovery {
	if d == nil {
		return nil
	}

	var meta *entity.IdentificationMeta
	if len(d.Meta) > 0 {
		var im entity.IdentificationMeta
		if err := json.Unmarshal(d.Meta, &im); err == nil {
			meta = &im
		}
	}

	return &entity.Discovery{
		Id:         d.Id,
		OwnerId:    d.OwnerId,
		Name:       d.Name,
		Fact:       d.Fact,
		ImagePath:  d.ImagePath,
		Category:   entity.Category(d.Category),
		CapturedAt: d.CapturedAt,
		CreatedAt:  d.CreatedAt,
		Meta:       meta,
	}
}

func (m *DiscoveryMapper) ToModel(d *entity.Discovery) *model.Discovery {
	if d == nil {
		return nil
	}

	var meta datatypes.JSON
	if d.Meta != nil {
		if raw, err := json.Marshal(d.Meta); err == nil {
			meta = datatypes.JSON(raw)
		}
	}

	return &model.Discovery{
		Id:         d.Id,
		OwnerId:    d.OwnerId,
		Name:       d.Name,
		Fact:       d.Fact,
		ImagePath:  d.ImagePath,
		Category:   string(d.Category),
		CapturedAt: d.CapturedAt,
		CreatedAt:  d.CreatedAt,
		Meta:       meta,
	}
}

func (m *DiscoveryMapper) ToEntities(discoveries []*model.Discovery) []*entity.Discovery {
	entities := make([]*entity.Discovery, len(discoveries))
	for i, d := range discoveries {
		entities[i] = m.ToEntity(d)
	}
	return entities
}
