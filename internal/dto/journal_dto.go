package dto

import "plant-journal-be/internal/entity"

type DiscoveryResponse struct {
	Id         string `json:"id"`
	Name       string `json:"name"`
	Fact       string `json:"fact"`
	ImagePath  string `json:"image_path"`
	Category   string `json:"category"`
	CapturedAt int64  `json:"captured_at"`
	CreatedAt  int64  `json:"created_at"`
}

type UpdateCategoryRequest struct {
	Category string `json:"category" validate:"required,oneof=Plant Flower Tree Insect Other plant flower tree insect other"`
}

// JournalQuery carries the three independently-settable list inputs.
type JournalQuery struct {
	Search   string `json:"q"`
	Category string `json:"category"`
	Sort     string `json:"sort"`
}

func NewDiscoveryResponse(d *entity.Discovery) DiscoveryResponse {
	return DiscoveryResponse{
		Id:         d.Id.String(),
		Name:       d.Name,
		Fact:       d.Fact,
		ImagePath:  d.ImagePath,
		Category:   string(d.Category),
		CapturedAt: d.CapturedAt,
		CreatedAt:  d.CreatedAt,
	}
}

func NewDiscoveryResponses(records []*entity.Discovery) []DiscoveryResponse {
	out := make([]DiscoveryResponse, 0, len(records))
	for _, d := range records {
		out = append(out, NewDiscoveryResponse(d))
	}
	return out
}
