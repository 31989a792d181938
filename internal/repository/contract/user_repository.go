package contract

import (
	"context"

	"plant-journal-be/internal/entity"
	"plant-journal-be/internal/repository/specification"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
}
