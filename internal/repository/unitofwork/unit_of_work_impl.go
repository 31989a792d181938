package unitofwork

import (
	"context"
	"fmt"

	"plant-journal-be/internal/repository/contract"
	"plant-journal-be/internal/repository/implementation"

	wmessage "github.com/ThreeDotsLabs/watermill/message"
	"gorm.io/gorm"
)

type RepositoryFactoryImpl struct {
	db        *gorm.DB
	publisher wmessage.Publisher
}

func NewRepositoryFactory(db *gorm.DB, publisher wmessage.Publisher) RepositoryFactory {
	return &RepositoryFactoryImpl{
		db:        db,
		publisher: publisher,
	}
}

func (f *RepositoryFactoryImpl) NewUnitOfWork(ctx context.Context) UnitOfWork {
	return &UnitOfWorkImpl{
		db:        f.db,
		publisher: f.publisher,
	}
}

type UnitOfWorkImpl struct {
	db        *gorm.DB
	tx        *gorm.DB
	publisher wmessage.Publisher
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) UserRepository() contract.UserRepository {
	return implementation.NewUserRepository(u.getDB())
}

func (u *UnitOfWorkImpl) DiscoveryRepository() contract.DiscoveryRepository {
	return implementation.NewDiscoveryRepository(u.getDB(), u.publisher)
}
