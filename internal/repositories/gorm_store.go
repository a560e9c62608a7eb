// internal/repositories/gorm_store.go
package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// GormStore implements Store on top of a gorm connection.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Orders() OrderRepository         { return &orderRepository{db: s.db} }
func (s *GormStore) OrderItems() OrderItemRepository { return &orderItemRepository{db: s.db} }
func (s *GormStore) Inventory() InventoryRepository  { return &inventoryRepository{db: s.db} }
func (s *GormStore) Audit() AuditRepository          { return &auditRepository{db: s.db} }
func (s *GormStore) Users() UserRepository           { return &userRepository{db: s.db} }
func (s *GormStore) Clients() ClientRepository       { return &clientRepository{db: s.db} }

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// translateError maps driver and gorm errors onto the package sentinels.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
