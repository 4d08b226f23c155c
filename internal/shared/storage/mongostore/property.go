package mongostore

import (
	"context"
	"time"

	"marketplace/internal/shared/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// ============================================================================
// PropertyStore
// ============================================================================

func (s *Store) ListActiveProperties(ctx context.Context) ([]*model.Property, error) {
	return findNewest[model.Property](ctx, s.col(ColProperties),
		bson.D{{Key: "status", Value: model.PropertyActive}})
}

func (s *Store) GetProperty(ctx context.Context, id string) (*model.Property, error) {
	return findByID[model.Property](ctx, s.col(ColProperties), id)
}

// CreateProperty 补齐 ID、创建时间和默认 active 状态后写入
func (s *Store) CreateProperty(ctx context.Context, property *model.Property) error {
	if property.ID == "" {
		property.ID = uuid.NewString()
	}
	if property.CreatedAt.IsZero() {
		property.CreatedAt = time.Now().UTC()
	}
	if property.Status == "" {
		property.Status = model.PropertyActive
	}
	_, err := s.col(ColProperties).InsertOne(ctx, property)
	return wrapError(err)
}

func (s *Store) UpdatePropertyStatus(ctx context.Context, id string, status model.PropertyStatus) error {
	return setFields(ctx, s.col(ColProperties), id, bson.D{{Key: "status", Value: status}})
}

func (s *Store) DeleteProperty(ctx context.Context, id string) error {
	return removeByID(ctx, s.col(ColProperties), id)
}
