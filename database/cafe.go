package database

import (
	"context"
	"fmt"

	"cafedir/model"

	"gorm.io/gorm"
)

type CafeStore struct {
	db *gorm.DB
}

func NewCafeStore(db *gorm.DB) *CafeStore {
	return &CafeStore{db: db}
}

// List returns every cafe ordered by name.
func (s *CafeStore) List(ctx context.Context) ([]model.Cafe, error) {
	var cafes []model.Cafe
	if err := s.db.WithContext(ctx).Order("name").Find(&cafes).Error; err != nil {
		return nil, fmt.Errorf("list cafes: %w", translate(err))
	}
	return cafes, nil
}

// Get returns the cafe with the given id or ErrNotFound.
func (s *CafeStore) Get(ctx context.Context, id uint) (*model.Cafe, error) {
	var cafe model.Cafe
	if err := s.db.WithContext(ctx).First(&cafe, id).Error; err != nil {
		return nil, fmt.Errorf("get cafe %d: %w", id, translate(err))
	}
	return &cafe, nil
}

// FindByLocation matches location exactly. Callers normalize the city first.
func (s *CafeStore) FindByLocation(ctx context.Context, city string) ([]model.Cafe, error) {
	var cafes []model.Cafe
	err := s.db.WithContext(ctx).
		Where("location = ?", city).
		Order("name").
		Find(&cafes).Error
	if err != nil {
		return nil, fmt.Errorf("find cafes in %q: %w", city, translate(err))
	}
	return cafes, nil
}

// Create inserts cafe and fills in its ID. A taken name yields ErrDuplicate.
func (s *CafeStore) Create(ctx context.Context, cafe *model.Cafe) error {
	cafe.ID = 0
	if err := s.db.WithContext(ctx).Create(cafe).Error; err != nil {
		return fmt.Errorf("create cafe %q: %w", cafe.Name, translate(err))
	}
	return nil
}

// Update overwrites every mutable column of cafe id with fields, blanks
// included.
func (s *CafeStore) Update(ctx context.Context, id uint, fields model.Cafe) (*model.Cafe, error) {
	fields.ID = 0
	res := s.db.WithContext(ctx).
		Model(&model.Cafe{ID: id}).
		Select("*").
		Omit("id").
		Updates(&fields)
	if res.Error != nil {
		return nil, fmt.Errorf("update cafe %d: %w", id, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("update cafe %d: %w", id, ErrNotFound)
	}

	fields.ID = id
	return &fields, nil
}

func (s *CafeStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&model.Cafe{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete cafe %d: %w", id, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete cafe %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *CafeStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Cafe{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count cafes: %w", translate(err))
	}
	return n, nil
}
