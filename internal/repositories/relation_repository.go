package repositories

import (
	"context"
	"fmt"

	"foodgram/internal/models"

	"gorm.io/gorm"
)

// RelationKind names one of the user-relative pair tables.
type RelationKind int

const (
	RelationFavorite RelationKind = iota
	RelationShoppingCart
	RelationSubscription
)

func (k RelationKind) String() string {
	switch k {
	case RelationFavorite:
		return "favorite"
	case RelationShoppingCart:
		return "shopping_cart"
	case RelationSubscription:
		return "subscription"
	default:
		return "unknown"
	}
}

// RelationRepository stores (owner, target) pairs. The target is a recipe for favorites and
// shopping cart entries and an author for subscriptions.
type RelationRepository interface {
	Add(ctx context.Context, kind RelationKind, ownerID, targetID uint) error
	Remove(ctx context.Context, kind RelationKind, ownerID, targetID uint) (bool, error)
	Exists(ctx context.Context, kind RelationKind, ownerID, targetID uint) (bool, error)
	Targets(ctx context.Context, kind RelationKind, ownerID uint, targetIDs []uint) (map[uint]bool, error)
	SubscribedAuthors(ctx context.Context, userID uint, offset, limit int) ([]models.User, int64, error)
}

// GORMRelationRepository is a GORM implementation of RelationRepository.
type GORMRelationRepository struct {
	db *gorm.DB
}

// NewGORMRelationRepository creates a new instance of GORMRelationRepository.
func NewGORMRelationRepository(db *gorm.DB) *GORMRelationRepository {
	return &GORMRelationRepository{db: db}
}

func (k RelationKind) row(ownerID, targetID uint) (interface{}, string, error) {
	switch k {
	case RelationFavorite:
		return &models.Favorite{UserID: ownerID, RecipeID: targetID}, "recipe_id", nil
	case RelationShoppingCart:
		return &models.ShoppingListEntry{UserID: ownerID, RecipeID: targetID}, "recipe_id", nil
	case RelationSubscription:
		return &models.Subscription{UserID: ownerID, AuthorID: targetID}, "author_id", nil
	default:
		return nil, "", fmt.Errorf("unknown relation kind %d", int(k))
	}
}

// Add inserts the pair. An existing pair yields ErrDuplicate.
func (r *GORMRelationRepository) Add(ctx context.Context, kind RelationKind, ownerID, targetID uint) error {
	row, _, err := kind.row(ownerID, targetID)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Omit("User", "Recipe", "Author").Create(row).Error; err != nil {
		return fmt.Errorf("failed to add %s: %w", kind, translate(err))
	}
	return nil
}

// Remove deletes the pair and reports whether it existed.
func (r *GORMRelationRepository) Remove(ctx context.Context, kind RelationKind, ownerID, targetID uint) (bool, error) {
	row, column, err := kind.row(0, 0)
	if err != nil {
		return false, err
	}
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND "+column+" = ?", ownerID, targetID).
		Delete(row)
	if res.Error != nil {
		return false, fmt.Errorf("failed to remove %s: %w", kind, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Exists reports whether the pair is present.
func (r *GORMRelationRepository) Exists(ctx context.Context, kind RelationKind, ownerID, targetID uint) (bool, error) {
	row, column, err := kind.row(0, 0)
	if err != nil {
		return false, err
	}
	var count int64
	err = r.db.WithContext(ctx).Model(row).
		Where("user_id = ? AND "+column+" = ?", ownerID, targetID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", kind, err)
	}
	return count > 0, nil
}

// Targets returns, in one query, which of targetIDs are paired with ownerID.
func (r *GORMRelationRepository) Targets(ctx context.Context, kind RelationKind, ownerID uint, targetIDs []uint) (map[uint]bool, error) {
	present := make(map[uint]bool, len(targetIDs))
	if len(targetIDs) == 0 {
		return present, nil
	}
	row, column, err := kind.row(0, 0)
	if err != nil {
		return nil, err
	}
	var ids []uint
	err = r.db.WithContext(ctx).Model(row).
		Where("user_id = ? AND "+column+" IN ?", ownerID, targetIDs).
		Pluck(column, &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s flags: %w", kind, err)
	}
	for _, id := range ids {
		present[id] = true
	}
	return present, nil
}

// SubscribedAuthors returns one page of authors userID follows, ordered by id.
func (r *GORMRelationRepository) SubscribedAuthors(ctx context.Context, userID uint, offset, limit int) ([]models.User, int64, error) {
	authors := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id IN (?)", r.db.Model(&models.Subscription{}).Select("author_id").Where("user_id = ?", userID))

	var total int64
	if err := authors.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}
	var users []models.User
	q := authors.Session(&gorm.Session{}).Order("id").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return users, total, nil
}
