package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/anonto42/nano-midea/followers/internal/models"
)

var (
	// ErrFollowNotFound is returned when no edge exists for a pair.
	ErrFollowNotFound = errors.New("follow relationship not found")
	// ErrDuplicateFollow is returned when the store rejects a second edge for the same pair.
	ErrDuplicateFollow = errors.New("follow relationship already exists")
)

// FollowRepository is the relationship store. Implementations must enforce
// uniqueness of (FollowerID, FollowingID) themselves.
type FollowRepository interface {
	FindFollow(ctx context.Context, followerID, followingID string) (*models.Follow, error)
	CreateFollow(ctx context.Context, follow *models.Follow) error
	DeleteFollow(ctx context.Context, followerID, followingID string) (bool, error)
	GetFollowers(ctx context.Context, userID string) ([]models.Follow, error)
	GetFollowing(ctx context.Context, userID string) ([]models.Follow, error)
}

// GormFollowRepository implements FollowRepository on PostgreSQL or SQLite.
type GormFollowRepository struct {
	db *gorm.DB
}

// NewGormFollowRepository creates a new GormFollowRepository.
func NewGormFollowRepository(db *gorm.DB) *GormFollowRepository {
	return &GormFollowRepository{db: db}
}

// Migrate creates the followers table and its unique pair index.
func (r *GormFollowRepository) Migrate() error {
	return r.db.AutoMigrate(&models.Follow{})
}

func (r *GormFollowRepository) FindFollow(ctx context.Context, followerID, followingID string) (*models.Follow, error) {
	var follow models.Follow
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND target_userid = ?", followerID, followingID).
		Take(&follow).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFollowNotFound
	}
	if err != nil {
		return nil, err
	}
	return &follow, nil
}

func (r *GormFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	if err := r.db.WithContext(ctx).Create(follow).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateFollow
		}
		return err
	}
	return nil
}

// DeleteFollow removes the edge in a single statement and reports whether one existed.
func (r *GormFollowRepository) DeleteFollow(ctx context.Context, followerID, followingID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND target_userid = ?", followerID, followingID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormFollowRepository) GetFollowers(ctx context.Context, userID string) ([]models.Follow, error) {
	follows := []models.Follow{}
	err := r.db.WithContext(ctx).Where("target_userid = ?", userID).Find(&follows).Error
	return follows, err
}

func (r *GormFollowRepository) GetFollowing(ctx context.Context, userID string) ([]models.Follow, error) {
	follows := []models.Follow{}
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&follows).Error
	return follows, err
}

// isUniqueConstraintError detects uniqueness violations across drivers.
func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique constraint") ||
		strings.Contains(lower, "duplicate key")
}
