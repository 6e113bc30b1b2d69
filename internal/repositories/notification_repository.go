package repositories

import (
	"errors"
	"time"

	"dealercrm_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
)

// NotificationCriteria filters a user's notification list.
type NotificationCriteria struct {
	UnreadOnly bool   `form:"unread_only"`
	Type       string `form:"type"`
	Page       int    `form:"page" binding:"min=0"`
	PageSize   int    `form:"page_size" binding:"min=0,max=100"`
}

// NotificationRepository owns the durable record lifecycle. Content columns
// (type, title, message, created_at, user_id) are never updated after
// creation; the only mutations are the read transition and deletion.
type NotificationRepository interface {
	Create(n *models.Notification) error
	CreateBulk(ns []*models.Notification) error
	FindByID(id string) (*models.Notification, error)
	FindUserNotifications(userID string, criteria NotificationCriteria) ([]models.Notification, int64, error)

	// MarkRead is idempotent: marking an already-read record returns it
	// unchanged, with read_at keeping its original value.
	MarkRead(userID, id string) (*models.Notification, error)
	MarkAllRead(userID string) (int64, error)

	Delete(userID, id string) error
	DeleteAll(userID string) (int64, error)

	UnreadCount(userID string) (int64, error)

	// PurgeReadOlderThan garbage-collects read records past the retention
	// window. Maintenance operation, not a user action.
	PurgeReadOlderThan(cutoff time.Time) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(n *models.Notification) error {
	return r.db.Create(n).Error
}

func (r *notificationRepository) CreateBulk(ns []*models.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	return r.db.Create(&ns).Error
}

func (r *notificationRepository) FindByID(id string) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepository) FindUserNotifications(userID string, criteria NotificationCriteria) ([]models.Notification, int64, error) {
	query := r.db.Model(&models.Notification{}).Where("user_id = ?", userID)

	if criteria.UnreadOnly {
		query = query.Where("is_read = false")
	}
	if criteria.Type != "" {
		query = query.Where("type = ?", criteria.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := criteria.Page
	if page < 1 {
		page = 1
	}
	pageSize := criteria.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var notifications []models.Notification
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (r *notificationRepository) MarkRead(userID, id string) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.First(&n, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}

	if n.IsRead {
		return &n, nil
	}

	now := time.Now().UTC()
	err := r.db.Model(&n).
		Select("is_read", "read_at").
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
	if err != nil {
		return nil, err
	}
	n.IsRead = true
	n.ReadAt = &now
	return &n, nil
}

func (r *notificationRepository) MarkAllRead(userID string) (int64, error) {
	now := time.Now().UTC()
	result := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = false", userID).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) Delete(userID, id string) error {
	result := r.db.Delete(&models.Notification{}, "id = ? AND user_id = ?", id, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *notificationRepository) DeleteAll(userID string) (int64, error) {
	result := r.db.Delete(&models.Notification{}, "user_id = ?", userID)
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) UnreadCount(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = false", userID).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) PurgeReadOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.Delete(&models.Notification{}, "is_read = true AND created_at < ?", cutoff)
	return result.RowsAffected, result.Error
}
