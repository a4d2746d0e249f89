package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vietsaga/vietsaga/internal/model"
	dbopts "github.com/vietsaga/vietsaga/pkg/options/db"
)

// ErrConversationNotFound reports a missing or foreign conversation row.
var ErrConversationNotFound = errors.New("store: conversation not found")

// NewDB opens a gorm connection for the configured driver and migrates the
// chat tables.
func NewDB(opts *dbopts.Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case dbopts.DriverMySQL:
		dialector = mysql.Open(opts.DSN)
	case dbopts.DriverSQLite:
		dialector = sqlite.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", opts.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)

	if err := db.AutoMigrate(&model.Conversation{}, &model.ConversationMessage{}); err != nil {
		return nil, fmt.Errorf("failed to migrate chat tables: %w", err)
	}

	return db, nil
}

// conversationStore implements ConversationStore on gorm.
type conversationStore struct {
	db *gorm.DB
}

var _ ConversationStore = (*conversationStore)(nil)

// NewConversationStore creates a gorm-backed ConversationStore.
func NewConversationStore(db *gorm.DB) ConversationStore {
	return &conversationStore{db: db}
}

func (s *conversationStore) Create(ctx context.Context, conv *model.Conversation) error {
	if err := s.db.WithContext(ctx).Create(conv).Error; err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

func (s *conversationStore) Find(ctx context.Context, id, userID uint64) (*model.Conversation, error) {
	var conv model.Conversation
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find conversation: %w", err)
	}
	return &conv, nil
}

func (s *conversationStore) List(ctx context.Context, userID uint64) ([]*model.Conversation, error) {
	var convs []*model.Conversation
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_message_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

func (s *conversationStore) Delete(ctx context.Context, id, userID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conv model.Conversation
		err := tx.Where("id = ? AND user_id = ?", id, userID).First(&conv).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrConversationNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to find conversation: %w", err)
		}

		if err := tx.Where("conversation_id = ?", id).Delete(&model.ConversationMessage{}).Error; err != nil {
			return fmt.Errorf("failed to delete messages: %w", err)
		}
		if err := tx.Delete(&conv).Error; err != nil {
			return fmt.Errorf("failed to delete conversation: %w", err)
		}
		return nil
	})
}

func (s *conversationStore) Messages(ctx context.Context, conversationID uint64) ([]*model.ConversationMessage, error) {
	var msgs []*model.ConversationMessage
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	return msgs, nil
}

func (s *conversationStore) RecentMessages(ctx context.Context, conversationID uint64, limit int) ([]*model.ConversationMessage, error) {
	var msgs []*model.ConversationMessage
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent messages: %w", err)
	}

	// Reverse back to chronological order.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (s *conversationStore) CountMessages(ctx context.Context, conversationID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.ConversationMessage{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

func (s *conversationStore) AppendExchange(ctx context.Context, conversationID uint64, userText, assistantText string) error {
	now := time.Now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		msgs := []*model.ConversationMessage{
			{ConversationID: conversationID, Role: model.RoleUser, Content: userText},
			{ConversationID: conversationID, Role: model.RoleAssistant, Content: assistantText},
		}
		if err := tx.Create(&msgs).Error; err != nil {
			return fmt.Errorf("failed to append messages: %w", err)
		}
		err := tx.Model(&model.Conversation{}).
			Where("id = ?", conversationID).
			Update("last_message_at", now).Error
		if err != nil {
			return fmt.Errorf("failed to bump conversation activity: %w", err)
		}
		return nil
	})
}
