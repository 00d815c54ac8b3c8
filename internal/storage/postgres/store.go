package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/UkralStul/blogfront/internal/storage"
)

// clientState - строка таблицы client_states.
type clientState struct {
	Profile   string `gorm:"primaryKey"`
	Key       string `gorm:"primaryKey"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

func (clientState) TableName() string { return "client_states" }

// Store реализует интерфейс Storage с использованием PostgreSQL.
// Позволяет делить один профиль между несколькими машинами.
type Store struct {
	db      *gorm.DB
	profile string
}

// New подключается к базе и выполняет миграцию схемы.
func New(dsn, profile string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return NewWithDB(db, profile)
}

// NewWithDB использует уже открытое соединение.
func NewWithDB(db *gorm.DB, profile string) (*Store, error) {
	if profile == "" {
		profile = "default"
	}
	if err := db.AutoMigrate(&clientState{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Store{db: db, profile: profile}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var row clientState
	err := s.db.WithContext(ctx).
		First(&row, "profile = ? AND key = ?", s.profile, key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.Value, nil
}

// Put выполняет upsert по (profile, key).
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	row := clientState{Profile: s.profile, Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "profile"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).
		Where("profile = ? AND key = ?", s.profile, key).
		Delete(&clientState{}).Error
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
