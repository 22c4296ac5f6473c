package database

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB      *gorm.DB
	once    sync.Once
	connErr error
)

// Options holds the connection settings resolved by the config package.
type Options struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string

	MaxOpenConns int
	MaxIdleConns int
}

// Connect opens the shared pool once. Later calls return the same handle.
func Connect(opts Options) (*gorm.DB, error) {
	once.Do(func() {
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			opts.Host,
			opts.User,
			opts.Password,
			opts.Name,
			opts.Port,
		)

		db, err := Open(dsn)
		if err != nil {
			connErr = err
			return
		}

		sqlDB, err := db.DB()
		if err != nil {
			connErr = fmt.Errorf("failed to access connection pool: %w", err)
			return
		}
		if opts.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		}
		if opts.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
		}
		sqlDB.SetConnMaxLifetime(30 * time.Minute)

		DB = db
	})

	if connErr != nil {
		return nil, connErr
	}
	return DB, nil
}

// Open connects without touching the shared handle. Driver errors are translated
// so unique and foreign key violations surface as gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return db, nil
}
