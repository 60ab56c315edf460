package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//ErrNotFound is returned when no report has the requested id
var ErrNotFound = errors.New("report not found")

//Report summarizes one finished analysis
type Report struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	VideoName  string    `gorm:"index" json:"video_name"`
	Model      string    `json:"model"`
	Frames     int       `json:"frames"`
	Team1Share float64   `json:"team1_share"`
	Team2Share float64   `json:"team2_share"`
	OutputPath string    `json:"output_path"`
	ChartPath  string    `json:"chart_path"`
	CreatedAt  time.Time `json:"created_at"`
}

//Store persists reports in a SQLite database
type Store struct {
	db *gorm.DB
}

//busyTimeout is how long a write waits on a lock held by another process before failing
const busyTimeout = 5 * time.Second

//Open opens (and migrates) the database at path. ":memory:" gives a private in memory database.
//All queries share one connection, so concurrent analyses queue up instead of failing with "database is locked".
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening report database '%s': %w", path, err)
	}

	//every connection to ":memory:" is a different database, and SQLite has a single writer anyway
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeout.Milliseconds())).Error; err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("configuring report database: %w", err)
	}

	if err := db.AutoMigrate(&Report{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrating report database: %w", err)
	}

	return &Store{db: db}, nil
}

//Close releases the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

//Save inserts r, assigning it an id and creation time when missing
func (s *Store) Save(r *Report) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	return s.db.Create(r).Error
}

//List returns every report, newest first
func (s *Store) List() ([]Report, error) {
	reports := make([]Report, 0)
	if err := s.db.Order("created_at desc").Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

//Get returns the report with the given id
func (s *Store) Get(id string) (*Report, error) {
	var r Report
	if err := s.db.First(&r, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}
