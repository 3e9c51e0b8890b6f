package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// ReportDB wraps the raw database/sql connection used by the reporting
// queries, which run plain aggregate SQL instead of going through GORM.
type ReportDB struct {
	conn *sql.DB
}

// ConnConfig holds raw connection configuration
type ConnConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// NewReportConnection creates the raw database connection for reporting
func NewReportConnection(cfg ConnConfig) (*ReportDB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName,
	)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Reporting is read-only and low-volume; keep the pool small
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)
	conn.SetConnMaxIdleTime(2 * time.Minute)

	// Verify connection
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Report database connection established")

	return &ReportDB{conn: conn}, nil
}

// Close closes the database connection
func (db *ReportDB) Close() error {
	if db.conn != nil {
		log.Println("📡 Closing report database connection...")
		return db.conn.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (db *ReportDB) Ping() error {
	return db.conn.Ping()
}

// GetConn returns the underlying sql.DB connection
func (db *ReportDB) GetConn() *sql.DB {
	return db.conn
}
