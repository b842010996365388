package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/housing-cleanse/internal/config"
)

// SaleTable is the single table the cleaning pipeline operates on.
const SaleTable = "sale_record"

// Connection holds the database connection
type Connection struct {
	DB *sql.DB
}

// NewConnection creates a new database connection from PG* environment
// variables.
func NewConnection() (*Connection, error) {
	host := config.GetEnv("PGHOST", "localhost")
	port := config.GetEnv("PGPORT", "5432")
	user := config.GetEnv("PGUSER", "user")
	password := config.GetEnv("PGPASSWORD", "password")
	dbname := config.GetEnv("PGDATABASE", "housing")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	return &Connection{DB: db}, nil
}

// EnsureSchema creates the sale_record table if it does not exist. The raw
// extract columns stay text; the pipeline derives typed columns from them.
func (c *Connection) EnsureSchema() error {
	_, err := c.DB.Exec(`
		CREATE TABLE IF NOT EXISTS sale_record (
			record_id        bigint PRIMARY KEY,
			parcel_id        text,
			land_use         text,
			property_address text,
			sale_date        text,
			sale_price       text,
			legal_reference  text,
			sold_as_vacant   text,
			owner_name       text,
			owner_address    text,
			acreage          text,
			tax_district     text
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create sale_record table: %w", err)
	}
	return nil
}

// Close closes the database connection
func (c *Connection) Close() error {
	return c.DB.Close()
}
