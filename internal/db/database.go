package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/bmateuszideas/DPF-CALC/internal/errors"
	"github.com/bmateuszideas/DPF-CALC/internal/loader"
	"github.com/bmateuszideas/DPF-CALC/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// Database wraps the SQLite connection
type Database struct {
	conn *sql.DB
}

// New creates a new database connection
func New(dbPath string) (*Database, error) {
	// Enable WAL mode and other optimizations via connection string
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000", dbPath)

	conn, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, errors.Storage("failed to open database", err)
	}

	// SQLite works best with a single writer
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	db := &Database{conn: conn}

	if err := db.initialize(); err != nil {
		return nil, errors.Storage("failed to initialize database", err)
	}

	return db, nil
}

// initialize creates tables and indexes
func (db *Database) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS oils (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		brand TEXT,
		sulfated_ash_pct REAL NOT NULL,
		density_kg_per_l REAL NOT NULL,
		phosphorus_pct REAL,
		sulfur_pct REAL,
		notes TEXT
	);

	CREATE TABLE IF NOT EXISTS fuels (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		brand TEXT,
		sulfur_ppm REAL NOT NULL,
		density_kg_per_l REAL NOT NULL,
		notes TEXT
	);

	CREATE TABLE IF NOT EXISTS estimates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		vehicle_id TEXT,
		oil_id TEXT NOT NULL,
		fuel_id TEXT NOT NULL,
		mileage_km REAL NOT NULL,
		oil_consumption_l_per_1000km REAL NOT NULL,
		fuel_consumption_l_per_100km REAL NOT NULL,
		oil_ash_g REAL NOT NULL,
		fuel_ash_g REAL NOT NULL,
		total_ash_g REAL NOT NULL,
		dpf_capacity_ash_g REAL NOT NULL,
		fill_ratio REAL NOT NULL,
		fill_percent REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (oil_id) REFERENCES oils(id),
		FOREIGN KEY (fuel_id) REFERENCES fuels(id)
	);

	CREATE INDEX IF NOT EXISTS idx_estimates_vehicle_id ON estimates(vehicle_id);
	CREATE INDEX IF NOT EXISTS idx_estimates_created_at ON estimates(created_at);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.conn.Close()
}

// UpsertOils stores every spec from a loaded oil database, replacing
// any existing rows with the same identifier
func (db *Database) UpsertOils(oils *loader.OilDB) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, errors.Storage("begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO oils
		(id, name, brand, sulfated_ash_pct, density_kg_per_l, phosphorus_pct, sulfur_pct, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, errors.Storage("prepare insert", err)
	}
	defer stmt.Close()

	var count int64
	for _, id := range oils.IDs() {
		o, _ := oils.Get(id)
		_, err := stmt.Exec(o.ID, o.Name, o.Brand, o.SulfatedAshPct, o.DensityKgPerL, o.PhosphorusPct, o.SulfurPct, o.Notes)
		if err != nil {
			return count, errors.Storage("insert oil "+o.ID, err)
		}
		count++
	}

	return count, tx.Commit()
}

// UpsertFuels stores every spec from a loaded fuel database
func (db *Database) UpsertFuels(fuels *loader.FuelDB) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, errors.Storage("begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO fuels
		(id, name, brand, sulfur_ppm, density_kg_per_l, notes)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, errors.Storage("prepare insert", err)
	}
	defer stmt.Close()

	var count int64
	for _, id := range fuels.IDs() {
		f, _ := fuels.Get(id)
		_, err := stmt.Exec(f.ID, f.Name, f.Brand, f.SulfurPPM, f.DensityKgPerL, f.Notes)
		if err != nil {
			return count, errors.Storage("insert fuel "+f.ID, err)
		}
		count++
	}

	return count, tx.Commit()
}

// GetOil retrieves an oil spec by ID
func (db *Database) GetOil(id string) (*models.OilSpec, error) {
	query := `SELECT id, name, brand, sulfated_ash_pct, density_kg_per_l, phosphorus_pct, sulfur_pct, notes FROM oils WHERE id = ?`

	var o models.OilSpec
	var brand, notes sql.NullString
	var phosphorus, sulfur sql.NullFloat64
	err := db.conn.QueryRow(query, id).Scan(&o.ID, &o.Name, &brand, &o.SulfatedAshPct, &o.DensityKgPerL, &phosphorus, &sulfur, &notes)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("oil", id)
	}
	if err != nil {
		return nil, errors.Storage("query oil", err)
	}
	o.Brand = brand.String
	o.Notes = notes.String
	o.PhosphorusPct = phosphorus.Float64
	o.SulfurPct = sulfur.Float64
	return &o, nil
}

// GetFuel retrieves a fuel spec by ID
func (db *Database) GetFuel(id string) (*models.FuelSpec, error) {
	query := `SELECT id, name, brand, sulfur_ppm, density_kg_per_l, notes FROM fuels WHERE id = ?`

	var f models.FuelSpec
	var brand, notes sql.NullString
	err := db.conn.QueryRow(query, id).Scan(&f.ID, &f.Name, &brand, &f.SulfurPPM, &f.DensityKgPerL, &notes)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("fuel", id)
	}
	if err != nil {
		return nil, errors.Storage("query fuel", err)
	}
	f.Brand = brand.String
	f.Notes = notes.String
	return &f, nil
}

// ListOils returns all stored oil specs ordered by identifier
func (db *Database) ListOils() ([]models.OilSpec, error) {
	query := `SELECT id, name, brand, sulfated_ash_pct, density_kg_per_l, phosphorus_pct, sulfur_pct, notes FROM oils ORDER BY id`

	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, errors.Storage("list oils", err)
	}
	defer rows.Close()

	var oils []models.OilSpec
	for rows.Next() {
		var o models.OilSpec
		var brand, notes sql.NullString
		var phosphorus, sulfur sql.NullFloat64
		if err := rows.Scan(&o.ID, &o.Name, &brand, &o.SulfatedAshPct, &o.DensityKgPerL, &phosphorus, &sulfur, &notes); err != nil {
			return nil, errors.Storage("scan oil", err)
		}
		o.Brand = brand.String
		o.Notes = notes.String
		o.PhosphorusPct = phosphorus.Float64
		o.SulfurPct = sulfur.Float64
		oils = append(oils, o)
	}
	return oils, rows.Err()
}

// ListFuels returns all stored fuel specs ordered by identifier
func (db *Database) ListFuels() ([]models.FuelSpec, error) {
	query := `SELECT id, name, brand, sulfur_ppm, density_kg_per_l, notes FROM fuels ORDER BY id`

	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, errors.Storage("list fuels", err)
	}
	defer rows.Close()

	var fuels []models.FuelSpec
	for rows.Next() {
		var f models.FuelSpec
		var brand, notes sql.NullString
		if err := rows.Scan(&f.ID, &f.Name, &brand, &f.SulfurPPM, &f.DensityKgPerL, &notes); err != nil {
			return nil, errors.Storage("scan fuel", err)
		}
		f.Brand = brand.String
		f.Notes = notes.String
		fuels = append(fuels, f)
	}
	return fuels, rows.Err()
}

// SaveEstimate persists a computed ash fill estimate
func (db *Database) SaveEstimate(e *models.EstimateRecord) error {
	query := `
		INSERT INTO estimates
		(vehicle_id, oil_id, fuel_id, mileage_km, oil_consumption_l_per_1000km,
		 fuel_consumption_l_per_100km, oil_ash_g, fuel_ash_g, total_ash_g,
		 dpf_capacity_ash_g, fill_ratio, fill_percent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := db.conn.Exec(query,
		e.VehicleID, e.OilID, e.FuelID,
		e.Profile.MileageKM, e.Profile.OilConsumptionLPer1000, e.Profile.FuelConsumptionLPer100,
		e.Result.OilAshG, e.Result.FuelAshG, e.Result.TotalAshG,
		e.Result.DPFCapacityAshG, e.Result.FillRatio, e.Result.FillPercent,
	)
	if err != nil {
		return errors.Storage("insert estimate", err)
	}

	id, _ := result.LastInsertId()
	e.ID = id
	return nil
}

// ListEstimates returns saved estimates, most recent first. A non-empty
// vehicleID filters to that vehicle; limit <= 0 means no limit.
func (db *Database) ListEstimates(vehicleID string, limit int) ([]models.EstimateRecord, error) {
	query := `
		SELECT id, vehicle_id, oil_id, fuel_id, mileage_km,
		       oil_consumption_l_per_1000km, fuel_consumption_l_per_100km,
		       oil_ash_g, fuel_ash_g, total_ash_g, dpf_capacity_ash_g,
		       fill_ratio, fill_percent, created_at
		FROM estimates
	`
	var args []interface{}
	if vehicleID != "" {
		query += " WHERE vehicle_id = ?"
		args = append(args, vehicleID)
	}
	query += " ORDER BY created_at DESC, id DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, errors.Storage("list estimates", err)
	}
	defer rows.Close()

	var results []models.EstimateRecord
	for rows.Next() {
		var e models.EstimateRecord
		var vehicle sql.NullString
		err := rows.Scan(
			&e.ID, &vehicle, &e.OilID, &e.FuelID, &e.Profile.MileageKM,
			&e.Profile.OilConsumptionLPer1000, &e.Profile.FuelConsumptionLPer100,
			&e.Result.OilAshG, &e.Result.FuelAshG, &e.Result.TotalAshG,
			&e.Result.DPFCapacityAshG, &e.Result.FillRatio, &e.Result.FillPercent,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, errors.Storage("scan estimate", err)
		}
		e.VehicleID = vehicle.String
		results = append(results, e)
	}

	return results, rows.Err()
}

// GetStats returns database statistics
func (db *Database) GetStats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var oilCount int64
	db.conn.QueryRow("SELECT COUNT(*) FROM oils").Scan(&oilCount)
	stats["total_oils"] = oilCount

	var fuelCount int64
	db.conn.QueryRow("SELECT COUNT(*) FROM fuels").Scan(&fuelCount)
	stats["total_fuels"] = fuelCount

	var estimateCount int64
	db.conn.QueryRow("SELECT COUNT(*) FROM estimates").Scan(&estimateCount)
	stats["total_estimates"] = estimateCount

	var saturated int64
	db.conn.QueryRow("SELECT COUNT(*) FROM estimates WHERE fill_ratio >= 1.0").Scan(&saturated)
	stats["saturated_estimates"] = saturated

	return stats, nil
}
