package database

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"dealerscraper/internal/models"
)

type Database struct {
	db *sql.DB
}

// UpsertOutcome describes what an upsert did to the row.
type UpsertOutcome int

const (
	OutcomeInserted UpsertOutcome = iota
	OutcomeUpdated
	OutcomeUnchanged
)

// NewDatabase creates a new database connection
func NewDatabase(dbPath string) (*Database, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database connection with SQLite optimizations
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_cache_size=10000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	database := &Database{db: db}

	// Initialize schema
	if err := database.initializeSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// initializeSchema creates tables from the schema file
func (d *Database) initializeSchema() error {
	schemaPath := filepath.Join("internal", "database", "schema.sql")
	schemaFile, err := os.Open(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to open schema file: %w", err)
	}
	defer schemaFile.Close()

	schema, err := io.ReadAll(schemaFile)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	if _, err := d.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

// FindOrCreateAttribute returns the id of the shared attribute record
// matching the listing: model substring of the title plus equal transmission
// and fuel type among active attributes. When none matches, one is created
// with a year taken from the title's 4-digit token, falling back to the
// current year.
func (d *Database) FindOrCreateAttribute(listing *models.VehicleListing) (int64, error) {
	rows, err := d.db.Query(`SELECT id, model, transmission, fuel_type FROM vehicle_attributes WHERE active = 1`)
	if err != nil {
		return 0, fmt.Errorf("failed to query attributes: %w", err)
	}
	defer rows.Close()

	titleLower := strings.ToLower(listing.Title)
	for rows.Next() {
		var id int64
		var model, transmission, fuelType string
		if err := rows.Scan(&id, &model, &transmission, &fuelType); err != nil {
			return 0, fmt.Errorf("failed to scan attribute: %w", err)
		}
		if model == "" || !strings.Contains(titleLower, strings.ToLower(model)) {
			continue
		}
		if !strings.EqualFold(transmission, listing.Transmission) || !strings.EqualFold(fuelType, listing.FuelType) {
			continue
		}
		return id, nil
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to iterate attributes: %w", err)
	}

	makeName, model := makeModelFromTitle(listing.Title)
	year := time.Now().Year()
	if listing.Year != nil {
		year = *listing.Year
	}

	result, err := d.db.Exec(`
		INSERT INTO vehicle_attributes (make, model, year, transmission, fuel_type, body_style, active)
		VALUES (?, ?, ?, ?, ?, ?, 1)
	`, makeName, model, year, listing.Transmission, listing.FuelType, listing.BodyStyle)
	if err != nil {
		return 0, fmt.Errorf("failed to create attribute: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get attribute ID: %w", err)
	}
	return id, nil
}

// makeModelFromTitle splits a listing title into a make guess (first word,
// uppercased) and model guess (second word).
func makeModelFromTitle(title string) (string, string) {
	words := strings.Fields(title)
	// Leading 4-digit year tokens are not the make.
	for len(words) > 0 && len(words[0]) == 4 && isDigits(words[0]) {
		words = words[1:]
	}
	switch len(words) {
	case 0:
		return "", ""
	case 1:
		return strings.ToUpper(words[0]), words[0]
	default:
		return strings.ToUpper(words[0]), words[1]
	}
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// UpsertVehicle reconciles a listing against the store. The row is resolved
// by registration mark first, then by slug external id, so a vehicle whose
// true plate is discovered later never spawns a second row. Unchanged rows
// (by data hash) are skipped unless force is set; inactive rows seen again
// are reactivated.
func (d *Database) UpsertVehicle(listing *models.VehicleListing, attributeID int64, source string, force bool) (int64, UpsertOutcome, error) {
	hash, err := d.listingFingerprint(listing, attributeID)
	if err != nil {
		return 0, 0, err
	}

	id, prevHash, active, found, err := d.findVehicle(listing, source)
	if err != nil {
		return 0, 0, err
	}

	if !found {
		result, err := d.db.Exec(`
			INSERT INTO vehicles
			(attribute_id, source, external_id, registration_mark, plate_year, title, price,
			 mileage, colour, transmission, fuel_type, body_style, drive_system, engine_size_cc,
			 doors, trim_level, first_registration_date, mot_expiry, description, detail_page_url,
			 data_hash, active)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
		`, attributeID, source, listing.ExternalID, nullString(listing.RegistrationMark),
			nullInt(listing.PlateYear), listing.Title, nullFloat(listing.PriceNumeric),
			nullInt(listing.MileageNumeric), nullString(listing.Colour), nullString(listing.Transmission),
			nullString(listing.FuelType), nullString(listing.BodyStyle), nullString(listing.DriveSystem),
			nullInt(listing.EngineSizeCC), nullInt(listing.Doors), nullString(listing.Trim),
			nullString(listing.FirstRegistrationDate), nullString(listing.MOTExpiry),
			nullString(listing.DescriptionFull), nullString(listing.DetailPageURL), hash)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to insert vehicle %s: %w", listing.ExternalID, err)
		}
		newID, err := result.LastInsertId()
		if err != nil {
			return 0, 0, fmt.Errorf("failed to get vehicle ID: %w", err)
		}
		return newID, OutcomeInserted, nil
	}

	if !force && !HasChanged(hash, prevHash) {
		if !active {
			// Reseen after deactivation: reactivate even though the
			// data itself did not change.
			if _, err := d.db.Exec(`UPDATE vehicles SET active = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id); err != nil {
				return 0, 0, fmt.Errorf("failed to reactivate vehicle %d: %w", id, err)
			}
			return id, OutcomeUpdated, nil
		}
		return id, OutcomeUnchanged, nil
	}

	// The full description and the lookup-sourced dates only overwrite when
	// a new non-empty value is supplied, so a failed detail fetch or lookup
	// never erases a captured one.
	_, err = d.db.Exec(`
		UPDATE vehicles SET
			attribute_id = ?,
			external_id = ?,
			registration_mark = COALESCE(NULLIF(?, ''), registration_mark),
			plate_year = COALESCE(?, plate_year),
			title = ?,
			price = ?,
			mileage = ?,
			colour = ?,
			transmission = ?,
			fuel_type = ?,
			body_style = ?,
			drive_system = ?,
			engine_size_cc = COALESCE(?, engine_size_cc),
			doors = COALESCE(?, doors),
			trim_level = ?,
			first_registration_date = COALESCE(NULLIF(?, ''), first_registration_date),
			mot_expiry = COALESCE(NULLIF(?, ''), mot_expiry),
			description = COALESCE(NULLIF(?, ''), description),
			detail_page_url = ?,
			data_hash = ?,
			active = 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, attributeID, listing.ExternalID, listing.RegistrationMark, nullInt(listing.PlateYear),
		listing.Title, nullFloat(listing.PriceNumeric), nullInt(listing.MileageNumeric),
		nullString(listing.Colour), nullString(listing.Transmission), nullString(listing.FuelType),
		nullString(listing.BodyStyle), nullString(listing.DriveSystem), nullInt(listing.EngineSizeCC),
		nullInt(listing.Doors), nullString(listing.Trim), listing.FirstRegistrationDate,
		listing.MOTExpiry, listing.DescriptionFull, nullString(listing.DetailPageURL), hash, id)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to update vehicle %s: %w", listing.ExternalID, err)
	}

	return id, OutcomeUpdated, nil
}

// listingFingerprint computes the change-detection hash using the attribute's
// model and year.
func (d *Database) listingFingerprint(listing *models.VehicleListing, attributeID int64) (string, error) {
	var model string
	var year int
	err := d.db.QueryRow(`SELECT model, year FROM vehicle_attributes WHERE id = ?`, attributeID).Scan(&model, &year)
	if err != nil && err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to load attribute %d: %w", attributeID, err)
	}
	return Fingerprint(listing, model, year), nil
}

// findVehicle resolves an existing row by registration mark first, then by
// external id.
func (d *Database) findVehicle(listing *models.VehicleListing, source string) (id int64, hash string, active bool, found bool, err error) {
	scan := func(query string, args ...interface{}) (bool, error) {
		row := d.db.QueryRow(query, args...)
		scanErr := row.Scan(&id, &hash, &active)
		if scanErr == sql.ErrNoRows {
			return false, nil
		}
		if scanErr != nil {
			return false, scanErr
		}
		return true, nil
	}

	if listing.RegistrationMark != "" {
		found, err = scan(`SELECT id, data_hash, active FROM vehicles WHERE source = ? AND registration_mark = ?`,
			source, listing.RegistrationMark)
		if err != nil || found {
			return
		}
	}

	found, err = scan(`SELECT id, data_hash, active FROM vehicles WHERE source = ? AND external_id = ?`,
		source, listing.ExternalID)
	return
}

// SaveImages inserts one child row per image with its sequence number.
// Re-running over the same URLs is a no-op per row.
func (d *Database) SaveImages(vehicleID int64, images []models.VehicleImage) error {
	for _, img := range images {
		_, err := d.db.Exec(`
			INSERT OR IGNORE INTO vehicle_images (vehicle_id, url, filename, sequence)
			VALUES (?, ?, ?, ?)
		`, vehicleID, img.URL, img.Filename, img.Sequence)
		if err != nil {
			return fmt.Errorf("failed to save image for vehicle %d: %w", vehicleID, err)
		}
	}
	return nil
}

// DeactivateMissing marks every active record of the source not present in
// activeIDs as inactive and stamps the update time. An empty activeIDs set is
// a deliberate no-op: a run that produced zero listings is far more likely an
// upstream fetch failure than an empty forecourt.
func (d *Database) DeactivateMissing(source string, activeIDs []int64) (int64, error) {
	if len(activeIDs) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(activeIDs)), ",")
	args := make([]interface{}, 0, len(activeIDs)+1)
	args = append(args, source)
	for _, id := range activeIDs {
		args = append(args, id)
	}

	result, err := d.db.Exec(`
		UPDATE vehicles SET active = 0, updated_at = CURRENT_TIMESTAMP
		WHERE source = ? AND active = 1 AND id NOT IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate missing vehicles: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deactivated vehicles: %w", err)
	}
	return count, nil
}

const vehicleColumns = `
	id, attribute_id, source, external_id, registration_mark, plate_year, title,
	price, mileage, colour, transmission, fuel_type, body_style, drive_system,
	engine_size_cc, doors, trim_level, first_registration_date, mot_expiry,
	description, detail_page_url, data_hash, active, created_at, updated_at
`

// ActiveVehicles returns every active record of the source with its images.
func (d *Database) ActiveVehicles(source string) ([]*models.VehicleRecord, error) {
	rows, err := d.db.Query(`SELECT `+vehicleColumns+` FROM vehicles WHERE source = ? AND active = 1 ORDER BY id`, source)
	if err != nil {
		return nil, fmt.Errorf("failed to query active vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []*models.VehicleRecord
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, vehicle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vehicles: %w", err)
	}

	for _, vehicle := range vehicles {
		images, err := d.VehicleImages(vehicle.ID)
		if err != nil {
			return nil, err
		}
		vehicle.Images = images
	}

	return vehicles, nil
}

// GetVehicle returns one record by id, or nil when absent.
func (d *Database) GetVehicle(id int64) (*models.VehicleRecord, error) {
	row := d.db.QueryRow(`SELECT `+vehicleColumns+` FROM vehicles WHERE id = ?`, id)
	vehicle, err := scanVehicle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	images, err := d.VehicleImages(vehicle.ID)
	if err != nil {
		return nil, err
	}
	vehicle.Images = images
	return vehicle, nil
}

// VehicleImages returns a vehicle's image rows in sequence order.
func (d *Database) VehicleImages(vehicleID int64) ([]models.VehicleImage, error) {
	rows, err := d.db.Query(`
		SELECT id, vehicle_id, url, filename, sequence
		FROM vehicle_images WHERE vehicle_id = ? ORDER BY sequence
	`, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query images: %w", err)
	}
	defer rows.Close()

	var images []models.VehicleImage
	for rows.Next() {
		var img models.VehicleImage
		if err := rows.Scan(&img.ID, &img.VehicleID, &img.URL, &img.Filename, &img.Sequence); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVehicle(row rowScanner) (*models.VehicleRecord, error) {
	var v models.VehicleRecord
	var registration, colour, transmission, fuelType, bodyStyle, driveSystem sql.NullString
	var trim, firstRegistration, motExpiry, description, detailURL sql.NullString
	var price sql.NullFloat64
	var mileage, plateYear, engineCC, doors sql.NullInt64

	err := row.Scan(
		&v.ID, &v.AttributeID, &v.Source, &v.ExternalID, &registration, &plateYear, &v.Title,
		&price, &mileage, &colour, &transmission, &fuelType, &bodyStyle, &driveSystem,
		&engineCC, &doors, &trim, &firstRegistration, &motExpiry,
		&description, &detailURL, &v.DataHash, &v.Active, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan vehicle: %w", err)
	}

	v.RegistrationMark = registration.String
	v.Colour = colour.String
	v.Transmission = transmission.String
	v.FuelType = fuelType.String
	v.BodyStyle = bodyStyle.String
	v.DriveSystem = driveSystem.String
	v.Trim = trim.String
	v.FirstRegistrationDate = firstRegistration.String
	v.MOTExpiry = motExpiry.String
	v.Description = description.String
	v.DetailPageURL = detailURL.String
	if price.Valid {
		v.Price = &price.Float64
	}
	if mileage.Valid {
		n := int(mileage.Int64)
		v.Mileage = &n
	}
	if plateYear.Valid {
		n := int(plateYear.Int64)
		v.PlateYear = &n
	}
	if engineCC.Valid {
		n := int(engineCC.Int64)
		v.EngineSizeCC = &n
	}
	if doors.Valid {
		n := int(doors.Int64)
		v.Doors = &n
	}

	return &v, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

func nullInt(i *int) interface{} {
	if i == nil {
		return nil
	}
	return *i
}
