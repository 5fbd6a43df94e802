package models

import "time"

// VehicleListing is an in-flight listing assembled while scraping; it is not
// persisted directly. ExternalID is derived from the listing URL path segment
// and is required; a listing without one is discarded by the card parser.
type VehicleListing struct {
	ExternalID string `json:"externalId"`
	Title      string `json:"title"`

	PriceText    string   `json:"priceText,omitempty"`
	PriceNumeric *float64 `json:"priceNumeric,omitempty"`

	MileageText    string `json:"mileageText,omitempty"`
	MileageNumeric *int   `json:"mileageNumeric,omitempty"`

	// Validated fields: either empty or a member of their enumeration,
	// never raw unvalidated text.
	Colour       string `json:"colour,omitempty"`
	Transmission string `json:"transmission,omitempty"`
	FuelType     string `json:"fuelType,omitempty"`
	BodyStyle    string `json:"bodyStyle,omitempty"`
	DriveSystem  string `json:"driveSystem,omitempty"`

	EngineSizeCC *int `json:"engineSizeCc,omitempty"` // always within [600, 8000] when set

	RegistrationMark      string `json:"registrationMark,omitempty"` // UK VRM, distinct from ExternalID
	FirstRegistrationDate string `json:"firstRegistrationDate,omitempty"`
	MOTExpiry             string `json:"motExpiry,omitempty"`

	Doors     *int   `json:"doors,omitempty"`
	PlateYear *int   `json:"plateYear,omitempty"`
	Trim      string `json:"trim,omitempty"`
	Year      *int   `json:"year,omitempty"`

	DescriptionShort string `json:"descriptionShort,omitempty"`
	DescriptionFull  string `json:"descriptionFull,omitempty"`

	ImageURLs     []string `json:"imageUrls,omitempty"`
	DetailPageURL string   `json:"detailPageUrl"`
}

// Identity returns the canonical persistence key: VRM when resolved, else the
// URL-slug external id.
func (l *VehicleListing) Identity() string {
	if l.RegistrationMark != "" {
		return l.RegistrationMark
	}
	return l.ExternalID
}

// VehicleAttribute is a shared make/model/year/spec row referenced by one or
// more vehicle records. Never deleted automatically; orphan cleanup is an
// explicit maintenance operation.
type VehicleAttribute struct {
	ID           int64  `json:"id"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	Transmission string `json:"transmission,omitempty"`
	FuelType     string `json:"fuelType,omitempty"`
	BodyStyle    string `json:"bodyStyle,omitempty"`
	Active       bool   `json:"active"`
}

// VehicleRecord is one persisted row per distinct vehicle identity.
type VehicleRecord struct {
	ID          int64  `json:"id"`
	AttributeID int64  `json:"attributeId"`
	Source      string `json:"source"`
	ExternalID  string `json:"externalId"`

	RegistrationMark string   `json:"registrationMark,omitempty"`
	PlateYear        *int     `json:"plateYear,omitempty"`
	Title            string   `json:"title"`
	Price            *float64 `json:"price,omitempty"`
	Mileage          *int     `json:"mileage,omitempty"`
	Colour           string   `json:"colour,omitempty"`
	Transmission     string   `json:"transmission,omitempty"`
	FuelType         string   `json:"fuelType,omitempty"`
	BodyStyle        string   `json:"bodyStyle,omitempty"`
	DriveSystem      string   `json:"driveSystem,omitempty"`
	EngineSizeCC     *int     `json:"engineSizeCc,omitempty"`
	Doors            *int     `json:"doors,omitempty"`
	Trim             string   `json:"trim,omitempty"`

	FirstRegistrationDate string `json:"firstRegistrationDate,omitempty"`
	MOTExpiry             string `json:"motExpiry,omitempty"`

	Description   string `json:"description,omitempty"`
	DetailPageURL string `json:"detailPageUrl,omitempty"`

	DataHash  string    `json:"-"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Images []VehicleImage `json:"images,omitempty"`
}

// VehicleImage is a child row of exactly one VehicleRecord. Deleted in cascade
// with its parent, never on mere deactivation.
type VehicleImage struct {
	ID        int64  `json:"id"`
	VehicleID int64  `json:"vehicleId"`
	URL       string `json:"url"`
	Filename  string `json:"filename,omitempty"`
	Sequence  int    `json:"sequence"`
}

// RunStats counts per-run outcomes; field- and record-level failures are
// absorbed into these counters rather than aborting the batch.
type RunStats struct {
	Found       int `json:"found"`
	Inserted    int `json:"inserted"`
	Updated     int `json:"updated"`
	Skipped     int `json:"skipped"`
	Errors      int `json:"errors"`
	Deactivated int `json:"deactivated"`
}

// RunResult is the structured outcome of a scrape run. A run always terminates
// with one of these; only a failed listing-page fetch or a store-connection
// failure produces Success=false.
type RunResult struct {
	Success    bool      `json:"success"`
	Source     string    `json:"source"`
	Stats      RunStats  `json:"stats"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Snapshot is the JSON document produced after a successful run, consumed by
// the downstream frontend.
type Snapshot struct {
	GeneratedAt time.Time        `json:"generatedAt"`
	Source      string           `json:"source"`
	Count       int              `json:"count"`
	Vehicles    []*VehicleRecord `json:"vehicles"`
}
