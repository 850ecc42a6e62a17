package manifestfile

import "time"

// Column names emitted by the fleet tracker export.
const (
	ColID              = "ID"
	ColClient          = "Client"
	ColTransporter     = "Transporter"
	ColOfficer         = "Officer"
	ColDriver          = "Driver"
	ColHorse           = "Horse"
	ColTracker         = "Tracker"
	ColWAConnected     = "WAConnected"
	ColLocation        = "Location"
	ColTrailer1        = "Trailer1"
	ColType1           = "Type1"
	ColSeal1           = "Seal1"
	ColWeight1         = "Weight1"
	ColTrailer2        = "Trailer2"
	ColType2           = "Type2"
	ColSeal2           = "Seal2"
	ColWeight2         = "Weight2"
	ColRoute           = "Route"
	ColRMN             = "RMN"
	ColJobNumber       = "JobNumber"
	ColConvoy          = "Convoy"
	ColStarted         = "Started"
	ColUpdated         = "Updated"
	ColEnded           = "Ended"
	ColSinceLastUpdate = "SinceLastUpdate"
	ColTripDuration    = "TripDuration"
	ColController      = "Controller"
)

// Columns lists the export columns in their usual order.
var Columns = []string{
	ColID, ColClient, ColTransporter, ColOfficer, ColDriver, ColHorse, ColTracker,
	ColWAConnected, ColLocation, ColTrailer1, ColType1, ColSeal1, ColWeight1,
	ColTrailer2, ColType2, ColSeal2, ColWeight2, ColRoute, ColRMN, ColJobNumber,
	ColConvoy, ColStarted, ColUpdated, ColEnded, ColSinceLastUpdate,
	ColTripDuration, ColController,
}

// Record is one manifest recovered from the export.
type Record struct {
	Row  int `json:"row"`
	Line int `json:"line"`

	ManifestID  int64  `json:"manifest_id"`
	Client      string `json:"client"`
	Transporter string `json:"transporter"`
	Officer     string `json:"officer"`
	Driver      string `json:"driver"`
	Horse       string `json:"horse"`
	Tracker     string `json:"tracker"`
	WAConnected bool   `json:"wa_connected"`
	Location    string `json:"location"`

	Trailer1 string  `json:"trailer1"`
	Type1    string  `json:"type1"`
	Seal1    string  `json:"seal1"`
	Weight1  float64 `json:"weight1"`
	Trailer2 string  `json:"trailer2"`
	Type2    string  `json:"type2"`
	Seal2    string  `json:"seal2"`
	Weight2  float64 `json:"weight2"`

	Route      string `json:"route"`
	RMN        string `json:"rmn"`
	JobNumber  string `json:"job_number"`
	Convoy     string `json:"convoy"`
	Controller string `json:"controller"`

	Started           *time.Time `json:"started,omitempty"`
	Updated           *time.Time `json:"updated,omitempty"`
	Ended             *time.Time `json:"ended,omitempty"`
	SinceLastUpdateMs *int64     `json:"since_last_update_ms,omitempty"`
	TripDurationMs    *int64     `json:"trip_duration_ms,omitempty"`

	StatusNote string `json:"status_note"`
}
