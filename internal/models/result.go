package models

// Source identifies a configured retail site adapter
type Source string

const (
	SourceHotToner   Source = "HotToner"
	SourceInkStation Source = "InkStation"
)

// Availability is the stock state reported for a (code, source) pair
type Availability string

const (
	AvailabilityAvailable  Availability = "Available"
	AvailabilityInStock    Availability = "In Stock"
	AvailabilityOutOfStock Availability = "Out of Stock"
	AvailabilityNotFound   Availability = "Not Found"
	AvailabilityError      Availability = "Error"
)

// Sentinel field values used instead of errors when a field cannot be
// determined. Failures are data, not omissions: every (code, source) pair
// produces exactly one ResultRecord.
const (
	TitleNotFound = "Not Found"
	TitleError    = "Error"
	ValueNA       = "N/A"
)

// ResultRecord is one output row: the outcome of looking up one OEM code on
// one source.
type ResultRecord struct {
	Code         string       `json:"oem_code"`
	Source       Source       `json:"source"`
	Title        string       `json:"title"`
	Price        string       `json:"price"`
	Availability Availability `json:"availability"`
	URL          string       `json:"url"`
}

// NotFoundRecord returns the record for a code the source has no product for
func NotFoundRecord(code string, source Source, url string) ResultRecord {
	return ResultRecord{
		Code:         code,
		Source:       source,
		Title:        TitleNotFound,
		Price:        ValueNA,
		Availability: AvailabilityNotFound,
		URL:          url,
	}
}

// ErrorRecord returns the record for a lookup that hit a transport or parse
// fault. The attempted URL is preserved for diagnosis.
func ErrorRecord(code string, source Source, url string) ResultRecord {
	return ResultRecord{
		Code:         code,
		Source:       source,
		Title:        TitleError,
		Price:        ValueNA,
		Availability: AvailabilityError,
		URL:          url,
	}
}
