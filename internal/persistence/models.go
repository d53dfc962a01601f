package persistence

// Result values as stored in the blob.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Values the browser version of the log stored for the result field.
const (
	legacyResultSuccess = "成功"
	legacyResultFailure = "失敗"
)

// DefaultScore replaces scores that are missing from older blobs.
const DefaultScore = 3

// Record is the persisted shape of one log entry. Field names match the
// JSON written by the browser version so existing exports load unchanged.
type Record struct {
	ID           string `json:"id"`
	EventID      string `json:"eventId,omitempty"`
	Title        string `json:"title"`
	Date         string `json:"date"`
	Result       string `json:"result"`
	Score        int    `json:"score"`
	Memo         string `json:"memo"`
	Puzzle       int    `json:"puzzle"`
	Experience   int    `json:"experience"`
	Quantity     int    `json:"quantity"`
	Mystery      int    `json:"mystery"`
	Cheerfulness int    `json:"cheerfulness"`
}

// storedRecord is the tolerant decode target; scores may be absent in older blobs.
type storedRecord struct {
	ID           string  `json:"id"`
	EventID      *string `json:"eventId"`
	Title        string  `json:"title"`
	Date         string  `json:"date"`
	Result       string  `json:"result"`
	Score        *int    `json:"score"`
	Memo         string  `json:"memo"`
	Puzzle       *int    `json:"puzzle"`
	Experience   *int    `json:"experience"`
	Quantity     *int    `json:"quantity"`
	Mystery      *int    `json:"mystery"`
	Cheerfulness *int    `json:"cheerfulness"`
}
