package types

import "time"

// Run records one extraction over a capture file.
type Run struct {
	ID            string    `json:"id"`
	HARPath       string    `json:"har_path"`
	OutDir        string    `json:"out_dir"`
	EntriesTotal  int       `json:"entries_total"`
	Included      int       `json:"included"`
	ResponseFiles int       `json:"response_files"`
	RequestFiles  int       `json:"request_files"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SummaryRow is one included capture entry in the summary table.
// Index is the entry's 1-based position in the original capture;
// excluded entries still consume their index.
type SummaryRow struct {
	Index            int    `json:"index"`
	StartedDateTime  string `json:"startedDateTime"`
	Method           string `json:"method"`
	URL              string `json:"url"`
	Status           int    `json:"status"`
	ResponseMimeType string `json:"response_mimeType"`
	IsProbableAPI    bool   `json:"is_probable_api"`
	ResponseIsJSON   bool   `json:"response_is_json"`
	ResponseJSONFile string `json:"response_json_file"`
	RequestIsJSON    bool   `json:"request_is_json"`
	RequestJSONFile  string `json:"request_json_file"`
}

// AggregateRow is one unique URL with its observed statuses and
// response files, multi-values already joined with the separator.
type AggregateRow struct {
	URL           string `json:"url"`
	Statuses      string `json:"statuses"`
	ResponseFiles string `json:"response_files"`
}
