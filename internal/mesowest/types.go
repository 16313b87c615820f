package mesowest

import (
	"encoding/json"
	"fmt"
)

// responseOK is SUMMARY.RESPONSE_CODE for a successful query.
const responseOK = 1

// TimeseriesResponse from GET /v2/stations/timeseries
type TimeseriesResponse struct {
	Summary Summary   `json:"SUMMARY"`
	Station []Station `json:"STATION"`
}

// Summary describes the outcome of a query.
type Summary struct {
	ResponseCode    int    `json:"RESPONSE_CODE"`
	ResponseMessage string `json:"RESPONSE_MESSAGE"`
	NumberOfObjects int    `json:"NUMBER_OF_OBJECTS"`
}

// Station is one station's metadata and observations.
type Station struct {
	STID         string       `json:"STID"`
	Name         string       `json:"NAME"`
	Timezone     string       `json:"TIMEZONE"`
	Observations Observations `json:"OBSERVATIONS"`
}

// Observations holds parallel arrays keyed by variable. Temperatures are kept
// raw so nulls and exact decimal text survive decoding.
type Observations struct {
	DateTime []string          `json:"date_time"`
	AirTemp  []json.RawMessage `json:"air_temp_set_1"`
}

// APIError is an HTTP failure or a non-OK SUMMARY from the API.
type APIError struct {
	StatusCode   int
	ResponseCode int // SUMMARY.RESPONSE_CODE, zero for HTTP failures
	Message      string
}

func (e *APIError) Error() string {
	if e.ResponseCode != 0 {
		return fmt.Sprintf("mesowest response code %d: %s", e.ResponseCode, e.Message)
	}
	return fmt.Sprintf("mesowest api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error should trigger a retry.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}
