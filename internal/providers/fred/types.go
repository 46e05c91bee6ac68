package fred

// --- FRED Observations ---

type observationsResponse struct {
	ObservationStart string        `json:"observation_start"`
	ObservationEnd   string        `json:"observation_end"`
	Units            string        `json:"units"`
	Count            int           `json:"count"`
	Observations     []observation `json:"observations"`
	ErrorCode        int           `json:"error_code"`
	ErrorMessage     string        `json:"error_message"`
}

type observation struct {
	Date  string `json:"date"`
	Value string `json:"value"` // "." marks a missing observation
}
