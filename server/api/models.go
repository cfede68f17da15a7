package api

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`

	Service string `json:"service"`
	Version string `json:"version"`
}
