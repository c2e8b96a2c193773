package dtos

import "time"

type DependencyStatus struct {
	Status  string `json:"status"`
	Details string `json:"details"`
	Latency string `json:"latency"`
}

type HealthCheckResp struct {
	Status       string                      `json:"status"`
	Dependencies map[string]DependencyStatus `json:"dependencies"`
	UpSince      time.Time                   `json:"up_since"`
	Uptime       string                      `json:"uptime"`
}
