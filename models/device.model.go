package models

// Location is an optional geolocation fix reported by a client
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DeviceInfo describes the client device reported to the telemetry endpoint
type DeviceInfo struct {
	DeviceType       string    `json:"deviceType"`
	UserAgent        string    `json:"userAgent"`
	ScreenResolution string    `json:"screenResolution"`
	Platform         string    `json:"platform"`
	Browser          string    `json:"browser"`
	Timestamp        string    `json:"timestamp"`
	Location         *Location `json:"location,omitempty"`
}
