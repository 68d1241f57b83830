package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"go-storefront/models"
)

// DeviceController receives device telemetry from clients
type DeviceController struct {
	Log logrus.FieldLogger
}

// NewDeviceController creates a new DeviceController
func NewDeviceController(logger logrus.FieldLogger) *DeviceController {
	return &DeviceController{Log: logger}
}

// ReceiveDeviceInfo logs whatever JSON document the client posts
func (dc *DeviceController) ReceiveDeviceInfo(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	fields := logrus.Fields{"payload": string(raw)}
	var info models.DeviceInfo
	if err := json.Unmarshal(raw, &info); err == nil {
		fields["deviceType"] = info.DeviceType
		fields["platform"] = info.Platform
		fields["browser"] = info.Browser
		if info.Location != nil {
			fields["latitude"] = info.Location.Latitude
			fields["longitude"] = info.Location.Longitude
		}
	}
	dc.Log.WithFields(fields).Info("device info received")

	writeJSON(w, http.StatusOK, map[string]string{"message": "Device info received"})
}
