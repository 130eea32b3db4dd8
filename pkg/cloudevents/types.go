package cloudevents

import (
	"time"
)

// Event types published by the picker performance service
const (
	PickerRegistered    = "wms.labor.picker-registered"
	HourlyLinesRecorded = "wms.labor.performance-recorded"
	PickerTargetChanged = "wms.labor.picker-target-changed"
	PickerStatusChanged = "wms.labor.picker-status-changed"
	DashboardRefreshed  = "wms.labor.dashboard-refreshed"
)

// SourcePickerPerformance is the CloudEvents source of this service
const SourcePickerPerformance = "/wms/picker-performance-service"

// WMSCloudEvent represents a CloudEvents v1.0 envelope
type WMSCloudEvent struct {
	SpecVersion     string      `json:"specversion" bson:"specversion"`
	Type            string      `json:"type" bson:"type"`
	Source          string      `json:"source" bson:"source"`
	Subject         string      `json:"subject,omitempty" bson:"subject,omitempty"`
	ID              string      `json:"id" bson:"id"`
	Time            time.Time   `json:"time" bson:"time"`
	DataContentType string      `json:"datacontenttype" bson:"datacontenttype"`
	Data            interface{} `json:"data" bson:"data"`

	CorrelationID string `json:"wmscorrelationid,omitempty" bson:"wmscorrelationid,omitempty"`
}
