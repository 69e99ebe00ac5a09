package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteTemperature writes a zone temperature reading to InfluxDB.
//
// This is the primary method for recording firing telemetry.
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - kilnID: Kiln identifier (e.g., "workshop-kiln")
//   - zoneID: Zone identifier (e.g., "main-chamber")
//   - kelvin: Temperature in Kelvin
//
// Example:
//
//	client.WriteTemperature("workshop-kiln", "main-chamber", 1273.15)
func (c *Client) WriteTemperature(kilnID, zoneID string, kelvin float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"temperature",
		map[string]string{
			"kiln_id": kilnID,
			"zone_id": zoneID,
		},
		map[string]interface{}{
			"kelvin": kelvin,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteSetPoint writes the active segment's setpoint.
//
// Graphing setpoint against measured temperature shows how closely
// the control loop tracks the firing schedule.
//
// Parameters:
//   - kilnID: Kiln identifier
//   - segment: Label of the segment that produced the setpoint
//   - kelvin: Setpoint in Kelvin
func (c *Client) WriteSetPoint(kilnID, segment string, kelvin float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"setpoint",
		map[string]string{
			"kiln_id": kilnID,
			"segment": segment,
		},
		map[string]interface{}{
			"kelvin": kelvin,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteHeaterPower writes one zone's applied heater power.
//
// Parameters:
//   - kilnID: Kiln identifier
//   - zoneID: Zone identifier
//   - percent: Applied power 0-100 (after any quantisation)
func (c *Client) WriteHeaterPower(kilnID, zoneID string, percent float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"heater_power",
		map[string]string{
			"kiln_id": kilnID,
			"zone_id": zoneID,
		},
		map[string]interface{}{
			"percent": percent,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("firing_events",
//	    map[string]string{"kiln_id": "workshop-kiln"},
//	    map[string]interface{}{"event": "segment_started"})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
