package telemetry

import (
	"encoding/json"
	"time"

	"github.com/nerrad567/kiln-logic-core/internal/bus"
	"github.com/nerrad567/kiln-logic-core/internal/infrastructure/mqtt"
)

// Broker is the subset of the MQTT client the Publisher needs.
type Broker interface {
	PublishString(topic string, payload string, qos byte, retained bool) error
}

// Publisher mirrors firing events onto MQTT topics.
//
// State topics (temperature, setpoint, segment, firing state) are
// published retained so a dashboard connecting mid-firing sees the
// current values immediately. Alarms are not retained.
type Publisher struct {
	kilnID string
	broker Broker
	qos    byte
	log    Logger
	topics mqtt.Topics
}

// NewPublisher wires a Publisher to the bus.
//
// Parameters:
//   - kilnID: Kiln identifier used in topic paths
//   - broker: Connected MQTT client (or any Broker implementation)
//   - qos: QoS level for all published messages
//   - b: Event bus to observe
//   - log: Logger for publish failures (nil for none)
func NewPublisher(kilnID string, broker Broker, qos byte, b *bus.Bus, log Logger) *Publisher {
	if log == nil {
		log = nopLogger{}
	}
	p := &Publisher{
		kilnID: kilnID,
		broker: broker,
		qos:    qos,
		log:    log,
	}

	b.Subscribe(bus.TypeKilnInitialised, p.handleFiringState)
	b.Subscribe(bus.TypeScheduleFinished, p.handleFiringState)
	b.Subscribe(bus.TypeCoolDownFinished, p.handleFiringState)
	b.Subscribe(bus.TypeScheduleNextSegment, p.handleSegment)
	b.Subscribe(bus.TypeKilnTemperatureChanged, p.handleTemperature)
	b.Subscribe(bus.TypeSegmentSetPointChanged, p.handleSetPoint)
	b.Subscribe(bus.TypeZoneHeaterPowerChanged, p.handleHeaterPower)
	b.Subscribe(bus.TypeAlarmRaised, p.handleAlarm)

	return p
}

func (p *Publisher) handleFiringState(ev bus.Event) error {
	var state string
	switch ev.(type) {
	case bus.KilnInitialised:
		state = "firing"
	case bus.ScheduleFinished:
		state = "cooling"
	case bus.CoolDownFinished:
		state = "idle"
	default:
		return nil
	}

	p.publish(p.topics.KilnFiringState(p.kilnID), struct {
		State     string `json:"state"`
		Timestamp string `json:"timestamp"`
	}{state, timestamp()}, true)
	return nil
}

func (p *Publisher) handleSegment(ev bus.Event) error {
	next, ok := ev.(bus.ScheduleNextSegment)
	if !ok {
		return nil
	}

	p.publish(p.topics.KilnSegment(p.kilnID), struct {
		Segment   string `json:"segment"`
		Timestamp string `json:"timestamp"`
	}{next.Label, timestamp()}, true)
	return nil
}

func (p *Publisher) handleTemperature(ev bus.Event) error {
	tc, ok := ev.(bus.KilnTemperatureChanged)
	if !ok {
		return nil
	}

	p.publish(p.topics.KilnTemperature(p.kilnID), struct {
		Kelvin    float64 `json:"kelvin"`
		Timestamp string  `json:"timestamp"`
	}{tc.Kelvin, timestamp()}, true)
	return nil
}

func (p *Publisher) handleSetPoint(ev bus.Event) error {
	sp, ok := ev.(bus.SegmentSetPointChanged)
	if !ok {
		return nil
	}

	p.publish(p.topics.KilnSetPoint(p.kilnID), struct {
		Kelvin    float64 `json:"kelvin"`
		Timestamp string  `json:"timestamp"`
	}{sp.Kelvin, timestamp()}, true)
	return nil
}

func (p *Publisher) handleHeaterPower(ev bus.Event) error {
	hp, ok := ev.(bus.ZoneHeaterPowerChanged)
	if !ok {
		return nil
	}

	p.publish(p.topics.ZonePower(p.kilnID, zoneLabel(hp.Zone)), struct {
		Percent   float64 `json:"percent"`
		Timestamp string  `json:"timestamp"`
	}{hp.Percent, timestamp()}, true)
	return nil
}

func (p *Publisher) handleAlarm(ev bus.Event) error {
	alarm, ok := ev.(bus.AlarmRaised)
	if !ok {
		return nil
	}

	p.publish(p.topics.KilnAlarm(p.kilnID), struct {
		Reason    string `json:"reason"`
		Detail    string `json:"detail"`
		Timestamp string `json:"timestamp"`
	}{alarm.Reason, alarm.Detail, timestamp()}, false)
	return nil
}

// publish marshals and sends one payload. Failures are logged, never
// returned: a dead broker must not abort the control dispatch.
func (p *Publisher) publish(topic string, payload any, retained bool) {
	data, err := json.Marshal(payload)
	if err != nil {
		p.log.Error("marshalling telemetry payload", "topic", topic, "error", err)
		return
	}
	if err := p.broker.PublishString(topic, string(data), p.qos, retained); err != nil {
		p.log.Warn("publishing telemetry", "topic", topic, "error", err)
	}
}

// zoneLabel extracts a zone's label from an event's Zone field.
func zoneLabel(zone any) string {
	if z, ok := zone.(interface{ Label() string }); ok {
		return z.Label()
	}
	return "unknown"
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
