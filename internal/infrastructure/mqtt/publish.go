package mqtt

import "fmt"

// maxPayloadSize rejects runaway payloads before they reach the broker.
// Every telemetry message is a few hundred bytes; anything near this is
// a bug upstream.
const maxPayloadSize = 1 << 20 // 1MB

// Publish sends one message to the broker.
//
// State topics (temperature, setpoint, segment, firing state, system
// status) are published retained so a dashboard connecting mid-firing
// sees the current values immediately; alarms are not retained.
//
// Returns ErrInvalidTopic, ErrInvalidQoS, ErrNotConnected, or a wrapped
// ErrPublishFailed when the broker does not acknowledge in time.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes",
			ErrPublishFailed, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, publishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// PublishString publishes a string payload.
func (c *Client) PublishString(topic string, payload string, qos byte, retained bool) error {
	return c.Publish(topic, []byte(payload), qos, retained)
}
