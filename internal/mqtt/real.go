package mqtt

import (
	"context"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"thermo_relay/internal/logger"
	"thermo_relay/internal/models"
)

// Options configure the broker connection.
type Options struct {
	Broker         string // e.g. tcp://localhost:1883
	ClientID       string
	Username       string
	Password       string
	TopicPrefix    string
	QoS            byte
	ConnectTimeout time.Duration
}

const (
	defaultConnectTimeout = 10 * time.Second
	retryInterval         = 5 * time.Second
	disconnectQuiesceMs   = 1000
)

// RealPublisher publishes to an actual MQTT broker.
type RealPublisher struct {
	client paho.Client
	topics Topics
	qos    byte
	log    *logger.Logger
}

var _ Publisher = (*RealPublisher)(nil)

// NewRealPublisher connects to the broker. The broker marks the device offline
// through the last will if the connection drops without Close.
func NewRealPublisher(opts Options, log *logger.Logger) (*RealPublisher, error) {
	if log == nil {
		log = logger.Nop()
	}
	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	p := &RealPublisher{topics: NewTopics(opts.TopicPrefix), qos: opts.QoS, log: log}

	co := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetUsername(opts.Username).
		SetPassword(opts.Password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(retryInterval).
		SetWill(p.topics.Availability, Offline, opts.QoS, true).
		SetOnConnectHandler(func(c paho.Client) {
			// Re-announce after every (re)connect; the will may have fired meanwhile.
			c.Publish(p.topics.Availability, opts.QoS, true, Online)
			log.Infow("mqtt_connected", "broker", opts.Broker)
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Warnw("mqtt_connection_lost", "error", err)
		})

	p.client = paho.NewClient(co)
	token := p.client.Connect()
	if !token.WaitTimeout(timeout) {
		// Stop the background retry loop.
		p.client.Disconnect(0)
		return nil, fmt.Errorf("connect to %s: timeout after %s", opts.Broker, timeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return p, nil
}

// Publish sends a controller event, not retained.
func (p *RealPublisher) Publish(ctx context.Context, e models.ControllerEvent) error {
	payload, err := FormatEventPayload(e)
	if err != nil {
		return fmt.Errorf("format event payload: %w", err)
	}
	return p.send(ctx, p.topics.Events, false, payload)
}

// PublishStatus sends the status snapshot, retained so new subscribers get
// the latest state immediately.
func (p *RealPublisher) PublishStatus(ctx context.Context, v models.StatusView) error {
	payload, err := FormatStatusPayload(v)
	if err != nil {
		return fmt.Errorf("format status payload: %w", err)
	}
	return p.send(ctx, p.topics.Status, true, payload)
}

func (p *RealPublisher) send(ctx context.Context, topic string, retained bool, payload []byte) error {
	token := p.client.Publish(topic, p.qos, retained, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("publish %s: %w", topic, ctx.Err())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Close publishes the offline marker and disconnects.
func (p *RealPublisher) Close() error {
	token := p.client.Publish(p.topics.Availability, p.qos, true, Offline)
	token.WaitTimeout(2 * time.Second)
	p.client.Disconnect(disconnectQuiesceMs)
	return nil
}
