package mqtt

import (
	"context"
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"boiler_controller/internal/logger"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
	retryInterval  = 5 * time.Second
)

// Options configure the broker connection.
type Options struct {
	Broker   string
	ClientID string
	Username string
	Password string
}

// Client is a paho connection that publishes telemetry and routes commands.
// The broker marks the controller offline through the retained will.
type Client struct {
	client paho.Client
	topics Topics
	router *Router
	log    *logger.Logger
}

// NewClient connects to the broker. A broker that is not reachable yet is
// retried in the background; only configuration errors fail.
func NewClient(opts Options, topics Topics, router *Router, log *logger.Logger) (*Client, error) {
	if opts.Broker == "" {
		return nil, errors.New("mqtt broker not configured")
	}
	c := &Client{topics: topics, router: router, log: log}

	po := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetUsername(opts.Username).
		SetPassword(opts.Password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(retryInterval).
		SetOrderMatters(false).
		SetWill(topics.Status(), StatusOffline, 1, true).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Warnw("mqtt_connection_lost", "err", err)
		})

	c.client = paho.NewClient(po)
	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		log.Warnw("mqtt_connect_pending", "broker", opts.Broker)
		return c, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return c, nil
}

func (c *Client) onConnect(pc paho.Client) {
	c.log.Infow("mqtt_connected")
	pc.Publish(c.topics.Status(), 1, true, StatusOnline)

	filters := make(map[string]byte)
	for _, t := range c.topics.Subscriptions() {
		filters[t] = 0
	}
	token := pc.SubscribeMultiple(filters, c.onMessage)
	if token.WaitTimeout(publishTimeout) && token.Error() != nil {
		c.log.Errorw("mqtt_subscribe_failed", "err", token.Error())
	}
}

func (c *Client) onMessage(_ paho.Client, msg paho.Message) {
	if err := c.router.Handle(context.Background(), msg.Topic(), msg.Payload()); err != nil {
		c.log.Warnw("mqtt_command_rejected", "topic", msg.Topic(), "payload", string(msg.Payload()), "err", err)
		return
	}
	c.log.Debugw("mqtt_command_applied", "topic", msg.Topic())
}

func (c *Client) Publish(topic string, qos byte, retained bool, payload []byte) error {
	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (c *Client) IsConnected() bool {
	return c.client.IsConnectionOpen()
}

// Close announces the controller offline and disconnects.
func (c *Client) Close() error {
	if c.client.IsConnectionOpen() {
		c.client.Publish(c.topics.Status(), 1, true, StatusOffline).WaitTimeout(time.Second)
	}
	c.client.Disconnect(1000)
	return nil
}
