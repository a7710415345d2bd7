package mqtt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const commandTimeout = 5 * time.Second

var (
	ErrBadPayload   = errors.New("malformed payload")
	ErrUnknownTopic = errors.New("unknown topic")
)

// Router dispatches incoming messages to the intake.
type Router struct {
	topics Topics
	intake Intake
}

func NewRouter(topics Topics, intake Intake) *Router {
	return &Router{topics: topics, intake: intake}
}

// Handle applies one message. Payloads that ask for nothing return nil.
func (r *Router) Handle(ctx context.Context, topic string, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	msg := strings.ToLower(strings.TrimSpace(string(payload)))
	switch topic {
	case r.topics.SetpointSet():
		v, err := parseFloat(msg)
		if err != nil {
			return err
		}
		return r.intake.SetSetpoint(ctx, v)

	case r.topics.IgnitionStart():
		if !isTrigger(msg, "start") {
			return nil
		}
		return r.intake.StartIgnition(ctx)

	case r.topics.SensorsReset():
		if !isTrigger(msg, "reset") {
			return nil
		}
		return r.intake.ResetSensors(ctx)
	}

	// the home sensor topics may be configured empty
	switch {
	case r.topics.HomeTemperature != "" && topic == r.topics.HomeTemperature:
		v, err := parseFloat(msg)
		if err != nil {
			return err
		}
		return r.intake.SetHomeTemperature(ctx, v)

	case r.topics.HomeStatus != "" && topic == r.topics.HomeStatus:
		switch msg {
		case StatusOnline:
			return r.intake.SetHomeOnline(ctx, true)
		case StatusOffline:
			return r.intake.SetHomeOnline(ctx, false)
		}
		return fmt.Errorf("home status %q: %w", msg, ErrBadPayload)
	}
	return fmt.Errorf("%s: %w", topic, ErrUnknownTopic)
}

func isTrigger(msg, word string) bool {
	return msg == "1" || msg == "on" || msg == word
}

func parseFloat(msg string) (float64, error) {
	v, err := strconv.ParseFloat(msg, 64)
	if err != nil {
		return 0, fmt.Errorf("number %q: %w", msg, ErrBadPayload)
	}
	return v, nil
}
