package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

// Topic constants
const (
	TopicPreprocessCompleted = "rbt.preprocess.completed"
	TopicEvaluateCompleted   = "rbt.evaluate.completed"
)

// SchemaVersion of EventEnvelope.
const SchemaVersion = "v1"

// EventEnvelope standardizes event messages.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	RunID         string            `json:"run_id"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// PreprocessCompletedPayload summarises a preprocessing run.
type PreprocessCompletedPayload struct {
	OutputDir   string         `json:"output_dir"`
	Inputs      []string       `json:"inputs"`
	Read        int            `json:"read"`
	Unique      int            `json:"unique"`
	Dropped     int            `json:"dropped"`
	Failed      int            `json:"failed"`
	Kept        map[string]int `json:"kept"`
	Levels      []int          `json:"levels"`
	Files       int            `json:"files"`
	DurationMs  int64          `json:"duration_ms"`
	PublishedTo string         `json:"published_to,omitempty"`
}

// AccuracyPoint is one top-N accuracy value.
type AccuracyPoint struct {
	Type  string  `json:"type"`
	Top   int     `json:"top"`
	EC    string  `json:"ec"`
	Value float64 `json:"value"`
}

// EvaluateCompletedPayload summarises an evaluation run.
type EvaluateCompletedPayload struct {
	Dir         string          `json:"dir"`
	Name        string          `json:"name,omitempty"`
	Records     int             `json:"records"`
	Skipped     int             `json:"skipped"`
	Directions  []string        `json:"directions"`
	Accuracy    []AccuracyPoint `json:"accuracy"`
	DurationMs  int64           `json:"duration_ms"`
	PublishedTo string          `json:"published_to,omitempty"`
}

// NewEventEnvelope wraps payload with a fresh event ID.
func NewEventEnvelope(eventType, source, runID string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal payload")
	}
	return &EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		Source:        source,
		RunID:         runID,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: SchemaVersion,
		Payload:       data,
	}, nil
}

func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal payload")
	}
	return nil
}

// ToMessage encodes the envelope.  The run ID is the message key so all
// events of a run land on one partition.
func (e *EventEnvelope) ToMessage(topic string) (*Message, error) {
	val, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal envelope")
	}
	return &Message{
		Topic: topic,
		Key:   []byte(e.RunID),
		Value: val,
		Headers: map[string]string{
			"event_type":     e.EventType,
			"source":         e.Source,
			"schema_version": e.SchemaVersion,
		},
		Timestamp: e.Timestamp,
	}, nil
}

// DecodeEnvelope parses a message value.
func DecodeEnvelope(value []byte) (*EventEnvelope, error) {
	if len(value) == 0 {
		return nil, errors.InvalidParam("empty message value")
	}
	var env EventEnvelope
	if err := json.Unmarshal(value, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal envelope")
	}
	return &env, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Run events
// ─────────────────────────────────────────────────────────────────────────────

// RunEvents announces finished runs.
type RunEvents interface {
	PreprocessCompleted(ctx context.Context, runID string, payload PreprocessCompletedPayload) error
	EvaluateCompleted(ctx context.Context, runID string, payload EvaluateCompletedPayload) error
	Close() error
}

type producerEvents struct {
	producer *Producer
	source   string
	logger   logging.Logger
}

// NewRunEvents publishes run events through producer.  source names the
// emitting host or tool.
func NewRunEvents(producer *Producer, source string, logger logging.Logger) RunEvents {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &producerEvents{producer: producer, source: source, logger: logger}
}

func (e *producerEvents) topic(name string) string {
	return e.producer.config.TopicPrefix + name
}

func (e *producerEvents) emit(ctx context.Context, topic, runID string, payload interface{}) error {
	env, err := NewEventEnvelope(topic, e.source, runID, payload)
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(e.topic(topic))
	if err != nil {
		return err
	}
	if err := e.producer.Publish(ctx, msg); err != nil {
		return err
	}
	e.logger.Info("run event published",
		logging.String("topic", msg.Topic),
		logging.String("event_id", env.EventID),
		logging.String("run_id", runID))
	return nil
}

func (e *producerEvents) PreprocessCompleted(ctx context.Context, runID string, payload PreprocessCompletedPayload) error {
	return e.emit(ctx, TopicPreprocessCompleted, runID, payload)
}

func (e *producerEvents) EvaluateCompleted(ctx context.Context, runID string, payload EvaluateCompletedPayload) error {
	return e.emit(ctx, TopicEvaluateCompleted, runID, payload)
}

func (e *producerEvents) Close() error { return e.producer.Close() }

// NopRunEvents discards events.
type NopRunEvents struct{}

func (NopRunEvents) PreprocessCompleted(context.Context, string, PreprocessCompletedPayload) error {
	return nil
}

func (NopRunEvents) EvaluateCompleted(context.Context, string, EvaluateCompletedPayload) error {
	return nil
}

func (NopRunEvents) Close() error { return nil }

//Personal.AI order the ending
