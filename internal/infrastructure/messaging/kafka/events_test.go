package kafka

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/testutil"
	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

func TestEventEnvelope_RoundTrip(t *testing.T) {
	payload := EvaluateCompletedPayload{
		Dir:        "/data/eval",
		Records:    10,
		Skipped:    1,
		Directions: []string{"forward"},
		Accuracy:   []AccuracyPoint{{Type: "forward", Top: 1, EC: "all", Value: 0.5}},
	}
	env, err := NewEventEnvelope(TopicEvaluateCompleted, "rbt", "run-7", payload)
	require.NoError(t, err)
	_, err = uuid.Parse(env.EventID)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, env.SchemaVersion)

	msg, err := env.ToMessage("prod." + TopicEvaluateCompleted)
	require.NoError(t, err)
	assert.Equal(t, "run-7", string(msg.Key))
	assert.Equal(t, TopicEvaluateCompleted, msg.Headers["event_type"])

	decoded, err := DecodeEnvelope(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, env.EventID, decoded.EventID)
	var got EvaluateCompletedPayload
	require.NoError(t, decoded.DecodePayload(&got))
	assert.Equal(t, payload, got)
}

func TestDecodeEnvelope_Errors(t *testing.T) {
	_, err := DecodeEnvelope(nil)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
	_, err = DecodeEnvelope([]byte("{"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeSerialization))

	var empty EventEnvelope
	assert.NoError(t, empty.DecodePayload(&struct{}{}))
}

func TestRunEvents_Publish(t *testing.T) {
	w := &mockKafkaWriter{}
	logger := testutil.NewMockLogger()
	producer := newProducer(w, ProducerConfig{Brokers: []string{"b:9092"}, TopicPrefix: "lab."}, logger)
	events := NewRunEvents(producer, "rbt", logger)

	require.NoError(t, events.PreprocessCompleted(context.Background(), "run-1", PreprocessCompletedPayload{
		OutputDir: "/out", Read: 3, Unique: 2, Levels: []int{3},
	}))
	require.NoError(t, events.EvaluateCompleted(context.Background(), "run-2", EvaluateCompletedPayload{Dir: "/eval"}))

	require.Len(t, w.written, 2)
	assert.Equal(t, []string{"lab.rbt.preprocess.completed", "lab.rbt.evaluate.completed"},
		[]string{w.written[0].Topic, w.written[1].Topic})

	env, err := DecodeEnvelope(w.written[0].Value)
	require.NoError(t, err)
	assert.Equal(t, "run-1", env.RunID)
	assert.Equal(t, TopicPreprocessCompleted, env.EventType)
	var p PreprocessCompletedPayload
	require.NoError(t, env.DecodePayload(&p))
	assert.Equal(t, 2, p.Unique)

	assert.True(t, logger.HasMessage("info", "run event published"))
	require.NoError(t, events.Close())
	assert.True(t, w.closed)
}

func TestRunEvents_PublishFailure(t *testing.T) {
	w := &mockKafkaWriter{writeFunc: func(context.Context, ...kafka.Message) error { return assert.AnError }}
	events := NewRunEvents(newTestProducer(w), "rbt", nil)
	err := events.EvaluateCompleted(context.Background(), "r", EvaluateCompletedPayload{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeEventPublishFailed))
}

func TestNopRunEvents(t *testing.T) {
	var events RunEvents = NopRunEvents{}
	assert.NoError(t, events.PreprocessCompleted(context.Background(), "r", PreprocessCompletedPayload{}))
	assert.NoError(t, events.EvaluateCompleted(context.Background(), "r", EvaluateCompletedPayload{}))
	assert.NoError(t, events.Close())
}

//Personal.AI order the ending
