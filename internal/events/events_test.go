package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campaignops/internal/ledger"
)

type recordedMessage struct {
	eventType string
	key       string
	payload   []byte
}

type recordingPublisher struct {
	messages []recordedMessage
	err      error
}

func (r *recordingPublisher) Publish(_ context.Context, eventType string, payload []byte, key string) error {
	if r.err != nil {
		return r.err
	}
	r.messages = append(r.messages, recordedMessage{eventType: eventType, key: key, payload: payload})
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func TestPublishResolutions(t *testing.T) {
	donated := time.Date(2024, 2, 1, 18, 5, 10, 0, time.UTC)
	evs := []ledger.ResolutionEvent{
		{DonationID: 0, Beneficiary: "Family A", Applied: decimal.RequireFromString("100"), Timestamp: donated, Status: ledger.StatusResolved},
		{DonationID: 1, Beneficiary: "Family B", Applied: decimal.RequireFromString("20.5"), Timestamp: donated, Status: ledger.StatusPartiallyResolved},
	}
	pub := &recordingPublisher{}
	require.NoError(t, PublishResolutions(context.Background(), pub, "chuffed_9", "EUR", evs))
	require.Len(t, pub.messages, 2)

	assert.Equal(t, TypeDebtResolved, pub.messages[1].eventType)
	assert.Equal(t, "Family B", pub.messages[1].key)

	var payload DebtResolved
	require.NoError(t, json.Unmarshal(pub.messages[1].payload, &payload))
	assert.Equal(t, "chuffed_9", payload.CampaignRef)
	assert.Equal(t, 1, payload.DonationID)
	assert.Equal(t, "20.5", payload.Amount)
	assert.Equal(t, "EUR", payload.Currency)
	assert.Equal(t, "partially_resolved", payload.Status)
	assert.NotEmpty(t, payload.EventID)
	assert.True(t, payload.DonatedAt.Equal(donated))
}

func TestPublishResolutionsStopsOnError(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	err := PublishResolutions(context.Background(), pub, "ref", "EUR", []ledger.ResolutionEvent{{Beneficiary: "x", Applied: decimal.NewFromInt(1)}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestLoggingPublisher(t *testing.T) {
	var buf bytes.Buffer
	pub := NewLoggingPublisher(zerolog.New(&buf))
	require.NoError(t, pub.Publish(context.Background(), TypeDebtResolved, []byte(`{}`), "Family A"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "debt.resolved", line["event_type"])
	assert.Equal(t, "Family A", line["partition_key"])
	assert.EqualValues(t, 2, line["payload_bytes"])
}

func TestNewKafkaPublisherRequiresBrokers(t *testing.T) {
	_, err := NewKafkaPublisher(nil, nil)
	require.Error(t, err)

	pub, err := NewKafkaPublisher([]string{"localhost:9092"}, map[string]string{TypeDebtResolved: "ledger.resolutions"})
	require.NoError(t, err)
	require.NoError(t, pub.Close())
}
