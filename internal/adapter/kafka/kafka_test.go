package kafka

import (
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/crime-insights-service/internal/domain"
)

var testRecord = domain.RawRecord{
	DateOcc:   "03/01/2020 12:00:00 AM",
	TimeOcc:   "2130",
	AreaName:  "Wilshire",
	CrimeDesc: "VEHICLE - STOLEN",
	Lat:       "34.0375",
	Lon:       "-118.3506",
}

func TestMapMessageToRawRecord(t *testing.T) {
	msg := kafkago.Message{
		Key:       []byte("0"),
		Value:     []byte(`{"DATE OCC":"03/01/2020 12:00:00 AM","TIME OCC":"2130","AREA NAME":"Wilshire","Crm Cd Desc":"VEHICLE - STOLEN","LAT":"34.0375","LON":"-118.3506"}`),
		Topic:     "raw-crime-incidents",
		Partition: 2,
		Offset:    42,
	}

	rec, err := mapMessageToRawRecord(msg)

	require.NoError(t, err)
	assert.Equal(t, testRecord, rec)
}

func TestMapMessageToRawRecord_Invalid(t *testing.T) {
	msg := kafkago.Message{Value: []byte("not-json{{{"), Topic: "raw-crime-incidents", Partition: 1, Offset: 7}

	_, err := mapMessageToRawRecord(msg)

	require.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.Contains(t, err.Error(), "raw-crime-incidents/1@7")
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)

	msg, err := serializeToMessage("17", testRecord, now)
	require.NoError(t, err)

	assert.Equal(t, []byte("17"), msg.Key)
	assert.Contains(t, string(msg.Value), `"AREA NAME":"Wilshire"`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "area_name", msg.Headers[0].Key)
	assert.Equal(t, []byte("Wilshire"), msg.Headers[0].Value)
	assert.Equal(t, "published_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestSerializeRoundTrip(t *testing.T) {
	msg, err := serializeToMessage("0", testRecord, time.Now())
	require.NoError(t, err)

	rec, err := mapMessageToRawRecord(msg)
	require.NoError(t, err)
	assert.Equal(t, testRecord, rec)
}
