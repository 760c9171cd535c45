package event_test

import (
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/s3koel/s3koel/event"
	"github.com/s3koel/s3koel/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func s3Record(name, bucket, key string) events.S3EventRecord {
	var rec events.S3EventRecord
	rec.EventName = name
	rec.S3.Bucket.Name = bucket
	rec.S3.Object.Key = key
	return rec
}

func TestFromS3(t *testing.T) {
	t.Parallel()

	evs, err := event.FromS3(events.S3Event{Records: []events.S3EventRecord{
		s3Record("ObjectCreated:Put", "music", "songs/a.mp3"),
		s3Record("ObjectCreated:CompleteMultipartUpload", "music", "albums/Pink+Floyd/1973+-+The+Dark+Side+of+the+Moon/01+-+Speak+to+Me.flac"),
		s3Record("ObjectRemoved:Delete", "music", "songs/old.mp3"),
		s3Record("ObjectRemoved:DeleteMarkerCreated", "music", "songs/caf%C3%A9.mp3"),
	}})
	require.NoError(t, err)

	assert.Equal(t, []event.Event{
		{Object: storage.Object{Bucket: "music", Key: "songs/a.mp3", Endpoint: event.EndpointAWS}, Action: event.Create},
		{Object: storage.Object{Bucket: "music", Key: "albums/Pink Floyd/1973 - The Dark Side of the Moon/01 - Speak to Me.flac", Endpoint: event.EndpointAWS}, Action: event.Create},
		{Object: storage.Object{Bucket: "music", Key: "songs/old.mp3", Endpoint: event.EndpointAWS}, Action: event.Delete},
		{Object: storage.Object{Bucket: "music", Key: "songs/café.mp3", Endpoint: event.EndpointAWS}, Action: event.Delete},
	}, evs)
}

func TestFromS3Unknown(t *testing.T) {
	t.Parallel()

	evs, err := event.FromS3(events.S3Event{Records: []events.S3EventRecord{
		s3Record("ObjectCreated:Put", "music", "songs/a.mp3"),
		s3Record("ObjectRestore:Completed", "music", "songs/b.mp3"),
	}})
	require.ErrorIs(t, err, event.ErrUnknownEventType)
	assert.Nil(t, evs)
}

func TestFromYandex(t *testing.T) {
	t.Parallel()

	var create, del event.YandexMessage
	create.EventMetadata.EventType = "yandex.cloud.events.storage.ObjectCreate"
	create.Details.BucketID = "music"
	create.Details.ObjectID = "songs/a b.mp3"
	del.EventMetadata.EventType = "yandex.cloud.events.storage.ObjectDelete"
	del.Details.BucketID = "music"
	del.Details.ObjectID = "songs/old.mp3"

	evs, err := event.FromYandex(event.YandexEvent{Messages: []event.YandexMessage{create, del}})
	require.NoError(t, err)
	assert.Equal(t, []event.Event{
		{Object: storage.Object{Bucket: "music", Key: "songs/a b.mp3", Endpoint: event.EndpointYandex}, Action: event.Create},
		{Object: storage.Object{Bucket: "music", Key: "songs/old.mp3", Endpoint: event.EndpointYandex}, Action: event.Delete},
	}, evs)

	var other event.YandexMessage
	other.EventMetadata.EventType = "yandex.cloud.events.storage.ObjectUpdate"
	_, err = event.FromYandex(event.YandexEvent{Messages: []event.YandexMessage{create, other}})
	require.ErrorIs(t, err, event.ErrUnknownEventType)
}

func TestProviders(t *testing.T) {
	t.Parallel()

	cases := []struct {
		provider string
		doc      string
		exp      []event.Event
	}{
		{
			provider: "aws",
			doc:      `{"Records":[{"eventName":"ObjectCreated:Put","s3":{"bucket":{"name":"music"},"object":{"key":"songs/Unknown.mp3","size":10}}}]}`,
			exp:      []event.Event{{Object: storage.Object{Bucket: "music", Key: "songs/Unknown.mp3", Endpoint: event.EndpointAWS}, Action: event.Create}},
		},
		{
			provider: "yandex",
			doc:      `{"messages":[{"event_metadata":{"event_type":"yandex.cloud.events.storage.ObjectDelete"},"details":{"bucket_id":"music","object_id":"songs/old.mp3"}}]}`,
			exp:      []event.Event{{Object: storage.Object{Bucket: "music", Key: "songs/old.mp3", Endpoint: event.EndpointYandex}, Action: event.Delete}},
		},
	}
	for _, c := range cases {
		t.Run(c.provider, func(t *testing.T) {
			p, ok := event.Providers[c.provider]
			require.True(t, ok)
			evs, err := p.Decode([]byte(c.doc))
			require.NoError(t, err)
			assert.Equal(t, c.exp, evs)
			for _, ev := range evs {
				assert.Equal(t, p.Endpoint, ev.Object.Endpoint)
			}
		})
	}

	_, err := event.Providers["aws"].Decode([]byte(`{`))
	require.Error(t, err)
}
