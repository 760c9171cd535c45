// Package event maps storage provider notifications to create and delete actions.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
	"github.com/s3koel/s3koel/storage"
)

var ErrUnknownEventType = errors.New("unknown event type")

type Action string

const (
	Create Action = "create"
	Delete Action = "delete"
)

type Event struct {
	Object storage.Object
	Action Action
}

const (
	EndpointAWS    = "https://s3.amazonaws.com"
	EndpointYandex = "https://storage.yandexcloud.net"
)

// Provider decodes a raw notification document for one storage provider.
type Provider struct {
	Endpoint string
	Decode   func(data []byte) ([]Event, error)
}

var Providers = map[string]Provider{
	"aws":    {Endpoint: EndpointAWS, Decode: decodeS3},
	"yandex": {Endpoint: EndpointYandex, Decode: decodeYandex},
}

// https://docs.aws.amazon.com/AmazonS3/latest/userguide/notification-how-to-event-types-and-destinations.html
var s3Actions = map[string]Action{
	"ObjectCreated:Put":                     Create,
	"ObjectCreated:Post":                    Create,
	"ObjectCreated:Copy":                    Create,
	"ObjectCreated:CompleteMultipartUpload": Create,
	"ObjectRemoved:Delete":                  Delete,
	"ObjectRemoved:DeleteMarkerCreated":     Delete,
}

func FromS3(ev events.S3Event) ([]Event, error) {
	r := make([]Event, 0, len(ev.Records))
	for _, rec := range ev.Records {
		action, ok := s3Actions[rec.EventName]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, rec.EventName)
		}
		// keys are form encoded in notifications
		key, err := url.QueryUnescape(rec.S3.Object.Key)
		if err != nil {
			return nil, fmt.Errorf("decode key %q: %w", rec.S3.Object.Key, err)
		}
		r = append(r, Event{
			Object: storage.Object{Bucket: rec.S3.Bucket.Name, Key: key, Endpoint: EndpointAWS},
			Action: action,
		})
	}
	return r, nil
}

func decodeS3(data []byte) ([]Event, error) {
	var ev events.S3Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("decode s3 event: %w", err)
	}
	return FromS3(ev)
}

// YandexEvent is the payload of a Yandex Cloud Functions object storage trigger.
type YandexEvent struct {
	Messages []YandexMessage `json:"messages"`
}

type YandexMessage struct {
	EventMetadata struct {
		EventID   string `json:"event_id"`
		EventType string `json:"event_type"`
		CreatedAt string `json:"created_at"`
	} `json:"event_metadata"`
	Details struct {
		BucketID string `json:"bucket_id"`
		ObjectID string `json:"object_id"`
	} `json:"details"`
}

// https://yandex.cloud/en/docs/functions/concepts/trigger/os-trigger
var yandexActions = map[string]Action{
	"yandex.cloud.events.storage.ObjectCreate": Create,
	"yandex.cloud.events.storage.ObjectDelete": Delete,
}

func FromYandex(ev YandexEvent) ([]Event, error) {
	r := make([]Event, 0, len(ev.Messages))
	for _, msg := range ev.Messages {
		action, ok := yandexActions[msg.EventMetadata.EventType]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, msg.EventMetadata.EventType)
		}
		r = append(r, Event{
			Object: storage.Object{Bucket: msg.Details.BucketID, Key: msg.Details.ObjectID, Endpoint: EndpointYandex},
			Action: action,
		})
	}
	return r, nil
}

func decodeYandex(data []byte) ([]Event, error) {
	var ev YandexEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("decode yandex event: %w", err)
	}
	return FromYandex(ev)
}
