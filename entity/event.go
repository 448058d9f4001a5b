package entity

import (
	"encoding/json"
	"fmt"
)

type EventType string

const (
	EventNewObject    EventType = "new_object"
	EventDeleteObject EventType = "delete_object"
)

// ObjectEvent is pushed to realtime sessions. On the wire it is
// {"event": "new_object", "data": <StoreObject>} or {"event": "delete_object", "data": "<id>"}.
type ObjectEvent struct {
	Type     EventType
	Object   *StoreObject
	ObjectID string
}

func NewObjectCreatedEvent(object *StoreObject) ObjectEvent {
	return ObjectEvent{Type: EventNewObject, Object: object, ObjectID: object.ID.String()}
}

func NewObjectDeletedEvent(id string) ObjectEvent {
	return ObjectEvent{Type: EventDeleteObject, ObjectID: id}
}

type objectEventWire struct {
	Event EventType       `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func (e ObjectEvent) MarshalJSON() ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch e.Type {
	case EventNewObject:
		if e.Object == nil {
			return nil, fmt.Errorf("new_object event without object")
		}
		data, err = json.Marshal(e.Object)
	case EventDeleteObject:
		data, err = json.Marshal(e.ObjectID)
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(objectEventWire{Event: e.Type, Data: data})
}

func (e *ObjectEvent) UnmarshalJSON(b []byte) error {
	var wire objectEventWire
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}

	switch wire.Event {
	case EventNewObject:
		var object StoreObject
		if err := json.Unmarshal(wire.Data, &object); err != nil {
			return fmt.Errorf("failed to decode new_object payload: %w", err)
		}
		*e = NewObjectCreatedEvent(&object)
	case EventDeleteObject:
		var id string
		if err := json.Unmarshal(wire.Data, &id); err != nil {
			return fmt.Errorf("failed to decode delete_object payload: %w", err)
		}
		*e = NewObjectDeletedEvent(id)
	default:
		return fmt.Errorf("unknown event type %q", wire.Event)
	}
	return nil
}
