// internal/yard/events.go
package yard

import (
	"container-yard-api-server/internal/models"
)

type EventType string

const (
	EventContainerEntered EventType = "container_entered"
	EventContainerUpdated EventType = "container_updated"
	EventContainerExited  EventType = "container_exited"
	EventContainerDeleted EventType = "container_deleted"
	EventReferenceChanged EventType = "reference_changed"
)

// Event is published after every successful write.
type Event struct {
	Type      EventType            `json:"type"`
	Container *models.Container    `json:"container,omitempty"`
	Kind      models.ReferenceKind `json:"kind,omitempty"`
	Reference *models.Reference    `json:"reference,omitempty"`
}

// Notifier receives write events. Implementations must not block.
type Notifier interface {
	Notify(Event)
}

// Notifiers fans an event out in order; nil entries are skipped.
type Notifiers []Notifier

func (ns Notifiers) Notify(e Event) {
	for _, n := range ns {
		if n != nil {
			n.Notify(e)
		}
	}
}

func containerEvent(t EventType, c models.Container) Event {
	return Event{Type: t, Container: &c}
}
