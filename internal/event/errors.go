package event

import (
	"fmt"

	"github.com/auto-dns/docker-hosts-sync/internal/domain"
)

type UnsupportedEventTypeError struct {
	eventType domain.EventType
}

func NewUnsupportedEventTypeError(eventType domain.EventType) *UnsupportedEventTypeError {
	return &UnsupportedEventTypeError{eventType: eventType}
}

func (e *UnsupportedEventTypeError) Error() string {
	return fmt.Sprintf("Unsupported event type: %s", e.eventType)
}

// MissingAttributeError reports an event message without a required actor attribute.
type MissingAttributeError struct {
	Attribute string
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("event message has no %q attribute", e.Attribute)
}
