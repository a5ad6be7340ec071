package kafka

// Default topic for inventory change events
const (
	TopicInventoryChanges = "inventory-changes"
)

// Kafka header keys carried by every change message
const (
	HeaderEventType = "event_type"
	HeaderEventID   = "event_id"
)
