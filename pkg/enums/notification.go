package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeOffer         NotificationType = "offer"
	NotificationTypeOfferReminder NotificationType = "offer_reminder"
	NotificationTypeShortageAlert NotificationType = "shortage_alert"
	NotificationTypeOrderUpdate   NotificationType = "order_update"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOffer,
	NotificationTypeOfferReminder,
	NotificationTypeShortageAlert,
	NotificationTypeOrderUpdate,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
