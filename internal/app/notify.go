package app

import "github.com/gen2brain/beeep"

// Notifier raises a desktop notification.
type Notifier func(title, body string) error

// DesktopNotifier returns a Notifier backed by the OS notification service.
func DesktopNotifier() Notifier {
	return func(title, body string) error {
		return beeep.Notify(title, body, "")
	}
}
