package store

type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
	NotificationInfo    NotificationKind = "info"
)

// Notification is the transient banner shown after an action. It clears
// itself after the store's TTL unless a newer one replaced it first.
type Notification struct {
	Message string           `json:"message"`
	Kind    NotificationKind `json:"kind"`
}

// ShowNotification sets the banner and arms its self-clear timer.
func (s *Store) ShowNotification(message string, kind NotificationKind) {
	s.mu.Lock()
	s.setNotificationLocked(message, kind)
	s.mu.Unlock()
}

func (s *Store) setNotificationLocked(message string, kind NotificationKind) {
	s.notificationSeq++
	seq := s.notificationSeq
	s.notification = &Notification{Message: message, Kind: kind}

	s.afterFunc(s.notificationTTL, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		// A newer notification owns the banner now; leave it alone.
		if s.notificationSeq == seq {
			s.notification = nil
		}
	})
}

// Notification returns the current banner, or nil when none is showing.
func (s *Store) Notification() *Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.notification == nil {
		return nil
	}

	copied := *s.notification

	return &copied
}
