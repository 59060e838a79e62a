package testutil

import (
	"context"
	"sync"

	ierr "github.com/danny-ell77/clustr-be-sub003/internal/errors"
	"github.com/danny-ell77/clustr-be-sub003/internal/notification"
)

var _ notification.Sender = (*MockNotifier)(nil)

// MockNotifier captures notifications sent during a test
type MockNotifier struct {
	mu       sync.Mutex
	Sent     []*notification.Notification
	FailNext bool
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Send(ctx context.Context, n *notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailNext {
		m.FailNext = false
		return ierr.NewError("notification delivery failed").
			Mark(ierr.ErrInternal)
	}
	m.Sent = append(m.Sent, n)
	return nil
}

// SentOfKind returns the captured notifications of one kind
func (m *MockNotifier) SentOfKind(kind notification.Kind) []*notification.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*notification.Notification
	for _, n := range m.Sent {
		if n.Kind == kind {
			result = append(result, n)
		}
	}
	return result
}

func (m *MockNotifier) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = nil
}
