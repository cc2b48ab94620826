package notify

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const pushoverAPI = "https://api.pushover.net/1/messages.json"

// Priority levels for Pushover
const (
	PriorityLowest    = -2
	PriorityLow       = -1
	PriorityNormal    = 0
	PriorityHigh      = 1
	PriorityEmergency = 2
)

// Notifier sends push notifications
type Notifier struct {
	appToken string
	userKey  string
	enabled  bool
	client   *http.Client
}

// New creates a new Pushover notifier
// If appToken or userKey is empty, notifications are disabled
func New(appToken, userKey string) *Notifier {
	return &Notifier{
		appToken: appToken,
		userKey:  userKey,
		enabled:  appToken != "" && userKey != "",
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// IsEnabled returns whether notifications are enabled
func (n *Notifier) IsEnabled() bool {
	return n.enabled
}

// Send sends a notification with normal priority
func (n *Notifier) Send(title, message string) error {
	return n.SendWithPriority(title, message, PriorityNormal)
}

// SendWithPriority sends a notification with specified priority
func (n *Notifier) SendWithPriority(title, message string, priority int) error {
	if !n.enabled {
		return nil
	}

	data := url.Values{}
	data.Set("token", n.appToken)
	data.Set("user", n.userKey)
	data.Set("title", title)
	data.Set("message", message)
	data.Set("priority", fmt.Sprintf("%d", priority))

	// Emergency priority requires retry and expire parameters
	if priority == PriorityEmergency {
		data.Set("retry", "60")
		data.Set("expire", "3600")
	}

	resp, err := n.client.PostForm(pushoverAPI, data)
	if err != nil {
		return fmt.Errorf("pushover request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pushover returned status %d", resp.StatusCode)
	}

	return nil
}

// NotifySolved reports a recovered hidden vector
func (n *Notifier) NotifySolved(algorithm, hidden string, samples int) error {
	title := "Hidden vector recovered"
	message := fmt.Sprintf("Algorithm: %s\nVector: %s\nSamples: %d",
		algorithm, hidden, samples)
	return n.Send(title, message)
}

// NotifyDegenerate reports a solving session that collapsed to the
// trivial solution, which points at a broken oracle upstream
func (n *Notifier) NotifyDegenerate(algorithm string) error {
	title := "Degenerate system"
	message := fmt.Sprintf("Algorithm: %s\nOnly the trivial solution exists; check the oracle", algorithm)
	return n.SendWithPriority(title, message, PriorityHigh)
}

// NotifyBackendDown reports a tripped backend circuit breaker
func (n *Notifier) NotifyBackendDown(backendName string, failures int) error {
	title := "Backend unavailable"
	message := fmt.Sprintf("Backend: %s\nConsecutive failures: %d",
		backendName, failures)
	return n.SendWithPriority(title, message, PriorityHigh)
}
