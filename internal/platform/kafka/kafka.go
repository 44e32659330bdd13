// Package kafka wraps the franz-go client behind small consumer/producer types
// so the event pipeline does not depend on broker session management details.
package kafka

// Config carries broker connection settings shared by consumers and producers.
type Config struct {
	Brokers  []string
	GroupID  string
	ClientID string
}
