package kafka

import "fmt"

// TopicPrefix is the standard prefix for all studyspots Kafka topics.
const TopicPrefix = "studyspots"

// Topic builds a topic name in the form "<prefix>.<domain>.<action>".
func Topic(domain, action string) string {
	return fmt.Sprintf("%s.%s.%s", TopicPrefix, domain, action)
}
