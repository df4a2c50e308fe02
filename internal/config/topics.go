package config

const (
	// TopicPopulate is the NSQ topic carrying link-population jobs. The
	// orchestrator publishes one message per created page; the populator
	// worker is the sole consumer.
	TopicPopulate = "scrape.populate"

	// ChannelPopulate is the consumer channel the populator subscribes on.
	ChannelPopulate = "backend"
)
