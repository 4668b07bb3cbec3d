package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// noopClient is used when no GCP project is configured.
type noopClient struct{}
