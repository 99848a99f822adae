package benchmark

import (
	"context"

	"github.com/soracom/connectivity-benchmark/internal/soracom"
)

//go:generate mockgen -source=directory.go -destination=mock_directory.go -package=benchmark

// Directory is the subscriber management service. *soracom.Client
// implements it.
type Directory interface {
	Authenticate(ctx context.Context, creds soracom.Credentials) error
	GetSubscriber(ctx context.Context, imsi string) (*soracom.Subscriber, error)
	ActivateSubscriber(ctx context.Context, imsi string) error
}

var _ Directory = (*soracom.Client)(nil)
