package api

import (
	"context"

	"github.com/vytor/sayilar/internal/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	ProfileService services.ProfileService
	ScreenService  services.ScreenService
	DB             Pinger
	AllowedOrigins []string
}
