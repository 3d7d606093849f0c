package controller

import (
	"context"
	"time"

	"github.com/calvinmclean/irbutton"
	"github.com/calvinmclean/irbutton/events"
)

type eventsClient interface {
	AddEvent(ctx context.Context, e irbutton.Event, now time.Time) error
}

var _ eventsClient = &events.Client{}

type noopEventsClient struct{}

var _ eventsClient = noopEventsClient{}

// AddEvent implements eventsClient.
func (noopEventsClient) AddEvent(context.Context, irbutton.Event, time.Time) error {
	return nil
}
