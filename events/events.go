package events

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/calvinmclean/babyapi"

	"github.com/calvinmclean/irbutton"
)

// Event is an irbutton event as stored by the events API
type Event struct {
	babyapi.DefaultResource

	Kind irbutton.EventKind `json:"kind"`
	Slot int                `json:"slot"`
	Code irbutton.Code      `json:"code"`
	Time time.Time          `json:"time"`
}

func (e *Event) Bind(r *http.Request) error {
	if r.Method == http.MethodPost || r.Method == http.MethodPut {
		if e.Kind == "" {
			return errors.New("missing required kind field")
		}
		if e.Time.IsZero() {
			e.Time = time.Now()
		}
	}
	return e.DefaultResource.Bind(r)
}

// NewAPI creates the events API. It keeps a log of everything the device reports
func NewAPI() *babyapi.API[*Event] {
	return babyapi.NewAPI("Events", "/events", func() *Event { return &Event{} })
}

type Client struct {
	client *babyapi.Client[*Event]
}

func NewClient(addr string) *Client {
	client := babyapi.NewClient[*Event](addr, "/events")
	return &Client{client: client}
}

// AddEvent stores an event that happened at now
func (c *Client) AddEvent(ctx context.Context, e irbutton.Event, now time.Time) error {
	_, err := c.client.Post(ctx, &Event{
		Kind: e.Kind,
		Slot: e.Slot,
		Code: e.Code,
		Time: now,
	})
	if err != nil {
		return fmt.Errorf("error posting event: %w", err)
	}
	return nil
}
