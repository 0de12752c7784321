package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nbd-wtf/go-nostr"

	"github.com/nostrchest/chest.go/db/models"
	"github.com/nostrchest/chest.go/lib/service"
)

// EventController : read-only lookups over the event store.
type EventController struct {
	svc *service.ChestService
}

func NewEventController(svc *service.ChestService) *EventController {
	return &EventController{svc: svc}
}

// GetUser returns the latest profile event for a pubkey.
func (controller *EventController) GetUser(c echo.Context) error {
	return controller.respondOne(c, func(ctx context.Context) (*models.Event, error) {
		return controller.svc.GetProfile(ctx, c.Param("pubkey"))
	})
}

// GetNote returns a note by event id.
func (controller *EventController) GetNote(c echo.Context) error {
	return controller.respondOne(c, func(ctx context.Context) (*models.Event, error) {
		return controller.svc.GetNote(ctx, c.Param("id"))
	})
}

// GetZap returns a zap request or receipt by event id.
func (controller *EventController) GetZap(c echo.Context) error {
	return controller.respondOne(c, func(ctx context.Context) (*models.Event, error) {
		return controller.svc.GetZap(ctx, c.Param("id"))
	})
}

// GetLong returns a long-form article by event id.
func (controller *EventController) GetLong(c echo.Context) error {
	return controller.respondOne(c, func(ctx context.Context) (*models.Event, error) {
		return controller.svc.GetLongForm(ctx, c.Param("id"))
	})
}

// ListReplies returns the notes replying to an event, oldest first.
func (controller *EventController) ListReplies(c echo.Context) error {
	return controller.respondMany(c, func(ctx context.Context) ([]models.Event, error) {
		return controller.svc.ListReplies(ctx, c.Param("id"))
	})
}

// ListReactions returns the reactions to an event, oldest first.
func (controller *EventController) ListReactions(c echo.Context) error {
	return controller.respondMany(c, func(ctx context.Context) ([]models.Event, error) {
		return controller.svc.ListReactions(ctx, c.Param("id"))
	})
}

// ListZaps returns the zap events referencing an event, oldest first.
func (controller *EventController) ListZaps(c echo.Context) error {
	return controller.respondMany(c, func(ctx context.Context) ([]models.Event, error) {
		return controller.svc.ListZaps(ctx, c.Param("id"))
	})
}

// respondOne serves a direct lookup: the canonical event shape, or 404
// with no body on a miss.
func (controller *EventController) respondOne(c echo.Context, query func(ctx context.Context) (*models.Event, error)) error {
	event, err := query(c.Request().Context())
	if errors.Is(err, service.ErrEventNotFound) {
		return c.NoContent(http.StatusNotFound)
	}
	if err != nil {
		return err
	}
	payload, err := event.ToNostr()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payload)
}

// respondMany serves a reference lookup. An unknown reference and a
// reference with no linked events both yield an empty array.
func (controller *EventController) respondMany(c echo.Context, query func(ctx context.Context) ([]models.Event, error)) error {
	events, err := query(c.Request().Context())
	if err != nil {
		return err
	}
	payload := make([]*nostr.Event, 0, len(events))
	for i := range events {
		ev, err := events[i].ToNostr()
		if err != nil {
			return err
		}
		payload = append(payload, ev)
	}
	return c.JSON(http.StatusOK, payload)
}
