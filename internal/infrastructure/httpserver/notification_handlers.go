package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/ironforge/gym-membership/internal/core/domain/notification"
	"github.com/labstack/echo/v4"
)

type notificationsResponse struct {
	UserID        string                          `json:"user_id,omitempty"`
	Kind          notification.Kind               `json:"kind,omitempty"`
	Notifications []notification.PlanNotification `json:"notifications"`
	Count         int                             `json:"count"`
}

func memberID(c echo.Context) (string, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid member ID")
	}
	return id.String(), nil
}

func (s *Server) getMemberNotifications(c echo.Context) error {
	id, err := memberID(c)
	if err != nil {
		return err
	}
	list := s.notificationSvc.UserNotifications(c.Request().Context(), id)
	return c.JSON(http.StatusOK, notificationsResponse{UserID: id, Notifications: list, Count: len(list)})
}

// acknowledgeMemberNotification always answers 204: acknowledgement failures are
// logged by the service and never reported to the client.
func (s *Server) acknowledgeMemberNotification(c echo.Context) error {
	id, err := memberID(c)
	if err != nil {
		return err
	}
	s.notificationSvc.Acknowledge(c.Request().Context(), id)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) listNotificationsByKind(c echo.Context) error {
	ctx := c.Request().Context()
	kind := notification.Kind(c.QueryParam("kind"))
	var list []notification.PlanNotification
	switch kind {
	case notification.KindExpiringSoon:
		list = s.notificationSvc.ExpiringPlansNotifications(ctx)
	case notification.KindExpired:
		list = s.notificationSvc.ExpiredPlansNotifications(ctx)
	case notification.KindPaymentDue:
		list = s.notificationSvc.PaymentDueNotifications(ctx)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "kind must be one of expiring_soon, expired, payment_due")
	}
	return c.JSON(http.StatusOK, notificationsResponse{Kind: kind, Notifications: list, Count: len(list)})
}

func (s *Server) invalidateNotifications(c echo.Context) error {
	s.notificationSvc.InvalidateAll(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}
