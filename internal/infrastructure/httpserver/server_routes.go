package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api/v1")

	members := api.Group("/members")
	members.GET("/:id/notifications", s.getMemberNotifications)
	members.POST("/:id/notifications/ack", s.acknowledgeMemberNotification)

	notifications := api.Group("/notifications")
	notifications.GET("", s.listNotificationsByKind)
	notifications.DELETE("/cache", s.invalidateNotifications)

	cache := api.Group("/cache")
	cache.GET("/keys", s.listCacheKeys)
	cache.DELETE("", s.clearCache)
	cache.DELETE("/:key", s.removeCacheKey)
}
