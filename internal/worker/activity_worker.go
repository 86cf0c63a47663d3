package worker

import (
	"github.com/spec-kit/poll-service/internal/service"
)

// StartActivityWorker registers activity audit handlers.
func StartActivityWorker(activityService *service.ActivityService) {
	if activityService == nil {
		return
	}
	activityService.RegisterHandlers()
}
