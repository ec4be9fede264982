package handlers

import (
	"errors"
	"io"
	"net/http"

	"helper/models"
	missionSvc "helper/services/mission"
	"helper/services/watch"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// missionErrStatus maps service error codes onto HTTP statuses.
func missionErrStatus(err error) int {
	switch missionSvc.CodeOf(err) {
	case missionSvc.CodeUnauthenticated:
		return http.StatusUnauthorized
	case missionSvc.CodeForbidden:
		return http.StatusForbidden
	case missionSvc.CodeNotFound:
		return http.StatusNotFound
	case missionSvc.CodeInvalidInput, missionSvc.CodePriceUnavailable:
		return http.StatusBadRequest
	case missionSvc.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// CreateMissionHandler books a mission for the authenticated client.
func CreateMissionHandler(svc missionSvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in models.MissionInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}
		res, err := svc.Create(c.Request.Context(), c.GetString("callerID"), in)
		if err != nil {
			c.JSON(missionErrStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

// GetMissionHandler serves the role-routed mission view.
func GetMissionHandler(svc missionSvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := svc.Get(c.Request.Context(), c.GetString("callerID"), c.GetString("role"), c.Param("id"))
		if err != nil {
			c.JSON(missionErrStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// CancelMissionHandler cancels the client's own mission.
func CancelMissionHandler(svc missionSvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Cancel(c.Request.Context(), c.GetString("callerID"), c.Param("id")); err != nil {
			c.JSON(missionErrStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// StartMissionHandler marks an assigned mission in progress.
func StartMissionHandler(svc missionSvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Start(c.Request.Context(), c.GetString("callerID"), c.Param("id")); err != nil {
			c.JSON(missionErrStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// CompleteMissionHandler finishes an in-progress mission.
func CompleteMissionHandler(svc missionSvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Complete(c.Request.Context(), c.GetString("callerID"), c.Param("id")); err != nil {
			c.JSON(missionErrStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// WatchMissionHandler streams live mission updates over SSE. The document
// may not be readable yet right after booking, so a bounded poller runs
// first; only a confirmed document gets a subscription. A permission
// failure ends the stream for good.
func WatchMissionHandler(opener watch.Opener, poller *watch.Poller, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID := c.GetString("callerID")
		role := c.GetString("role")
		missionID := c.Param("id")
		ctx := c.Request.Context()

		if err := poller.WaitForMission(ctx, missionID); err != nil {
			if errors.Is(err, watch.ErrMissionNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "mission not found"})
				return
			}
			return
		}

		w := watch.NewWatcher(opener, logger)
		runDone := make(chan error, 1)
		go func() { runDone <- w.Run(ctx, callerID, role, missionID) }()
		defer w.Stop()

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")

		c.Stream(func(io.Writer) bool {
			select {
			case view, ok := <-w.Updates():
				if !ok {
					return false
				}
				c.SSEvent("mission", view)
				return true
			case <-ctx.Done():
				return false
			}
		})

		if err := <-runDone; errors.Is(err, watch.ErrPermissionDenied) {
			c.SSEvent("error", gin.H{"error": "forbidden"})
		}
	}
}
