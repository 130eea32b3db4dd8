package main

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wms-platform/picker-performance-service/internal/application"
	"github.com/wms-platform/picker-performance-service/pkg/errors"
	"github.com/wms-platform/picker-performance-service/pkg/logging"
	"github.com/wms-platform/picker-performance-service/pkg/middleware"
)

// registerRoutes mounts the /api/v1 surface. Reads need viewer or admin, writes need admin.
func registerRoutes(router *gin.Engine, service *application.DashboardService, logger *logging.Logger, auth middleware.AuthConfig) {
	apiV1 := router.Group("/api/v1", middleware.Authenticate(auth))

	read := apiV1.Group("", middleware.RequireRole(middleware.RoleViewer, middleware.RoleAdmin))
	write := apiV1.Group("", middleware.RequireRole(middleware.RoleAdmin))

	// Picker routes
	{
		read.GET("/pickers", listPickersHandler(service, logger))
		read.GET("/pickers/:pickerId", getPickerHandler(service, logger))

		write.POST("/pickers", createPickerHandler(service, logger))
		write.PUT("/pickers/:pickerId", updatePickerHandler(service, logger))
		write.DELETE("/pickers/:pickerId", deletePickerHandler(service, logger))
		write.POST("/pickers/:pickerId/performance", recordPerformanceHandler(service, logger))
	}

	// Dashboard routes
	dashboard := read.Group("/dashboard")
	{
		dashboard.GET("", getDashboardHandler(service, logger))
		dashboard.GET("/metrics", getMetricsHandler(service, logger))
		dashboard.GET("/shift-progress", getShiftProgressHandler(service, logger))
		dashboard.GET("/projections", getProjectionsHandler(service, logger))
		dashboard.GET("/consistency", getConsistencyHandler(service, logger))
		dashboard.GET("/hours/:hour", getHourAnalysisHandler(service, logger))
		dashboard.GET("/labor-efficiency", getLaborEfficiencyHandler(service, logger))
		dashboard.GET("/leaderboard", getLeaderboardHandler(service, logger))
		dashboard.GET("/export", exportShiftReportHandler(service, logger))
	}

	// Snapshot routes
	{
		read.GET("/snapshots", listSnapshotsHandler(service, logger))
		read.GET("/snapshots/:name", getSnapshotHandler(service, logger))

		write.POST("/snapshots", saveSnapshotHandler(service, logger))
		write.DELETE("/snapshots/:name", deleteSnapshotHandler(service, logger))
	}
}

func respondError(responder *middleware.ErrorResponder, err error) {
	if appErr, ok := errors.AsAppError(err); ok {
		responder.RespondWithAppError(appErr)
		return
	}
	responder.RespondInternalError(err)
}

// queryTime parses ?at= as RFC3339. A missing value yields the zero time, meaning now.
func queryTime(c *gin.Context) (time.Time, error) {
	raw := c.Query("at")
	if raw == "" {
		return time.Time{}, nil
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("at must be an RFC3339 timestamp")
	}
	return at, nil
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return v, nil
}

func listPickersHandler(service *application.DashboardService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		limit, err := queryInt(c, "limit", 50)
		if err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}
		offset, err := queryInt(c, "offset", 0)
		if err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		query := application.ListPickersQuery{
			Status: c.Query("status"),
			Limit:  limit,
			Offset: offset,
		}

		pickers, err := service.ListPickers(c.Request.Context(), query)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, pickers)
	}
}

func getPickerHandler(service *application.DashboardService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		pickerID := c.Param("pickerId")
		middleware.AddSpanAttributes(c, map[string]interface{}{
			"picker.id": pickerID,
		})

		picker, err := service.GetPicker(c.Request.Context(), application.GetPickerQuery{PickerID: pickerID})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, picker)
	}
}

func createPickerHandler(service *application.DashboardService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			PickerID string `json:"id" binding:"omitempty,picker_id"`
			Name     string `json:"name" binding:"required,max=100"`
			Target   *int   `json:"target" binding:"required,gte=0"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		cmd := application.CreatePickerCommand{
			PickerID: req.PickerID,
			Name:     req.Name,
			Target:   *req.Target,
			Actor:    middleware.GetSubject(c),
		}

		picker, err := service.CreatePicker(c.Request.Context(), cmd)
		if err != nil {
			respondError(responder, err)
			return
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"picker.id": picker.PickerID,
		})
		c.JSON(http.StatusCreated, picker)
	}
}

func updatePickerHandler(service *application.DashboardService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		pickerID := c.Param("pickerId")
		middleware.AddSpanAttributes(c, map[string]interface{}{
			"picker.id": pickerID,
		})

		var req struct {
			Name   *string `json:"name" binding:"omitempty,min=1,max=100"`
			Target *int    `json:"target" binding:"omitempty,gte=0"`
			Status *string `json:"status" binding:"omitempty,oneof=active break offline"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		cmd := application.UpdatePickerCommand{
			PickerID: pickerID,
			Name:     req.Name,
			Target:   req.Target,
			Status:   req.Status,
			Actor:    middleware.GetSubject(c),
		}

		picker, err := service.UpdatePicker(c.Request.Context(), cmd)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, picker)
	}
}

func deletePickerHandler(service *application.DashboardService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		cmd := application.DeletePickerCommand{
			PickerID: c.Param("pickerId"),
			Actor:    middleware.GetSubject(c),
		}
		if err := service.DeletePicker(c.Request.Context(), cmd); err != nil {
			respondError(responder, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

func recordPerformanceHandler(service *application.DashboardService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		pickerID := c.Param("pickerId")

		var req struct {
			Hour  *int `json:"hour" binding:"required"`
			Lines *int `json:"lines" binding:"required,gte=0"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"picker.id": pickerID,
			"hour":      *req.Hour,
		})

		cmd := application.RecordPerformanceCommand{
			PickerID: pickerID,
			Hour:     *req.Hour,
			Lines:    *req.Lines,
			Actor:    middleware.GetSubject(c),
		}

		picker, err := service.RecordPerformance(c.Request.Context(), cmd)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, picker)
	}
}

func getDashboardHandler(service *application.DashboardService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		at, err := queryTime(c)
		if err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		dashboard, err := service.GetDashboard(c.Request.Context(), application.DashboardQuery{At: at})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, dashboard)
	}
}

func getMetricsHandler(service *application.DashboardService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		m, err := service.GetMetrics(c.Request.Context())
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, m)
	}
}

func getShiftProgressHandler(service *application.DashboardService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		at, err := queryTime(c)
		if err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		c.JSON(http.StatusOK, service.GetShiftProgress(c.Request.Context(), application.DashboardQuery{At: at}))
	}
}

func getProjectionsHandler(service *application.DashboardService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		at, err := queryTime(c)
		if err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		projections, err := service.GetProjections(c.Request.Context(), application.DashboardQuery{At: at})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, projections)
	}
}

func getConsistencyHandler(service *application.DashboardService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		at, err := queryTime(c)
		if err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		query := application.ConsistencyQuery{At: at}
		if c.Query("hour") != "" {
			hour, err := queryInt(c, "hour", 0)
			if err != nil {
				responder.RespondBadRequest(err.Error())
				return
			}
			query.Hour = &hour
		}

		report, err := service.GetConsistency(c.Request.Context(), query)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, report)
	}
}

func getHourAnalysisHandler(service *application.DashboardService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		hour, err := strconv.Atoi(c.Param("hour"))
		if err != nil {
			responder.RespondBadRequest("hour must be an integer")
			return
		}

		analysis, err := service.GetHourAnalysis(c.Request.Context(), application.HourAnalysisQuery{Hour: hour})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, analysis)
	}
}

func getLaborEfficiencyHandler(service *application.DashboardService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		query := application.LaborEfficiencyQuery{PickerID: c.Query("pickerId")}

		ratio, err := service.GetLaborEfficiency(c.Request.Context(), query)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, ratio)
	}
}

func getLeaderboardHandler(service *application.DashboardService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		board, err := service.GetLeaderboard(c.Request.Context())
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, board)
	}
}

func exportShiftReportHandler(service *application.DashboardService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		at, err := queryTime(c)
		if err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		report, err := service.ExportShiftReport(c.Request.Context(), application.DashboardQuery{At: at})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName))
		c.Data(http.StatusOK, report.ContentType, report.Data)
	}
}

func listSnapshotsHandler(service *application.DashboardService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		snapshots, err := service.ListSnapshots(c.Request.Context())
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"snapshots": snapshots})
	}
}

func getSnapshotHandler(service *application.DashboardService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		snapshot, err := service.GetSnapshot(c.Request.Context(), application.GetSnapshotQuery{Name: c.Param("name")})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, snapshot)
	}
}

func saveSnapshotHandler(service *application.DashboardService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Name string `json:"name" binding:"required,snapshot_name"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		at, err := queryTime(c)
		if err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		cmd := application.SaveSnapshotCommand{
			Name:    req.Name,
			SavedBy: middleware.GetSubject(c),
			At:      at,
		}

		snapshot, err := service.SaveSnapshot(c.Request.Context(), cmd)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusCreated, snapshot)
	}
}

func deleteSnapshotHandler(service *application.DashboardService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		cmd := application.DeleteSnapshotCommand{
			Name:  c.Param("name"),
			Actor: middleware.GetSubject(c),
		}
		if err := service.DeleteSnapshot(c.Request.Context(), cmd); err != nil {
			respondError(responder, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}
