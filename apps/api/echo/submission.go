package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/repostnet/core"
	"github.com/trezcool/repostnet/core/reach"
	"github.com/trezcool/repostnet/core/submission"
)

type submissionApi struct {
	svc      *submission.Service
	validate *validator.Validate
	logger   core.Logger
}

// ConfirmResponse is returned once supporters are saved.
// ScheduleError is set when the selection was saved but the schedule trigger failed.
type ConfirmResponse struct {
	Submission    submission.Submission `json:"submission"`
	ScheduleError string                `json:"schedule_error,omitempty"`
}

func registerSubmissionAPI(g *echo.Group, svc *submission.Service, validate *validator.Validate, logger core.Logger) {
	api := submissionApi{
		svc:      svc,
		validate: validate,
		logger:   logger,
	}

	sg := g.Group("/submissions/:id")
	sg.GET("/suggestion", api.suggest)
	sg.POST("/selection/toggle", api.toggle)
	sg.PUT("/supporters", api.confirm, requireAdmin)
}

// Handlers

func (api *submissionApi) suggest(ctx echo.Context) error {
	suggestion, err := api.svc.Suggest(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "suggesting supporters")
	}
	return ctx.JSON(http.StatusOK, suggestion)
}

func (api *submissionApi) toggle(ctx echo.Context) error {
	var data submission.AdjustSelection
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AdjustSelection")
	}

	// fall back to the submission's own band when the caller sends none
	if data.Target == (reach.Target{}) {
		sub, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			return errors.Wrap(err, "getting submission")
		}
		data.Target = api.svc.Target(sub)
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sel, err := api.svc.Adjust(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "adjusting selection")
	}
	return ctx.JSON(http.StatusOK, sel)
}

func (api *submissionApi) confirm(ctx echo.Context) error {
	var data submission.ConfirmSupporters
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ConfirmSupporters")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sub, err := api.svc.Confirm(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if !errors.Is(err, submission.ErrScheduleFailed) {
			return errors.Wrap(err, "confirming supporters")
		}
		var actor core.Actor
		if claims, cErr := getContextClaims(ctx); cErr == nil {
			actor = claims.actor()
		}
		api.logger.Warn("schedule trigger failed", err, actor, map[string]interface{}{"submission_id": sub.ID})
		return ctx.JSON(http.StatusOK, ConfirmResponse{Submission: sub, ScheduleError: "schedule generation failed, please retry"})
	}
	return ctx.JSON(http.StatusOK, ConfirmResponse{Submission: sub})
}
