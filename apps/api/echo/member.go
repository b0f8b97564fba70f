package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/repostnet/core/member"
)

type memberApi struct {
	svc *member.Service
}

type candidatesQuery struct {
	Tags         []string `query:"tag"`
	MinFollowers int      `query:"min_followers"`
}

type searchQuery struct {
	Q string `query:"q"`
}

func registerMemberAPI(g *echo.Group, svc *member.Service) {
	api := memberApi{svc: svc}

	mg := g.Group("/members")
	mg.GET("/candidates", api.candidates)
	mg.GET("/search", api.search)
}

// Handlers

func (api *memberApi) candidates(ctx echo.Context) error {
	var query candidatesQuery
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to candidatesQuery")
	}

	members, err := api.svc.LoadCandidates(ctx.Request().Context(), query.Tags, query.MinFollowers)
	if err != nil {
		return errors.Wrap(err, "loading candidates")
	}
	return ctx.JSON(http.StatusOK, members)
}

func (api *memberApi) search(ctx echo.Context) error {
	var query searchQuery
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to searchQuery")
	}

	members, err := api.svc.SearchCandidates(ctx.Request().Context(), query.Q)
	if err != nil {
		return errors.Wrap(err, "searching candidates")
	}
	return ctx.JSON(http.StatusOK, members)
}
