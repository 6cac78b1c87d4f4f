// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes geodesy, geocoding and stored locations as a JSON API.
package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/geokit/geocoder"
	"github.com/jcodagnone/geokit/locations"
	"github.com/jcodagnone/geokit/metrics"
	"github.com/jcodagnone/geokit/spatial"
	"github.com/uber/h3-go/v4"
)

type Server struct {
	geocoder   *geocoder.MultiGeocoder
	normalizer *spatial.Normalizer
	repo       locations.Repository
	metrics    *metrics.Recorder
}

// NewServer creates a server. repo and recorder are optional: without them
// the locations and metrics routes are not registered.
func NewServer(g *geocoder.MultiGeocoder, repo locations.Repository, recorder *metrics.Recorder) *Server {
	if g == nil {
		g = geocoder.NewMultiGeocoder(nil)
	}

	return &Server{
		geocoder:   g,
		normalizer: spatial.NewNormalizer(g),
		repo:       repo,
		metrics:    recorder,
	}
}

// Router builds the gin engine with every route.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	if s.metrics != nil {
		r.Use(s.metrics.Middleware())
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := r.Group("/api")
	api.GET("/geocode", s.geocode)
	api.GET("/distance", s.distance)
	api.GET("/heading", s.heading)
	api.GET("/midpoint", s.midpoint)
	api.GET("/endpoint", s.endpoint)
	api.GET("/bounds/contains", s.boundsContains)
	api.GET("/bounds/center", s.boundsCenter)
	api.GET("/bounds/radius", s.boundsRadius)

	if s.repo != nil {
		api.GET("/locations", s.listLocations)
		api.POST("/locations", s.createLocation)
		api.GET("/locations/near", s.nearLocations)
		api.GET("/locations/within", s.withinLocations)
		api.GET("/locations/cell/:cell", s.cellLocations)
		api.GET("/locations/:id", s.getLocation)
		api.DELETE("/locations/:id", s.deleteLocation)
	}

	return r
}

func (s *Server) Run(addr string) error {
	log.Printf("Listening on %s", addr)

	return s.Router().Run(addr)
}

func unprocessable(ctx *gin.Context) {
	ctx.JSON(http.StatusUnprocessableEntity, gin.H{"field": "address", "error": "Could not geocode address"})
}

// fail writes err with the status that matches its kind.
func fail(ctx *gin.Context, err error) {
	var (
		validation    *locations.ValidationError
		normalization *spatial.NormalizationError
	)

	switch {
	case errors.Is(err, geocoder.ErrGeocodeFailed):
		unprocessable(ctx)
	case errors.As(err, &validation):
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"field": validation.Field, "error": validation.Message})
	case errors.As(err, &normalization), errors.Is(err, spatial.ErrNoLocator):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, locations.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func badRequest(ctx *gin.Context, format string, args ...any) {
	ctx.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf(format, args...)})
}

// point normalizes a required query parameter holding "lat,lng" or an address.
func (s *Server) point(ctx *gin.Context, name string) (spatial.LatLng, bool) {
	v := strings.TrimSpace(ctx.Query(name))
	if v == "" {
		badRequest(ctx, "%s query parameter is required", name)

		return spatial.LatLng{}, false
	}

	p, err := s.normalizer.Normalize(ctx.Request.Context(), spatial.Text(v))
	if err != nil {
		fail(ctx, err)

		return spatial.LatLng{}, false
	}

	return p, true
}

func (s *Server) bounds(ctx *gin.Context) (spatial.Bounds, bool) {
	sw, ok := s.point(ctx, "sw")
	if !ok {
		return spatial.Bounds{}, false
	}

	ne, ok := s.point(ctx, "ne")
	if !ok {
		return spatial.Bounds{}, false
	}

	return spatial.NewBounds(sw, ne), true
}

func number(ctx *gin.Context, name string) (float64, bool) {
	f, err := strconv.ParseFloat(ctx.Query(name), 64)
	if err != nil {
		badRequest(ctx, "invalid %s parameter", name)

		return 0, false
	}

	return f, true
}

func units(ctx *gin.Context) (spatial.Units, bool) {
	u, err := spatial.ParseUnits(ctx.Query("units"))
	if err != nil {
		badRequest(ctx, "%v", err)

		return u, false
	}

	return u, true
}

func (s *Server) geocode(ctx *gin.Context) {
	address := strings.TrimSpace(ctx.Query("address"))
	if address == "" {
		badRequest(ctx, "address query parameter is required")

		return
	}

	loc, err := s.geocoder.Geocode(ctx.Request.Context(), address)
	if err != nil {
		unprocessable(ctx)

		return
	}

	ctx.JSON(http.StatusOK, loc)
}

func (s *Server) distance(ctx *gin.Context) {
	from, ok := s.point(ctx, "from")
	if !ok {
		return
	}

	to, ok := s.point(ctx, "to")
	if !ok {
		return
	}

	u, ok := units(ctx)
	if !ok {
		return
	}

	formula, err := spatial.ParseFormula(ctx.Query("formula"))
	if err != nil {
		badRequest(ctx, "%v", err)

		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"distance": spatial.Distance(from, to, u, formula),
		"units":    u.String(),
		"formula":  formula.String(),
	})
}

func (s *Server) heading(ctx *gin.Context) {
	from, ok := s.point(ctx, "from")
	if !ok {
		return
	}

	to, ok := s.point(ctx, "to")
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"heading": spatial.Heading(from, to)})
}

func (s *Server) midpoint(ctx *gin.Context) {
	from, ok := s.point(ctx, "from")
	if !ok {
		return
	}

	to, ok := s.point(ctx, "to")
	if !ok {
		return
	}

	u, ok := units(ctx)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"midpoint": spatial.Midpoint(from, to, u)})
}

func (s *Server) endpoint(ctx *gin.Context) {
	start, ok := s.point(ctx, "start")
	if !ok {
		return
	}

	heading, ok := number(ctx, "heading")
	if !ok {
		return
	}

	distance, ok := number(ctx, "distance")
	if !ok {
		return
	}

	u, ok := units(ctx)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"endpoint": spatial.Endpoint(start, heading, distance, u)})
}

func (s *Server) boundsContains(ctx *gin.Context) {
	b, ok := s.bounds(ctx)
	if !ok {
		return
	}

	p, ok := s.point(ctx, "point")
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"contains": b.Contains(p), "crosses_meridian": b.CrossesMeridian()})
}

func (s *Server) boundsCenter(ctx *gin.Context) {
	b, ok := s.bounds(ctx)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"center": b.Center()})
}

func (s *Server) boundsRadius(ctx *gin.Context) {
	center, ok := s.point(ctx, "center")
	if !ok {
		return
	}

	radius, ok := number(ctx, "radius")
	if !ok {
		return
	}

	u, ok := units(ctx)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"bounds": spatial.FromPointAndRadius(center, radius, u)})
}

func (s *Server) listLocations(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	locs, err := s.repo.List(limit, offset)
	if err != nil {
		fail(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, locs)
}

func (s *Server) createLocation(ctx *gin.Context) {
	var loc locations.Location
	if err := ctx.ShouldBindJSON(&loc); err != nil {
		badRequest(ctx, "invalid request: %v", err)

		return
	}

	loc.ID = 0

	if err := s.repo.Save(ctx.Request.Context(), &loc); err != nil {
		fail(ctx, err)

		return
	}

	ctx.JSON(http.StatusCreated, &loc)
}

func locationID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		badRequest(ctx, "invalid id parameter")

		return 0, false
	}

	return id, true
}

func (s *Server) getLocation(ctx *gin.Context) {
	id, ok := locationID(ctx)
	if !ok {
		return
	}

	loc, err := s.repo.Get(id)
	if err != nil {
		fail(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, loc)
}

func (s *Server) deleteLocation(ctx *gin.Context) {
	id, ok := locationID(ctx)
	if !ok {
		return
	}

	if err := s.repo.Delete(id); err != nil {
		fail(ctx, err)

		return
	}

	ctx.Status(http.StatusNoContent)
}

func (s *Server) nearLocations(ctx *gin.Context) {
	center, ok := s.point(ctx, "center")
	if !ok {
		return
	}

	radius, ok := number(ctx, "radius")
	if !ok {
		return
	}

	u, ok := units(ctx)
	if !ok {
		return
	}

	nearby, err := s.repo.Near(center, radius, u)
	if err != nil {
		fail(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, nearby)
}

func (s *Server) withinLocations(ctx *gin.Context) {
	b, ok := s.bounds(ctx)
	if !ok {
		return
	}

	locs, err := s.repo.Within(b)
	if err != nil {
		fail(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, locs)
}

func (s *Server) cellLocations(ctx *gin.Context) {
	cell := h3.Cell(h3.IndexFromString(ctx.Param("cell")))

	locs, err := s.repo.ListInCell(cell)
	if err != nil {
		badRequest(ctx, "%v", err)

		return
	}

	ctx.JSON(http.StatusOK, locs)
}
