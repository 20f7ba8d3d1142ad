package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	search "github.com/pdrpinto/statesearch"
	"github.com/pdrpinto/statesearch/geocode"
	"github.com/pdrpinto/statesearch/render"
	"github.com/pdrpinto/statesearch/roads"
)

var ErrNoNetwork = errors.New("no road network loaded")

type routeRequest struct {
	From          string `json:"from" binding:"required"`
	To            string `json:"to" binding:"required"`
	Weight        string `json:"weight" binding:"omitempty,oneof=length travel_time"`
	Strategy      string `json:"strategy"`
	MaxExpansions int    `json:"max_expansions" binding:"gte=0"`
}

type segmentView struct {
	From       roads.NodeID `json:"from"`
	To         roads.NodeID `json:"to"`
	Name       string       `json:"name,omitempty"`
	Highway    string       `json:"highway,omitempty"`
	Length     float64      `json:"length"`
	TravelTime float64      `json:"travel_time"`
}

type routeResponse struct {
	Status    string          `json:"status"`
	Found     bool            `json:"found"`
	Start     roads.NodeID    `json:"start"`
	Goal      roads.NodeID    `json:"goal"`
	Weight    string          `json:"weight"`
	Segments  []segmentView   `json:"segments"`
	TotalCost float64         `json:"total_cost"`
	Expanded  int             `json:"expanded"`
	GeoJSON   json.RawMessage `json:"geojson,omitempty"`
	Error     string          `json:"error,omitempty"`
}

func geocodeStatus(err error) int {
	switch {
	case errors.Is(err, geocode.ErrNotFound), errors.Is(err, geocode.ErrEmptyName):
		return http.StatusNotFound
	case errors.Is(err, geocode.ErrUnavailable):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) handleRouteSolve(c *gin.Context) {
	if s.network == nil || s.geocoder == nil {
		abortWithError(c, http.StatusServiceUnavailable, ErrNoNetwork)
		return
	}
	var request routeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	weight := s.weight
	if request.Weight != "" {
		weight, _ = roads.ParseWeight(request.Weight)
	}
	options, err := s.searchOptions(request.Strategy, request.MaxExpansions)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	route, err := roads.Plan(c.Request.Context(), s.geocoder, s.network, request.From, request.To, weight, s.logger)
	if err != nil {
		abortWithError(c, geocodeStatus(err), err)
		return
	}
	result, err := search.Search(c.Request.Context(), route.Problem, route.Start, append(options, search.WithLogger(s.logger))...)
	response := routeResponse{
		Status:    result.Status.String(),
		Found:     result.Found,
		Start:     route.Start,
		Goal:      route.Goal,
		Weight:    weight.String(),
		Segments:  []segmentView{},
		TotalCost: result.TotalCost,
		Expanded:  result.ExpandedNodes,
	}
	if err != nil {
		response.Error = err.Error()
	}
	if result.Found {
		segments := route.Problem.Segments(result.Path)
		for _, segment := range segments {
			response.Segments = append(response.Segments, segmentView{
				From:       segment.From.ID,
				To:         segment.To.ID,
				Name:       segment.Edge.Name,
				Highway:    segment.Edge.Highway,
				Length:     segment.Edge.Length,
				TravelTime: segment.Edge.TravelTime,
			})
		}
		var buffer bytes.Buffer
		if err := render.RouteGeoJSON(&buffer, roads.RenderSegments(segments)); err != nil {
			abortWithError(c, http.StatusInternalServerError, err)
			return
		}
		response.GeoJSON = buffer.Bytes()
	}
	c.JSON(http.StatusOK, response)
}
