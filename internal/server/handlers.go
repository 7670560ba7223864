package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arcanaland/feedview/internal/card"
	"github.com/arcanaland/feedview/internal/geomap"
	"github.com/arcanaland/feedview/internal/quake"
)

type cardsData struct {
	Cards    []card.Record
	Selected *card.Record
}

// pin is a marker as the map page script consumes it
type pin struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Popup string  `json:"popup"`
}

type quakesData struct {
	Center      geomap.LatLng
	Zoom        int
	TileURL     string
	Attribution string
	Pins        []pin
}

// cardsState loads the session's cards if needed and snapshots them
func (s *Server) cardsState(c *gin.Context) (cardsData, error) {
	sess := s.session(c)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	err := sess.ensureCards(c.Request.Context(), s.feed, s.opts.CardsURL)
	data := cardsData{Cards: sess.view.Cards()}
	if sel, ok := sess.view.Selected(); ok {
		data.Selected = &sel
	}
	return data, err
}

// cardsPage renders the grid. A failed draw is logged and the grid is
// simply empty.
func (s *Server) cardsPage(c *gin.Context) {
	data, err := s.cardsState(c)
	if err != nil {
		s.logger.Error("card draw failed", zap.Error(err))
	}
	c.HTML(http.StatusOK, "cards.html", data)
}

func (s *Server) cardsAPI(c *gin.Context) {
	data, err := s.cardsState(c)
	if err != nil {
		s.logger.Error("card draw failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if data.Cards == nil {
		data.Cards = []card.Record{}
	}
	c.JSON(http.StatusOK, gin.H{
		"cards":    data.Cards,
		"selected": data.Selected,
	})
}

// selectCard is the click on a grid item
func (s *Server) selectCard(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid card id")
		return
	}

	sess := s.session(c)
	sess.mu.Lock()
	err = sess.view.Select(id)
	sess.mu.Unlock()

	if err != nil {
		c.String(http.StatusNotFound, err.Error())
		return
	}
	c.Redirect(http.StatusSeeOther, "/cards")
}

// loadMarkers fetches the feed; on failure the map gets no markers
func (s *Server) loadMarkers(c *gin.Context) ([]quake.Marker, error) {
	markers, err := quake.Load(c.Request.Context(), s.feed, s.opts.QuakesURL, s.logger)
	if err != nil {
		s.logger.Error("Error fetching data", zap.String("url", s.opts.QuakesURL), zap.Error(err))
		return nil, err
	}
	return markers, nil
}

func (s *Server) quakesPage(c *gin.Context) {
	markers, _ := s.loadMarkers(c)

	pins := make([]pin, 0, len(markers))
	for _, m := range markers {
		pins = append(pins, pin{Lat: m.Lat, Lon: m.Lon, Popup: m.Popup()})
	}

	c.HTML(http.StatusOK, "quakes.html", quakesData{
		Center:      s.opts.Center,
		Zoom:        s.opts.Zoom,
		TileURL:     s.opts.TileURL,
		Attribution: s.opts.Attribution,
		Pins:        pins,
	})
}

func (s *Server) quakesAPI(c *gin.Context) {
	markers, err := s.loadMarkers(c)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(markers),
		"markers": markers,
	})
}
