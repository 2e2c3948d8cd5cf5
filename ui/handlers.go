package ui

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"

	"sentinel/domain/military"
	"sentinel/internal/errors"

	"github.com/gin-gonic/gin"
)

// GlobalOption is the country selector entry meaning "no country restriction"
const GlobalOption = "Global"

// selection is the parsed sidebar state of a request
type selection struct {
	Countries []string `json:"countries"`
	MinRank   int      `json:"min_rank"`
	MaxRank   int      `json:"max_rank"`
	// Effective bounds after clamping to [1, max rank]
	EffectiveMin int `json:"effective_min_rank"`
	EffectiveMax int `json:"effective_max_rank"`
}

func (s *Server) handleIndex(c *gin.Context) {
	table, err := s.source.Load(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.renderTemplate(c, "index.html", gin.H{
		"Title":          "Global Sentinel | Military Power Intel",
		"Countries":      table.Countries(),
		"MaxRank":        table.MaxRank(),
		"DefaultMinRank": s.config.DefaultMinRank,
		"DefaultMaxRank": s.config.DefaultMaxRank,
	})
}

func (s *Server) handleBriefing(c *gin.Context) {
	s.renderTemplate(c, "briefing.html", gin.H{
		"Title": "Global Sentinel | Briefing",
		"Body":  s.briefing,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	table, err := s.source.Load(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  err.Error(),
			"code":   errorCode(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"rows":            table.Len(),
		"load_id":         table.LoadID(),
		"dataset_version": table.Version(),
		"degenerate":      table.Degenerate(),
	})
}

func (s *Server) handleCountries(c *gin.Context) {
	table, err := s.source.Load(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	options := append([]string{GlobalOption}, table.Countries()...)
	c.JSON(http.StatusOK, gin.H{
		"options":  options,
		"default":  []string{GlobalOption},
		"max_rank": table.MaxRank(),
	})
}

func (s *Server) handleTable(c *gin.Context) {
	filtered, sel, err := s.filtered(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"selection":  sel,
		"count":      filtered.Len(),
		"rows":       filtered.Rows(),
		"degenerate": filtered.Degenerate(),
	})
}

// handleDashboard returns everything the main view draws for a selection.
// funding=false drops the budget charts, manpower=false drops the map.
func (s *Server) handleDashboard(c *gin.Context) {
	filtered, sel, err := s.filtered(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	showFunding, err := boolQuery(c, "funding", true)
	if err != nil {
		s.writeError(c, err)
		return
	}
	showManpower, err := boolQuery(c, "manpower", true)
	if err != nil {
		s.writeError(c, err)
		return
	}

	summary, err := military.Summarize(filtered)
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := gin.H{
		"selection": sel,
		"summary":   summary,
	}
	if showManpower {
		resp["map"] = military.MapPoints(filtered)
	}
	if showFunding {
		resp["budget"] = military.BarSeries(filtered)
		resp["efficiency"] = military.ScatterPoints(filtered)
	}
	c.JSON(http.StatusOK, resp)
}

// handleRadar compares two countries on the full table. Without explicit
// choices it pairs the first and third countries in dataset order.
func (s *Server) handleRadar(c *gin.Context) {
	table, err := s.source.Load(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	a, b := c.Query("a"), c.Query("b")
	if a == "" || b == "" {
		rows := table.Rows()
		if a == "" && len(rows) > 0 {
			a = rows[0].Country
		}
		if b == "" && len(rows) > 0 {
			b = rows[min(2, len(rows)-1)].Country
		}
	}

	traces, err := military.Radar(table, a, b)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"traces": traces, "range": []float64{0, 1}})
}

// handleProfile describes the raw distribution of every metric over the
// full loaded table
func (s *Server) handleProfile(c *gin.Context) {
	table, err := s.source.Load(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	profiles, err := s.profiler.ProfileTable(table)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": table.Len(), "metrics": profiles})
}

// filtered loads the table and applies the request's selection
func (s *Server) filtered(c *gin.Context) (*military.Table, selection, error) {
	table, err := s.source.Load(c.Request.Context())
	if err != nil {
		return nil, selection{}, err
	}

	sel, err := s.parseSelection(c)
	if err != nil {
		return nil, selection{}, err
	}

	result, err := military.Filter(table, sel.Countries, sel.MinRank, sel.MaxRank)
	if err != nil {
		return nil, selection{}, err
	}
	sel.EffectiveMin, sel.EffectiveMax = military.ClampRange(table, sel.MinRank, sel.MaxRank)
	return result, sel, nil
}

// parseSelection reads repeated or comma-separated country parameters and the
// rank window. Choosing Global lifts the country restriction.
func (s *Server) parseSelection(c *gin.Context) (selection, error) {
	sel := selection{Countries: []string{}}

	global := false
	for _, raw := range c.QueryArray("country") {
		for _, name := range strings.Split(raw, ",") {
			name = strings.TrimSpace(name)
			switch {
			case name == "":
			case strings.EqualFold(name, GlobalOption):
				global = true
			default:
				sel.Countries = append(sel.Countries, name)
			}
		}
	}
	if global {
		sel.Countries = []string{}
	}

	var err error
	if sel.MinRank, err = intQuery(c, "min_rank", s.config.DefaultMinRank); err != nil {
		return sel, err
	}
	if sel.MaxRank, err = intQuery(c, "max_rank", s.config.DefaultMaxRank); err != nil {
		return sel, err
	}
	return sel, nil
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.InvalidInput(key + " must be an integer")
	}
	return v, nil
}

func boolQuery(c *gin.Context, key string, def bool) (bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.InvalidInput(key + " must be true or false")
	}
	return v, nil
}

// writeError maps error categories to HTTP status codes
func (s *Server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	} else {
		s.logger.Debug("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": err.Error(),
		"code":  errorCode(err),
	})
}

func statusFor(err error) int {
	switch {
	case stderrors.Is(err, errors.ErrInvalidRange), stderrors.Is(err, errors.ErrInvalidInput):
		return http.StatusBadRequest
	case stderrors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, errors.ErrDegenerateMetric):
		return http.StatusUnprocessableEntity
	case stderrors.Is(err, errors.ErrSchema), stderrors.Is(err, errors.ErrDataLoad):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func errorCode(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return errors.CodeInternalError
}
