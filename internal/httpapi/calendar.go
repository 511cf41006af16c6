package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"sales-crm/internal/calendar"
)

// ListEvents returns every event keyed by day. With ?year= and ?month= the
// month grid is included.
func (h Handlers) ListEvents(c *gin.Context) {
	resp := gin.H{"events": h.Calendar.Events()}

	if ys, ms := c.Query("year"), c.Query("month"); ys != "" || ms != "" {
		year, err1 := strconv.Atoi(ys)
		month, err2 := strconv.Atoi(ms)
		if err1 != nil || err2 != nil || month < 1 || month > 12 {
			abort(c, http.StatusBadRequest, "year and month (1-12) required together")
			return
		}
		resp["grid"] = h.Calendar.MonthGrid(year, time.Month(month))
	}
	c.JSON(http.StatusOK, resp)
}

func (h Handlers) EventsOnDay(c *gin.Context) {
	day, ok := dayParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"day": day, "events": h.Calendar.EventsOn(day)})
}

func (h Handlers) AddEvent(c *gin.Context) {
	day, ok := dayParam(c)
	if !ok {
		return
	}
	var ev calendar.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		abort(c, http.StatusBadRequest, "invalid json")
		return
	}
	ev.ID = ""
	out, err := h.Calendar.AddEvent(c.Request.Context(), day, ev)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h Handlers) DeleteEvent(c *gin.Context) {
	day, ok := dayParam(c)
	if !ok {
		return
	}
	removed, err := h.Calendar.DeleteEvent(c.Request.Context(), day, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if !removed {
		abort(c, http.StatusNotFound, "event not found")
		return
	}
	c.Status(http.StatusNoContent)
}

func dayParam(c *gin.Context) (int, bool) {
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil || day < 1 || day > 31 {
		abort(c, http.StatusBadRequest, "day must be between 1 and 31")
		return 0, false
	}
	return day, true
}
