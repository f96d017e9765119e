package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackTicketMutation(t *testing.T) {
	before := testutil.ToFloat64(ticketMutations.WithLabelValues("create", "error"))

	TrackTicketMutation("create", errors.New("boom"))

	assert.Equal(t, before+1, testutil.ToFloat64(ticketMutations.WithLabelValues("create", "error")))
}

func TestTrackSweep(t *testing.T) {
	before := testutil.ToFloat64(ticketsExpired)

	TrackSweep(3, 20*time.Millisecond)

	assert.Equal(t, before+3, testutil.ToFloat64(ticketsExpired))
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinMiddleware())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, testutil.CollectAndCount(httpDuration, "http_request_duration_seconds"))
}
