package http

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sujalbistaa/mysite/internal/accounts"
	"github.com/sujalbistaa/mysite/internal/blog"
	"github.com/sujalbistaa/mysite/internal/polls"
	"github.com/sujalbistaa/mysite/internal/ws"
)

// Env carries the services every handler needs.
type Env struct {
	Blog     *blog.Service
	Polls    *polls.Service
	Accounts *accounts.Service
	Hub      *ws.Hub

	// Now is the clock handed to every time-dependent service call.
	Now func() time.Time
	// PollsPageSize caps the polls index; zero or less shows every question.
	PollsPageSize int
}

func (e *Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// pathID parses the :id parameter. Anything but a positive integer is a 404,
// the same as a URL that matches no route.
func (e *Env) pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		e.notFound(c)
		return 0, false
	}
	return uint(id), true
}

func (e *Env) notFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "error.html", gin.H{
		"Code":    http.StatusNotFound,
		"Title":   "Page not found",
		"Message": "The page you requested does not exist.",
	})
}

func (e *Env) serverError(c *gin.Context, what string, err error) {
	log.Printf("Error %s: %v", what, err)
	_ = c.Error(err)
	c.HTML(http.StatusInternalServerError, "error.html", gin.H{
		"Code":    http.StatusInternalServerError,
		"Title":   "Server error",
		"Message": "Something went wrong. Please try again later.",
	})
}
