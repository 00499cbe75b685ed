package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/sujalbistaa/mysite/internal/polls"
	"github.com/sujalbistaa/mysite/internal/ws"
)

type voteForm struct {
	Choice uint `form:"choice" binding:"required"`
}

// PollsIndex lists the latest visible questions.
func (e *Env) PollsIndex(c *gin.Context) {
	questions, err := e.Polls.ListVisible(c.Request.Context(), e.now(), e.PollsPageSize)
	if err != nil {
		e.serverError(c, "fetching questions", err)
		return
	}
	c.HTML(http.StatusOK, "polls/index.html", gin.H{"LatestQuestionList": questions})
}

// PollsDetail shows a published question with its voting form.
func (e *Env) PollsDetail(c *gin.Context) {
	e.renderQuestion(c, "polls/detail.html")
}

// PollsResults shows a published question's tallies.
func (e *Env) PollsResults(c *gin.Context) {
	e.renderQuestion(c, "polls/results.html")
}

func (e *Env) renderQuestion(c *gin.Context, page string) {
	id, ok := e.pathID(c)
	if !ok {
		return
	}
	question, err := e.Polls.GetVisible(c.Request.Context(), id, e.now())
	if errors.Is(err, polls.ErrQuestionNotFound) {
		e.notFound(c)
		return
	}
	if err != nil {
		e.serverError(c, "fetching question", err)
		return
	}
	c.HTML(http.StatusOK, page, gin.H{"Question": question})
}

// PollsVote records a vote and redirects to the results, or re-renders the
// form when no valid choice was selected.
func (e *Env) PollsVote(c *gin.Context) {
	id, ok := e.pathID(c)
	if !ok {
		return
	}
	now := e.now()

	var form voteForm
	if err := c.ShouldBind(&form); err != nil {
		e.voteError(c, id, err)
		return
	}

	_, err := e.Polls.Vote(c.Request.Context(), id, form.Choice, now)
	switch {
	case err == nil:
		c.Redirect(http.StatusSeeOther, fmt.Sprintf("/polls/%d/results/", id))
	case errors.Is(err, polls.ErrQuestionNotFound):
		e.notFound(c)
	case errors.Is(err, polls.ErrChoiceNotFound):
		e.voteError(c, id, err)
	default:
		e.serverError(c, "recording vote", err)
	}
}

func (e *Env) voteError(c *gin.Context, id uint, cause error) {
	question, err := e.Polls.GetVisible(c.Request.Context(), id, e.now())
	if errors.Is(err, polls.ErrQuestionNotFound) {
		e.notFound(c)
		return
	}
	if err != nil {
		e.serverError(c, "fetching question", err)
		return
	}
	_ = c.Error(cause)
	c.HTML(http.StatusBadRequest, "polls/detail.html", gin.H{
		"Question":     question,
		"ErrorMessage": "You didn't select a choice.",
	})
}

// PollsLive streams vote tallies over a WebSocket.
func (e *Env) PollsLive(c *gin.Context) {
	ws.ServeWs(e.Hub, c.Writer, c.Request)
}
