package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/sujalbistaa/mysite/internal/blog"
	"github.com/sujalbistaa/mysite/internal/models"
)

const (
	newPostHeading  = "New post"
	editPostHeading = "Edit post"
)

func postURL(id uint) string {
	return fmt.Sprintf("/post/%d/", id)
}

// PostList renders published posts.
func (e *Env) PostList(c *gin.Context) {
	posts, err := e.Blog.ListPublished(c.Request.Context())
	if err != nil {
		e.serverError(c, "fetching posts", err)
		return
	}
	c.HTML(http.StatusOK, "blog/post_list.html", gin.H{"Posts": posts})
}

// PostDraftList renders unpublished posts.
func (e *Env) PostDraftList(c *gin.Context) {
	posts, err := e.Blog.ListDrafts(c.Request.Context())
	if err != nil {
		e.serverError(c, "fetching drafts", err)
		return
	}
	c.HTML(http.StatusOK, "blog/post_draft_list.html", gin.H{"Posts": posts})
}

// PostDetail renders a post in any state. Moderators also see unapproved comments.
func (e *Env) PostDetail(c *gin.Context) {
	id, ok := e.pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	post, err := e.Blog.GetPost(ctx, id)
	if errors.Is(err, blog.ErrPostNotFound) {
		e.notFound(c)
		return
	}
	if err != nil {
		e.serverError(c, "fetching post", err)
		return
	}

	moderator := currentUser(c) != nil
	comments, err := e.Blog.Comments(ctx, post.ID, moderator)
	if err != nil {
		e.serverError(c, "fetching comments", err)
		return
	}

	c.HTML(http.StatusOK, "blog/post_detail.html", gin.H{
		"Post":        post,
		"Comments":    comments,
		"IsModerator": moderator,
	})
}

// PostNewForm shows an empty post form.
func (e *Env) PostNewForm(c *gin.Context) {
	c.HTML(http.StatusOK, "blog/post_edit.html", gin.H{"Heading": newPostHeading, "Action": "/post/new/"})
}

// PostNew creates a draft from the submitted form.
func (e *Env) PostNew(c *gin.Context) {
	var input blog.PostInput
	if err := c.ShouldBind(&input); err != nil {
		e.postFormError(c, newPostHeading, "/post/new/", input, err)
		return
	}

	post, err := e.Blog.CreatePost(c.Request.Context(), input, currentUser(c), e.now())
	if errors.Is(err, blog.ErrInvalidInput) {
		e.postFormError(c, newPostHeading, "/post/new/", input, err)
		return
	}
	if err != nil {
		e.serverError(c, "creating post", err)
		return
	}
	c.Redirect(http.StatusSeeOther, postURL(post.ID))
}

// PostEditForm shows the form prefilled with the post.
func (e *Env) PostEditForm(c *gin.Context) {
	id, ok := e.pathID(c)
	if !ok {
		return
	}
	post, err := e.Blog.GetPost(c.Request.Context(), id)
	if errors.Is(err, blog.ErrPostNotFound) {
		e.notFound(c)
		return
	}
	if err != nil {
		e.serverError(c, "fetching post", err)
		return
	}
	c.HTML(http.StatusOK, "blog/post_edit.html", gin.H{
		"Heading": editPostHeading,
		"Action":  fmt.Sprintf("/post/%d/edit/", post.ID),
		"Form":   blog.PostInput{Title: post.Title, Text: post.Text},
	})
}

// PostEdit saves the submitted form.
func (e *Env) PostEdit(c *gin.Context) {
	id, ok := e.pathID(c)
	if !ok {
		return
	}
	action := fmt.Sprintf("/post/%d/edit/", id)

	var input blog.PostInput
	if err := c.ShouldBind(&input); err != nil {
		e.postFormError(c, editPostHeading, action, input, err)
		return
	}

	post, err := e.Blog.UpdatePost(c.Request.Context(), id, input)
	switch {
	case errors.Is(err, blog.ErrPostNotFound):
		e.notFound(c)
	case errors.Is(err, blog.ErrInvalidInput):
		e.postFormError(c, editPostHeading, action, input, err)
	case err != nil:
		e.serverError(c, "updating post", err)
	default:
		c.Redirect(http.StatusSeeOther, postURL(post.ID))
	}
}

func (e *Env) postFormError(c *gin.Context, heading, action string, input blog.PostInput, err error) {
	c.HTML(http.StatusBadRequest, "blog/post_edit.html", gin.H{
		"Heading": heading,
		"Action":  action,
		"Form":    input,
		"Error":   "Both a title (at most 200 characters) and a text are required.",
	})
	_ = c.Error(err)
}

// PostPublish publishes the post and returns to it.
func (e *Env) PostPublish(c *gin.Context) {
	id, ok := e.pathID(c)
	if !ok {
		return
	}
	post, err := e.Blog.PublishPost(c.Request.Context(), id, e.now())
	if errors.Is(err, blog.ErrPostNotFound) {
		e.notFound(c)
		return
	}
	if err != nil {
		e.serverError(c, "publishing post", err)
		return
	}
	c.Redirect(http.StatusFound, postURL(post.ID))
}

// PostRemove deletes the post and its comments.
func (e *Env) PostRemove(c *gin.Context) {
	id, ok := e.pathID(c)
	if !ok {
		return
	}
	err := e.Blog.RemovePost(c.Request.Context(), id)
	if errors.Is(err, blog.ErrPostNotFound) {
		e.notFound(c)
		return
	}
	if err != nil {
		e.serverError(c, "removing post", err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// CommentForm shows the comment form for a post.
func (e *Env) CommentForm(c *gin.Context) {
	post, ok := e.commentTarget(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "blog/add_comment.html", gin.H{"Post": post})
}

// AddComment stores an unapproved comment.
func (e *Env) AddComment(c *gin.Context) {
	post, ok := e.commentTarget(c)
	if !ok {
		return
	}

	var input blog.CommentInput
	if err := c.ShouldBind(&input); err != nil {
		e.commentFormError(c, post, input, err)
		return
	}

	_, err := e.Blog.AddComment(c.Request.Context(), post.ID, input, e.now())
	switch {
	case err == nil:
		c.Redirect(http.StatusSeeOther, postURL(post.ID))
	case errors.Is(err, blog.ErrPostNotFound):
		e.notFound(c)
	case errors.Is(err, blog.ErrInvalidInput):
		e.commentFormError(c, post, input, err)
	default:
		e.serverError(c, "adding comment", err)
	}
}

func (e *Env) commentFormError(c *gin.Context, post *models.Post, input blog.CommentInput, err error) {
	_ = c.Error(err)
	c.HTML(http.StatusBadRequest, "blog/add_comment.html", gin.H{
		"Post":  post,
		"Form":  input,
		"Error": "Both your name and a comment are required.",
	})
}

func (e *Env) commentTarget(c *gin.Context) (*models.Post, bool) {
	id, ok := e.pathID(c)
	if !ok {
		return nil, false
	}
	post, err := e.Blog.GetPost(c.Request.Context(), id)
	if errors.Is(err, blog.ErrPostNotFound) {
		e.notFound(c)
		return nil, false
	}
	if err != nil {
		e.serverError(c, "fetching post", err)
		return nil, false
	}
	return post, true
}

// CommentApprove approves a comment and returns to its post.
func (e *Env) CommentApprove(c *gin.Context) {
	id, ok := e.pathID(c)
	if !ok {
		return
	}
	comment, err := e.Blog.ApproveComment(c.Request.Context(), id)
	if errors.Is(err, blog.ErrCommentNotFound) {
		e.notFound(c)
		return
	}
	if err != nil {
		e.serverError(c, "approving comment", err)
		return
	}
	c.Redirect(http.StatusFound, postURL(comment.PostID))
}

// CommentRemove deletes a comment and returns to its post.
func (e *Env) CommentRemove(c *gin.Context) {
	id, ok := e.pathID(c)
	if !ok {
		return
	}
	comment, err := e.Blog.RemoveComment(c.Request.Context(), id)
	if errors.Is(err, blog.ErrCommentNotFound) {
		e.notFound(c)
		return
	}
	if err != nil {
		e.serverError(c, "removing comment", err)
		return
	}
	c.Redirect(http.StatusFound, postURL(comment.PostID))
}
