package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/causewayhq/causeway/internal/auth"
	"github.com/causewayhq/causeway/internal/domain"
	"github.com/causewayhq/causeway/internal/log"
	"github.com/causewayhq/causeway/internal/metrics"
)

type postRequest struct {
	Title   string   `json:"title"`
	Slug    string   `json:"slug,omitempty"`
	Body    string   `json:"body"`
	Excerpt string   `json:"excerpt,omitempty"`
	Tags    []string `json:"tags,omitempty"`
	Status  string   `json:"status,omitempty"`
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	status := domain.PostStatus(r.URL.Query().Get("status"))
	if status != "" && !status.IsValid() {
		RespondError(w, r, http.StatusBadRequest, ErrValidation, "unknown status filter")
		return
	}

	limit, offset := pageParams(r)
	posts, total, err := s.store.ListPosts(r.Context(), status, limit, offset)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, listResponse[domain.Post]{
		Items: posts, Total: total, Limit: limit, Offset: offset,
	})
}

// handleCreatePost stores a new draft authored by the caller. Publication is
// a separate step.
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, _ := auth.PrincipalFromContext(r.Context())
	now := time.Now().UTC()
	post := &domain.Post{
		ID:        domain.NewID(),
		Title:     strings.TrimSpace(req.Title),
		Slug:      req.Slug,
		Body:      req.Body,
		Excerpt:   req.Excerpt,
		AuthorID:  p.UserID,
		Status:    domain.PostDraft,
		Tags:      req.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := post.Validate(); err != nil {
		RespondError(w, r, http.StatusBadRequest, ErrValidation, err.Error())
		return
	}

	if err := s.store.CreatePost(r.Context(), post); err != nil {
		respondStoreError(w, r, err)
		return
	}

	s.invalidateStats(r.Context())
	logger := log.WithComponentFromContext(r.Context(), "api")
	logger.Info().
		Str("event", "post.created").
		Str(log.FieldPostID, post.ID).
		Str(log.FieldSlug, post.Slug).
		Msg("post created")

	writeJSON(w, r, http.StatusCreated, post)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.store.GetPostByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, post)
}

// handleUpdatePost replaces the content fields. An optional status value
// archives or restores the post on the same PUT; publishing has its own
// endpoint so published_at is stamped exactly once.
func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := s.store.GetPostByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	var next domain.PostStatus
	if req.Status != "" {
		next = domain.PostStatus(req.Status)
		if !next.IsValid() {
			RespondError(w, r, http.StatusBadRequest, ErrValidation, "unknown status")
			return
		}
		if next == domain.PostPublished && post.Status != domain.PostPublished {
			RespondError(w, r, http.StatusBadRequest, ErrValidation,
				"use the publish endpoint to publish a post")
			return
		}
		if next != post.Status && !post.Status.CanTransition(next) {
			RespondError(w, r, http.StatusConflict, ErrConflict,
				"post cannot move from "+string(post.Status)+" to "+string(next))
			return
		}
	}

	post.Title = strings.TrimSpace(req.Title)
	post.Body = req.Body
	post.Excerpt = req.Excerpt
	post.Tags = req.Tags
	post.UpdatedAt = time.Now().UTC()

	if err := post.Validate(); err != nil {
		RespondError(w, r, http.StatusBadRequest, ErrValidation, err.Error())
		return
	}
	if err := s.store.UpdatePost(r.Context(), post); err != nil {
		respondStoreError(w, r, err)
		return
	}

	if next != "" && next != post.Status {
		moved, err := s.store.UpdatePostStatus(r.Context(), post.ID, next)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		post = moved
	}

	s.invalidateStats(r.Context())
	writeJSON(w, r, http.StatusOK, post)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeletePost(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStoreError(w, r, err)
		return
	}
	s.invalidateStats(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePublishPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.store.PublishPost(r.Context(), chi.URLParam(r, "id"), time.Now().UTC())
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	metrics.IncPostPublished()
	s.invalidateStats(r.Context())
	log.WithComponentFromContext(r.Context(), "api").Info().
		Str("event", "post.published").
		Str(log.FieldPostID, post.ID).
		Str(log.FieldSlug, post.Slug).
		Msg("post published")

	writeJSON(w, r, http.StatusOK, post)
}
