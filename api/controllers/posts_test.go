package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/elcilc/clicle/internal/posts"
	pkgerrors "github.com/elcilc/clicle/pkg/errors"
)

type testPostsService struct {
	createFn    func(ctx context.Context, userID uuid.UUID, title, body string) (*posts.PostDTO, error)
	listFn      func(ctx context.Context, params posts.ListParams) (*posts.ListResult, error)
	myFn        func(ctx context.Context, userID uuid.UUID, params posts.ListParams) (*posts.ListResult, error)
	modifyFn    func(ctx context.Context, userID, postID uuid.UUID, title, body string) (*posts.PostDTO, error)
	deleteFn    func(ctx context.Context, userID, postID uuid.UUID) error
	commentFn   func(ctx context.Context, userID, postID uuid.UUID, comment string) error
	commentsFn  func(ctx context.Context, postID uuid.UUID, params posts.ListParams) (*posts.CommentListResult, error)
	likeFn      func(ctx context.Context, userID, postID uuid.UUID) error
	likeCountFn func(ctx context.Context, postID uuid.UUID) (int64, error)
}

func (s *testPostsService) Create(ctx context.Context, userID uuid.UUID, title, body string) (*posts.PostDTO, error) {
	if s.createFn != nil {
		return s.createFn(ctx, userID, title, body)
	}
	return &posts.PostDTO{}, nil
}

func (s *testPostsService) List(ctx context.Context, params posts.ListParams) (*posts.ListResult, error) {
	if s.listFn != nil {
		return s.listFn(ctx, params)
	}
	return &posts.ListResult{}, nil
}

func (s *testPostsService) My(ctx context.Context, userID uuid.UUID, params posts.ListParams) (*posts.ListResult, error) {
	if s.myFn != nil {
		return s.myFn(ctx, userID, params)
	}
	return &posts.ListResult{}, nil
}

func (s *testPostsService) Modify(ctx context.Context, userID, postID uuid.UUID, title, body string) (*posts.PostDTO, error) {
	if s.modifyFn != nil {
		return s.modifyFn(ctx, userID, postID, title, body)
	}
	return &posts.PostDTO{}, nil
}

func (s *testPostsService) Delete(ctx context.Context, userID, postID uuid.UUID) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, userID, postID)
	}
	return nil
}

func (s *testPostsService) Comment(ctx context.Context, userID, postID uuid.UUID, comment string) error {
	if s.commentFn != nil {
		return s.commentFn(ctx, userID, postID, comment)
	}
	return nil
}

func (s *testPostsService) Comments(ctx context.Context, postID uuid.UUID, params posts.ListParams) (*posts.CommentListResult, error) {
	if s.commentsFn != nil {
		return s.commentsFn(ctx, postID, params)
	}
	return &posts.CommentListResult{}, nil
}

func (s *testPostsService) Like(ctx context.Context, userID, postID uuid.UUID) error {
	if s.likeFn != nil {
		return s.likeFn(ctx, userID, postID)
	}
	return nil
}

func (s *testPostsService) LikeCount(ctx context.Context, postID uuid.UUID) (int64, error) {
	if s.likeCountFn != nil {
		return s.likeCountFn(ctx, postID)
	}
	return 0, nil
}

func TestCreatePostSuccess(t *testing.T) {
	userID := uuid.New()
	svc := &testPostsService{
		createFn: func(ctx context.Context, uid uuid.UUID, title, body string) (*posts.PostDTO, error) {
			if uid != userID {
				t.Fatalf("unexpected user %s", uid)
			}
			if title != "hello" || body != "world" {
				t.Fatalf("unexpected payload %q %q", title, body)
			}
			return &posts.PostDTO{ID: uuid.New(), UserID: uid, Title: title, Body: body}, nil
		},
	}

	req := authedRequest(http.MethodPost, "/api/v1/posts", userID, strings.NewReader(`{"title":"hello","body":"world"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	CreatePost(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	var envelope struct {
		Data posts.PostDTO `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Title != "hello" {
		t.Fatalf("unexpected title %q", envelope.Data.Title)
	}
}

func TestCreatePostRejectsMissingTitle(t *testing.T) {
	req := authedRequest(http.MethodPost, "/api/v1/posts", uuid.New(), strings.NewReader(`{"body":"world"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	CreatePost(&testPostsService{}, testControllerLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCreatePostRequiresUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", strings.NewReader(`{"title":"hello"}`))
	resp := httptest.NewRecorder()
	CreatePost(&testPostsService{}, testControllerLogger())(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestModifyPostForbiddenPassesThrough(t *testing.T) {
	postID := uuid.New()
	svc := &testPostsService{
		modifyFn: func(ctx context.Context, uid, pid uuid.UUID, title, body string) (*posts.PostDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not the post author")
		},
	}

	req := authedRequest(http.MethodPut, "/api/v1/posts/"+postID.String(), uuid.New(), strings.NewReader(`{"title":"new","body":""}`))
	req = addRouteParam(req, "postId", postID.String())
	resp := httptest.NewRecorder()
	ModifyPost(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestDeletePostSuccess(t *testing.T) {
	userID := uuid.New()
	postID := uuid.New()
	called := false
	svc := &testPostsService{
		deleteFn: func(ctx context.Context, uid, pid uuid.UUID) error {
			called = true
			if uid != userID || pid != postID {
				t.Fatalf("unexpected args %s %s", uid, pid)
			}
			return nil
		},
	}

	req := authedRequest(http.MethodDelete, "/api/v1/posts/"+postID.String(), userID, nil)
	req = addRouteParam(req, "postId", postID.String())
	resp := httptest.NewRecorder()
	DeletePost(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if !called {
		t.Fatal("expected service called")
	}
}

func TestDeletePostInvalidID(t *testing.T) {
	req := authedRequest(http.MethodDelete, "/api/v1/posts/invalid", uuid.New(), nil)
	req = addRouteParam(req, "postId", "invalid")
	resp := httptest.NewRecorder()
	DeletePost(&testPostsService{}, testControllerLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCreateCommentSuccess(t *testing.T) {
	postID := uuid.New()
	var gotComment string
	svc := &testPostsService{
		commentFn: func(ctx context.Context, uid, pid uuid.UUID, comment string) error {
			gotComment = comment
			return nil
		},
	}

	req := authedRequest(http.MethodPost, "/api/v1/posts/"+postID.String()+"/comments", uuid.New(), strings.NewReader(`{"comment":"nice post"}`))
	req = addRouteParam(req, "postId", postID.String())
	resp := httptest.NewRecorder()
	CreateComment(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if gotComment != "nice post" {
		t.Fatalf("unexpected comment %q", gotComment)
	}
}

func TestCreateCommentUnknownPost(t *testing.T) {
	postID := uuid.New()
	svc := &testPostsService{
		commentFn: func(ctx context.Context, uid, pid uuid.UUID, comment string) error {
			return pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
		},
	}

	req := authedRequest(http.MethodPost, "/api/v1/posts/"+postID.String()+"/comments", uuid.New(), strings.NewReader(`{"comment":"hi"}`))
	req = addRouteParam(req, "postId", postID.String())
	resp := httptest.NewRecorder()
	CreateComment(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestLikePostConflictPassesThrough(t *testing.T) {
	postID := uuid.New()
	svc := &testPostsService{
		likeFn: func(ctx context.Context, uid, pid uuid.UUID) error {
			return pkgerrors.New(pkgerrors.CodeConflict, "post already liked")
		},
	}

	req := authedRequest(http.MethodPost, "/api/v1/posts/"+postID.String()+"/likes", uuid.New(), nil)
	req = addRouteParam(req, "postId", postID.String())
	resp := httptest.NewRecorder()
	LikePost(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestCountPostLikes(t *testing.T) {
	postID := uuid.New()
	svc := &testPostsService{
		likeCountFn: func(ctx context.Context, pid uuid.UUID) (int64, error) {
			if pid != postID {
				t.Fatalf("unexpected post %s", pid)
			}
			return 7, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts/"+postID.String()+"/likes", nil)
	req = addRouteParam(req, "postId", postID.String())
	resp := httptest.NewRecorder()
	CountPostLikes(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data map[string]float64 `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data["count"] != 7 {
		t.Fatalf("expected count=7 got %v", envelope.Data["count"])
	}
}

func TestListMyPostsForwardsUser(t *testing.T) {
	userID := uuid.New()
	var gotUser uuid.UUID
	svc := &testPostsService{
		myFn: func(ctx context.Context, uid uuid.UUID, params posts.ListParams) (*posts.ListResult, error) {
			gotUser = uid
			return &posts.ListResult{}, nil
		},
	}

	req := authedRequest(http.MethodGet, "/api/v1/posts/my", userID, nil)
	resp := httptest.NewRecorder()
	ListMyPosts(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if gotUser != userID {
		t.Fatalf("expected user %s got %s", userID, gotUser)
	}
}

func TestListPostsRejectsBadLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts?limit=-1", nil)
	resp := httptest.NewRecorder()
	ListPosts(&testPostsService{}, testControllerLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
