package posts

import (
	"context"
	"errors"
	"strings"

	"github.com/elcilc/clicle/pkg/db"
	"github.com/elcilc/clicle/pkg/db/models"
	"github.com/elcilc/clicle/pkg/enums"
	pkgerrors "github.com/elcilc/clicle/pkg/errors"
	"github.com/elcilc/clicle/pkg/logger"
	"github.com/elcilc/clicle/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// alarmSender is the slice of the alarms service the posts domain needs.
type alarmSender interface {
	Send(ctx context.Context, alarmType enums.AlarmType, args models.AlarmArgs, recipient *models.User) error
}

// userFinder loads recipients for alarm delivery.
type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service defines board operations: posts, comments, and likes.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, title, body string) (*PostDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	My(ctx context.Context, userID uuid.UUID, params ListParams) (*ListResult, error)
	Modify(ctx context.Context, userID, postID uuid.UUID, title, body string) (*PostDTO, error)
	Delete(ctx context.Context, userID, postID uuid.UUID) error

	Comment(ctx context.Context, userID, postID uuid.UUID, comment string) error
	Comments(ctx context.Context, postID uuid.UUID, params ListParams) (*CommentListResult, error)

	Like(ctx context.Context, userID, postID uuid.UUID) error
	LikeCount(ctx context.Context, postID uuid.UUID) (int64, error)
}

type service struct {
	repo   Repository
	users  userFinder
	alarms alarmSender
	logg   *logger.Logger
}

// ListParams configures cursor pagination for post/comment listings.
type ListParams struct {
	Limit  int
	Cursor string
}

// ListResult wraps a page of posts and the cursor for the next page.
type ListResult struct {
	Items  []PostDTO `json:"items"`
	Cursor string    `json:"cursor"`
}

// CommentListResult wraps a page of comments and the cursor for the next page.
type CommentListResult struct {
	Items  []CommentDTO `json:"items"`
	Cursor string       `json:"cursor"`
}

// NewService wires board dependencies. The alarm sender is best-effort; its
// failures never fail a board action.
func NewService(repo Repository, users userFinder, alarms alarmSender, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "posts repository required")
	}
	if users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if alarms == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "alarm sender required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: repo, users: users, alarms: alarms, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, title, body string) (*PostDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if strings.TrimSpace(title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}

	post := &models.Post{UserID: userID, Title: title, Body: body}
	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create post")
	}
	return PostFromModel(post), nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	return s.listPosts(ctx, uuid.Nil, params)
}

func (s *service) My(ctx context.Context, userID uuid.UUID, params ListParams) (*ListResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	return s.listPosts(ctx, userID, params)
}

func (s *service) listPosts(ctx context.Context, userID uuid.UUID, params ListParams) (*ListResult, error) {
	query := listPostsParams{
		UserID: userID,
		Limit:  pagination.LimitWithBuffer(params.Limit),
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.ListPosts(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list posts")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: postsFromModels(rows), Cursor: cursor}, nil
}

func (s *service) Modify(ctx context.Context, userID, postID uuid.UUID, title, body string) (*PostDTO, error) {
	post, err := s.ownedPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}

	post.Title = title
	post.Body = body
	if err := s.repo.UpdatePost(ctx, post); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update post")
	}
	return PostFromModel(post), nil
}

func (s *service) Delete(ctx context.Context, userID, postID uuid.UUID) error {
	if _, err := s.ownedPost(ctx, userID, postID); err != nil {
		return err
	}
	if err := s.repo.DeletePost(ctx, postID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete post")
	}
	return nil
}

func (s *service) Comment(ctx context.Context, userID, postID uuid.UUID, comment string) error {
	if strings.TrimSpace(comment) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "comment required")
	}

	post, err := s.findPost(ctx, postID)
	if err != nil {
		return err
	}

	record := &models.Comment{PostID: postID, UserID: userID, Comment: comment}
	if err := s.repo.CreateComment(ctx, record); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create comment")
	}

	s.notifyOwner(ctx, enums.AlarmTypeNewCommentOnPost, post, userID)
	return nil
}

func (s *service) Comments(ctx context.Context, postID uuid.UUID, params ListParams) (*CommentListResult, error) {
	if _, err := s.findPost(ctx, postID); err != nil {
		return nil, err
	}

	query := listCommentsParams{
		PostID: postID,
		Limit:  pagination.LimitWithBuffer(params.Limit),
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.ListComments(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list comments")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &CommentListResult{Items: commentsFromModels(rows), Cursor: cursor}, nil
}

func (s *service) Like(ctx context.Context, userID, postID uuid.UUID) error {
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return err
	}

	like := &models.PostLike{PostID: postID, UserID: userID}
	if err := s.repo.CreateLike(ctx, like); err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.New(pkgerrors.CodeConflict, "post already liked")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create like")
	}

	s.notifyOwner(ctx, enums.AlarmTypeNewLikeOnPost, post, userID)
	return nil
}

func (s *service) LikeCount(ctx context.Context, postID uuid.UUID) (int64, error) {
	if _, err := s.findPost(ctx, postID); err != nil {
		return 0, err
	}
	count, err := s.repo.CountLikes(ctx, postID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count likes")
	}
	return count, nil
}

func (s *service) findPost(ctx context.Context, postID uuid.UUID) (*models.Post, error) {
	if postID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "post id required")
	}
	post, err := s.repo.FindPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find post")
	}
	return post, nil
}

func (s *service) ownedPost(ctx context.Context, userID, postID uuid.UUID) (*models.Post, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not the post author")
	}
	return post, nil
}

// notifyOwner fires the delivery engine for the post owner. Self-actions are
// skipped and delivery failures are logged, never surfaced.
func (s *service) notifyOwner(ctx context.Context, alarmType enums.AlarmType, post *models.Post, actorID uuid.UUID) {
	if post.UserID == actorID {
		return
	}

	owner, err := s.users.FindByID(ctx, post.UserID)
	if err != nil {
		s.logg.Error(ctx, "loading alarm recipient", err)
		return
	}

	args := models.AlarmArgs{FromUserID: actorID, TargetID: post.ID}
	if err := s.alarms.Send(ctx, alarmType, args, owner); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "post_id", post.ID.String()), "alarm delivery failed", err)
	}
}
