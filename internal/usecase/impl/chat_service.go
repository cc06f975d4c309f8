package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	deliverycontext "foodbridge/internal/delivery/context"
	"foodbridge/internal/domain/entity"
	domainerrors "foodbridge/internal/domain/errors"
	"foodbridge/internal/domain/repository"
	"foodbridge/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// chatService implements the ChatUsecase interface.
type chatService struct {
	chatRepo    repository.ChatRepository
	profileRepo repository.ProfileRepository
	logger      *slog.Logger
	now         func() time.Time
}

// ChatServiceParams holds dependencies for ChatService, injected by Fx.
type ChatServiceParams struct {
	fx.In

	ChatRepo    repository.ChatRepository
	ProfileRepo repository.ProfileRepository
	Logger      *slog.Logger
}

// NewChatService creates a new chat service instance.
func NewChatService(params ChatServiceParams) usecase.ChatUsecase {
	return &chatService{
		chatRepo:    params.ChatRepo,
		profileRepo: params.ProfileRepo,
		logger:      params.Logger,
		now:         utcNow,
	}
}

func (srv *chatService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

type threadPair struct {
	restaurantID uuid.UUID
	ngoID        uuid.UUID
}

// ListThreads returns the actor's threads, most recent activity first. Should a pair ever
// hold more than one thread, the most recently active one is kept and the rest are deleted.
func (srv *chatService) ListThreads(ctx context.Context, actor entity.Actor) ([]*usecase.ChatDetail, error) {
	threads, err := srv.chatRepo.ListThreadsByAccount(ctx, actor.Role(), actor.AccountID())
	if err != nil {
		return nil, errors.Wrap(err, "failed to list chat threads")
	}

	seen := make(map[threadPair]struct{}, len(threads))
	unique := make([]*entity.ChatThread, 0, len(threads))
	var duplicates []uuid.UUID
	for _, thread := range threads {
		pair := threadPair{restaurantID: thread.RestaurantID, ngoID: thread.NGOID}
		if _, ok := seen[pair]; ok {
			duplicates = append(duplicates, thread.ID)

			continue
		}
		seen[pair] = struct{}{}
		unique = append(unique, thread)
	}

	if len(duplicates) > 0 {
		if err := srv.chatRepo.DeleteThreads(ctx, duplicates); err != nil {
			return nil, errors.Wrap(err, "failed to delete duplicate chat threads")
		}
		srv.log(ctx).Warn("Deleted duplicate chat threads", slog.Int("count", len(duplicates)))
	}

	return srv.resolve(ctx, unique)
}

// GetThread returns one thread with all its messages.
func (srv *chatService) GetThread(ctx context.Context, actor entity.Actor, threadID uuid.UUID) (*usecase.ChatDetail, error) {
	thread, err := srv.participantThread(ctx, actor, threadID)
	if err != nil {
		return nil, err
	}

	return srv.resolveOne(ctx, thread)
}

// AppendMessage adds the actor's message to the end of the thread and returns the updated thread.
func (srv *chatService) AppendMessage(ctx context.Context, actor entity.Actor, threadID uuid.UUID, text string) (*usecase.ChatDetail, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("message cannot be empty")
	}

	if _, err := srv.participantThread(ctx, actor, threadID); err != nil {
		return nil, err
	}

	msg := &entity.ChatMessage{
		SenderAccountID: actor.AccountID(),
		SenderRole:      actor.Role(),
		Text:            text,
		CreatedAt:       srv.now(),
	}
	err := srv.chatRepo.AppendMessage(ctx, threadID, msg)
	if errors.Is(err, repository.ErrChatNotFound) {
		return nil, domainerrors.ErrChatNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to append chat message")
	}

	thread, err := srv.participantThread(ctx, actor, threadID)
	if err != nil {
		return nil, err
	}

	return srv.resolveOne(ctx, thread)
}

// MarkRead stamps the actor's side of the thread as read now.
func (srv *chatService) MarkRead(ctx context.Context, actor entity.Actor, threadID uuid.UUID) error {
	if _, err := srv.participantThread(ctx, actor, threadID); err != nil {
		return err
	}

	err := srv.chatRepo.MarkRead(ctx, threadID, actor.Role(), srv.now())
	if errors.Is(err, repository.ErrChatNotFound) {
		return domainerrors.ErrChatNotFound
	}
	if err != nil {
		return errors.Wrap(err, "failed to mark chat as read")
	}

	return nil
}

func (srv *chatService) participantThread(ctx context.Context, actor entity.Actor, threadID uuid.UUID) (*entity.ChatThread, error) {
	thread, err := srv.chatRepo.FindThreadByID(ctx, threadID)
	if errors.Is(err, repository.ErrChatNotFound) {
		return nil, domainerrors.ErrChatNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find chat thread")
	}

	if !actor.Participates(thread) {
		return nil, domainerrors.ErrNotParticipant
	}

	return thread, nil
}

func (srv *chatService) resolveOne(ctx context.Context, thread *entity.ChatThread) (*usecase.ChatDetail, error) {
	details, err := srv.resolve(ctx, []*entity.ChatThread{thread})
	if err != nil {
		return nil, err
	}

	return details[0], nil
}

func (srv *chatService) resolve(ctx context.Context, threads []*entity.ChatThread) ([]*usecase.ChatDetail, error) {
	restaurants, err := srv.profileRepo.FindRestaurantsByIDs(ctx, collectIDs(threads, func(t *entity.ChatThread) *uuid.UUID {
		return &t.RestaurantID
	}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve chat restaurants")
	}

	ngos, err := srv.profileRepo.FindNGOsByIDs(ctx, collectIDs(threads, func(t *entity.ChatThread) *uuid.UUID {
		return &t.NGOID
	}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve chat ngos")
	}

	details := make([]*usecase.ChatDetail, 0, len(threads))
	for _, thread := range threads {
		details = append(details, &usecase.ChatDetail{
			Thread:     thread,
			Restaurant: restaurants[thread.RestaurantID],
			NGO:        ngos[thread.NGOID],
		})
	}

	return details, nil
}
