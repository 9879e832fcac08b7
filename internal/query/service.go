package query

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"userwatch/internal/model"
	"userwatch/internal/repository"
)

// MatchKind labels how a username search hit relates to the user.
type MatchKind string

const (
	MatchCurrent    MatchKind = "current"
	MatchHistorical MatchKind = "historical"
)

// UsernameMatch is one user returned by UsernameSearch. MatchedUsername is
// the value that hit: the current username, or the past one from the ledger.
type UsernameMatch struct {
	User            model.User
	Kind            MatchKind
	MatchedUsername string
}

// Statistics is a point-in-time count over the store, computed per call.
type Statistics struct {
	Users           int64
	Messages        int64
	UsernameChanges int64
	Chats           int64
}

// Service is the read-only intelligence surface. It never writes and never
// talks to the remote API.
type Service struct {
	users     *repository.UserRepository
	histories *repository.HistoryRepository
	messages  *repository.MessageRepository
	chats     *repository.ChatRepository
}

func NewService(db *gorm.DB) *Service {
	return &Service{
		users:     repository.NewUserRepository(db),
		histories: repository.NewHistoryRepository(db),
		messages:  repository.NewMessageRepository(db),
		chats:     repository.NewChatRepository(db),
	}
}

// UsernameSearch resolves a username to users who hold it now or held it in
// the past. Each user appears once; a current hold wins over a historical
// one. The term is matched case-insensitively, with any leading @ stripped.
func (s *Service) UsernameSearch(ctx context.Context, term string) ([]UsernameMatch, error) {
	term = strings.TrimPrefix(strings.TrimSpace(term), "@")
	if term == "" {
		return nil, nil
	}

	current, err := s.users.FindByCurrentUsername(ctx, term)
	if err != nil {
		return nil, err
	}
	matches := make([]UsernameMatch, 0, len(current))
	seen := make(map[int64]bool, len(current))
	for _, u := range current {
		matches = append(matches, UsernameMatch{
			User:            u,
			Kind:            MatchCurrent,
			MatchedUsername: u.CurrentUsername,
		})
		seen[u.UserID] = true
	}

	past, err := s.histories.FindPastHolders(ctx, term)
	if err != nil {
		return nil, err
	}
	for _, entry := range past {
		if seen[entry.UserID] {
			continue
		}
		seen[entry.UserID] = true
		user, err := s.users.FindByID(ctx, entry.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		matches = append(matches, UsernameMatch{
			User:            *user,
			Kind:            MatchHistorical,
			MatchedUsername: entry.Username,
		})
	}
	return matches, nil
}

// UserProfile returns a user, or nil when the ID was never observed.
func (s *Service) UserProfile(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return user, err
}

// UserHistory returns the username ledger for one user, newest change first.
func (s *Service) UserHistory(ctx context.Context, userID int64) ([]model.UsernameHistory, error) {
	return s.histories.ListByUser(ctx, userID)
}

// UserMessageHistory returns a lazy walk over the user's messages in send
// order. Each call starts a fresh walk over the store as it is now.
func (s *Service) UserMessageHistory(userID int64) *MessageCursor {
	return newMessageCursor(s.messages, userID)
}

// KeywordSearch finds messages containing the term, oldest first.
// limit <= 0 means no limit.
func (s *Service) KeywordSearch(ctx context.Context, term string, limit int) ([]model.Message, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	return s.messages.SearchText(ctx, term, limit)
}

// AllUsers lists every observed account, used by bulk export.
func (s *Service) AllUsers(ctx context.Context) ([]model.User, error) {
	return s.users.ListAll(ctx)
}

// LiveStatistics counts the store at the moment of the call.
func (s *Service) LiveStatistics(ctx context.Context) (Statistics, error) {
	var stats Statistics
	var err error
	if stats.Users, err = s.users.Count(ctx); err != nil {
		return stats, err
	}
	if stats.Messages, err = s.messages.Count(ctx); err != nil {
		return stats, err
	}
	if stats.UsernameChanges, err = s.histories.Count(ctx); err != nil {
		return stats, err
	}
	if stats.Chats, err = s.chats.Count(ctx); err != nil {
		return stats, err
	}
	return stats, nil
}
