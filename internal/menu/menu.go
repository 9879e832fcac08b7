package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"userwatch/internal/export"
	"userwatch/internal/model"
	"userwatch/internal/query"
	"userwatch/internal/service"
	"userwatch/internal/telegram"
)

const recentMessageLimit = 10

// Menu is the interactive console frontend. It only reads from the query
// surface, triggers exports and on-demand chat lookups; ingestion runs
// independently in the background.
type Menu struct {
	queries  *query.Service
	exporter *export.Exporter
	chats    *service.ChatDirectory
	client   *telegram.Client

	in  *bufio.Scanner
	out io.Writer
}

func New(queries *query.Service, exporter *export.Exporter, chats *service.ChatDirectory, client *telegram.Client, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		queries:  queries,
		exporter: exporter,
		chats:    chats,
		client:   client,
		in:       bufio.NewScanner(in),
		out:      out,
	}
}

// Run loops over the menu until the user exits, input ends, or ctx is
// cancelled.
func (m *Menu) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		m.printMenu()
		choice, ok := m.prompt("select option")
		if !ok {
			return nil
		}
		var err error
		switch choice {
		case "1":
			err = m.userLookup(ctx)
		case "2":
			err = m.usernameSearch(ctx)
		case "3":
			err = m.messageHistory(ctx)
		case "4":
			err = m.keywordSearch(ctx)
		case "5":
			err = m.statistics(ctx)
		case "6":
			err = m.exportUser(ctx)
		case "7":
			err = m.chatLookup(ctx)
		case "8":
			err = m.memberStatus(ctx)
		case "9":
			m.botInfo()
		case "0", "exit", "q":
			return nil
		default:
			fmt.Fprintln(m.out, "unknown option")
		}
		if err != nil {
			fmt.Fprintf(m.out, "error: %v\n", err)
		}
	}
	return ctx.Err()
}

func (m *Menu) printMenu() {
	fmt.Fprint(m.out, `
userwatch
  [1] user lookup (profile + history)
  [2] username search (current + historical)
  [3] user message history
  [4] keyword search
  [5] live statistics
  [6] export user dossier
  [7] chat lookup
  [8] member status
  [9] bot info
  [0] exit
`)
}

func (m *Menu) prompt(label string) (string, bool) {
	fmt.Fprintf(m.out, "%s> ", label)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) promptID(label string) (int64, bool) {
	raw, ok := m.prompt(label)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		fmt.Fprintln(m.out, "invalid id")
		return 0, false
	}
	return id, true
}

func (m *Menu) userLookup(ctx context.Context) error {
	userID, ok := m.promptID("user id")
	if !ok {
		return nil
	}
	user, err := m.queries.UserProfile(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		fmt.Fprintln(m.out, "user never observed")
		return nil
	}
	fmt.Fprintf(m.out, "%d  %s %s  @%s  bot=%v  lang=%s\n",
		user.UserID, user.FirstName, user.LastName, user.CurrentUsername, user.IsBot, user.LanguageCode)
	fmt.Fprintf(m.out, "first seen %s, last seen %s\n",
		user.FirstSeen.Format("2006-01-02 15:04"), user.LastSeen.Format("2006-01-02 15:04"))

	history, err := m.queries.UserHistory(ctx, userID)
	if err != nil {
		return err
	}
	for _, h := range history {
		name := h.Username
		if name == "" {
			name = "(no username)"
		}
		fmt.Fprintf(m.out, "  %s  %s\n", h.ChangedAt.Format("2006-01-02 15:04"), name)
	}

	if photos, err := m.client.ProfilePhotoCount(ctx, userID); err == nil {
		fmt.Fprintf(m.out, "profile photos: %d\n", photos)
	}
	return nil
}

func (m *Menu) usernameSearch(ctx context.Context) error {
	term, ok := m.prompt("username")
	if !ok {
		return nil
	}
	matches, err := m.queries.UsernameSearch(ctx, term)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Fprintln(m.out, "no matches")
		return nil
	}
	for _, match := range matches {
		fmt.Fprintf(m.out, "%d  %s  @%s  [%s via @%s]\n",
			match.User.UserID, match.User.FirstName, match.User.CurrentUsername,
			match.Kind, match.MatchedUsername)
	}
	return nil
}

func (m *Menu) messageHistory(ctx context.Context) error {
	userID, ok := m.promptID("user id")
	if !ok {
		return nil
	}
	cursor := m.queries.UserMessageHistory(userID)
	shown := 0
	for {
		msg, err := cursor.Next(ctx)
		if err != nil {
			return err
		}
		if msg == nil {
			break
		}
		m.printMessage(msg)
		shown++
	}
	fmt.Fprintf(m.out, "%d message(s)\n", shown)
	return nil
}

func (m *Menu) keywordSearch(ctx context.Context) error {
	term, ok := m.prompt("keyword")
	if !ok {
		return nil
	}
	messages, err := m.queries.KeywordSearch(ctx, term, recentMessageLimit*10)
	if err != nil {
		return err
	}
	for i := range messages {
		m.printMessage(&messages[i])
	}
	fmt.Fprintf(m.out, "%d message(s)\n", len(messages))
	return nil
}

func (m *Menu) statistics(ctx context.Context) error {
	stats, err := m.queries.LiveStatistics(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "users: %d\nmessages: %d\nusername changes: %d\nchats: %d\n",
		stats.Users, stats.Messages, stats.UsernameChanges, stats.Chats)
	return nil
}

func (m *Menu) exportUser(ctx context.Context) error {
	userID, ok := m.promptID("user id")
	if !ok {
		return nil
	}
	path, err := m.exporter.ExportUser(ctx, userID)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "exported to %s\n", path)
	return nil
}

func (m *Menu) chatLookup(ctx context.Context) error {
	chatID, ok := m.promptID("chat id")
	if !ok {
		return nil
	}
	chat, err := m.chats.Lookup(ctx, chatID)
	if err != nil {
		return err
	}
	if chat == nil {
		fmt.Fprintln(m.out, "chat unknown")
		return nil
	}
	fmt.Fprintf(m.out, "%d  %s  %q  @%s  members=%d\n",
		chat.ChatID, chat.ChatType, chat.Title, chat.Username, chat.MemberCount)
	if admins, err := m.client.ChatAdministrators(ctx, chatID); err == nil {
		for _, admin := range admins {
			if admin.User != nil {
				fmt.Fprintf(m.out, "  admin: %d @%s\n", admin.User.ID, admin.User.UserName)
			}
		}
	}
	return nil
}

func (m *Menu) memberStatus(ctx context.Context) error {
	chatID, ok := m.promptID("chat id")
	if !ok {
		return nil
	}
	userID, ok := m.promptID("user id")
	if !ok {
		return nil
	}
	member, err := m.client.ChatMember(ctx, chatID, userID)
	if err != nil {
		if errors.Is(err, telegram.ErrNotFound) {
			fmt.Fprintln(m.out, "not a member")
			return nil
		}
		return err
	}
	fmt.Fprintf(m.out, "status: %s\n", member.Status)
	return nil
}

func (m *Menu) botInfo() {
	self := m.client.Self()
	fmt.Fprintf(m.out, "connected as %s (@%s), id %d\n", self.FirstName, self.UserName, self.ID)
}

func (m *Menu) printMessage(msg *model.Message) {
	text := msg.MessageText
	if text == "" && msg.MediaType != "" {
		text = "[" + msg.MediaType + "]"
	}
	fmt.Fprintf(m.out, "[%s] chat %d  %s (@%s): %s\n",
		msg.MessageDate.Format("2006-01-02 15:04"), msg.ChatID, msg.FirstName, msg.Username, text)
}
