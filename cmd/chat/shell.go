package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/PaulBabatuyi/pairChat-gRPC/internal/data"
	"github.com/PaulBabatuyi/pairChat-gRPC/internal/views"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var errQuit = errors.New("quit")

// shell drives the view models from typed commands. Listener callbacks
// print from their own goroutines, so all output goes through print.
type shell struct {
	svc views.Services
	log *zap.Logger

	outMu sync.Mutex
	out   io.Writer

	login  *views.LoginModel
	picker *views.NewMessageModel

	mu      sync.Mutex
	main    *views.MainMessagesModel
	chat    *views.ChatLogModel
	printed int
	// choices is the last numbered list shown by "users" or "recent".
	choices []data.ChatUser
}

func newShell(svc views.Services, out io.Writer, log *zap.Logger) *shell {
	s := &shell{svc: svc, out: out, log: log}
	s.login = views.NewLoginModel(svc, s.signedIn)
	s.picker = views.NewNewMessageModel(svc, s.openChat)
	return s
}

func (s *shell) print(format string, args ...any) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintf(s.out, format+"\n", args...)
}

// loop reads commands until EOF or "quit".
func (s *shell) loop(ctx context.Context, in *bufio.Scanner) error {
	for {
		s.outMu.Lock()
		fmt.Fprint(s.out, "> ")
		s.outMu.Unlock()

		if !in.Scan() {
			return in.Err()
		}
		err := s.exec(ctx, in.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			s.print("error: %v", err)
		}
	}
}

// exec runs one command line.
func (s *shell) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	s.log.Debug("command", zap.String("name", fields[0]))
	return s.commands().RunContext(ctx, append([]string{"chat"}, fields...))
}

func (s *shell) commands() *cli.App {
	return &cli.App{
		Name:           "chat",
		Writer:         s.out,
		ErrWriter:      s.out,
		ExitErrHandler: func(*cli.Context, error) {},
		CommandNotFound: func(c *cli.Context, name string) {
			s.print("unknown command %q", name)
		},
		Commands: []*cli.Command{
			{
				Name:      "signup",
				Usage:     "create an account",
				ArgsUsage: "<email> <password>",
				Action:    s.authAction(false),
			},
			{
				Name:      "login",
				Usage:     "sign in",
				ArgsUsage: "<email> <password>",
				Action:    s.authAction(true),
			},
			{
				Name:   "logout",
				Usage:  "sign out",
				Action: s.logout,
			},
			{
				Name:   "whoami",
				Usage:  "show the signed-in profile",
				Action: s.whoami,
			},
			{
				Name:   "users",
				Usage:  "list people to start a conversation with",
				Action: s.users,
			},
			{
				Name:   "recent",
				Usage:  "list recent conversations",
				Action: s.recent,
			},
			{
				Name:      "open",
				Usage:     "open a conversation from the last list",
				ArgsUsage: "<n>",
				Action:    s.open,
			},
			{
				Name:            "send",
				Usage:           "send a message in the open conversation",
				ArgsUsage:       "<text>",
				SkipFlagParsing: true,
				Action:          s.send,
			},
			{
				Name:      "avatar",
				Usage:     "set a profile image",
				ArgsUsage: "<file>",
				Action:    s.avatar,
			},
			{
				Name:    "quit",
				Aliases: []string{"exit"},
				Usage:   "leave",
				Action:  func(*cli.Context) error { return errQuit },
			},
		},
	}
}

func (s *shell) authAction(loginMode bool) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.NArg() != 2 {
			return errors.Errorf("usage: %s %s", c.Command.Name, c.Command.ArgsUsage)
		}
		s.login.SetLoginMode(loginMode)
		s.login.SetCredentials(c.Args().Get(0), c.Args().Get(1))
		s.login.HandleAction(c.Context)
		s.print("%s", s.login.Message())
		return nil
	}
}

// signedIn is the login completion callback: it starts the conversation list.
func (s *shell) signedIn() {
	m := views.NewMainMessagesModel(s.svc)
	s.mu.Lock()
	old := s.main
	s.main = m
	s.mu.Unlock()
	if old != nil {
		old.Close()
	}

	if err := m.Start(context.Background()); err != nil {
		s.log.Warn("failed to load profile", zap.Error(err))
		s.print("could not load profile: %v", err)
		return
	}
	if u := m.ChatUser(); u != nil {
		s.print("welcome %s", views.DisplayName(u.Email))
	}
}

func (s *shell) mainModel() (*views.MainMessagesModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.main == nil || s.main.IsUserCurrentlyLoggedOut() {
		return nil, errors.New("not signed in")
	}
	return s.main, nil
}

func (s *shell) logout(c *cli.Context) error {
	m, err := s.mainModel()
	if err != nil {
		return err
	}
	s.closeChat()
	m.HandleSignOut(c.Context)
	s.mu.Lock()
	s.choices = nil
	s.mu.Unlock()
	s.print("signed out")
	return nil
}

func (s *shell) whoami(*cli.Context) error {
	m, err := s.mainModel()
	if err != nil {
		return err
	}
	u := m.ChatUser()
	if u == nil {
		return errors.New(m.ErrorMessage())
	}
	s.print("%s (%s) uid=%s", views.DisplayName(u.Email), u.Email, u.UID)
	if u.ProfileImageURL != "" {
		s.print("image: %s", u.ProfileImageURL)
	}
	return nil
}

func (s *shell) users(c *cli.Context) error {
	if _, err := s.mainModel(); err != nil {
		return err
	}
	s.picker.FetchAllUsers(c.Context)
	users := s.picker.Users()
	if len(users) == 0 {
		s.print("%s", s.picker.ErrorMessage())
		return nil
	}
	s.mu.Lock()
	s.choices = users
	s.mu.Unlock()
	for i, u := range users {
		s.print("%2d. %s", i+1, views.DisplayName(u.Email))
	}
	return nil
}

func (s *shell) recent(*cli.Context) error {
	m, err := s.mainModel()
	if err != nil {
		return err
	}
	recent := m.RecentMessages()
	if len(recent) == 0 {
		s.print("no conversations yet")
		return nil
	}
	choices := make([]data.ChatUser, len(recent))
	for i, rm := range recent {
		choices[i] = data.ChatUser{UID: rm.DocumentID, Email: rm.Email}
		s.print("%2d. %-20s %s  %s", i+1, views.DisplayName(rm.Email), rm.Text, rm.Timestamp.Local().Format("Jan 2 15:04"))
	}
	s.mu.Lock()
	s.choices = choices
	s.mu.Unlock()
	return nil
}

func (s *shell) open(c *cli.Context) error {
	if _, err := s.mainModel(); err != nil {
		return err
	}
	n, err := strconv.Atoi(c.Args().First())
	s.mu.Lock()
	choices := s.choices
	s.mu.Unlock()
	if err != nil || n < 1 || n > len(choices) {
		return errors.New(`pick a number from "users" or "recent"`)
	}
	s.picker.Select(choices[n-1])
	return nil
}

// openChat is the picker's selection callback.
func (s *shell) openChat(u data.ChatUser) {
	s.closeChat()

	chat := views.NewChatLogModel(s.svc, &u)
	s.mu.Lock()
	s.chat = chat
	s.printed = 0
	s.mu.Unlock()

	chat.OnChange(func() { s.printNew(chat) })
	s.print("-- %s --", views.DisplayName(u.Email))
	chat.FetchMessages(context.Background())
}

// printNew prints the messages of chat that have not been shown yet.
func (s *shell) printNew(chat *views.ChatLogModel) {
	s.mu.Lock()
	if s.chat != chat {
		s.mu.Unlock()
		return
	}
	msgs := chat.Messages()
	fresh := msgs[min(s.printed, len(msgs)):]
	s.printed = len(msgs)
	s.mu.Unlock()

	me := ""
	if sess := s.svc.Auth.CurrentUser(); sess != nil {
		me = sess.UID
	}
	peer := chat.ChatUser()
	for _, msg := range fresh {
		name := views.DisplayName(peer.Email)
		if msg.FromID == me {
			name = "me"
		}
		s.print("[%s] %s: %s", msg.Timestamp.Local().Format("15:04"), name, msg.Text)
	}
}

func (s *shell) send(c *cli.Context) error {
	s.mu.Lock()
	chat := s.chat
	s.mu.Unlock()
	if chat == nil {
		return errors.New(`no open conversation, use "open <n>"`)
	}
	text := strings.Join(c.Args().Slice(), " ")
	if text == "" {
		return errors.New("usage: send <text>")
	}
	chat.SetChatText(text)
	return chat.HandleSend(c.Context)
}

// avatar attaches an image to the next signup, or uploads it right away
// when already signed in.
func (s *shell) avatar(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("usage: avatar <file>")
	}
	content, err := os.ReadFile(c.Args().First())
	if err != nil {
		return errors.Wrap(err, "read image")
	}
	contentType := http.DetectContentType(content)
	s.login.SetProfileImage(content, contentType)

	m, err := s.mainModel()
	if err != nil {
		s.print("image will be uploaded at signup")
		return nil
	}
	u := m.ChatUser()
	if u == nil {
		return errors.New("profile not loaded")
	}

	if _, err := s.svc.Storage.PutData(c.Context, u.UID, content, contentType); err != nil {
		return errors.Errorf("Failed to upload image %v", err)
	}
	url, err := s.svc.Storage.DownloadURL(c.Context, u.UID)
	if err != nil {
		return errors.Errorf("Failed to retrieve download url %v", err)
	}
	u.ProfileImageURL = url
	if err := s.svc.Firestore.SetUser(c.Context, u.UID, u.Document()); err != nil {
		return errors.Errorf("Failed to store user information %v", err)
	}
	if err := m.FetchCurrentUser(c.Context); err != nil {
		s.log.Warn("failed to reload profile", zap.Error(err))
	}
	s.print("Successfully uploaded image to storage and retrieved download url %s", url)
	return nil
}

func (s *shell) closeChat() {
	s.mu.Lock()
	chat := s.chat
	s.chat = nil
	s.mu.Unlock()
	if chat != nil {
		chat.Close()
	}
}

func (s *shell) close() {
	s.closeChat()
	s.mu.Lock()
	m := s.main
	s.mu.Unlock()
	if m != nil {
		m.Close()
	}
}
