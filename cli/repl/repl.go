// Package repl reads address book commands line by line and answers them.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	ds "github.com/oaiiae/addressbook/datastores"
)

// ErrMalformedInput is returned for a command with the wrong number of arguments.
var ErrMalformedInput = errors.New("repl: malformed input")

const (
	Prompt = "Enter a command: "

	replyHello     = "How can I help you?"
	replyGoodBye   = "Good bye!"
	replyUnknown   = "Unknown command. Please try again."
	replyNoContact = "No contacts found."
)

type Session struct {
	Store    ds.ContactsStore
	PageSize int
	Logger   *slog.Logger
	Now      func() time.Time
}

type command struct {
	usage string
	nargs int
	run   func(s *Session, ctx context.Context, args []string) (string, error)
}

//nolint: gochecknoglobals // read only
var commands = map[string]command{
	"add":      {"add <name> <phone>", 2, (*Session).add},
	"change":   {"change <name> <phone>", 2, (*Session).change},
	"phone":    {"phone <name>", 1, (*Session).phone},
	"birthday": {"birthday <name> <YYYY-MM-DD>", 2, (*Session).birthday},
	"search":   {"search <query>", 1, (*Session).search},
}

// Handle answers one line of input. It reports done when the session should end.
func (s *Session) Handle(ctx context.Context, line string) (reply string, done bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return replyUnknown, false
	}

	switch strings.ToLower(strings.Join(fields, " ")) {
	case "hello":
		return replyHello, false
	case "show all":
		return s.reply("show all")(s.showAll(ctx))
	case "good bye", "close", "exit":
		return replyGoodBye, true
	}

	keyword := strings.ToLower(fields[0])
	cmd, ok := commands[keyword]
	if !ok {
		return replyUnknown, false
	}
	if len(fields)-1 != cmd.nargs {
		return s.reply(keyword)("", fmt.Errorf("%w: usage: %s", ErrMalformedInput, cmd.usage))
	}
	return s.reply(keyword)(cmd.run(s, ctx, fields[1:]))
}

// reply logs the outcome of a command and translates its error for the user.
func (s *Session) reply(keyword string) func(string, error) (string, bool) {
	return func(answer string, err error) (string, bool) {
		s.logger().Debug("command handled", "command", keyword, "err", err)
		if err != nil {
			return inputError(s.logger(), err), false
		}
		return answer, false
	}
}

// inputError is the only place errors are turned into messages.
func inputError(logger *slog.Logger, err error) string {
	var verr *ds.ValidationError
	switch {
	case errors.Is(err, ds.ErrObjectNotFound):
		return "Contact not found."
	case errors.Is(err, ErrMalformedInput):
		return "Invalid input, " + strings.TrimPrefix(err.Error(), ErrMalformedInput.Error()+": ") + "."
	case errors.As(err, &verr):
		return fmt.Sprintf("Invalid %s: %s.", verr.Field, verr.Reason)
	default:
		logger.Error("command failed", "err", err)
		return "Something went wrong, see the logs."
	}
}

// Run prompts on out and answers every line read from in until the session
// ends, in is exhausted or ctx is done. Lines are read in a separate goroutine
// so that cancelation is not held up by a pending read; that goroutine ends
// once its current read returns.
func (s *Session) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines, scanErr := make(chan string), make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				scanErr <- ctx.Err()
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		if _, err := io.WriteString(out, Prompt); err != nil {
			return err
		}
		var line string
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			line = l
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		reply, done := s.Handle(ctx, line)
		if _, err := fmt.Fprintln(out, reply); err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func (s *Session) add(ctx context.Context, args []string) (string, error) {
	contact, err := ds.NewContact(args[0], "")
	if err != nil {
		return "", err
	}
	if err := contact.AddPhone(args[1]); err != nil {
		return "", err
	}
	if err := s.Store.Add(ctx, contact); err != nil {
		return "", err
	}
	return "Contact added.", nil
}

func (s *Session) change(ctx context.Context, args []string) (string, error) {
	contact, err := s.Store.Get(ctx, args[0])
	if err != nil {
		return "", err
	}
	if len(contact.Phones) == 0 {
		err = contact.AddPhone(args[1])
	} else {
		err = contact.EditPhone(contact.Phones[0], args[1])
	}
	if err != nil {
		return "", err
	}
	if err := s.Store.Add(ctx, contact); err != nil {
		return "", err
	}
	return "Contact updated.", nil
}

func (s *Session) phone(ctx context.Context, args []string) (string, error) {
	contact, err := s.Store.Get(ctx, args[0])
	if err != nil {
		return "", err
	}
	if len(contact.Phones) == 0 {
		return contact.Name + " has no phone.", nil
	}
	return contact.Phones[0], nil
}

func (s *Session) birthday(ctx context.Context, args []string) (string, error) {
	contact, err := s.Store.Get(ctx, args[0])
	if err != nil {
		return "", err
	}
	if err := contact.SetBirthday(args[1]); err != nil {
		return "", err
	}
	if err := s.Store.Add(ctx, contact); err != nil {
		return "", err
	}
	days, _ := contact.DaysToBirthday(s.now())
	return fmt.Sprintf("Birthday saved, %d days left.", days), nil
}

func (s *Session) search(ctx context.Context, args []string) (string, error) {
	contacts, err := s.Store.Search(ctx, args[0])
	if err != nil {
		return "", err
	}
	if len(contacts) == 0 {
		return replyNoContact, nil
	}
	return formatContacts(contacts), nil
}

// showAll lists the contacts page by page, pages separated by a blank line.
func (s *Session) showAll(ctx context.Context) (string, error) {
	pages, err := ds.Paginate(ctx, s.Store, s.PageSize)
	if err != nil {
		return "", err
	}
	var blocks []string
	for page, err := range pages {
		if err != nil {
			return "", err
		}
		blocks = append(blocks, formatContacts(page))
	}
	if len(blocks) == 0 {
		return replyNoContact, nil
	}
	return strings.Join(blocks, "\n\n"), nil
}

func formatContacts(contacts []*ds.Contact) string {
	lines := make([]string, 0, len(contacts))
	for _, c := range contacts {
		lines = append(lines, c.Name+": "+strings.Join(c.Phones, ", "))
	}
	return strings.Join(lines, "\n")
}

func (s *Session) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

func (s *Session) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
