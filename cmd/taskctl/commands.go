package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/msomdec/taskboard/internal/app"
	"github.com/msomdec/taskboard/internal/domain"
	"github.com/msomdec/taskboard/internal/service"
	"github.com/msomdec/taskboard/internal/state"
)

// CLI runs one taskctl command against the state containers.
type CLI struct {
	Containers *app.Containers
	Out        io.Writer
	// Prompt reads a secret from the terminal when a password flag is omitted.
	Prompt func(label string) (string, error)
}

// Run restores the persisted session and dispatches args[0].
func (c *CLI) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("missing command")
	}
	c.Containers.Session.Bootstrap(ctx)

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register":
		return c.register(ctx, rest)
	case "login":
		return c.login(ctx, rest)
	case "logout":
		c.Containers.Session.Logout(ctx)
		fmt.Fprintln(c.Out, c.Containers.Session.State().Success)
		return nil
	case "whoami":
		return c.whoami()
	}

	if _, _, ok := c.Containers.Session.Current(); !ok {
		return errors.New("please login first using 'taskctl login'")
	}
	if err := c.Containers.Tasks.LoadTasks(ctx); err != nil {
		return err
	}

	switch cmd {
	case "list", "ls":
		return c.list(rest)
	case "add":
		return c.add(ctx, rest)
	case "edit":
		return c.edit(ctx, rest)
	case "move", "mv":
		return c.move(ctx, rest)
	case "rm", "delete":
		return c.remove(ctx, rest)
	case "board":
		c.board()
		return nil
	}
	return fmt.Errorf("unknown command: %s", cmd)
}

func (c *CLI) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password (supply to avoid prompt)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	secret, confirm := *password, *password
	if secret == "" {
		var err error
		if secret, err = c.Prompt("Password: "); err != nil {
			return err
		}
		if confirm, err = c.Prompt("Confirm password: "); err != nil {
			return err
		}
	}
	if err := service.ValidateSignup(*email, secret, confirm); err != nil {
		return errors.New(service.UserMessage(err))
	}

	user, err := c.Containers.Session.Register(ctx, strings.TrimSpace(*email), secret)
	if err != nil {
		return errors.New(c.Containers.Session.State().Error)
	}
	fmt.Fprintf(c.Out, "%s (user %s)\n", c.Containers.Session.State().Success, user.ID)
	return nil
}

func (c *CLI) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password (supply to avoid prompt)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*email) == "" {
		return errors.New("--email is required")
	}

	secret := *password
	if secret == "" {
		var err error
		if secret, err = c.Prompt("Password: "); err != nil {
			return err
		}
	}

	if _, err := c.Containers.Session.Login(ctx, strings.TrimSpace(*email), secret); err != nil {
		return errors.New(c.Containers.Session.State().Error)
	}
	fmt.Fprintln(c.Out, c.Containers.Session.State().Success)
	return nil
}

func (c *CLI) whoami() error {
	st := c.Containers.Session.State()
	if st.Status != state.Authenticated || st.User == nil {
		fmt.Fprintln(c.Out, "not signed in")
		return nil
	}
	fmt.Fprintf(c.Out, "%s (user %s)\n", st.User.Email, st.User.ID)
	return nil
}

func (c *CLI) list(args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	status := fs.String("status", "", "Only show tasks with this status (todo, in_progress, done)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st := c.Containers.Tasks.State()
	tasks := st.Tasks
	if *status != "" {
		s, err := domain.ParseStatus(*status)
		if err != nil {
			return err
		}
		tasks = st.ByStatus(s)
	}
	if len(tasks) == 0 {
		fmt.Fprintln(c.Out, "no tasks")
		return nil
	}

	tw := tabwriter.NewWriter(c.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tTITLE\tDESCRIPTION")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Status, t.Title, t.Description)
	}
	return tw.Flush()
}

func (c *CLI) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	title := fs.String("title", "", "Task title")
	description := fs.String("description", "", "Task description")
	if err := fs.Parse(args); err != nil {
		return err
	}

	task, err := c.Containers.Tasks.AddTask(ctx, *title, *description)
	if err != nil {
		return errors.New(service.UserMessage(err))
	}
	fmt.Fprintf(c.Out, "created task %s\n", task.ID)
	return nil
}

func (c *CLI) edit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	title := fs.String("title", "", "New title")
	description := fs.String("description", "", "New description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: taskctl edit [-title T] [-description D] <id>")
	}

	var patch domain.TaskPatch
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			patch.Title = title
		case "description":
			patch.Description = description
		}
	})
	if patch.Empty() {
		return errors.New("nothing to change: pass -title or -description")
	}

	task, err := c.Containers.Tasks.UpdateTask(ctx, fs.Arg(0), patch)
	if err != nil {
		return errors.New(service.UserMessage(err))
	}
	fmt.Fprintf(c.Out, "updated task %s\n", task.ID)
	return nil
}

func (c *CLI) move(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: taskctl move <id> <todo|in_progress|done>")
	}
	status, err := domain.ParseStatus(args[1])
	if err != nil {
		return err
	}
	task, err := c.Containers.Tasks.MoveTask(ctx, args[0], status)
	if err != nil {
		return errors.New(service.UserMessage(err))
	}
	fmt.Fprintf(c.Out, "task %s is now in %s\n", task.ID, service.ColumnTitle(task.Status))
	return nil
}

func (c *CLI) remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: taskctl rm <id>")
	}
	if err := c.Containers.Tasks.DeleteTask(ctx, args[0]); err != nil {
		return errors.New(service.UserMessage(err))
	}
	fmt.Fprintf(c.Out, "deleted task %s\n", args[0])
	return nil
}

// board prints one column per status, side by side.
func (c *CLI) board() {
	st := c.Containers.Tasks.State()
	columns := make([][]domain.Task, len(domain.Statuses))
	rows := 0
	for i, status := range domain.Statuses {
		columns[i] = st.ByStatus(status)
		rows = max(rows, len(columns[i]))
	}

	tw := tabwriter.NewWriter(c.Out, 0, 4, 3, ' ', 0)
	for i, status := range domain.Statuses {
		fmt.Fprintf(tw, "%s (%d)\t", service.ColumnTitle(status), len(columns[i]))
	}
	fmt.Fprintln(tw)
	for r := range rows {
		for i := range domain.Statuses {
			if r < len(columns[i]) {
				fmt.Fprintf(tw, "#%s %s", columns[i][r].ID, columns[i][r].Title)
			}
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
}

func promptPassword(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(secret), nil
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: taskctl <command> [flags]

Commands:
  register -email E [-password P]     create an account and sign in
  login -email E [-password P]        sign in
  logout                              forget the saved session
  whoami                              show the signed-in user
  list [-status S]                    list tasks
  add -title T -description D         create a task
  edit [-title T] [-description D] ID change a task
  move ID STATUS                      move a task to todo, in_progress or done
  rm ID                               delete a task
  board                               show tasks as a kanban board

Environment:
  MOCK_API=true        keep users and tasks in SESSION_STORE_PATH
  API_BASE_URL         task API used when MOCK_API=false
  SESSION_STORE_PATH   local SQLite file holding the session
`)
}
