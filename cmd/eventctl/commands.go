package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/iliyamo/event-reservation-web/internal/catalog"
	"github.com/iliyamo/event-reservation-web/internal/model"
	"github.com/iliyamo/event-reservation-web/internal/reservation"
)

type command struct {
	name    string
	args    string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = []command{
	{"login", "--email E [--password P]", "log in and store the session", cmdLogin},
	{"register", "--first F --last L --email E [--password P]", "create an account and log in", cmdRegister},
	{"logout", "", "forget the stored session", cmdLogout},
	{"whoami", "", "show the logged-in user", cmdWhoami},
	{"events", "[--q TEXT] [--category C] [--sort KEY] [--upcoming]", "list events", cmdEvents},
	{"event", "ID", "show an event and its seat map", cmdEvent},
	{"reserve", "ID (--seats seat-1,seat-2 | --count N)", "reserve seats for an event", cmdReserve},
	{"reservations", "", "list your reservations", cmdReservations},
	{"reservation", "CODE", "show one reservation", cmdReservation},
	{"cancel", "CODE", "cancel a reservation", cmdCancel},
	{"create-event", "--name N --date D --seats N --price P [...]", "create an event (admin)", cmdCreateEvent},
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func usage(w io.Writer, global *pflag.FlagSet) {
	fmt.Fprintln(w, "usage: eventctl [global flags] COMMAND [flags]")
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range commands {
		fmt.Fprintf(tw, "  %s %s\t%s\n", c.name, c.args, c.summary)
	}
	_ = tw.Flush()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "global flags:")
	fmt.Fprint(w, global.FlagUsages())
}

func flags(a *app, name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// password returns flag, else $EVENTCTL_PASSWORD, else the first line of
// stdin.
func password(a *app, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if p := os.Getenv("EVENTCTL_PASSWORD"); p != "" {
		return p, nil
	}
	if a.stdin == nil {
		return "", errors.New("password required")
	}
	fmt.Fprint(a.stderr, "password: ")
	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if line = strings.TrimSpace(line); line == "" {
		return "", errors.New("password required")
	}
	return line, nil
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	fs := flags(a, "login")
	email := fs.String("email", "", "account email")
	pw := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("--email is required")
	}
	p, err := password(a, *pw)
	if err != nil {
		return err
	}
	auth, err := a.api.Login(ctx, *email, p)
	if err != nil {
		return a.fail("Login failed", err)
	}
	if err := a.session.Login(ctx, auth.Token, auth.User); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Logged in as %s\n", auth.User.FullName())
	return nil
}

func cmdRegister(ctx context.Context, a *app, args []string) error {
	fs := flags(a, "register")
	var req model.RegisterRequest
	fs.StringVar(&req.FirstName, "first", "", "first name")
	fs.StringVar(&req.LastName, "last", "", "last name")
	fs.StringVar(&req.Email, "email", "", "account email")
	pw := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if req.FirstName == "" || req.LastName == "" || req.Email == "" {
		return errors.New("--first, --last and --email are required")
	}
	p, err := password(a, *pw)
	if err != nil {
		return err
	}
	req.Password = p
	auth, err := a.api.Register(ctx, req)
	if err != nil {
		return a.fail("Registration failed", err)
	}
	if err := a.session.Login(ctx, auth.Token, auth.User); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Welcome, %s\n", auth.User.FullName())
	return nil
}

func cmdLogout(ctx context.Context, a *app, _ []string) error {
	return a.session.Logout(ctx)
}

func cmdWhoami(_ context.Context, a *app, _ []string) error {
	user, ok := a.session.User()
	if !ok {
		fmt.Fprintln(a.stdout, "not logged in")
		return exitError{}
	}
	fmt.Fprintf(a.stdout, "%s <%s>\nroles: %s\nadmin: %t\n",
		user.FullName(), user.Email, strings.Join(user.Roles, ", "), a.session.IsAdmin())
	return nil
}

func cmdEvents(ctx context.Context, a *app, args []string) error {
	fs := flags(a, "events")
	var q catalog.Query
	fs.StringVar(&q.Search, "q", "", "search name and description")
	fs.StringVar(&q.Category, "category", catalog.AllCategories, "category filter")
	sortFlag := fs.String("sort", string(catalog.SortDateAsc), "date-asc, date-desc, price-asc or price-desc")
	upcoming := fs.Bool("upcoming", false, "only upcoming events")
	if err := fs.Parse(args); err != nil {
		return err
	}
	key, err := catalog.ParseSort(*sortFlag)
	if err != nil {
		return err
	}
	q.Sort = key

	var events []model.Event
	if *upcoming {
		if events, err = a.api.ListUpcomingEvents(ctx); err != nil {
			return a.fail("Failed to load events", err)
		}
	} else {
		mode, err := catalog.ParseFallbackMode(a.cfg.CatalogFallback)
		if err != nil {
			return err
		}
		res, err := catalog.NewSource(a.api, mode, a.log.Named("catalog")).List(ctx)
		if err != nil {
			return a.fail("Failed to load events", err)
		}
		if res.Fallback {
			fmt.Fprintln(a.stderr, "backend unavailable, showing demo events")
		}
		events = res.Events
	}

	shown := catalog.Apply(events, q)
	if len(shown) == 0 {
		fmt.Fprintln(a.stdout, "No events found")
		return nil
	}
	printEvents(a.stdout, shown)
	return nil
}

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New("event id required")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid event id %q", args[0])
	}
	return id, nil
}

func (a *app) workflow() *reservation.Workflow {
	return reservation.NewWorkflow(a.api, a.session, a, a, a.log.Named("reservation"))
}

func cmdEvent(ctx context.Context, a *app, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	w := a.workflow()
	defer w.Close()
	if err := w.LoadEvent(ctx, id); err != nil {
		return a.fail("Failed to load event", err)
	}
	e, _ := w.Event()
	printEvent(a.stdout, e)
	printSeats(a.stdout, w.Seats())
	return nil
}

func cmdReserve(ctx context.Context, a *app, args []string) error {
	fs := flags(a, "reserve")
	seats := fs.StringSlice("seats", nil, "seat ids to pick, e.g. seat-1,seat-2")
	count := fs.Int("count", 0, "pick the first N open seats")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parseID(fs.Args())
	if err != nil {
		return err
	}
	if (len(*seats) == 0) == (*count == 0) {
		return errors.New("exactly one of --seats or --count is required")
	}

	w := a.workflow()
	defer w.Close()
	if err := w.LoadEvent(ctx, id); err != nil {
		return a.fail("Failed to load event", err)
	}

	picks := *seats
	if *count > 0 {
		for _, s := range w.Seats() {
			if !s.Disabled && len(picks) < *count {
				picks = append(picks, s.ID)
			}
		}
	}
	for _, s := range picks {
		if !w.ToggleSeat(s) {
			fmt.Fprintf(a.stderr, "skipping %s: unavailable or over the %d seat limit\n", s, reservation.MaxSelection)
		}
	}
	selected := w.Selected()
	if len(selected) == 0 {
		return errors.New("no seats selected")
	}
	fmt.Fprintf(a.stdout, "Seats: %s\n", strings.Join(selected, ", "))
	printQuote(a.stdout, w.Quote())

	if w.Submit(ctx) == nil {
		return exitError{}
	}
	return nil
}

func cmdReservations(ctx context.Context, a *app, _ []string) error {
	list, err := a.api.ListMyReservations(ctx)
	if err != nil {
		return a.fail("Failed to load reservations", err)
	}
	if len(list) == 0 {
		fmt.Fprintln(a.stdout, "You don't have any reservations yet")
		return nil
	}
	printReservations(a.stdout, list)
	return nil
}

func code(args []string) (string, error) {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return "", errors.New("reservation code required")
	}
	return strings.TrimSpace(args[0]), nil
}

func cmdReservation(ctx context.Context, a *app, args []string) error {
	c, err := code(args)
	if err != nil {
		return err
	}
	r, err := a.api.GetReservation(ctx, c)
	if err != nil {
		return a.fail("Failed to load reservation", err)
	}
	printReservations(a.stdout, []model.Reservation{*r})
	return nil
}

func cmdCancel(ctx context.Context, a *app, args []string) error {
	c, err := code(args)
	if err != nil {
		return err
	}
	if err := a.api.CancelReservation(ctx, c); err != nil {
		return a.fail("Cancellation failed", err)
	}
	a.Notify(reservation.Notice{Title: "Reservation cancelled", Description: "Reservation " + c + " has been cancelled"})
	return nil
}

func cmdCreateEvent(ctx context.Context, a *app, args []string) error {
	fs := flags(a, "create-event")
	var req model.EventRequest
	fs.StringVar(&req.Name, "name", "", "event name")
	fs.StringVar(&req.Description, "description", "", "event description")
	date := fs.String("date", "", "event date, RFC 3339 or 2006-01-02T15:04:05")
	fs.IntVar(&req.TotalSeats, "seats", 0, "total seats")
	fs.Float64Var(&req.Price, "price", 0, "ticket price")
	fs.StringVar(&req.Category, "category", "", "category")
	fs.StringVar(&req.ImageURL, "image", "", "image URL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !a.session.IsAdmin() {
		return errors.New("admin role required")
	}
	if req.Name == "" || *date == "" || req.TotalSeats <= 0 {
		return errors.New("--name, --date and --seats are required")
	}
	ts, err := model.ParseTimestamp(*date)
	if err != nil {
		return err
	}
	req.EventDate = ts

	e, err := a.api.CreateEvent(ctx, req)
	if err != nil {
		return a.fail("Failed to create event", err)
	}
	fmt.Fprintf(a.stdout, "Created event %d\n", e.ID)
	return nil
}
