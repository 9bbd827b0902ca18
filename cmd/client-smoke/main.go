// Command client-smoke drives the marketplace core against a running API
// server: it signs in, opens a talent, optionally sends a message, pays
// and prints the resulting dashboard.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/iliyamo/talent-marketplace/internal/apiclient"
	"github.com/iliyamo/talent-marketplace/internal/config"
	"github.com/iliyamo/talent-marketplace/internal/logger"
	"github.com/iliyamo/talent-marketplace/internal/marketplace"
	"github.com/iliyamo/talent-marketplace/internal/model"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	email        string
	password     string
	signUp       bool
	refreshToken string
	talentID     uint64
	message      string
	skipPay      bool
}

func run() error {
	var opts options
	flagSet := pflag.NewFlagSet("client-smoke", pflag.ContinueOnError)
	flagSet.StringVar(&opts.email, "email", "", "account email")
	flagSet.StringVar(&opts.password, "password", "", "account password")
	flagSet.BoolVar(&opts.signUp, "signup", false, "register the account before signing in")
	flagSet.StringVar(&opts.refreshToken, "refresh-token", "", "resume a session from a refresh token instead of a password")
	flagSet.Uint64Var(&opts.talentID, "talent", 0, "talent id to book (default: first talent with a price)")
	flagSet.StringVarP(&opts.message, "message", "m", "", "message to send to the talent before paying")
	flagSet.BoolVar(&opts.skipPay, "no-pay", false, "stop before paying")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg := config.LoadMarketplaceConfig()
	logger.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := apiclient.New(cfg.APIBaseURL, cfg.HTTPTimeout)
	if opts.refreshToken != "" {
		client.Restore(opts.refreshToken)
	}
	app := marketplace.NewApp(marketplace.Config{PlaceholderRate: cfg.PlaceholderRate}, client, client)
	app.Start(ctx)
	defer app.Close()

	if !app.SignedIn() {
		if err := signIn(ctx, client, opts); err != nil {
			return err
		}
	}
	s, _, err := client.CurrentSession(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("signed in as user %d (%s)\n", s.UserID, s.Role)

	talent, err := pickTalent(app.Talents(), opts.talentID)
	if err != nil {
		return err
	}
	if err := app.SelectTalent(ctx, talent.ID); err != nil {
		return err
	}
	fmt.Printf("selected %s (#%d, %s)\n", talent.FullName, talent.ID, formatPrice(talent))

	if opts.message != "" {
		if err := chat(ctx, app, opts.message); err != nil {
			return err
		}
	}
	if opts.skipPay {
		return nil
	}

	if err := app.Pay(ctx); err != nil {
		return fmt.Errorf("pay: %w (%s)", err, app.Notice())
	}
	fmt.Println(app.Notice())
	for _, b := range app.Bookings() {
		name := "(unknown)"
		if b.TalentName != nil {
			name = *b.TalentName
		}
		fmt.Printf("  booking #%d  %s  %d yen  %s  %s\n", b.ID, name, b.Amount, b.Status, b.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Printf("estimated balance: %d yen\n", app.Balance())
	return nil
}

func signIn(ctx context.Context, client *apiclient.Client, opts options) error {
	if opts.email == "" || opts.password == "" {
		return errors.New("not signed in: pass --email and --password or --refresh-token")
	}
	if opts.signUp {
		_, err := client.SignUp(ctx, opts.email, opts.password, model.RoleClient)
		return err
	}
	_, err := client.SignIn(ctx, opts.email, opts.password)
	return err
}

func pickTalent(talents []model.Profile, id uint64) (model.Profile, error) {
	for _, t := range talents {
		if id != 0 && t.ID == id {
			return t, nil
		}
		if _, ok := t.Price(); id == 0 && ok {
			return t, nil
		}
	}
	if id != 0 {
		return model.Profile{}, fmt.Errorf("talent %d not found", id)
	}
	return model.Profile{}, errors.New("no bookable talent listed")
}

func chat(ctx context.Context, app *marketplace.App, text string) error {
	if err := app.Navigate(ctx, marketplace.ScreenChat); err != nil {
		return err
	}
	if err := app.SetDraft(text); err != nil {
		return err
	}
	if err := app.SendMessage(ctx); err != nil {
		return fmt.Errorf("send: %w (%s)", err, app.Notice())
	}
	for _, m := range app.Thread() {
		fmt.Printf("  [%s] %d: %s\n", m.CreatedAt.Format("15:04:05"), m.SenderID, m.Content)
	}
	return app.Navigate(ctx, marketplace.ScreenDetail)
}

func formatPrice(p model.Profile) string {
	if v, ok := p.Price(); ok {
		return fmt.Sprintf("%d yen", v)
	}
	return "price unknown"
}
