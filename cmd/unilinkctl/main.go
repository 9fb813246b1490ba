// Command unilinkctl runs operator tasks against the UniLink database:
// schema migrations, default data, lecturer credentials and campus events.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	appMigrations "github.com/yigit/unilink/internal/app/migrations"
	"github.com/yigit/unilink/internal/app/models/dto"
	appRepos "github.com/yigit/unilink/internal/app/repositories"
	appServices "github.com/yigit/unilink/internal/app/services"
	"github.com/yigit/unilink/internal/bootstrap"
	"github.com/yigit/unilink/internal/config"
	"github.com/yigit/unilink/internal/pkg/logger"
	"github.com/yigit/unilink/internal/pkg/realtime"
	"github.com/yigit/unilink/internal/seed"
	"github.com/yigit/unilink/migrations"
)

// env holds what every command needs once flags are parsed
type env struct {
	cfg  *config.Config
	pool *pgxpool.Pool
	log  zerolog.Logger
}

func main() {
	var configPath string

	app := &cli.App{
		Name:  "unilinkctl",
		Usage: "UniLink operator tooling",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "configuration file (YAML) path",
				EnvVars:     []string{"UNILINK_CONFIG"},
				Value:       bootstrap.DefaultConfigPath,
				Destination: &configPath,
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "apply pending schema migrations",
				Action: withEnv(&configPath, migrate),
				Subcommands: []*cli.Command{
					{
						Name:   "status",
						Usage:  "list migrations and when they were applied",
						Action: withEnv(&configPath, migrateStatus),
					},
				},
			},
			{
				Name:   "seed",
				Usage:  "create the default administrator and demo community",
				Action: withEnv(&configPath, seedData),
			},
			{
				Name:  "set-password",
				Usage: "set a lecturer's password",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true, Usage: "lecturer email"},
					&cli.StringFlag{Name: "password", Required: true, Usage: "new password"},
				},
				Action: withEnv(&configPath, setPassword),
			},
			{
				Name:  "issue-otp",
				Usage: "open the one-time code login window for a lecturer",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true, Usage: "lecturer email"},
					&cli.DurationFlag{Name: "valid-for", Value: appServices.DefaultOTPValidity, Usage: "how long the code stays valid"},
				},
				Action: withEnv(&configPath, issueOTP),
			},
			{
				Name:  "add-event",
				Usage: "publish a campus event to every lecturer",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Required: true},
					&cli.StringFlag{Name: "hosted-by", Required: true, Usage: "organizer shown on the event card"},
					&cli.StringFlag{Name: "date", Required: true, Usage: "start date, YYYY-MM-DD in the configured timezone"},
					&cli.StringFlag{Name: "time", Usage: "display time, e.g. \"10:00 AM\""},
					&cli.StringFlag{Name: "location"},
					&cli.StringFlag{Name: "image-url"},
					&cli.StringFlag{Name: "description"},
				},
				Action: withEnv(&configPath, addEvent),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// withEnv loads configuration and opens the database before running fn
func withEnv(configPath *string, fn func(*cli.Context, *env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(*configPath)
		if err != nil {
			return err
		}
		pool, err := bootstrap.OpenDatabase(cfg, lgr)
		if err != nil {
			return err
		}
		defer pool.Close()
		return fn(c, &env{cfg: cfg, pool: pool, log: lgr})
	}
}

func migrate(c *cli.Context, e *env) error {
	return bootstrap.RunMigrations(c.Context, e.pool, e.log)
}

func migrateStatus(c *cli.Context, e *env) error {
	migrator := appMigrations.NewMigrator(e.pool, e.log)
	statuses, err := migrator.Status(c.Context, migrations.FS)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tFILE\tAPPLIED AT")
	for _, s := range statuses {
		applied := "pending"
		if s.AppliedAt != nil {
			applied = s.AppliedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.Version, s.File, applied)
	}
	return w.Flush()
}

func seedData(c *cli.Context, e *env) error {
	return seed.CreateDefaultData(c.Context, e.pool, e.log)
}

func authService(e *env) *appServices.AuthService {
	repos := appRepos.NewRepositories(e.pool)
	return appServices.NewAuthService(repos.LecturerRepository, bootstrap.NewJWTService(e.cfg), time.Now,
		e.log.With().Str("service", "auth").Logger())
}

func setPassword(c *cli.Context, e *env) error {
	if err := authService(e).ResetPassword(c.Context, c.String("email"), c.String("password")); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "password updated for %s\n", c.String("email"))
	return nil
}

func issueOTP(c *cli.Context, e *env) error {
	expiry, err := authService(e).IssueOTP(c.Context, c.String("email"), c.Duration("valid-for"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "one-time code window for %s open until %s\n",
		c.String("email"), expiry.In(e.cfg.Location()).Format(time.RFC1123))
	return nil
}

func addEvent(c *cli.Context, e *env) error {
	startDate, err := time.ParseInLocation(time.DateOnly, c.String("date"), e.cfg.Location())
	if err != nil {
		return fmt.Errorf("invalid --date: %w", err)
	}

	// Running API servers only hear about the event over the Postgres channel
	var publisher realtime.Publisher = realtime.NopPublisher{}
	if e.cfg.Realtime.Driver == config.RealtimeDriverPostgres {
		publisher = realtime.NewPGBridge(e.pool, e.cfg.Realtime.Channel, nil, e.log)
	} else {
		e.log.Warn().Msg("Realtime driver is local; open event streams refresh on their next change")
	}

	repos := appRepos.NewRepositories(e.pool)
	svc := appServices.NewEventService(repos.EventRepository, publisher, nil, e.cfg.Location(), time.Now,
		e.log.With().Str("service", "events").Logger())

	event, err := svc.Create(c.Context, dto.CreateEventRequest{
		Title:       c.String("title"),
		HostedBy:    c.String("hosted-by"),
		StartDate:   startDate,
		StartTime:   c.String("time"),
		Location:    c.String("location"),
		ImageURL:    c.String("image-url"),
		Description: c.String("description"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "event %s created: %s on %s\n", event.ID, event.Title, startDate.Format(time.DateOnly))
	return nil
}
