package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"github.com/groupcollect/groupcollect-backend/pkg/config"
	"github.com/groupcollect/groupcollect-backend/pkg/db"
	"github.com/groupcollect/groupcollect-backend/pkg/logger"
	"github.com/groupcollect/groupcollect-backend/pkg/migrate"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|create|validate")
	dir := flag.String("dir", "", "read migrations from this directory instead of the embedded set (create defaults to "+migrate.DefaultDir+")")
	name := flag.String("name", "", "migration name (for create)")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	var source fs.FS
	if *dir != "" {
		source = os.DirFS(*dir)
	}

	switch *cmd {
	case "create":
		if *name == "" {
			exitf("missing -name for create")
		}
		target := *dir
		if target == "" {
			target = migrate.DefaultDir
		}
		path, err := migrate.CreateSQLMigration(target, *name)
		if err != nil {
			exitf("failed to create migration: %v", err)
		}
		fmt.Println("created migration:", path)
		return

	case "validate":
		fsys := source
		if fsys == nil {
			fsys = migrate.Migrations()
		}
		if err := migrate.ValidateFS(fsys); err != nil {
			exitf("migration validation failed: %v", err)
		}
		fmt.Println("migration validation passed")
		return
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "cmd": *cmd})

	if cfg.DB.IsSQLite() {
		exitf("migrations target postgres; GROUPCOLLECT_DB_DRIVER is %q", cfg.DB.Driver)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	requireResource(ctx, logg, "sql database", err)

	provider, err := migrate.NewProvider(sqlDB, source)
	requireResource(ctx, logg, "goose provider", err)

	switch *cmd {
	case "up":
		applied, err := migrate.Up(ctx, provider)
		if err != nil {
			exitf("%v", err)
		}
		logg.Info(logg.WithField(ctx, "applied", applied), "migrations applied")

	case "down":
		rolledBack, err := migrate.Down(ctx, provider)
		if err != nil {
			exitf("%v", err)
		}
		logg.Info(logg.WithField(ctx, "version", rolledBack), "migration rolled back")

	case "status":
		lines, err := migrate.Status(ctx, provider)
		if err != nil {
			exitf("%v", err)
		}
		printStatus(lines)

	case "version":
		if *version == "" {
			exitf("missing -version for version command")
		}
		if err := migrate.ToVersion(ctx, provider, *version); err != nil {
			exitf("%v", err)
		}
		logg.Info(logg.WithField(ctx, "version", *version), "database at requested version")

	default:
		exitf("unknown -cmd value: %s", *cmd)
	}
}

func printStatus(lines []migrate.StatusLine) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tSTATE\tAPPLIED AT\tFILE")
	for _, l := range lines {
		state, at := "pending", "-"
		if l.Applied {
			state, at = "applied", l.AppliedAt.UTC().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", l.Version, state, at, l.File)
	}
	_ = tw.Flush()
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
