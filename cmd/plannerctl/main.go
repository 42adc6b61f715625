package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/klokku/studyplan/internal/app"
	"github.com/klokku/studyplan/internal/config"
	"github.com/klokku/studyplan/internal/logging"
)

var CLI struct {
	Config string `help:"Config file path." type:"path" default:"./config/application.yaml"`

	Repair RepairCmd `cmd:"" help:"Repair every stored week of a user and write back the changed ones."`
	Hours  HoursCmd  `cmd:"" help:"Print the all-time status weighted study hours of a user."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("plannerctl"),
		kong.Description("Maintenance commands for the study planner"),
		kong.UsageOnError(),
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fail(err)
	}
	if err := logging.Setup(cfg.Log); err != nil {
		fail(err)
	}
	stores, err := app.OpenStores(cfg)
	if err != nil {
		fail(err)
	}

	runErr := kctx.Run(&Context{
		Deps: app.BuildDependencies(stores, nil, cfg),
		Out:  os.Stdout,
	})
	closeErr := stores.Close()
	if runErr != nil {
		fail(runErr)
	}
	if closeErr != nil {
		fail(closeErr)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
