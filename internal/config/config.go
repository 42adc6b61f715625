package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Host        string      `koanf:"host"`
	Port        int         `koanf:"port"`
	Database    Database    `koanf:"db"`
	Redis       Redis       `koanf:"redis"`
	Mirror      Mirror      `koanf:"mirror"`
	Log         Log         `koanf:"log"`
	Milestones  Milestones  `koanf:"milestones"`
	Preferences Preferences `koanf:"preferences"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

// Redis configures the ephemeral backend used by demo sessions.
type Redis struct {
	Addr string `koanf:"addr"`
	// TTL is how long demo documents live after their last write.
	TTL time.Duration `koanf:"ttl"`
}

// Mirror configures the local sqlite mirror of the shown milestones.
type Mirror struct {
	Path string `koanf:"path"`
}

type Log struct {
	Level string `koanf:"level"`
	File  string `koanf:"file"`
	JSON  bool   `koanf:"json"`
}

type Milestones struct {
	Catalog string `koanf:"catalog"`
}

type Preferences struct {
	// AchievementsOnly is the inclusion policy used when a user never saved one.
	AchievementsOnly bool `koanf:"achievementsonly"`
}

func Defaults() Application {
	return Application{
		Host: "http://localhost:3000",
		Port: 8181,
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "studyplan",
			Pass:   "",
			Name:   "studyplan",
			Schema: "studyplan",
		},
		Redis: Redis{
			Addr: "",
			TTL:  24 * time.Hour,
		},
		Mirror: Mirror{
			Path: "storage/mirror.db",
		},
		Log: Log{
			Level: "info",
		},
		Milestones: Milestones{
			Catalog: "./config/milestones.yaml",
		},
		Preferences: Preferences{
			AchievementsOnly: true,
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "STUDYPLAN_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "STUDYPLAN_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
