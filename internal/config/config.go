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
	Host     string   `koanf:"host"`
	Booking  Booking  `koanf:"booking"`
	Database Database `koanf:"db"`
	Redis    Redis    `koanf:"redis"`
}

// Booking holds the calendar rules: the daily open window, the slot interval,
// meeting length limits and the set of rooms the calendar displays.
type Booking struct {
	// OpenHourStart and OpenHourEnd are "HH:MM" within a single day.
	OpenHourStart string `koanf:"openhourstart"`
	OpenHourEnd   string `koanf:"openhourend"`
	// IntervalMinutes is the booking granularity; all slot boundaries must align to it.
	IntervalMinutes   int `koanf:"intervalminutes"`
	MinMeetingMinutes int `koanf:"minmeetingminutes"`
	// Per-role caps on a single meeting's duration.
	MaxMeetingMinutesStudent int `koanf:"maxmeetingminutesstudent"`
	MaxMeetingMinutesStaff   int `koanf:"maxmeetingminutesstaff"`
	// VisibleRoomIds is the room set the calendar renders. Rooms outside this set
	// returned by the store are filtered, not rejected.
	VisibleRoomIds []int `koanf:"visibleroomids"`
	MaxRooms       int   `koanf:"maxrooms"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

type Redis struct {
	// URL is a redis connection URL, e.g. redis://localhost:6379/0.
	// Empty disables the week grid cache.
	URL string        `koanf:"url"`
	TTL time.Duration `koanf:"ttl"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Host: "http://localhost:3000",
		Booking: Booking{
			OpenHourStart:            "06:00",
			OpenHourEnd:              "21:00",
			IntervalMinutes:          15,
			MinMeetingMinutes:        15,
			MaxMeetingMinutesStudent: 120,
			MaxMeetingMinutesStaff:   480,
			VisibleRoomIds:           []int{1, 2, 3, 4},
			MaxRooms:                 10,
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "roombook",
			Pass:   "",
			Name:   "roombook",
			Schema: "roombook",
		},
		Redis: Redis{
			URL: "",
			TTL: 5 * time.Minute,
		},
	}, "koanf"), nil)
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
		Prefix: "ROOMBOOK_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "ROOMBOOK_")), "_", ".")
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
