package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/mattjoyce/airaware/internal/airquality"
	"github.com/mattjoyce/airaware/internal/chat"
	"github.com/mattjoyce/airaware/internal/config"
	"github.com/mattjoyce/airaware/internal/dashboard"
)

// clientFlags are shared by the chat and ask commands. Set flags override
// the config file.
type clientFlags struct {
	configPath string
	endpoint   string
	dashboard  string
	token      string
	mode       string
	city       string
	timeout    time.Duration
	logFile    string
}

func (f *clientFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "config.yaml", "path to config file")
	fs.StringVar(&f.endpoint, "endpoint", "", "chat endpoint URL")
	fs.StringVar(&f.dashboard, "dashboard", "", "base URL for the dashboard data API")
	fs.StringVar(&f.token, "token", os.Getenv("AIRAWARE_API_TOKEN"), "Bearer token for the gateway")
	fs.StringVar(&f.mode, "mode", "", "chat mode: admin or user")
	fs.StringVar(&f.city, "city", "", "city id or name")
	fs.DurationVar(&f.timeout, "timeout", 0, "request timeout")
	fs.StringVar(&f.logFile, "log-file", "", "write logs to this file")
}

// clientSession is everything a client command needs to talk to the gateway.
type clientSession struct {
	cfg     config.ChatConfig
	mode    chat.Mode
	logger  *slog.Logger
	locator *locator
	client  *chat.Client
	close   func()
}

func (f *clientFlags) open() (*clientSession, error) {
	cfg, err := config.LoadClient(f.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cc := cfg.Chat
	if f.endpoint != "" {
		cc.Endpoint = f.endpoint
	}
	if f.dashboard != "" {
		cc.DashboardURL = f.dashboard
	}
	if f.token != "" {
		cc.Credential = f.token
	}
	if f.mode != "" {
		cc.Mode = f.mode
	}
	if f.city != "" {
		cc.City = f.city
	}
	if f.timeout > 0 {
		cc.RequestTimeout = f.timeout
	}

	mode, err := chat.ParseMode(cc.Mode)
	if err != nil {
		return nil, err
	}
	logger, closeLog, err := newFileLogger(f.logFile, cfg.Service.LogLevel)
	if err != nil {
		return nil, err
	}

	return &clientSession{
		cfg:     cc,
		mode:    mode,
		logger:  logger,
		locator: newLocator(dashboard.NewClient(cc.DashboardURL, cc.Credential, logger), logger),
		client:  chat.NewClient(cc.Endpoint, cc.Credential, logger),
		close:   closeLog,
	}, nil
}

// cityDirectory is the part of the dashboard client the locator needs.
type cityDirectory interface {
	ListCities(ctx context.Context) ([]airquality.City, error)
	GetCity(ctx context.Context, key string) (airquality.City, error)
	Zones(ctx context.Context, cityID string) (*dashboard.ZoneBatch, error)
}

// locator builds location contexts from the dashboard API, falling back to
// the bundled catalog and locally simulated zones when it is unreachable.
type locator struct {
	dir    cityDirectory
	logger *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func newLocator(dir cityDirectory, logger *slog.Logger) *locator {
	return &locator{
		dir:    dir,
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Cities lists the selectable cities.
func (l *locator) Cities(ctx context.Context) []airquality.City {
	cities, err := l.dir.ListCities(ctx)
	if err != nil || len(cities) == 0 {
		l.logger.Warn("dashboard city list unavailable, using bundled catalog", "error", err)
		return airquality.Cities()
	}
	return cities
}

// Load returns the location context for a city id or name.
func (l *locator) Load(ctx context.Context, key string) (chat.LocationContext, error) {
	city, err := l.dir.GetCity(ctx, key)
	if err != nil {
		local, ok := airquality.FindCity(key)
		if !ok {
			return chat.LocationContext{}, fmt.Errorf("unknown city %q", key)
		}
		l.logger.Warn("dashboard city unavailable, using bundled catalog", "city", key, "error", err)
		return chat.LocationContext{City: local, Zones: l.localZones(local)}, nil
	}

	batch, err := l.dir.Zones(ctx, city.ID)
	if err != nil {
		l.logger.Warn("dashboard zones unavailable, simulating locally", "city", city.ID, "error", err)
		return chat.LocationContext{City: city, Zones: l.localZones(city)}, nil
	}
	return chat.LocationContext{City: city, Zones: batch.Zones}, nil
}

func (l *locator) localZones(city airquality.City) []airquality.Zone {
	l.mu.Lock()
	defer l.mu.Unlock()
	return airquality.GenerateZones(city, l.rng)
}
