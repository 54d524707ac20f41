package main

import (
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/SabbirHossainEvan/yozietrance-app-sub000"
	"github.com/SabbirHossainEvan/yozietrance-app-sub000/api"
	"github.com/SabbirHossainEvan/yozietrance-app-sub000/cache"
	"github.com/SabbirHossainEvan/yozietrance-app-sub000/persistent"
	"github.com/SabbirHossainEvan/yozietrance-app-sub000/realtime"
	"github.com/SabbirHossainEvan/yozietrance-app-sub000/registry"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/buntdb"
)

// Smoke tool: restores (or creates) a session, subscribes to the product
// catalog and prints realtime pushes until interrupted.

func setupLogger(verbose bool) {
	logrus.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: time.Stamp,
		FullTimestamp:   true,
	})
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

type config struct {
	apiUrl    string
	socketUrl string
	email     string
	password  string
}

func configFromEnv() config {
	requireEnv := func(key string) string {
		value := os.Getenv(key)
		if value == "" {
			logrus.Fatalln(key + " not set!")
		}
		return value
	}
	return config{
		apiUrl:    requireEnv("YOZIE_API_URL"),
		socketUrl: requireEnv("YOZIE_SOCKET_URL"),
		email:     os.Getenv("YOZIE_EMAIL"),
		password:  os.Getenv("YOZIE_PASSWORD"),
	}
}

func awaitInterruption() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c
}

func restoreOrLogin(client *api.Client, sessions yozie.SessionStore, cfg config) yozie.Session {
	session, err := sessions.Current()
	if err == nil {
		logrus.WithField("user_id", session.UserId).Infoln("Session restored from storage.")
		return session
	}
	if !errors.Is(err, yozie.ErrNoSession) {
		logrus.WithError(err).Fatalln("Could not read session storage.")
	}
	if cfg.email == "" || cfg.password == "" {
		logrus.Fatalln("No stored session and YOZIE_EMAIL/YOZIE_PASSWORD not set!")
	}

	session, err = client.Login(cfg.email, cfg.password)
	if err != nil {
		logrus.WithError(err).Fatalln("Login failed.")
	}
	return session
}

func main() {
	debug := os.Getenv("DEBUG") == "true"
	setupLogger(debug)
	logrus.Infoln("Starting yozie client.")

	cfg := configFromEnv()

	bdb, err := buntdb.Open("session.db")
	if err != nil {
		logrus.WithError(err).Fatalln("Could not open buntdb.")
	}
	defer bdb.Close()

	sessions := &persistent.SessionStore{Buntdb: bdb}
	client := &api.Client{BaseUrl: cfg.apiUrl, Session: sessions}
	session := restoreOrLogin(client, sessions, cfg)

	store := cache.New()
	endpoints := registry.New(client)

	subscription, products, err := store.Subscribe(endpoints.Products, "")
	if err != nil {
		logrus.WithError(err).Fatalln("Could not load products.")
	}
	defer subscription.Close()
	if listed, ok := products.([]yozie.Product); ok {
		logrus.WithField("count", len(listed)).Infoln("Product catalog loaded.")
	}

	channel := realtime.New(cfg.socketUrl)
	defer channel.Close()
	bridge := &realtime.Bridge{Cache: store}
	detach := bridge.Attach(channel)
	defer detach()
	channel.On(realtime.EventNotification, func(data json.RawMessage) {
		logrus.WithField("payload", string(data)).Infoln("Notification pushed.")
	})
	channel.UpdateAuth(session.AccessToken, session.Profile.Aliases())

	go func() {
		for data := range subscription.Updates() {
			if listed, ok := data.([]yozie.Product); ok {
				logrus.WithField("count", len(listed)).Infoln("Product catalog updated.")
			}
		}
	}()

	logrus.Infoln("Listening for pushes... To shut down use ^C")
	awaitInterruption()
	logrus.Infoln("Shutting down...")
	logrus.Exit(0)
}
