package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"

	"github.com/harshvardhanchand/MediMind-sub001/deeplink"
	"github.com/harshvardhanchand/MediMind-sub001/identity/gotrue"
	"github.com/harshvardhanchand/MediMind-sub001/internal/config"
	"github.com/harshvardhanchand/MediMind-sub001/navigation"
	"github.com/harshvardhanchand/MediMind-sub001/profile/rest"
	"github.com/harshvardhanchand/MediMind-sub001/recovery"
	"github.com/harshvardhanchand/MediMind-sub001/session"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error running app core: %s\n", err)
	}
	log.Printf("App core stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	ctx := context.Background()

	providerOptions := []gotrue.Option{gotrue.WithLogger(logger)}
	if issuer := c.GetOIDCIssuer(); issuer != "" {
		providerOptions = append(providerOptions, gotrue.WithOIDCIssuer(ctx, issuer))
	}
	provider, err := gotrue.NewClient(c.GetIdentityBaseURL(), c.GetIdentityAnonKey(), providerOptions...)
	if err != nil {
		return fmt.Errorf("gotrue.NewClient: %w", err)
	}

	profiles, err := rest.NewClient(c.GetProfileAPIURL(), func(ctx context.Context) (string, error) {
		s, err := provider.GetSession(ctx)
		if err != nil {
			return "", err
		}
		if s == nil {
			return "", errors.New("no active session")
		}
		return s.AccessToken, nil
	})
	if err != nil {
		return fmt.Errorf("rest.NewClient: %w", err)
	}

	store := session.New(provider, profiles,
		session.WithLogger(logger),
		session.WithBootstrapTimeout(c.GetBootstrapTimeout()),
	)
	defer store.Close()

	flow := recovery.NewController(provider, recovery.WithLogger(logger))

	links := deeplink.NewListener(logger)
	defer links.Close()
	links.Subscribe(func(url string) {
		if !recovery.IsRecoveryLink(url) {
			return
		}
		go flow.ObserveURL(ctx, url)
	})
	if err := links.Attach(stdinHook(c.GetDeepLinkScheme())); err != nil {
		return fmt.Errorf("deeplink.Attach: %w", err)
	}

	gate := navigation.NewGate(store, flow, navigation.WithLogger(logger))
	gate.Subscribe(func(b navigation.Branch) {
		logger.Info().Str("branch", string(b)).Msg("render")
	})
	gate.Start()

	waitForStopSignal()
	return nil
}

// stdinHook stands in for the OS deep-link callback when running headless:
// every line on stdin starting with the app scheme is emitted as a link.
func stdinHook(scheme string) deeplink.Hook {
	return func(emit func(string)) (func(), error) {
		done := make(chan struct{})
		go func() {
			var line string
			for {
				select {
				case <-done:
					return
				default:
				}
				if _, err := fmt.Scanln(&line); err != nil {
					return
				}
				if len(line) > len(scheme) && line[:len(scheme)] == scheme {
					emit(line)
				}
			}
		}()
		return func() { close(done) }, nil
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
