package errors

import (
	"os"
	"sync"

	"github.com/certifi/gocertifi"
	"github.com/getsentry/sentry-go"
	"olympus.io/loot-of-olympus/pkg/log"
)

var (
	reportersMu sync.RWMutex
	reporters   []Reporter
)

func init() {
	if os.Getenv(debugMode) == "" {
		log.Info("Env DEBUG not set, report errors enabled.")
	} else {
		log.Info("Env DEBUG set, report errors disabled.")
	}
}

func report(err error) {
	if err == nil {
		return
	}
	if os.Getenv(debugMode) != "" {
		return
	}
	reportersMu.RLock()
	defer reportersMu.RUnlock()
	for _, r := range reporters {
		r.Report(err)
	}
}

// Reporter ships an error to somewhere a human will look at it.
type Reporter interface {
	Report(error)
}

// RegisterReporter adds r to the reporters used by the *AndReport helpers.
func RegisterReporter(r Reporter) {
	reportersMu.Lock()
	defer reportersMu.Unlock()
	reporters = append(reporters, r)
}

// ResetReporters drops every registered reporter.
func ResetReporters() {
	reportersMu.Lock()
	defer reportersMu.Unlock()
	reporters = nil
}

type sentryReporter struct {
}

func (s *sentryReporter) Report(err error) {
	sentry.CaptureException(err)
}

// reports are suppressed while this env is set
const debugMode = "DEBUG"

// NewSentryReporter registers a sentry reporter for the given DSN.
// An empty DSN is not an error, the reporter is just skipped.
func NewSentryReporter(sentryDSN, environment string) error {
	if sentryDSN == "" {
		log.Warn("empty DSN found, skipping sentry reporter initialization.")
		return nil
	}
	sentryClientOptions := sentry.ClientOptions{
		Dsn:         sentryDSN,
		Environment: environment,
	}

	rootCAs, err := gocertifi.CACerts()
	if err != nil {
		return Wrap(err, "init sentry CA")
	}

	sentryClientOptions.CaCerts = rootCAs
	err = sentry.Init(sentryClientOptions)
	if err != nil {
		return Wrap(err, "init sentry")
	}
	log.Info("sentry error reporter initialized.")
	RegisterReporter(&sentryReporter{})
	return nil
}
