package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"olympus.io/loot-of-olympus/internal/aws"
	"olympus.io/loot-of-olympus/internal/cache"
	"olympus.io/loot-of-olympus/internal/config"
	"olympus.io/loot-of-olympus/internal/csv"
	"olympus.io/loot-of-olympus/internal/database"
	"olympus.io/loot-of-olympus/internal/databus"
	"olympus.io/loot-of-olympus/internal/game"
	"olympus.io/loot-of-olympus/internal/http"
	"olympus.io/loot-of-olympus/internal/identity"
	"olympus.io/loot-of-olympus/internal/item"
	"olympus.io/loot-of-olympus/internal/ledger"
	"olympus.io/loot-of-olympus/internal/provision"
	"olympus.io/loot-of-olympus/internal/starter"
	"olympus.io/loot-of-olympus/pkg/common"
	"olympus.io/loot-of-olympus/pkg/errors"
	"olympus.io/loot-of-olympus/pkg/log"
)

func main() {
	log.Infof("Starting app")
	startApp()
}

func startApp() {
	defer func() {
		if i := recover(); i != nil {
			log.Fatal(errors.ErrorfAndReport("%v", i))
		}
	}()
	config.Read()
	conf := config.Global
	log.SetLevel(conf.LogLevel)
	setupReporters(conf)
	if conf.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := item.LoadCatalog(conf.Game.CatalogPath)
	if err != nil {
		log.Fatalf("load catalog:%v", err)
	}
	log.Infof("Catalog loaded with %v collectibles", catalog.Len())

	var (
		l       ledger.Ledger
		items   item.Repository
		limiter http.SubmitLimiter
	)
	switch conf.Game.Store {
	case config.GameStoreRedis:
		cache.Init(&conf.RedisCredential)
		defer cache.Close()
		l = ledger.NewRedisLedger(cache.Redis)
		items = item.NewCachedRepository(cache.Redis, databaseItems(conf), time.Duration(conf.Game.ItemCacheTTLSec)*time.Second)
		if conf.Server.AnswerRatePerMin > 0 {
			limiter = cache.NewSubmitLimiter(cache.RateLimiter, conf.Server.AnswerRatePerMin)
		}
	default:
		log.Warn("Game state is kept in memory and lost on restart")
		l = ledger.NewMemoryLedger()
		items = databaseItems(conf)
		if items == nil {
			items = item.NewMemoryRepository()
		}
	}
	defer database.Close()

	var bus databus.Publisher = databus.LocalBus{}
	if conf.Kafka.Servers != "" {
		kafka, err := databus.NewDataBus(conf.Kafka.Servers, map[string]string{
			databus.KindCollectibleClaimed: conf.Kafka.ClaimTopic,
			databus.KindItemPublished:      conf.Kafka.PostTopic,
		})
		if err != nil {
			log.Fatalf("init databus:%v", err)
		}
		defer func() {
			if err := kafka.Close(); err != nil {
				log.Warn(err)
			}
		}()
		bus = kafka
	}

	var (
		exporter http.ClaimantExporter
		provOpts []provision.Option
	)
	if conf.AwsS3.Enabled() {
		aws.Init(ctx, conf.AwsS3.Bucket.Name, conf.AwsS3.Bucket.Region)
		exporter = csv.NewClaimantExporter(aws.Client, conf.AwsS3.ExportPrefix)
		provOpts = append(provOpts, provision.WithImageResolver(aws.Client.PublicS3AccessURLFrom))
	}

	node, err := common.NewIDNode(conf.Provision.NodeID)
	if err != nil {
		log.Fatalf("create id node:%v", err)
	}
	evaluator, err := game.NewEvaluator(l, conf.Game.MaxClaims, game.WithAnonymousUsername(conf.Game.AnonymousUsername))
	if err != nil {
		log.Fatalf("create evaluator:%v", err)
	}
	provisioner := provision.NewProvisioner(catalog, items, bus, node, provOpts...)

	starter.Start(ctx, conf, provisioner)
	defer starter.Stop(provisioner)

	server := http.NewServer(http.Options{
		Evaluator:      evaluator,
		Items:          items,
		Catalog:        catalog,
		Ledger:         l,
		Resolver:       identity.NewResolver(conf.Identity.JWTSecret, conf.Game.AnonymousUsername),
		Publisher:      provisioner,
		Bus:            bus,
		Limiter:        limiter,
		Exporter:       exporter,
		InternalToken:  conf.Server.InternalToken,
		RequestTimeout: conf.Server.RequestTimeout(),
	})
	if err := server.Run(ctx, ":"+conf.Server.Port); err != nil {
		log.Error(err)
	}
	log.Info("App stopped")
}

// databaseItems returns nil when postgres is not configured.
func databaseItems(conf *config.Configuration) item.Repository {
	if !conf.Postgres.Enabled() {
		return nil
	}
	database.InitPostgres(&conf.Postgres)
	return item.NewDatabaseRepository(database.Postgres)
}

func setupReporters(conf *config.Configuration) {
	if conf.SentryDSN != "" {
		if err := errors.NewSentryReporter(conf.SentryDSN, conf.Environment); err != nil {
			log.Warnf("init sentry reporter:%v", err)
		}
	}
	if conf.LarkAlarmWebhook != "" {
		errors.NewLarkReporter("loot-of-olympus "+conf.Environment, conf.LarkAlarmWebhook, time.Minute)
	}
}
