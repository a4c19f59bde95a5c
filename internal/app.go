package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	vaultapi "github.com/hashicorp/vault/api"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/s-larionov/process-manager"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ai-capital/ai-capital-backend/internal/admission"
	"github.com/ai-capital/ai-capital-backend/internal/allowlist"
	"github.com/ai-capital/ai-capital-backend/internal/chain"
	"github.com/ai-capital/ai-capital-backend/internal/config"
	"github.com/ai-capital/ai-capital-backend/internal/judge"
	"github.com/ai-capital/ai-capital-backend/internal/ledger"
	"github.com/ai-capital/ai-capital-backend/internal/lock"
	"github.com/ai-capital/ai-capital-backend/internal/metrics"
	"github.com/ai-capital/ai-capital-backend/internal/nonce"
	"github.com/ai-capital/ai-capital-backend/internal/portfolio"
	"github.com/ai-capital/ai-capital-backend/internal/scheduler"
	"github.com/ai-capital/ai-capital-backend/internal/screener"
	"github.com/ai-capital/ai-capital-backend/internal/secrets"
	"github.com/ai-capital/ai-capital-backend/internal/settlement"
	"github.com/ai-capital/ai-capital-backend/internal/treasury"
	"github.com/ai-capital/ai-capital-backend/pkg/health"
	"github.com/ai-capital/ai-capital-backend/pkg/prometheus"
	"github.com/ai-capital/ai-capital-backend/pkg/rest"
	"github.com/ai-capital/ai-capital-backend/pkg/sdk/coinmarketcap"
	"github.com/ai-capital/ai-capital-backend/pkg/sdk/inference"
	"github.com/ai-capital/ai-capital-backend/pkg/sdk/moralis"
)

const (
	sdkTimeout          = 30 * time.Second
	admissionLockSpace  = "aicapital:admission:"
	settlementLockSpace = "aicapital:"
	settlementGroup     = "settlement"
)

type Application struct {
	sigChan <-chan os.Signal
	manager *process.Manager
	cfg     config.App
	db      *gorm.DB
	redis   *redis.Client
	nc      *nats.Conn
	chain   *chain.Client

	oracle     *allowlist.Oracle
	ledger     *ledger.Service
	settlement *settlement.Service
	admission  *admission.Service
	nonce      *nonce.Service
	portfolio  *portfolio.Service
	treasury   *treasury.Service

	settlementQueue interface {
		Start(ctx context.Context) error
	}
}

func NewApplication(cfg config.App) (*Application, error) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	a := &Application{
		sigChan: sigChan,
		cfg:     cfg,
		manager: process.NewManager(),
	}

	err := a.bootstrap()
	if err != nil {
		return nil, err
	}

	return a, nil
}

func (a *Application) Run() {
	a.manager.StartAll()
	a.registerShutdown()
}

func (a *Application) bootstrap() error {
	initializers := []func() error{
		a.initSecrets,
		a.initDB,
		a.initChain,
		a.initRedis,
		a.initNats,

		// Init Dependencies
		a.initServices,

		// Init Workers: Application
		a.initAPI,
		a.initScheduler,
		a.initSettlementWorker,

		// Init Workers: System
		a.initPrometheusWorker,
		a.initHealthWorker,
	}

	for _, initializer := range initializers {
		if err := initializer(); err != nil {
			return err
		}
	}

	return nil
}

// initSecrets fills secrets missing from the environment from vault
func (a *Application) initSecrets() error {
	if a.cfg.Vault.Token == "" {
		return nil
	}

	cli, err := vaultapi.NewClient(&vaultapi.Config{Address: a.cfg.Vault.Address})
	if err != nil {
		return fmt.Errorf("vault client: %w", err)
	}
	cli.SetToken(a.cfg.Vault.Token)

	repo := secrets.NewRepo(cli.Logical(), a.cfg.Vault.BasePath)

	return secrets.Fill(repo, map[string]*string{
		"openai_api_key":             &a.cfg.AI.Key,
		"injection_api_key":          &a.cfg.Injection.Key,
		"backend_wallet_private_key": &a.cfg.Chain.BackendPrivateKey,
		"moralis_api_key":            &a.cfg.Market.MoralisKey,
		"cmc_api_key":                &a.cfg.Market.CMCKey,
		"cron_secret":                &a.cfg.Cron.Secret,
		"redis_password":             &a.cfg.Redis.Password,
	})
}

func (a *Application) initDB() error {
	db, err := gorm.Open(postgres.Open(a.cfg.DB.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		return err
	}

	ps, err := db.DB()
	if err != nil {
		return err
	}
	ps.SetMaxOpenConns(a.cfg.DB.MaxOpenConnections)

	a.db = db
	if a.cfg.DB.Debug {
		a.db = db.Debug()
	}

	return a.db.AutoMigrate(
		&ledger.Message{},
		&settlement.Job{},
		&nonce.Counter{},
		&portfolio.Snapshot{},
	)
}

func (a *Application) initChain() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := chain.Dial(ctx, a.cfg.Chain.RPCURL, a.cfg.Chain.ChainID, a.cfg.Chain.BackendPrivateKey)
	if err != nil {
		return fmt.Errorf("chain client: %w", err)
	}
	a.chain = client

	log.Info().Str("backend_wallet", client.Address().Hex()).Msg("chain client is ready")

	return nil
}

func (a *Application) initRedis() error {
	if !a.cfg.Redis.Enabled() {
		return nil
	}

	a.redis = redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})

	return nil
}

func (a *Application) initNats() error {
	if a.cfg.Settlement.Queue != config.SettlementQueueNats {
		return nil
	}

	nc, err := nats.Connect(
		a.cfg.Nats.URL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(a.cfg.Nats.MaxReconnects),
		nats.ReconnectWait(a.cfg.Nats.ReconnectTimeout),
	)
	if err != nil {
		return err
	}
	a.nc = nc

	return nil
}

func (a *Application) initServices() error {
	a.ledger = ledger.NewService(ledger.NewRepo(a.db))

	if err := a.initSettlement(); err != nil {
		return err
	}

	if err := a.initAdmission(); err != nil {
		return err
	}

	a.initNonce()
	a.initPortfolio()

	return a.initTreasury()
}

func (a *Application) initSettlement() error {
	prizePoolABI, err := chain.ParseABI(chain.PrizePoolABI)
	if err != nil {
		return err
	}

	prizePoolAddress, err := chain.ParseAddress(a.cfg.Chain.PrizePoolContract)
	if err != nil {
		return fmt.Errorf("prize pool contract: %w", err)
	}

	allowlistAddress := prizePoolAddress
	if a.cfg.Chain.AllowlistContract != "" {
		allowlistAddress, err = chain.ParseAddress(a.cfg.Chain.AllowlistContract)
		if err != nil {
			return fmt.Errorf("allow-list contract: %w", err)
		}
	}

	a.oracle = allowlist.NewOracle(a.chain.Contract("allowlist", allowlistAddress, prizePoolABI))
	pool := settlement.NewPrizePool(a.chain.Contract("prize_pool", prizePoolAddress, prizePoolABI))

	// one settlement at a time across every instance sharing the prize pool
	var locker settlement.Locker = lock.NewMemory()
	switch {
	case a.redis != nil:
		locker = lock.NewRedis(a.redis, settlementLockSpace, a.cfg.Settlement.MaxDuration+time.Minute)
	case a.cfg.Settlement.Queue == config.SettlementQueueNats:
		return fmt.Errorf("settlement queue %s requires redis for the settlement lock", config.SettlementQueueNats)
	}

	repo := settlement.NewRepo(a.db)
	worker := settlement.NewWorker(repo, pool, a.oracle, locker, a.cfg.Settlement.MaxDuration)

	var queue settlement.Queue
	switch a.cfg.Settlement.Queue {
	case config.SettlementQueueLocal:
		q := settlement.NewLocalQueue(a.cfg.Settlement.BufferSize, worker.Process, repo)
		queue, a.settlementQueue = q, q
	case config.SettlementQueueNats:
		q := settlement.NewNatsQueue(a.nc, a.cfg.Settlement.Subject, settlementGroup, worker.Process, repo)
		queue, a.settlementQueue = q, q
	default:
		return fmt.Errorf("unknown settlement queue: %s", a.cfg.Settlement.Queue)
	}

	a.settlement = settlement.NewService(repo, queue)

	return nil
}

func (a *Application) initAdmission() error {
	var classifier screener.Classifier
	if a.cfg.Injection.Key != "" {
		classifier = inference.NewClient(
			a.cfg.Injection.BaseURL,
			a.cfg.Injection.Key,
			metrics.NewHTTPClient("injection_classifier", 0),
		)
	} else {
		log.Warn().Msg("injection classifier is disabled")
	}

	if a.cfg.AI.Key == "" {
		return fmt.Errorf("openai api key is not set")
	}

	ai := judge.NewAIClient(judge.NewOpenAIClient(a.cfg.AI.Key, ""), judge.Params{
		Model:       a.cfg.AI.Model,
		Temperature: a.cfg.AI.Temperature,
		MaxTokens:   a.cfg.AI.MaxTokens,
	})

	var locker admission.Locker = lock.NewMemory()
	if a.redis != nil {
		locker = lock.NewRedis(a.redis, admissionLockSpace, a.cfg.Redis.LockTTL)
	}

	a.admission = admission.NewService(
		a.oracle,
		screener.New(classifier, a.cfg.Injection.Timeout),
		ai,
		a.ledger,
		a.settlement,
		locker,
	)

	return nil
}

func (a *Application) initNonce() {
	var repo nonce.DataProvider = nonce.NewRepo(a.db)
	if a.redis != nil {
		repo = nonce.NewRedisRepo(a.redis)
	}

	a.nonce = nonce.NewService(repo)
}

func (a *Application) initPortfolio() {
	client := moralis.NewClient(a.cfg.Market.MoralisURL, a.cfg.Market.MoralisKey, metrics.NewHTTPClient("moralis", sdkTimeout))
	a.portfolio = portfolio.NewService(portfolio.NewRepo(a.db), client, a.cfg.Market.FundWallet, a.cfg.Market.Chains, a.cfg.Market.HistoryChain)
}

func (a *Application) initTreasury() error {
	if a.cfg.Chain.FundContract == "" {
		log.Warn().Msg("fund contract is not configured, treasury is disabled")

		return nil
	}

	fundAddress, err := chain.ParseAddress(a.cfg.Chain.FundContract)
	if err != nil {
		return fmt.Errorf("fund contract: %w", err)
	}

	specs, err := treasury.ParseTokenSpecs(a.cfg.Chain.TreasuryTokens, a.cfg.Chain.TreasurySymbols, a.cfg.Chain.TreasuryDecimals)
	if err != nil {
		return err
	}

	fundABI, err := chain.ParseABI(chain.FundABI)
	if err != nil {
		return err
	}

	quotes := coinmarketcap.NewClient(a.cfg.Market.CMCURL, a.cfg.Market.CMCKey, metrics.NewHTTPClient("coinmarketcap", sdkTimeout))
	a.treasury = treasury.NewService(
		a.chain.Contract("fund", fundAddress, fundABI),
		a.chain,
		quotes,
		fundAddress,
		specs,
		a.cfg.Chain.NativeSymbol,
	)

	return nil
}

func (a *Application) initAPI() error {
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()
	api.Use(rest.Timeout(a.cfg.API.RequestTimeout))

	admission.NewServer(a.admission).Register(api)
	ledger.NewServer(a.ledger).Register(api)
	settlement.NewServer(a.settlement).Register(api)
	nonce.NewServer(a.nonce).Register(api)
	portfolio.NewServer(a.portfolio, rest.BearerSecret(a.cfg.Cron.Secret, a.cfg.IsDev())).Register(api)
	if a.treasury != nil {
		treasury.NewServer(a.treasury).Register(api)
	}

	srv := &http.Server{
		Addr:              a.cfg.API.Listen,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      a.cfg.API.RequestTimeout + 10*time.Second,
	}
	a.manager.AddWorker(process.NewServerWorker("API", srv))

	return nil
}

func (a *Application) initScheduler() error {
	if a.cfg.Cron.PortfolioSpec == "" {
		return nil
	}

	runner := scheduler.NewRunner()
	err := runner.Add("portfolio-snapshot", a.cfg.Cron.PortfolioSpec, func(ctx context.Context) error {
		_, err := a.portfolio.TakeSnapshot(ctx)

		return err
	})
	if err != nil {
		return err
	}

	a.manager.AddWorker(process.NewCallbackWorker("scheduler", runner.Start))

	return nil
}

func (a *Application) initSettlementWorker() error {
	a.manager.AddWorker(process.NewCallbackWorker("settlement", a.settlementQueue.Start))

	return nil
}

func (a *Application) initPrometheusWorker() error {
	srv := prometheus.NewServer(a.cfg.Prometheus.Listen, "/metrics")
	a.manager.AddWorker(process.NewServerWorker("prometheus", srv))

	return nil
}

func (a *Application) initHealthWorker() error {
	checks := map[string]health.Checker{
		"database": func(ctx context.Context) error {
			db, err := a.db.DB()
			if err != nil {
				return err
			}

			return db.PingContext(ctx)
		},
	}

	if a.redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		}
	}

	if a.nc != nil {
		checks["nats"] = func(context.Context) error {
			if !a.nc.IsConnected() {
				return fmt.Errorf("nats status: %s", a.nc.Status())
			}

			return nil
		}
	}

	srv := health.NewHealthCheckServer(a.cfg.Health.Listen, "/status", health.DefaultHandler(checks))
	a.manager.AddWorker(process.NewServerWorker("health", srv))

	return nil
}

func (a *Application) registerShutdown() {
	go func(manager *process.Manager) {
		<-a.sigChan

		manager.StopAll()
	}(a.manager)

	a.manager.AwaitAll()

	if a.nc != nil {
		a.nc.Close()
	}

	if a.redis != nil {
		_ = a.redis.Close()
	}
}
