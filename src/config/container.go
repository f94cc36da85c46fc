package config

import (
	"context"
	"database/sql"
	"fmt"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"gitlab.com/open-soft/go-chart-server/src/client"
	"gitlab.com/open-soft/go-chart-server/src/controller"
	"gitlab.com/open-soft/go-chart-server/src/model"
	"gitlab.com/open-soft/go-chart-server/src/repository"
	"gitlab.com/open-soft/go-chart-server/src/service/chart"
	"gitlab.com/open-soft/go-chart-server/src/service/indicator"
	"gitlab.com/open-soft/go-chart-server/src/service/marketdata"
	"log"
	"net/http"
	"os"
	"time"
)

type Container struct {
	Db  *sql.DB
	RDB *redis.Client

	CurrentSession *model.ChartSession

	CandleRepository  *repository.CandleRepository
	SessionRepository *repository.SessionRepository

	BinanceClient *client.BinanceClient
	BackendClient *client.BackendClient

	MarketDataService *marketdata.MarketDataService
	StreamManager     *marketdata.StreamManager
	IndicatorRegistry *indicator.Registry
	PaneManager       *chart.PaneManager
	CrosshairService  *chart.CrosshairService

	ChartController *controller.ChartController
}

func InitServiceContainer() Container {
	sessionUuid := os.Getenv("SESSION_UUID")
	if len(sessionUuid) == 0 {
		panic("'SESSION_UUID' variable must be set!")
	}

	db, err := sql.Open("mysql", os.Getenv("DATABASE_DSN"))
	if err != nil {
		log.Panic(err)
	}

	db.SetMaxIdleConns(64)
	db.SetMaxOpenConns(64)
	db.SetConnMaxLifetime(time.Minute)

	rdb := redis.NewClient(&redis.Options{
		Addr:     os.Getenv("REDIS_DSN"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
	ctx := context.Background()

	sessionRepository := repository.SessionRepository{
		DB: db,
	}

	currentSession := sessionRepository.GetSession(sessionUuid)
	if currentSession == nil {
		_, err = sessionRepository.Create(model.ChartSession{
			SessionUuid: sessionUuid,
			Indicators:  model.IndicatorConfigList{},
		})

		if err != nil {
			log.Panic(err)
		}

		currentSession = sessionRepository.GetSession(sessionUuid)
	}

	if currentSession == nil {
		panic(fmt.Sprintf("Session %s is not initialized", sessionUuid))
	}

	log.Printf("session %s is initialized", currentSession.SessionUuid)

	candleRepository := repository.CandleRepository{
		RDB:            rdb,
		Ctx:            &ctx,
		CurrentSession: currentSession,
	}

	httpClient := client.HttpClient{
		Timeout: time.Second * 10,
	}

	binanceApiUri := os.Getenv("BINANCE_API_DSN")
	if len(binanceApiUri) == 0 {
		binanceApiUri = "https://api.binance.com"
	}

	binanceStreamUri := os.Getenv("BINANCE_STREAM_DSN")
	if len(binanceStreamUri) == 0 {
		binanceStreamUri = "wss://stream.binance.com:9443"
	}

	binanceClient := client.BinanceClient{
		ApiUri:     binanceApiUri,
		HttpClient: &httpClient,
	}

	backendClient := client.BackendClient{
		ApiUri:     os.Getenv("BACKEND_API_DSN"),
		HttpClient: &httpClient,
	}

	marketDataService := marketdata.MarketDataService{
		Storage:        &candleRepository,
		Primary:        &binanceClient,
		Secondary:      &backendClient,
		CacheCleaner:   &backendClient,
		AttemptTimeout: time.Second * 10,
	}

	streamManager := marketdata.StreamManager{
		Connector:     &client.StreamConnector{},
		Formatter:     &binanceClient,
		Fallback:      &binanceClient,
		StreamAddress: binanceStreamUri,
		PollInterval:  time.Second * 10,
	}

	indicatorRegistry := indicator.NewRegistry()

	paneManager := chart.PaneManager{
		Registry: indicatorRegistry,
	}

	crosshairService := chart.CrosshairService{}

	chartController := controller.ChartController{
		CurrentSession:    currentSession,
		MarketDataService: &marketDataService,
		PaneManager:       &paneManager,
		CrosshairService:  &crosshairService,
		SessionRepository: &sessionRepository,
		StreamManager:     &streamManager,
	}

	return Container{
		Db:                db,
		RDB:               rdb,
		CurrentSession:    currentSession,
		CandleRepository:  &candleRepository,
		SessionRepository: &sessionRepository,
		BinanceClient:     &binanceClient,
		BackendClient:     &backendClient,
		MarketDataService: &marketDataService,
		StreamManager:     &streamManager,
		IndicatorRegistry: indicatorRegistry,
		PaneManager:       &paneManager,
		CrosshairService:  &crosshairService,
		ChartController:   &chartController,
	}
}

// todo: use GIN http server
func (c *Container) StartHttpServer() {
	http.HandleFunc("/chart/candles", c.ChartController.GetCandlesAction)
	http.HandleFunc("/chart/panes", c.ChartController.GetPanesAction)
	http.HandleFunc("/chart/summary", c.ChartController.GetSummaryAction)
	http.HandleFunc("/chart/indicator", c.ChartController.AddIndicatorAction)
	http.HandleFunc("/chart/indicator/remove", c.ChartController.RemoveIndicatorAction)
	http.HandleFunc("/chart/pane/remove", c.ChartController.RemovePaneAction)
	http.HandleFunc("/chart/pointer", c.ChartController.PointerAction)
	http.HandleFunc("/chart/live", c.ChartController.LiveAction)
	http.HandleFunc("/chart/cache/clear", c.ChartController.ClearCacheAction)
	http.HandleFunc("/health/check", c.ChartController.HealthAction)

	port := os.Getenv("HTTP_PORT")
	if len(port) == 0 {
		port = "8090"
	}

	err := http.ListenAndServe(fmt.Sprintf(":%s", port), nil)
	if err != nil {
		log.Panic(err)
	}
}
