package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-manager/internal/bot"
	"task-manager/internal/config"
	"task-manager/internal/repository"
	"task-manager/internal/service"
	"task-manager/internal/weather"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	store := repository.NewKVRepository(db)

	authSvc := service.NewAuthService(store)
	authSvc.RestoreAuth(ctx)

	taskSvc := service.NewTaskService(ctx, store)
	weatherSvc := service.NewWeatherService(taskSvc,
		weather.NewClient(cfg.WeatherURL, cfg.WeatherAPIKey, cfg.WeatherQuery, cfg.WeatherTimeout),
		cfg.WeatherTimeout)
	weatherSvc.Attach(ctx)
	weatherSvc.Sweep()

	telegramBot, err := bot.New(cfg.TelegramToken, bot.Services{
		Auth:       authSvc,
		Tasks:      taskSvc,
		Categories: service.NewCategoryService(taskSvc),
		Stats:      service.NewStatsService(taskSvc),
		Reports:    service.NewReportService(taskSvc, authSvc),
	})
	if err != nil {
		log.Fatalf("bot: %v", err)
	}

	sendReport := func() {
		jobCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := telegramBot.SendReport(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("report: %v", err)
		}
	}

	scheduler := service.NewSchedulerService(time.Local)
	if cfg.ReportTime != "" {
		_, err = scheduler.ScheduleDaily("report", cfg.ReportTime, sendReport)
	} else {
		_, err = scheduler.ScheduleInterval("report", cfg.ReportInterval, sendReport)
	}
	if err != nil {
		log.Fatalf("schedule reports: %v", err)
	}
	if _, err := scheduler.ScheduleInterval("weather sweep", cfg.WeatherSweep, weatherSvc.Sweep); err != nil {
		log.Fatalf("schedule weather sweep: %v", err)
	}
	scheduler.Start()

	log.Println("Task manager started.")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("bot stopped with error: %v", err)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	scheduler.Stop(stopCtx)
	weatherSvc.Wait()
	log.Println("Shutdown complete.")
}
