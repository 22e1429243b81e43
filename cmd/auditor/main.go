package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/yamabiko/timetable/internal/constraint"
	"github.com/yamabiko/timetable/internal/dto"
	"github.com/yamabiko/timetable/internal/repository"
	"github.com/yamabiko/timetable/internal/service"
	"github.com/yamabiko/timetable/pkg/cache"
	"github.com/yamabiko/timetable/pkg/config"
	"github.com/yamabiko/timetable/pkg/database"
	"github.com/yamabiko/timetable/pkg/export"
	"github.com/yamabiko/timetable/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Audit.TermID == "" || cfg.Audit.ScheduleID == "" {
		logr.Fatal("AUDIT_TERM_ID and AUDIT_SCHEDULE_ID must be set")
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// Audits run fine without the report cache.
		logr.Warn("redis unavailable, report caching disabled", zap.Error(err))
		redisClient = nil
	}

	metrics := service.NewMetricsService()
	if cfg.Metrics.Enabled {
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			logr.Info("metrics listening", zap.String("addr", addr))
			if err := http.ListenAndServe(addr, mux); err != nil {
				logr.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	auditSvc := service.NewAuditService(
		repository.NewSchoolRepository(db),
		repository.NewAbsenceRepository(db),
		repository.NewScheduleRepository(db),
		repository.NewReportCacheRepository(redisClient, logr),
		metrics,
		nil,
		logr,
		service.AuditServiceConfig{
			CheckLevel:          constraint.ParseCheckLevel(cfg.Validator.CheckLevel),
			CacheTTL:            cfg.Audit.CacheTTL,
			LearnedRulesEnabled: cfg.Validator.LearnedRulesEnabled,
		},
	)

	report, err := auditSvc.Audit(context.Background(), dto.AuditRequest{
		TermID:     cfg.Audit.TermID,
		ScheduleID: cfg.Audit.ScheduleID,
	})
	if err != nil {
		logr.Fatal("audit failed", zap.Error(err))
	}

	if err := writeReports(cfg.Audit.ReportDir, report); err != nil {
		logr.Fatal("report export failed", zap.Error(err))
	}

	logr.Info("audit report written",
		zap.String("report_id", report.ReportID),
		zap.String("dir", cfg.Audit.ReportDir),
		zap.Int("errors", report.ErrorCount),
		zap.Int("warnings", report.WarningCount),
		zap.Bool("valid", report.Valid))

	if !report.Valid {
		os.Exit(1)
	}
}

func writeReports(dir string, report *dto.AuditReport) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	title := fmt.Sprintf("Timetable audit %s", report.ScheduleID)
	pdfBytes, err := export.NewPDFExporter().RenderSections(title, service.ReportSections(report))
	if err != nil {
		return err
	}
	pdfPath := filepath.Join(dir, fmt.Sprintf("audit-%s.pdf", report.ReportID))
	if err := os.WriteFile(pdfPath, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}

	csvBytes, err := export.NewCSVExporter().Render(service.ReportDataset(report))
	if err != nil {
		return err
	}
	csvPath := filepath.Join(dir, fmt.Sprintf("audit-%s.csv", report.ReportID))
	if err := os.WriteFile(csvPath, csvBytes, 0o644); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	return nil
}
