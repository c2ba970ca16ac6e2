package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/MalithGihan/pdftext-service/internal/config"
	"github.com/MalithGihan/pdftext-service/internal/extract"
	"github.com/MalithGihan/pdftext-service/internal/ingest"
	"github.com/MalithGihan/pdftext-service/internal/ocr"
	"github.com/MalithGihan/pdftext-service/internal/server"
	"github.com/MalithGihan/pdftext-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := cfg.Logger()
	slog.SetDefault(logger)

	st, err := store.New(cfg.ScratchDir)
	if err != nil {
		log.Fatal(err)
	}

	bins := map[ocr.Dependency]string{ocr.DependencyPoppler: cfg.PdftoppmPath}
	var recognizer extract.Recognizer = ocr.NewGosseract()
	if cfg.OCREngine == config.EngineCLI {
		recognizer = ocr.NewTesseractCLI(cfg.TesseractPath)
		bins[ocr.DependencyTesseract] = cfg.TesseractPath
	}
	for _, err := range ocr.CheckBinaries(bins) {
		logger.Warn("OCR dependency missing; scanned pages will carry a diagnostic",
			"dependency", ocr.Classify(err).String(), "error", err, "hint", ocr.Remediation(err))
	}

	resolver := extract.NewResolver(
		ocr.NewPdftoppm(cfg.PdftoppmPath, cfg.RasterDPI, st.Root),
		recognizer,
		cfg.MinNativeChars,
		logger,
	)
	pipeline := extract.NewPipeline(st, ingest.PDFOpener{}, resolver, logger)
	h := server.NewHandler(pipeline, int64(cfg.MaxUploadMB)<<20, cfg.ValidateResponses, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("pdf extractor listening", "addr", srv.Addr, "ocr_engine", cfg.OCREngine)
	log.Fatal(srv.ListenAndServe())
}
