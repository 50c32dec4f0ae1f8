package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"ideaeval/internal/evaluation"
	"ideaeval/internal/gateway/app"
	"ideaeval/internal/gateway/config"
	"ideaeval/internal/orchestrator"
	"ideaeval/internal/prompt"
	"ideaeval/internal/util/jsonutil"
)

func main() {
	idea := flag.String("idea", "", "startup idea to evaluate (read from stdin when empty)")
	outDir := flag.String("out", "", "directory for result.json and the prototype image")
	fake := flag.Bool("fake", false, "use the offline fake model")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.FromEnv(os.Getenv)
	if err != nil {
		log.Fatal(err)
	}
	if *fake {
		cfg.LLM.Fake = true
	}
	if !cfg.LLM.Fake && cfg.LLM.APIKey == "" {
		log.Fatal("GEMINI_API_KEY is not set (or pass -fake)")
	}

	text := *idea
	if strings.TrimSpace(text) == "" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatal(err)
		}
		text = string(b)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen, err := app.NewGenerator(ctx, cfg.LLM, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer gen.Close()

	advisor, err := evaluation.NewAdvisor()
	if err != nil {
		log.Fatal(err)
	}
	o, err := orchestrator.New(orchestrator.Config{
		ID:        "cli",
		Generator: gen,
		Prompts: prompt.NewBuilder(prompt.Options{
			EvaluationModel: cfg.LLM.EvaluationModel,
			ImageModel:      cfg.LLM.ImageModel,
			AspectRatio:     cfg.LLM.AspectRatio,
		}),
		Advisor:      advisor,
		StageTimeout: cfg.StageTimeout,
	})
	if err != nil {
		log.Fatal(err)
	}

	snap, err := o.Submit(ctx, text)
	if err != nil {
		log.Fatal(err)
	}

	b, err := jsonutil.MarshalNoEscapeIndent(snap, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	os.Stdout.Write(append(b, '\n'))

	if *outDir != "" {
		if err := writeOutputs(*outDir, b, snap.Image); err != nil {
			log.Fatal(err)
		}
		log.Println("evaluation written →", *outDir)
	}
	if snap.State != orchestrator.StateSucceeded {
		os.Exit(1)
	}
}

func writeOutputs(dir string, result []byte, img *evaluation.PrototypeImage) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "result.json"), result, 0o644); err != nil {
		return err
	}
	if img == nil {
		return nil
	}
	return os.WriteFile(filepath.Join(dir, "prototype"+imageExt(img.MIMEType)), img.Data, 0o644)
}

func imageExt(mime string) string {
	switch strings.ToLower(mime) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	}
	return ".png"
}
