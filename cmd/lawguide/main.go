// Command lawguide starts the LawGuide AI query-resolution HTTP server.
//
// It reads configuration from environment variables and wires the
// pipeline against its collaborators: Groq for language-model calls,
// Weaviate for vector search, and the embedder, reranker, and
// translator sidecars.
//
// # Environment Variables
//
//   - LAWGUIDE_PORT: HTTP server port (default: 8000)
//   - GROQ_API_KEY: Groq API key (required)
//   - GROQ_BASE_URL, GROQ_MODEL: LLM backend overrides
//   - WEAVIATE_SERVICE_URL: vector DB URL (default: http://localhost:8080)
//   - EMBEDDER_SERVICE_URL, RERANKER_SERVICE_URL, TRANSLATOR_SERVICE_URL
//   - CONFIDENCE_THRESHOLD: full-confidence cutoff (default: 0.75)
//   - SEARCH_TOP_K: retrieval shortlist size (default: 10)
//   - OVERRIDES_CONFIG: optional YAML with validator-override keywords
//   - ALLOWED_ORIGINS: comma-separated CORS origins
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OpenTelemetry collector (default: localhost:4317)
package main

import (
	"context"
	"log"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"google.golang.org/grpc/credentials/insecure"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"

	"github.com/Dacchu2004/lawGuide/config"
	"github.com/Dacchu2004/lawGuide/llm"
	"github.com/Dacchu2004/lawGuide/middleware"
	"github.com/Dacchu2004/lawGuide/observability"
	"github.com/Dacchu2004/lawGuide/pipeline"
	"github.com/Dacchu2004/lawGuide/retrieval"
	"github.com/Dacchu2004/lawGuide/routes"
	"github.com/Dacchu2004/lawGuide/translate"
)

func initTracer(otelEndpoint string) (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("lawguide-service")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

func newWeaviateClient(rawURL string) (*weaviate.Client, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	return weaviate.NewClient(weaviate.Config{
		Host:   parsedURL.Host,
		Scheme: parsedURL.Scheme,
	})
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: invalid configuration: %v", err)
	}

	cleanup, err := initTracer(cfg.OTelEndpoint)
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	observability.Init()

	weaviateClient, err := newWeaviateClient(cfg.WeaviateURL)
	if err != nil {
		log.Fatalf("Failed to create Weaviate client: %v", err)
	}
	retrieval.EnsureSchema(weaviateClient)

	groqClient, err := llm.NewGroqClient(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqModel)
	if err != nil {
		log.Fatalf("Failed to initialize Groq client: %v", err)
	}
	slog.Info("Using Groq LLM backend", "model", cfg.GroqModel)

	embedder := retrieval.NewHTTPEmbedder(cfg.EmbedderURL)
	retriever := retrieval.NewWeaviateRetriever(weaviateClient, embedder)
	reranker := retrieval.NewHTTPReranker(cfg.RerankerURL)
	translator := translate.NewHTTPTranslator(cfg.TranslatorURL)

	overrides := pipeline.DefaultOverridePolicy()
	if cfg.OverridesConfig != "" {
		overrides, err = pipeline.LoadOverridePolicy(cfg.OverridesConfig)
		if err != nil {
			log.Fatalf("Failed to load override policy: %v", err)
		}
		slog.Info("Loaded override policy", "path", cfg.OverridesConfig)
	}

	composer := pipeline.NewComposer(
		groqClient, translator, retriever, reranker, overrides,
		observability.DefaultMetrics,
		pipeline.Settings{
			ConfidenceThreshold: cfg.ConfidenceThreshold,
			RetrieveTopK:        cfg.SearchTopK,
		},
	)
	summarizer := pipeline.NewSectionSummarizer(groqClient, translator)

	router := gin.Default()
	router.Use(otelgin.Middleware("lawguide-service"))
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	routes.SetupRoutes(router, routes.Deps{
		Answerer:    composer,
		Summarizer:  summarizer,
		Retriever:   retriever,
		Translator:  translator,
		SearchTopK:  cfg.SearchTopK,
		RateLimiter: middleware.NewRateLimiter(5, 10),
	})

	slog.Info("Starting the LawGuide server", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
