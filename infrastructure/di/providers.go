package di

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"github.com/aws/aws-xray-sdk-go/xray"
	"go.uber.org/zap"

	"kellerliste/application/commands/bus"
	commandhandlers "kellerliste/application/commands/handlers"
	"kellerliste/application/ports"
	querybus "kellerliste/application/queries/bus"
	queryhandlers "kellerliste/application/queries/handlers"
	"kellerliste/application/services"
	"kellerliste/infrastructure/config"
	"kellerliste/infrastructure/identity/cognito"
	"kellerliste/infrastructure/messaging/eventbridge"
	"kellerliste/infrastructure/persistence/dynamodb"
	"kellerliste/infrastructure/persistence/memory"
	lambdahandlers "kellerliste/interfaces/lambda"
	"kellerliste/pkg/auth"
	"kellerliste/pkg/observability"
)

// ProvideLogger creates the process logger. Production emits JSON, everything
// else the console encoder.
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() || cfg.IsLambda {
		zapCfg = zap.NewProductionConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zap.ParseAtomicLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
		}
		zapCfg.Level = level
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}

	return logger.With(zap.String("env", cfg.Environment)), nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS config: %w", err)
	}

	if cfg.EnableTracing {
		awsv2.AWSV2Instrumentor(&awsCfg.APIOptions)
	}
	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client, pointed at DYNAMODB_ENDPOINT when set
func ProvideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer("kellerliste", cfg.EnableTracing)
}

// ProvideMetrics creates metrics instance. Without ENABLE_METRICS nothing is sent.
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	namespace := fmt.Sprintf("%s/%s", cfg.MetricsNamespace, cfg.Environment)
	if !cfg.EnableMetrics {
		return observability.NewMetrics(namespace, nil, logger)
	}
	return observability.NewMetrics(namespace, client, logger)
}

// ProvideInventoryRepository selects the record store named by STORE_DRIVER
func ProvideInventoryRepository(
	client *awsdynamodb.Client,
	tracer *observability.Tracer,
	cfg *config.Config,
	logger *zap.Logger,
) (ports.InventoryRepository, error) {
	switch cfg.StoreDriver {
	case config.StoreDynamoDB:
		return dynamodb.NewInventoryRepository(client, cfg.TableName, cfg.PrimaryKey, tracer, logger), nil
	case config.StoreMemory:
		logger.Warn("Using in-memory inventory store, records are lost on restart")
		return memory.NewInventoryRepository(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// ProvideEventPublisher publishes to EVENT_BUS_NAME, or nowhere when it is unset
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if cfg.EventBusName == "" {
		return eventbridge.NoopPublisher{}
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideIdentityProvider creates the Cognito token client. The result is a
// nil interface when the hosted UI is not configured.
func ProvideIdentityProvider(cfg *config.Config, logger *zap.Logger) (ports.IdentityProvider, error) {
	if !cfg.CognitoConfigured() {
		logger.Info("Cognito not configured, token exchange disabled")
		return nil, nil
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	if cfg.EnableTracing {
		httpClient = xray.Client(httpClient)
	}

	provider, err := cognito.NewProvider(cognito.Config{
		Domain:       cfg.CognitoDomain,
		ClientID:     cfg.CognitoClientID,
		ClientSecret: cfg.CognitoClientSecret,
		RedirectURI:  cfg.CognitoRedirectURI,
	}, httpClient, logger)
	if err != nil {
		return nil, err
	}
	return provider, nil
}

// ProvideJWTValidator creates the local bearer token validator. It is nil
// unless JWT_SECRET is set.
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	if cfg.JWTSecret == "" {
		return nil, nil
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
	})
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	repo ports.InventoryRepository,
	publisher ports.EventPublisher,
	metrics *observability.Metrics,
	tracer *observability.Tracer,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(
		bus.LoggingMiddleware(&zapLoggerAdapter{logger}),
		bus.MetricsMiddleware(metrics),
		bus.TracingMiddleware(tracer),
	)

	if err := commandhandlers.Register(commandBus, repo, publisher, metrics, logger); err != nil {
		return nil, fmt.Errorf("registering command handlers: %w", err)
	}
	return commandBus, nil
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	repo ports.InventoryRepository,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus(metrics)

	if err := queryhandlers.Register(queryBus, repo, logger); err != nil {
		return nil, fmt.Errorf("registering query handlers: %w", err)
	}
	return queryBus, nil
}

// ProvideInventoryService creates the inventory service
func ProvideInventoryService(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, logger *zap.Logger) *services.InventoryService {
	return services.NewInventoryService(commandBus, queryBus, logger)
}

// ProvideAuthService creates the auth service
func ProvideAuthService(provider ports.IdentityProvider, logger *zap.Logger) *services.AuthService {
	return services.NewAuthService(provider, logger)
}

// ProvideLambdaHandlers creates the per-function Lambda entry points
func ProvideLambdaHandlers(
	inventory *services.InventoryService,
	authService *services.AuthService,
	logger *zap.Logger,
) *lambdahandlers.Handlers {
	return lambdahandlers.NewHandlers(inventory, authService, logger)
}

// zapLoggerAdapter adapts zap.Logger to the bus.Logger interface
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, fields ...interface{}) {
	a.logger.Info(msg, a.fieldsToZap(fields...)...)
}

func (a *zapLoggerAdapter) Error(msg string, fields ...interface{}) {
	a.logger.Error(msg, a.fieldsToZap(fields...)...)
}

func (a *zapLoggerAdapter) fieldsToZap(fields ...interface{}) []zap.Field {
	var zapFields []zap.Field
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			key = fmt.Sprint(fields[i])
		}
		if err, ok := fields[i+1].(error); ok {
			zapFields = append(zapFields, zap.NamedError(key, err))
			continue
		}
		zapFields = append(zapFields, zap.Any(key, fields[i+1]))
	}
	return zapFields
}
