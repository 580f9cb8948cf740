// Package lambdaboot provides the Lambda cold-start bootstrap: AWS config,
// the S3 and DynamoDB clients, the selection policy from SSM, and the startup
// log. Each helper fatals on misconfiguration so init() stays a short
// composition of calls.
package lambdaboot

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/fpang/media-picker/internal/config"
	"github.com/fpang/media-picker/internal/logging"
	"github.com/fpang/media-picker/internal/store"
)

// DefaultTableName is used when DYNAMO_TABLE_NAME is unset.
const DefaultTableName = "media-selection-sessions"

// ParameterAPI is the part of *ssm.Client the policy loader needs.
type ParameterAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// AWSClients holds the core AWS SDK clients used by the Lambda.
type AWSClients struct {
	Config aws.Config
	SSM    *ssm.Client
}

// S3Clients holds the S3 client and the media bucket name.
type S3Clients struct {
	Client *s3.Client
	Bucket string
}

// InitAWS loads the default AWS config and returns it along with common clients.
func InitAWS() AWSClients {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS config")
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return AWSClients{
		Config: cfg,
		SSM:    ssm.NewFromConfig(cfg),
	}
}

// InitS3 creates an S3 client and reads the bucket name from the given
// environment variable. Fatals if the env var is empty.
func InitS3(cfg aws.Config, bucketEnvVar string) S3Clients {
	bucket := os.Getenv(bucketEnvVar)
	if bucket == "" {
		log.Fatal().Str("envVar", bucketEnvVar).Msg("Bucket environment variable is required")
	}
	return S3Clients{
		Client: s3.NewFromConfig(cfg),
		Bucket: bucket,
	}
}

// InitDynamo creates the session snapshot store. The table name comes from
// tableEnvVar, or DefaultTableName.
func InitDynamo(cfg aws.Config, tableEnvVar string) (*store.DynamoStore, string) {
	tableName := logging.EnvOrDefault(tableEnvVar, DefaultTableName)
	return store.NewDynamoStore(dynamodb.NewFromConfig(cfg), tableName), tableName
}

// LoadPolicy reads the policy TOML from the SSM parameter named by
// paramEnvVar. When the variable is unset the default policy is returned.
// A parameter that is set but unreadable or invalid is fatal.
func LoadPolicy(client ParameterAPI, paramEnvVar string) (config.Config, string) {
	paramName := os.Getenv(paramEnvVar)
	if paramName == "" {
		log.Info().Str("envVar", paramEnvVar).Msg("No policy parameter configured, using default policy")
		return config.Default(), ""
	}

	cfg, err := fetchPolicy(context.Background(), client, paramName)
	if err != nil {
		log.Fatal().Err(err).Str("param", paramName).Msg("Failed to load policy from SSM")
	}
	return cfg, paramName
}

func fetchPolicy(ctx context.Context, client ParameterAPI, paramName string) (config.Config, error) {
	ssmStart := time.Now()
	result, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &paramName,
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Parse([]byte(aws.ToString(result.Parameter.Value)))
	if err != nil {
		return config.Config{}, err
	}
	log.Debug().Str("param", paramName).Dur("elapsed", time.Since(ssmStart)).Msg("Policy loaded from SSM")
	return cfg, nil
}

// StartupLog is a convenience wrapper for the startup logger. The policy
// limits are recorded so a cold start shows what the Lambda enforces.
func StartupLog(name string, initStart time.Time, cfg config.Config) *logging.StartupLogger {
	types := "all"
	if len(cfg.MimeTypes) > 0 {
		names := make([]string, len(cfg.MimeTypes))
		for i, mt := range cfg.MimeTypes {
			names[i] = string(mt)
		}
		types = strings.Join(names, ",")
	}
	return logging.NewStartupLogger(name).
		InitDuration(time.Since(initStart)).
		Policy("maxSelectable", cfg.MaxSelectable).
		Policy("maxImageSelectable", cfg.MaxImageSelectable).
		Policy("maxVideoSelectable", cfg.MaxVideoSelectable).
		Policy("mediaTypeExclusive", cfg.MediaTypeExclusive).
		Config("locale", cfg.Locale).
		Config("mimeTypes", types)
}
