// Package main provides a Lambda entry point for the media selection engine.
//
// Each invocation applies one action (add, remove, check, list or clear) to a
// selection session persisted in DynamoDB. Media objects live in S3 and are
// checked with HeadObject only; nothing is downloaded.
//
// The selection policy is read at cold start from the SSM parameter named by
// POLICY_SSM_PARAM, holding the same TOML document the CLI uses. Without it
// the default policy applies.
package main

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/fpang/media-picker/internal/lambdaboot"
	"github.com/fpang/media-picker/internal/logging"
	"github.com/fpang/media-picker/internal/metrics"
)

var svc *service

var coldStart = true

// setup builds the service from the Lambda environment. It runs from main
// rather than init so the package's tests do not need AWS or env vars.
func setup() {
	initStart := time.Now()
	logging.Init()

	clients := lambdaboot.InitAWS()
	s3c := lambdaboot.InitS3(clients.Config, "MEDIA_BUCKET_NAME")
	sessions, tableName := lambdaboot.InitDynamo(clients.Config, "DYNAMO_TABLE_NAME")
	policyCfg, policyParam := lambdaboot.LoadPolicy(clients.SSM, "POLICY_SSM_PARAM")

	if policyCfg.Filters.MinWidth > 0 || policyCfg.Filters.MinHeight > 0 {
		log.Warn().
			Int("minWidth", policyCfg.Filters.MinWidth).
			Int("minHeight", policyCfg.Filters.MinHeight).
			Msg("Dimension filters need local files and are disabled in Lambda")
		policyCfg.Filters.MinWidth, policyCfg.Filters.MinHeight = 0, 0
	}

	svc = &service{
		sessions:    sessions,
		objects:     s3c.Client,
		bucket:      s3c.Bucket,
		cfg:         policyCfg,
		newRecorder: func() *metrics.Recorder { return metrics.New(metrics.Namespace) },
	}

	lambdaboot.StartupLog("selection-lambda", initStart, policyCfg).
		S3Bucket("mediaBucket", s3c.Bucket).
		DynamoTable("sessions", tableName).
		SSMParam("policy", policyParam).
		Log()
}

func handler(ctx context.Context, event ActionEvent) (ActionResult, error) {
	if coldStart {
		coldStart = false
		log.Info().Str("function", "selection-lambda").Msg("Cold start, first invocation")
	}
	return svc.handle(ctx, event)
}

func main() {
	setup()
	lambda.Start(handler)
}
