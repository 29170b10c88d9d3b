// Package main runs the description pipeline as an AWS Lambda function behind
// API Gateway.
package main

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/pkg/errors"

	"github.com/fairyhunter13/product-description-generator/internal/bootstrap"
	"github.com/fairyhunter13/product-description-generator/internal/config"
	httpapi "github.com/fairyhunter13/product-description-generator/internal/http"
	"github.com/fairyhunter13/product-description-generator/internal/model"
	"github.com/fairyhunter13/product-description-generator/internal/obs"
)

type runner interface {
	Run(ctx context.Context) (*model.RunResult, error)
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

var jsonHeaders = map[string]string{"Content-Type": "application/json"}

func respond(status int, v any) (events.APIGatewayProxyResponse, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return events.APIGatewayProxyResponse{}, errors.Wrap(err, "encoding response")
	}
	return events.APIGatewayProxyResponse{StatusCode: status, Headers: jsonHeaders, Body: string(body)}, nil
}

func newHandler(r runner) func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		log := obs.Named("lambda").With("request_id", req.RequestContext.RequestID)
		log.Infow("run_started", "path", req.Path)
		res, err := r.Run(ctx)
		if err != nil {
			status, code := httpapi.RunErrorStatus(err)
			log.Warnw("run_failed", "status", status, "error", err)
			return respond(status, errorBody{Error: code, Details: err.Error()})
		}
		if res.Products == nil {
			res.Products = []model.UpdateOutcome{}
		}
		log.Infow("run_finished", "message", res.Message)
		return respond(http.StatusOK, res)
	}
}

func main() {
	cfg, err := config.Load(config.DefaultEnvFile)
	obs.InitLogger(cfg.LogLevel)
	if err != nil {
		obs.Logger.Fatalw("config_load_failed", "error", err)
	}
	lambda.Start(newHandler(bootstrap.NewPipeline(cfg)))
}
