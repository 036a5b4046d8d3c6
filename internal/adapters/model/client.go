// Package model es el cliente del servicio externo de predicción y
// entrenamiento de insulina.
package model

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"idhealth/internal/platform/apperr"
	"idhealth/internal/platform/httpclient"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultPredictURL = "http://localhost:5001"
	DefaultTrainURL   = "http://localhost:5000"

	// Valor de relleno para las franjas no seleccionadas (mmol/L).
	fillerGlucose = 4
)

var (
	ErrModelNotConfigured = errors.New("model client not configured")
	ErrModelUnauthorized  = errors.New("model service unauthorized")
	ErrModelUpstream      = errors.New("model service upstream error")
)

type Config struct {
	PredictURL string
	TrainURL   string
	APIKey     string

	APIKeyHeader string
	Timeout      time.Duration
}

type Client struct {
	predictURL   string
	trainURL     string
	apiKey       string
	apiKeyHeader string
	http         *httpclient.Client
	tracer       trace.Tracer
}

func NewClient(cfg Config) *Client {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	return &Client{
		predictURL:   strings.TrimRight(strings.TrimSpace(cfg.PredictURL), "/"),
		trainURL:     strings.TrimRight(strings.TrimSpace(cfg.TrainURL), "/"),
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
		http:         httpclient.New(cfg.Timeout),
		tracer:       otel.Tracer("idhealth/adapters/model"),
	}
}

// IsConfigured no exige API key: el servicio de modelo corre sin auth en dev.
func (c *Client) IsConfigured() bool {
	return c != nil && c.predictURL != "" && c.trainURL != ""
}

// PredictRequest es el contrato fijo del servicio /predict.
type PredictRequest struct {
	ID            int     `json:"ID"`
	Week          int     `json:"settimana"`
	Weekday       int     `json:"giornoSettimana"`
	GlucoseWaking float64 `json:"Glucosio al Risveglio (07:00)"`
	Glucose0930   float64 `json:"Glucosio alle 09:30"`
	Glucose1300   float64 `json:"Glucosio alle 13:00"`
	Glucose1500   float64 `json:"Glucosio alle 15:00"`
	Glucose1800   float64 `json:"Glucosio alle 18:00"`
	Glucose2000   float64 `json:"Glucosio alle 20:00"`
}

// NewPredictRequest pone mmol en la franja elegida y 4 en las demás.
func NewPredictRequest(slot string, mmol float64) PredictRequest {
	pick := func(s string) float64 {
		if s == slot {
			return mmol
		}
		return fillerGlucose
	}
	return PredictRequest{
		ID:            0,
		Week:          1,
		Weekday:       1,
		GlucoseWaking: pick("G at Waking"),
		Glucose0930:   pick("G at 09:30"),
		Glucose1300:   pick("G at 13:00"),
		Glucose1500:   pick("G at 15:00"),
		Glucose1800:   pick("G at 18:00"),
		Glucose2000:   pick("G at 20:00"),
	}
}

type predictResponse struct {
	Prediction *float64 `json:"prediction"`
	Error      string   `json:"error"`
}

// TrainingRow es una fila de {features:[...]} para /train.
type TrainingRow struct {
	Feature1      float64 `json:"feature1"`
	Feature2      float64 `json:"feature2"`
	InsulinWaking float64 `json:"Insulina al Risveglio (07:00)"`
	Insulin0930   float64 `json:"Insulina alle 09:30"`
	Insulin1300   float64 `json:"Insulina alle 13:00"`
	Insulin1500   float64 `json:"Insulina alle 15:00"`
	Insulin1800   float64 `json:"Insulina alle 18:00"`
	Insulin2300   float64 `json:"Insulina alle 23:00"`
}

// NewTrainingRow replica el valor en todas las columnas.
func NewTrainingRow(v float64) TrainingRow {
	return TrainingRow{
		Feature1:      v,
		Feature2:      v,
		InsulinWaking: v,
		Insulin0930:   v,
		Insulin1300:   v,
		Insulin1500:   v,
		Insulin1800:   v,
		Insulin2300:   v,
	}
}

type trainRequest struct {
	Features []TrainingRow `json:"features"`
}

type trainResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Predict llama POST /predict. Non-2xx es ServerError; transporte es NetworkFailure.
func (c *Client) Predict(ctx context.Context, slot string, mmol float64) (pred float64, err error) {
	if !c.IsConfigured() {
		return 0, apperr.ServerError(ErrModelNotConfigured, "predict")
	}
	ctx, span := c.tracer.Start(ctx, "model.Predict", trace.WithAttributes(attribute.String("time_slot", slot)))
	defer func() { end(span, err) }()

	var out predictResponse
	err = c.http.DoJSON(ctx, http.MethodPost, c.predictURL+"/predict", c.headers(), NewPredictRequest(slot, mmol), &out)
	if err != nil {
		return 0, mapErr(err, "predict")
	}
	if out.Prediction == nil {
		return 0, apperr.ServerError(fmt.Errorf("%w: missing prediction: %s", ErrModelUpstream, out.Error), "predict")
	}
	return *out.Prediction, nil
}

// Train llama POST /train con una fila por valor. Devuelve el mensaje del servicio.
func (c *Client) Train(ctx context.Context, values []float64) (msg string, err error) {
	if !c.IsConfigured() {
		return "", apperr.ServerError(ErrModelNotConfigured, "train")
	}
	ctx, span := c.tracer.Start(ctx, "model.Train", trace.WithAttributes(attribute.Int("rows", len(values))))
	defer func() { end(span, err) }()

	req := trainRequest{Features: make([]TrainingRow, 0, len(values))}
	for _, v := range values {
		req.Features = append(req.Features, NewTrainingRow(v))
	}

	var out trainResponse
	if err = c.http.DoJSON(ctx, http.MethodPost, c.trainURL+"/train", c.headers(), req, &out); err != nil {
		return "", mapErr(err, "train")
	}
	return out.Message, nil
}

func (c *Client) headers() map[string]string {
	if c.apiKey == "" {
		return nil
	}
	return map[string]string{c.apiKeyHeader: c.apiKey}
}

func mapErr(err error, target string) error {
	switch status := httpclient.StatusOf(err); {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperr.ServerError(fmt.Errorf("%w: %w", ErrModelUnauthorized, err), target)
	case status != 0:
		return apperr.ServerError(fmt.Errorf("%w: %w", ErrModelUpstream, err), target)
	default:
		return apperr.NetworkFailure(err, target)
	}
}

func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
