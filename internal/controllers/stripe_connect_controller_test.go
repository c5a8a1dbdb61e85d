package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/quilltips/payments-service/internal/config"
	"github.com/quilltips/payments-service/internal/middleware"
	"github.com/quilltips/payments-service/internal/models"
	"github.com/quilltips/payments-service/internal/services"
	"github.com/quilltips/payments-service/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func newConnectControllerFixture() (*StripeConnectController, *testhelpers.FakeProfileRepo) {
	cfg := &config.Config{FrontendURL: "https://quilltips.test"}
	profileRepo := testhelpers.NewFakeProfileRepo()
	api := &testhelpers.FakeStripeAPI{}
	svc := services.NewStripeConnectService(cfg, profileRepo, api)
	return NewStripeConnectController(svc), profileRepo
}

func postOnboard(controller *StripeConnectController, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/stripe/connect/onboard", nil)
	if userID != "" {
		ctx := context.WithValue(req.Context(), middleware.ContextKeyUserID, userID)
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	controller.OnboardHandler(rec, req)
	return rec
}

func TestOnboardHandler_Success(t *testing.T) {
	controller, profileRepo := newConnectControllerFixture()

	author := &models.Profile{
		ID:    uuid.New(),
		Role:  models.RoleAuthor,
		Name:  "Pat Writer",
		Email: "pat@example.com",
	}
	require.NoError(t, profileRepo.Create(context.Background(), author))

	rec := postOnboard(controller, author.ID.String())
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body["url"])
	require.NotEmpty(t, body["accountId"])
}

func TestOnboardHandler_ProfileNotFound(t *testing.T) {
	controller, _ := newConnectControllerFixture()

	rec := postOnboard(controller, uuid.NewString())
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body["error"])
	require.Equal(t, "internal_error", body["type"])
}

func TestOnboardHandler_MissingUserID(t *testing.T) {
	controller, _ := newConnectControllerFixture()

	rec := postOnboard(controller, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOnboardHandler_NonAuthorForbidden(t *testing.T) {
	controller, profileRepo := newConnectControllerFixture()

	reader := &models.Profile{
		ID:    uuid.New(),
		Role:  models.RoleReader,
		Name:  "Riley Reader",
		Email: "riley@example.com",
	}
	require.NoError(t, profileRepo.Create(context.Background(), reader))

	rec := postOnboard(controller, reader.ID.String())
	require.Equal(t, http.StatusForbidden, rec.Code)
}
