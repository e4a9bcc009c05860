//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
)

// DecodeJSON reads and decodes a JSON response body into dst.
func DecodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
}

// AssertStatus checks that the response has the expected HTTP status code.
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// AssertErrorCode checks that the response body contains the expected error code.
func AssertErrorCode(t *testing.T, resp *http.Response, expectedCode string) {
	t.Helper()
	var errResp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	DecodeJSON(t, resp, &errResp)
	if errResp.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, errResp.Code, errResp.Message)
	}
}

// AssertScore queries score_states and asserts the user's score and level.
func AssertScore(t *testing.T, env *TestEnv, userID uuid.UUID, score float64, level int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var gotScore float64
	var gotLevel int
	err := env.Pool.QueryRow(ctx,
		"SELECT score::float8, level FROM score_states WHERE user_id = $1", userID).Scan(&gotScore, &gotLevel)
	if err != nil {
		t.Fatalf("AssertScore: query: %v", err)
	}
	if gotScore != score {
		t.Errorf("score: expected %.2f, got %.2f", score, gotScore)
	}
	if gotLevel != level {
		t.Errorf("level: expected %d, got %d", level, gotLevel)
	}
}

// CountEntries returns the number of xp entries of entryType for a user.
func CountEntries(t *testing.T, env *TestEnv, userID uuid.UUID, entryType string) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int
	err := env.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM xp_entries WHERE user_id = $1 AND entry_type = $2", userID, entryType).Scan(&count)
	if err != nil {
		t.Fatalf("CountEntries: %v", err)
	}
	return count
}

// CountOutboxEvents returns the number of outbox events of eventType for a user.
func CountOutboxEvents(t *testing.T, env *TestEnv, userID uuid.UUID, eventType string) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int
	err := env.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM event_outbox WHERE "aggregateId" = $1 AND "eventType" = $2`,
		userID.String(), eventType).Scan(&count)
	if err != nil {
		t.Fatalf("CountOutboxEvents: %v", err)
	}
	return count
}
