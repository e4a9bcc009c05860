//go:build integration

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/xpump/platform/internal/auth"
)

// Seeded meal slots from the default migration.
var (
	BreakfastSlot = uuid.MustParse("8d1f1c0e-5d0a-4a57-9a51-000000000001")
	LunchSlot     = uuid.MustParse("8d1f1c0e-5d0a-4a57-9a51-000000000002")
	DinnerSlot    = uuid.MustParse("8d1f1c0e-5d0a-4a57-9a51-000000000003")
)

// SeedClient inserts a season running from a month ago to a year from now and
// returns the client id.
func (env *TestEnv) SeedClient() uuid.UUID {
	env.t.Helper()
	clientID := uuid.New()
	today := time.Now().UTC()
	env.exec(
		`INSERT INTO seasons (id, client_id, start_date, end_date, description) VALUES ($1, $2, $3, $4, 'test season')`,
		uuid.New(), clientID, today.AddDate(0, -1, 0).Format(time.DateOnly), today.AddDate(1, 0, 0).Format(time.DateOnly))
	return clientID
}

// CreateUser inserts a profile for clientID and returns a user token and id.
func (env *TestEnv) CreateUser(clientID uuid.UUID) (token string, userID uuid.UUID) {
	env.t.Helper()
	userID = uuid.New()
	env.exec(`INSERT INTO profiles (user_id, client_id, name) VALUES ($1, $2, 'test user')`, userID, clientID)

	token, err := env.JWTMgr.GenerateToken(auth.RealmUser, userID, "user@test.com", "")
	if err != nil {
		env.t.Fatalf("CreateUser: token: %v", err)
	}
	return token, userID
}

// SeedGroup inserts a group for clientID with the given active members.
func (env *TestEnv) SeedGroup(clientID uuid.UUID, main bool, members ...uuid.UUID) uuid.UUID {
	env.t.Helper()
	groupID := uuid.New()
	env.exec(`INSERT INTO groups (id, client_id, name, main) VALUES ($1, $2, 'test group', $3)`, groupID, clientID, main)
	for _, m := range members {
		env.exec(`INSERT INTO group_members (group_id, user_id, pending) VALUES ($1, $2, false)`, groupID, m)
	}
	return groupID
}

// AddPendingMember adds userID to groupID as a pending member.
func (env *TestEnv) AddPendingMember(groupID, userID uuid.UUID) {
	env.t.Helper()
	env.exec(`INSERT INTO group_members (group_id, user_id, pending) VALUES ($1, $2, true)`, groupID, userID)
}

// AdminToken generates a JWT for an admin with the given role.
func (env *TestEnv) AdminToken(role string) string {
	env.t.Helper()
	token, err := env.JWTMgr.GenerateToken(auth.RealmAdmin, uuid.New(), "admin@test.com", role)
	if err != nil {
		env.t.Fatalf("AdminToken: %v", err)
	}
	return token
}

func (env *TestEnv) exec(sql string, args ...interface{}) {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := env.Pool.Exec(ctx, sql, args...); err != nil {
		env.t.Fatalf("exec %q: %v", sql, err)
	}
}

// GET performs an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodGet, path, nil, "")
}

// AuthGET performs an authenticated GET request.
func (env *TestEnv) AuthGET(path, token string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodGet, path, nil, token)
}

// AuthPOST performs an authenticated POST request with a JSON body.
func (env *TestEnv) AuthPOST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodPost, path, body, token)
}

// AuthPUT performs an authenticated PUT request with a JSON body.
func (env *TestEnv) AuthPUT(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodPut, path, body, token)
}

// AuthDELETE performs an authenticated DELETE request.
func (env *TestEnv) AuthDELETE(path, token string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodDelete, path, nil, token)
}

func (env *TestEnv) do(method, path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("%s %s: encode: %v", method, path, err)
		}
	}
	req, err := http.NewRequest(method, env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("%s %s: new request: %v", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// FakeUUID returns a random uuid string that matches no row.
func FakeUUID() string {
	return uuid.New().String()
}
