package echoapi

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trezcool/tutorparty/core/usage"
)

func TestAdminUsage(t *testing.T) {
	usage.NowFunc = func() time.Time { return time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC) }
	defer func() { usage.NowFunc = time.Now }()

	ta := setup(t)
	ana := ta.createMember(t, "Ana")
	ta.createMember(t, "Beto")
	for _, e := range []usage.Event{
		{PartyCode: partyCode, MemberID: ana.ID, Day: "2024-03-30", InputTokens: 100, OutputTokens: 200, Messages: 1, CostUSD: 0.5},
		{PartyCode: partyCode, MemberID: ana.ID, Day: "2024-03-20", InputTokens: 10, OutputTokens: 20, Messages: 1, CostUSD: 0.25},
		{PartyCode: partyCode, MemberID: ana.ID, Day: "2024-01-01", InputTokens: 999, OutputTokens: 999, Messages: 1, CostUSD: 9},
	} {
		_, err := ta.events.InsertEvent(context.Background(), e)
		require.NoError(t, err)
	}

	report := []byte(`{
		"since": "2024-03-01",
		"pricing": {"model": "gpt-5-mini", "input_per_million": 1.25, "output_per_million": 10},
		"totals": {"input_tokens": 110, "output_tokens": 220, "messages": 2, "cost_usd": 0.75},
		"users": [
			{"name": "Ana", "input_tokens": 110, "output_tokens": 220, "messages": 2, "cost_usd": 0.75},
			{"name": "Beto", "input_tokens": 0, "output_tokens": 0, "messages": 0, "cost_usd": 0}
		]
	}`)
	weekReport := []byte(`{
		"since": "2024-03-24",
		"pricing": {"model": "gpt-5-mini", "input_per_million": 1.25, "output_per_million": 10},
		"totals": {"input_tokens": 100, "output_tokens": 200, "messages": 1, "cost_usd": 0.5},
		"users": [
			{"name": "Ana", "input_tokens": 100, "output_tokens": 200, "messages": 1, "cost_usd": 0.5},
			{"name": "Beto", "input_tokens": 0, "output_tokens": 0, "messages": 0, "cost_usd": 0}
		]
	}`)
	unauthorized := []byte(`{"error":"Unauthorized"}`)

	tests := []httpTest{
		{name: "no key", path: "/admin/usage", wantCode: http.StatusUnauthorized, wantData: unauthorized},
		{name: "wrong key", path: "/admin/usage?key=nope", wantCode: http.StatusUnauthorized, wantData: unauthorized},
		{name: "wrong header", path: "/admin/usage", header: map[string]string{"X-Admin-Key": "nope"}, wantCode: http.StatusUnauthorized, wantData: unauthorized},
		{name: "member session is not enough", path: "/admin/usage", cookie: sessionCookie(t, ana), wantCode: http.StatusUnauthorized, wantData: unauthorized},
		{name: "header key", path: "/admin/usage", header: map[string]string{"X-Admin-Key": adminKey}, wantCode: http.StatusOK, wantData: report},
		{name: "query key", path: "/admin/usage?key=" + adminKey, wantCode: http.StatusOK, wantData: report},
		{name: "days", path: "/admin/usage?days=7&key=" + adminKey, wantCode: http.StatusOK, wantData: weekReport},
		{
			name:     "invalid days",
			path:     "/admin/usage?days=abc&key=" + adminKey,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"error":"days: must be a number of days between 1 and 366","fields":{"days":"must be a number of days between 1 and 366"}}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method = http.MethodGet
			checkCodeAndData(t, tt, ta.run(t, tt))
		})
	}
}

func TestDiag(t *testing.T) {
	tests := []struct {
		httpTest
		db Pinger
	}{
		{
			httpTest: httpTest{
				name:     "no database",
				wantCode: http.StatusOK,
				wantData: []byte(`{"OPENAI_API_KEY":true,"PARTY_CODE":true,"PARTY_JWT_SECRET":true,"ADMIN_KEY":true,"DATABASE_URL":false,"db_ok":false}`),
			},
		},
		{
			httpTest: httpTest{
				name:     "database up",
				wantCode: http.StatusOK,
				wantData: []byte(`{"OPENAI_API_KEY":true,"PARTY_CODE":true,"PARTY_JWT_SECRET":true,"ADMIN_KEY":true,"DATABASE_URL":false,"db_ok":true}`),
			},
			db: pingerMock{},
		},
		{
			httpTest: httpTest{
				name:     "database down",
				wantCode: http.StatusOK,
				wantData: []byte(`{"OPENAI_API_KEY":true,"PARTY_CODE":true,"PARTY_JWT_SECRET":true,"ADMIN_KEY":true,"DATABASE_URL":false,"db_ok":false}`),
			},
			db: pingerMock{err: errors.New("connection refused")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []appOption
			if tt.db != nil {
				opts = append(opts, withDB(tt.db))
			}
			ta := setup(t, opts...)

			tt.method = http.MethodGet
			tt.path = "/diag"
			checkCodeAndData(t, tt.httpTest, ta.run(t, tt.httpTest))
		})
	}
}
