package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/tutorparty/core"
	"github.com/trezcool/tutorparty/core/chat"
	"github.com/trezcool/tutorparty/core/party"
	"github.com/trezcool/tutorparty/core/session"
	"github.com/trezcool/tutorparty/core/usage"
	inmemdb "github.com/trezcool/tutorparty/storage/database/inmem"
)

const (
	partyCode = "HOLA"
	secret    = "secret"
	adminKey  = "admin-key"
)

type completerMock struct {
	calls    int
	response chat.Completion
	err      error
}

func (c *completerMock) Complete(context.Context, chat.CompletionRequest) (chat.Completion, error) {
	c.calls++
	if c.err != nil {
		return chat.Completion{}, c.err
	}
	return c.response, nil
}

type loggerMock struct {
	warnings []string
	errors   []string
}

func (l *loggerMock) Debug(string, ...interface{}) {}
func (l *loggerMock) Info(string, ...interface{})  {}
func (l *loggerMock) Warn(msg string, _ ...interface{}) {
	l.warnings = append(l.warnings, msg)
}
func (l *loggerMock) Error(msg string, _ ...interface{}) {
	l.errors = append(l.errors, msg)
}
func (l *loggerMock) Fatal(string, ...interface{}) {}

type pingerMock struct {
	err error
}

func (p pingerMock) PingContext(context.Context) error { return p.err }

type testApp struct {
	app       Server
	conf      *core.Config
	members   party.Repository
	events    usage.Repository
	completer *completerMock
	logger    *loggerMock
}

type appOption func(*ServerDeps)

func withPartyRepo(repo party.Repository) appOption {
	return func(deps *ServerDeps) {
		deps.PartySvc = party.NewService(repo, deps.Conf)
	}
}

func withDB(db Pinger) appOption {
	return func(deps *ServerDeps) {
		deps.DB = db
	}
}

func setup(t *testing.T, opts ...appOption) testApp {
	t.Helper()
	conf := &core.Config{
		OpenAI: core.OpenAIConfig{
			APIKey:          "sk-test",
			ModelBase:       "gpt-5-mini",
			ModelBoost:      "gpt-5",
			ModelTranslate:  "gpt-5-mini",
			Temperature:     0.7,
			MaxOutputTokens: 800,
			HistoryTurns:    12,
		},
		Pricing: core.PricingConfig{InputPerMillion: 1.25, OutputPerMillion: 10.00},
		Party: core.PartyConfig{
			Code:              partyCode,
			Seats:             2,
			DailyMessageLimit: 2,
			SessionSecret:     secret,
			SessionMaxAge:     30 * 24 * time.Hour,
			AdminKey:          adminKey,
		},
	}

	db := inmemdb.Open()
	ta := testApp{
		conf:    conf,
		members: inmemdb.NewMemberRepository(db),
		events:  inmemdb.NewEventRepository(db),
		completer: &completerMock{response: chat.Completion{
			Text:         "¡Hola!\n{\"corrections\":[],\"recap\":{}}",
			InputTokens:  1_000_000,
			OutputTokens: 500_000,
		}},
		logger: &loggerMock{},
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	partySvc := party.NewService(ta.members, conf)
	usageSvc := usage.NewService(ta.events, partySvc, conf)
	deps := ServerDeps{
		Conf:           conf,
		Logger:         ta.logger,
		PartySvc:       partySvc,
		ChatSvc:        chat.NewService(ta.completer, usageSvc, validate, ta.logger, conf),
		UsageSvc:       usageSvc,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	ta.app = NewServer(deps)
	return ta
}

func (ta testApp) createMember(t *testing.T, name string) party.Member {
	t.Helper()
	m, err := ta.members.CreateMember(context.Background(), party.Member{Name: name, PartyCode: partyCode, CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("createMember() failed: %v", err)
	}
	return m
}

func sessionCookie(t *testing.T, m party.Member) *http.Cookie {
	t.Helper()
	token, err := session.Sign(session.Payload{MemberID: m.ID, Name: m.Name, PartyCode: m.PartyCode}, []byte(secret))
	if err != nil {
		t.Fatalf("sessionCookie() failed: %v", err)
	}
	return &http.Cookie{Name: session.CookieName, Value: token}
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	cookie   *http.Cookie
	header   map[string]string
	wantCode int
	wantData []byte
}

func newRequest(method, path string, cookie *http.Cookie, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func (ta testApp) run(t *testing.T, tt httpTest) *httptest.ResponseRecorder {
	t.Helper()
	req, rec := newRequest(tt.method, tt.path, tt.cookie, tt.body)
	for k, v := range tt.header {
		req.Header.Set(k, v)
	}
	ta.app.ServeHTTP(rec, req)
	return rec
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, tt.wantCode, rec.Code, "status code")
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
