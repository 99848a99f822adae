package logic

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/soracom/connectivity-benchmark/internal/benchmark"
	"github.com/soracom/connectivity-benchmark/internal/model"
	"github.com/soracom/connectivity-benchmark/internal/modem"
	"github.com/soracom/connectivity-benchmark/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capture struct {
	mu     sync.Mutex
	bodies map[string]map[string]any
}

func (c *capture) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	record := func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		c.mu.Lock()
		c.bodies[r.URL.Path] = body
		c.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}
	mux.HandleFunc("POST /slack", record)
	mux.HandleFunc("POST /bottoken-1/sendMessage", record)
	return mux
}

func sampleRun() *model.Run {
	return &model.Run{
		ID:                  "run-1",
		ICCID:               "8942310000000000001",
		IMSI:                "001010000000001",
		State:               "done",
		Network:             "NTT DOCOMO",
		RegistrationLatency: 6000,
		OnlineLatency:       8000,
	}
}

func TestNotifierDispatch(t *testing.T) {
	c := &capture{bodies: map[string]map[string]any{}}
	srv := httptest.NewServer(c.handler(t))
	defer srv.Close()

	n := NewNotifier(NotifierConfig{
		SlackURL:       srv.URL + "/slack",
		TelegramToken:  "token-1",
		TelegramChatID: "-100123",
	})
	n.telegramAPI = srv.URL
	require.True(t, n.Enabled())

	n.Dispatch(sampleRun())

	want := "cellbench done for ICCID 8942310000000000001 IMSI 001010000000001: registered in 6000 ms, online in 8000 ms via NTT DOCOMO"
	c.mu.Lock()
	defer c.mu.Unlock()
	require.Contains(t, c.bodies, "/slack")
	assert.Equal(t, want, c.bodies["/slack"]["text"])
	require.Contains(t, c.bodies, "/bottoken-1/sendMessage")
	assert.Equal(t, want, c.bodies["/bottoken-1/sendMessage"]["text"])
	assert.Equal(t, "-100123", c.bodies["/bottoken-1/sendMessage"]["chat_id"])
}

func TestNotifierTemplate(t *testing.T) {
	n := NewNotifier(NotifierConfig{Template: "{{.ICCID}} {{.State}}{{if .FailedAt}} at {{.FailedAt}}{{end}}"})
	run := sampleRun()
	run.State = "failed"
	run.FailedAt = benchmark.StepRegistration
	assert.Equal(t, "8942310000000000001 failed at network registration", n.render(run))

	n = NewNotifier(NotifierConfig{Template: "{{.Broken"})
	assert.Contains(t, n.render(sampleRun()), "cellbench done")

	assert.False(t, NewNotifier(NotifierConfig{TelegramToken: "only-token"}).Enabled())
}

func TestFill(t *testing.T) {
	t0 := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	res := &benchmark.Result{
		IMSI:             "001010000000001",
		ICCID:            "8942310000000000001",
		SubscriberStatus: "active",
		Identity:         modem.Identity{Manufacturer: "Quectel", Model: "EG25"},
		AccessTechnology: modem.EUTRAN,
		Registration:     modem.RegisteredRoaming,
		NetworkRaw:       `+COPS: 0,0,"Chunghwa Telecom",7`,
		SignalRaw:        "+CSQ: 20,99",
		Ticks:            16,
		Recoveries:       []benchmark.Recovery{{Tick: 15, Action: benchmark.ActionSearch}},
		Online:           true,
		FinalState:       benchmark.Done,
	}
	res.Timestamps.Record(benchmark.MarkCacheClearStart, t0)
	res.Timestamps.Record(benchmark.MarkNetworkRegistered, t0.Add(16*time.Second))
	res.Timestamps.Record(benchmark.MarkSessionOnline, t0.Add(20*time.Second))

	run := &model.Run{ID: "run-1"}
	Fill(run, res, nil)

	assert.Equal(t, "EUTRAN", run.AccessTechnology)
	assert.Equal(t, "Roaming", run.Registration)
	assert.Equal(t, "Chunghwa Telecom", run.Network)
	assert.Equal(t, "-73 dBm (64%)", run.Signal)
	assert.Equal(t, 1, run.Recoveries)
	assert.Equal(t, int64(16000), run.RegistrationLatency)
	assert.Equal(t, int64(20000), run.OnlineLatency)
	assert.Nil(t, run.ContextActivatedAt)
	require.NotNil(t, run.OnlineAt)
	assert.Equal(t, "done", run.State)
	assert.Empty(t, run.Error)

	failed := &model.Run{ID: "run-2"}
	Fill(failed, &benchmark.Result{FinalState: benchmark.Failed},
		&benchmark.StepError{Step: benchmark.StepAuthenticate, Err: errors.New("rejected")})
	assert.Equal(t, "failed", failed.State)
	assert.Equal(t, benchmark.StepAuthenticate, failed.FailedAt)
	assert.Equal(t, "authenticate: rejected", failed.Error)
	assert.Empty(t, failed.Registration)
}

func TestRecorder(t *testing.T) {
	db, err := repository.Open("sqlite", "file:recorder?mode=memory&cache=shared")
	require.NoError(t, err)
	repo := repository.NewRunRepository(db)
	rec := NewRecorder(repo, NewNotifier(NotifierConfig{}))

	run := rec.Start("/dev/ttyUSB2", "EUTRAN")
	require.NotEmpty(t, run.ID)

	rec.Observe(benchmark.Idle, benchmark.Preparing)
	rec.Observe(benchmark.Preparing, benchmark.AwaitingRegistration)
	stored, err := repo.FindByID(run.ID)
	require.NoError(t, err)
	assert.Equal(t, "awaiting_registration", stored.State)
	assert.Equal(t, "/dev/ttyUSB2", stored.PortName)

	res := &benchmark.Result{IMSI: "001010000000001", ICCID: "8942310000000000001", FinalState: benchmark.Failed, Ticks: 600}
	rec.Observe(benchmark.AwaitingRegistration, benchmark.Failed)
	rec.Finish(res, &benchmark.StepError{Step: benchmark.StepRegistration, Err: benchmark.ErrRegistrationTimeout})

	stored, err = repo.FindByID(run.ID)
	require.NoError(t, err)
	assert.Equal(t, "failed", stored.State)
	assert.Equal(t, "8942310000000000001", stored.ICCID)
	assert.Equal(t, 600, stored.Ticks)
	assert.Equal(t, benchmark.StepRegistration, stored.FailedAt)
}

func TestRecorderWithoutStore(t *testing.T) {
	rec := NewRecorder(nil, nil)
	run := rec.Finish(&benchmark.Result{FinalState: benchmark.Done}, nil)
	assert.Equal(t, "done", run.State)
	assert.NotEmpty(t, run.ID)
}
