package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattjoyce/airaware/internal/airquality"
	"github.com/mattjoyce/airaware/internal/chat"
	"github.com/mattjoyce/airaware/internal/dashboard"
	"github.com/mattjoyce/airaware/internal/sse"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeDirectory struct {
	cities  []airquality.City
	listErr error
	cityErr error
	zoneErr error
	zones   []airquality.Zone
}

func (d *fakeDirectory) ListCities(ctx context.Context) ([]airquality.City, error) {
	return d.cities, d.listErr
}

func (d *fakeDirectory) GetCity(ctx context.Context, key string) (airquality.City, error) {
	if d.cityErr != nil {
		return airquality.City{}, d.cityErr
	}
	c, ok := airquality.FindCity(key)
	if !ok {
		return airquality.City{}, errors.New("status 404")
	}
	return c, nil
}

func (d *fakeDirectory) Zones(ctx context.Context, cityID string) (*dashboard.ZoneBatch, error) {
	if d.zoneErr != nil {
		return nil, d.zoneErr
	}
	return &dashboard.ZoneBatch{CityID: cityID, Zones: d.zones}, nil
}

type noopStreamer struct{}

func (noopStreamer) Stream(ctx context.Context, messages []chat.Turn, onDelta sse.DeltaFunc) (sse.Outcome, error) {
	return sse.Outcome{}, nil
}

func TestLocatorUsesDashboard(t *testing.T) {
	zones := []airquality.Zone{{Name: "Anand Vihar", AQI: 412, Trend: airquality.TrendWorsening, MainPollutant: "PM2.5"}}
	l := newLocator(&fakeDirectory{zones: zones}, discardLogger())

	loc, err := l.Load(context.Background(), "Delhi")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loc.City.ID != "del" {
		t.Fatalf("city = %q, want del", loc.City.ID)
	}
	if len(loc.Zones) != 1 || loc.Zones[0].Name != "Anand Vihar" {
		t.Fatalf("unexpected zones: %+v", loc.Zones)
	}
}

func TestLocatorFallsBackToLocalCatalog(t *testing.T) {
	l := newLocator(&fakeDirectory{cityErr: errors.New("connection refused")}, discardLogger())

	loc, err := l.Load(context.Background(), "mum")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loc.City.Name != "Mumbai" {
		t.Fatalf("city = %q, want Mumbai", loc.City.Name)
	}
	if len(loc.Zones) == 0 {
		t.Fatalf("expected locally simulated zones")
	}

	if _, err := l.Load(context.Background(), "atlantis"); err == nil {
		t.Fatalf("expected error for unknown city")
	}
}

func TestLocatorSimulatesZonesWhenZoneFetchFails(t *testing.T) {
	l := newLocator(&fakeDirectory{zoneErr: errors.New("status 500")}, discardLogger())

	loc, err := l.Load(context.Background(), "blr")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loc.City.ID != "blr" || len(loc.Zones) == 0 {
		t.Fatalf("unexpected location: %+v", loc)
	}
}

func TestLocatorCitiesFallback(t *testing.T) {
	l := newLocator(&fakeDirectory{listErr: errors.New("timeout")}, discardLogger())
	if got := l.Cities(context.Background()); len(got) != len(airquality.Cities()) {
		t.Fatalf("cities = %d, want bundled %d", len(got), len(airquality.Cities()))
	}

	one := []airquality.City{{ID: "kch", Name: "Kochi"}}
	l = newLocator(&fakeDirectory{cities: one}, discardLogger())
	if got := l.Cities(context.Background()); len(got) != 1 || got[0].ID != "kch" {
		t.Fatalf("unexpected cities: %+v", got)
	}
}

func TestReplyPrinterWritesSuffixes(t *testing.T) {
	var buf bytes.Buffer
	emit := replyPrinter(&buf)
	user := chat.Turn{Role: chat.RoleUser, Content: "hi"}

	emit(chat.Snapshot{Turns: []chat.Turn{user}, State: chat.StateInFlight})
	emit(chat.Snapshot{Turns: []chat.Turn{user, {Role: chat.RoleAssistant, Content: "Hel"}}})
	emit(chat.Snapshot{Turns: []chat.Turn{user, {Role: chat.RoleAssistant, Content: "Hello"}}})
	emit(chat.Snapshot{Turns: []chat.Turn{user, {Role: chat.RoleAssistant, Content: "Hello"}}})

	if buf.String() != "Hello" {
		t.Fatalf("output = %q, want %q", buf.String(), "Hello")
	}
}

func TestReplyPrinterSkipsErrorTurn(t *testing.T) {
	var buf bytes.Buffer
	emit := replyPrinter(&buf)
	emit(chat.Snapshot{Turns: []chat.Turn{
		{Role: chat.RoleUser, Content: "hi"},
		{Role: chat.RoleAssistant, Content: chat.ErrorMarker + "Error 500"},
	}})
	if buf.Len() != 0 {
		t.Fatalf("output = %q, want empty", buf.String())
	}
}

func TestLastAssistant(t *testing.T) {
	turns := []chat.Turn{
		{Role: chat.RoleUser, Content: "a"},
		{Role: chat.RoleAssistant, Content: "first"},
		{Role: chat.RoleUser, Content: "b"},
		{Role: chat.RoleAssistant, Content: "second"},
	}
	if got := lastAssistant(turns); got != "second" {
		t.Fatalf("lastAssistant = %q, want second", got)
	}
	if got := lastAssistant(turns[:1]); got != "" {
		t.Fatalf("lastAssistant = %q, want empty", got)
	}
}

func TestNextCityIndexWraps(t *testing.T) {
	cities := airquality.Cities()[:3]
	if got := nextCityIndex(cities, cities[2].ID, 1); got != 0 {
		t.Fatalf("next = %d, want 0", got)
	}
	if got := nextCityIndex(cities, cities[0].ID, -1); got != 2 {
		t.Fatalf("prev = %d, want 2", got)
	}
	if got := nextCityIndex(cities, "missing", 1); got != 1 {
		t.Fatalf("next from unknown = %d, want 1", got)
	}
}

func newTestChatModel(t *testing.T) chatModel {
	t.Helper()
	city, _ := airquality.FindCity("del")
	conv := chat.NewConversation(noopStreamer{}, chat.ModeAdmin, chat.LocationContext{City: city}, discardLogger())
	l := newLocator(&fakeDirectory{}, discardLogger())
	return newChatModel(conv, l, time.Second)
}

func TestChatModelIgnoresStaleSnapshots(t *testing.T) {
	m := newTestChatModel(t)
	m.snap = chat.Snapshot{Generation: 2}

	stale := chat.Snapshot{
		Generation: 1,
		Turns:      []chat.Turn{{Role: chat.RoleAssistant, Content: "old city"}},
	}
	next, _ := m.Update(snapshotMsg(stale))
	got := next.(chatModel)
	if got.snap.Generation != 2 || len(got.snap.Turns) != 0 {
		t.Fatalf("stale snapshot applied: %+v", got.snap)
	}

	fresh := chat.Snapshot{
		Generation: 2,
		Turns:      []chat.Turn{{Role: chat.RoleUser, Content: "hi"}},
		State:      chat.StateInFlight,
	}
	next, _ = got.Update(snapshotMsg(fresh))
	got = next.(chatModel)
	if len(got.snap.Turns) != 1 || got.snap.State != chat.StateInFlight {
		t.Fatalf("fresh snapshot not applied: %+v", got.snap)
	}
}

func TestChatModelKeepsInputWhileInFlight(t *testing.T) {
	m := newTestChatModel(t)
	m.snap = chat.Snapshot{State: chat.StateInFlight}
	m.input.SetValue("second question")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	got := next.(chatModel)
	if cmd != nil {
		t.Fatalf("expected no send command while in flight")
	}
	if got.input.Value() != "second question" {
		t.Fatalf("input = %q, want preserved", got.input.Value())
	}
	if got.notice == "" {
		t.Fatalf("expected a notice")
	}
}

func TestChatModelSubmitClearsInput(t *testing.T) {
	m := newTestChatModel(t)
	m.input.SetValue("how bad is it?")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	got := next.(chatModel)
	if cmd == nil {
		t.Fatalf("expected a send command")
	}
	if got.input.Value() != "" {
		t.Fatalf("input = %q, want cleared", got.input.Value())
	}
}

func TestChatModelIgnoresBlankSubmit(t *testing.T) {
	m := newTestChatModel(t)
	m.input.SetValue("   ")
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Fatalf("expected no command for blank input")
	}
}

func TestChatModelRendersEmptyHintAndWaiting(t *testing.T) {
	m := newTestChatModel(t)
	view := m.renderTurns()
	if !strings.Contains(view, "Delhi") || !strings.Contains(view, "Policy Insights") {
		t.Fatalf("empty view missing hint or quick actions:\n%s", view)
	}

	m.snap = chat.Snapshot{
		Turns: []chat.Turn{{Role: chat.RoleUser, Content: "hi"}},
		State: chat.StateInFlight,
	}
	if view := m.renderTurns(); !strings.Contains(view, "Analyzing...") {
		t.Fatalf("expected waiting indicator:\n%s", view)
	}

	m.snap = chat.Snapshot{Turns: []chat.Turn{
		{Role: chat.RoleUser, Content: "hi"},
		{Role: chat.RoleAssistant, Content: chat.ErrorMarker + "Rate limit exceeded"},
	}}
	if view := m.renderTurns(); !strings.Contains(view, "Rate limit exceeded") || strings.Contains(view, "Analyzing...") {
		t.Fatalf("unexpected error view:\n%s", view)
	}
}
