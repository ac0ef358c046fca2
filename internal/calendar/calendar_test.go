package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/sadopc/studyplan/internal/progress"
	"github.com/sadopc/studyplan/internal/study"
)

func sampleItem() study.ScheduleItem {
	start := time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC)
	return study.ScheduleItem{
		ID:             "s1",
		StartTime:      start,
		EndTime:        start.Add(90 * time.Minute),
		Subject:        "Physics",
		Chapter:        "Kinematics",
		Book:           "HC Verma",
		QuestionRange:  &progress.QuestionRange{Start: 11, End: 25},
		ExerciseNumber: "1.2",
	}
}

func TestEvent(t *testing.T) {
	ev := Event(sampleItem(), time.UTC)
	if ev.Summary != "Physics: Kinematics" {
		t.Fatalf("unexpected summary %q", ev.Summary)
	}
	for _, want := range []string{"Book: HC Verma", "Questions: 11-25", "Exercise: 1.2"} {
		if !strings.Contains(ev.Description, want) {
			t.Fatalf("description %q missing %q", ev.Description, want)
		}
	}
	if ev.Start.DateTime != "2026-03-04T09:00:00Z" || ev.End.DateTime != "2026-03-04T10:30:00Z" {
		t.Fatalf("unexpected times: %s - %s", ev.Start.DateTime, ev.End.DateTime)
	}
	if ev.Start.TimeZone != "UTC" {
		t.Fatalf("unexpected zone %q", ev.Start.TimeZone)
	}
}

func TestEventWithoutBook(t *testing.T) {
	item := sampleItem()
	item.Book, item.QuestionRange, item.ExerciseNumber = "", nil, ""
	ev := Event(item, time.UTC)
	if strings.Contains(ev.Description, "Book:") || strings.Contains(ev.Description, "Questions:") {
		t.Fatalf("unexpected description %q", ev.Description)
	}
}

func TestNewRequiresToken(t *testing.T) {
	if _, err := New(context.Background(), " ", "primary"); err == nil {
		t.Fatal("expected error without token")
	}
}

// fakeCalendar serves the subset of the events API the client uses.
type fakeCalendar struct {
	mu      sync.Mutex
	events  map[string]gcal.Event
	nextID  int
	methods []string
}

func (f *fakeCalendar) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.methods = append(f.methods, r.Method)

	idx := strings.Index(r.URL.Path, "/calendars/primary/events")
	if idx < 0 {
		http.NotFound(w, r)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path[idx:], "/calendars/primary/events")
	id := strings.TrimPrefix(rest, "/")

	switch {
	case r.Method == http.MethodPost && id == "":
		var ev gcal.Event
		json.NewDecoder(r.Body).Decode(&ev)
		f.nextID++
		ev.Id = "evt-" + strconv.Itoa(f.nextID)
		f.events[ev.Id] = ev
		json.NewEncoder(w).Encode(ev)
	case r.Method == http.MethodPut:
		if _, ok := f.events[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"code":404,"message":"Not Found"}}`))
			return
		}
		var ev gcal.Event
		json.NewDecoder(r.Body).Decode(&ev)
		ev.Id = id
		f.events[id] = ev
		json.NewEncoder(w).Encode(ev)
	case r.Method == http.MethodDelete:
		if _, ok := f.events[id]; !ok {
			w.WriteHeader(http.StatusGone)
			w.Write([]byte(`{"error":{"code":410,"message":"Gone"}}`))
			return
		}
		delete(f.events, id)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newFakeClient(t *testing.T) (*Client, *fakeCalendar) {
	t.Helper()
	fake := &fakeCalendar{events: make(map[string]gcal.Event)}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	c, err := New(context.Background(), "test-token", "primary",
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatal(err)
	}
	return c.WithLocation(time.UTC), fake
}

func TestPushInsertUpdateRemove(t *testing.T) {
	c, fake := newFakeClient(t)
	ctx := context.Background()
	item := sampleItem()

	id, err := c.Push(ctx, item)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id != "evt-1" {
		t.Fatalf("expected evt-1, got %q", id)
	}

	item.GoogleEventID = id
	item.Chapter = "Motion in a Plane"
	id2, err := c.Push(ctx, item)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if id2 != id {
		t.Fatalf("update changed id: %q", id2)
	}
	if got := fake.events[id].Summary; got != "Physics: Motion in a Plane" {
		t.Fatalf("event not updated: %q", got)
	}

	if err := c.Remove(ctx, id); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := c.Remove(ctx, id); err != nil {
		t.Fatalf("second remove should treat gone as success: %v", err)
	}
}

func TestPushRecreatesMissingEvent(t *testing.T) {
	c, fake := newFakeClient(t)
	item := sampleItem()
	item.GoogleEventID = "deleted-elsewhere"

	id, err := c.Push(context.Background(), item)
	if err != nil {
		t.Fatal(err)
	}
	if id != "evt-1" {
		t.Fatalf("expected recreated evt-1, got %q", id)
	}
	if len(fake.methods) != 2 || fake.methods[0] != http.MethodPut || fake.methods[1] != http.MethodPost {
		t.Fatalf("expected PUT then POST, got %v", fake.methods)
	}
}
