package seed

import (
	"bytes"
	"context"
	"strings"
	"testing"

	cachemem "github.com/ebriony/castlight/internal/cache/memory"
	"github.com/ebriony/castlight/internal/event/service"
	"github.com/ebriony/castlight/internal/snapshot"
	storagemem "github.com/ebriony/castlight/internal/storage/memory"
)

func newTestEnv(t *testing.T) (*service.Service, *storagemem.Store, *snapshot.Builder) {
	t.Helper()
	store := storagemem.New()
	cache := snapshot.NewCache(cachemem.New(), 0, nil)
	builder := snapshot.NewBuilder(store, cache)
	patcher := snapshot.NewPatcher(store, cache, builder)
	dispatcher := snapshot.NewDispatcher(store, cache, patcher, nil, nil)
	return service.New(store, dispatcher), store, builder
}

func TestApplyAllScenarios(t *testing.T) {
	svc, store, builder := newTestEnv(t)
	ctx := context.Background()

	var out bytes.Buffer
	if err := Apply(ctx, svc, store, "", &out); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	for _, scenario := range Scenarios() {
		if !strings.Contains(out.String(), scenario.Name) {
			t.Fatalf("output missing scenario %q: %s", scenario.Name, out.String())
		}
	}

	ev, found, err := store.Event(ctx, "emberfall")
	if err != nil || !found {
		t.Fatalf("Event(emberfall) = %v, %t", err, found)
	}
	children, err := store.ChildEvents(ctx, "emberfall")
	if err != nil {
		t.Fatalf("ChildEvents() error = %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("len(children) = %d, want 2", len(children))
	}

	run, found, err := store.Run(ctx, "emberfall", 1)
	if err != nil || !found {
		t.Fatalf("Run(emberfall, 1) = %v, %t", err, found)
	}
	_, snap, err := builder.Ensure(ctx, ev, run)
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if len(snap.Chars) == 0 {
		t.Fatal("seeded snapshot has no characters")
	}
	view := snap.Chars[1]
	if view == nil || view.PlayerFull != "Ilse Maren" {
		t.Fatalf("character 1 cast = %+v, want Ilse Maren", view)
	}
}

func TestApplySingleScenario(t *testing.T) {
	svc, store, builder := newTestEnv(t)
	ctx := context.Background()

	if err := Apply(ctx, svc, store, "ashmoor", nil); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if _, found, err := store.Event(ctx, "emberfall"); err != nil || found {
		t.Fatalf("Event(emberfall) = %v, %t, want absent", err, found)
	}

	ev, found, err := store.Event(ctx, "ashmoor")
	if err != nil || !found {
		t.Fatalf("Event(ashmoor) = %v, %t", err, found)
	}
	run, _, err := store.Run(ctx, "ashmoor", 1)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	_, snap, err := builder.Ensure(ctx, ev, run)
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if len(snap.Quests) != 2 {
		t.Fatalf("len(snap.Quests) = %d, want 2", len(snap.Quests))
	}
	view := snap.Chars[1]
	if view == nil {
		t.Fatal("character 1 missing")
	}
	if len(view.Traits) != 1 || view.Traits[0] != 1 {
		t.Fatalf("view.Traits = %v, want [1]", view.Traits)
	}
	if len(view.Fields) == 0 {
		t.Fatal("character 1 has no question fields")
	}
}

func TestApplyUnknownScenario(t *testing.T) {
	svc, store, _ := newTestEnv(t)

	if err := Apply(context.Background(), svc, store, "ghost", nil); err == nil {
		t.Fatal("Apply() error = nil, want unknown scenario")
	}
}
